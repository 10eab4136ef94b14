package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joeycumines/go-swfsim/event"
)

func terminated(submit, start, actual int64) *event.Job {
	return &event.Job{
		SubmitTime:       submit,
		StartToRunAtTime: start,
		ActualRunTime:    actual,
	}
}

func TestCompute_NoWaitMeansUnitSlowdown(t *testing.T) {
	jobs := []*event.Job{terminated(0, 0, 20)}
	agg := Compute(jobs)
	assert.Equal(t, 1, agg.NumJobs)
	assert.InDelta(t, 1.0, agg.AverageSlowdown, 1e-9)
	assert.InDelta(t, 1.0, agg.AverageBoundedSlowdown, 1e-9)
	assert.InDelta(t, 0.0, agg.AverageWaitTime, 1e-9)
	assert.InDelta(t, 20.0, agg.AverageFlowTime, 1e-9)
}

func TestCompute_BoundedSlowdownFloorsShortJobsAtTen(t *testing.T) {
	// wait=10, run=2: unbounded slowdown is (10+2)/2=6; bounded uses the
	// 10-second floor instead: (10+2)/10=1.2.
	jobs := []*event.Job{terminated(0, 10, 2)}
	agg := Compute(jobs)
	assert.InDelta(t, 6.0, agg.AverageSlowdown, 1e-9)
	assert.InDelta(t, 1.2, agg.AverageBoundedSlowdown, 1e-9)
}

func TestCompute_AveragesAcrossMultipleJobs(t *testing.T) {
	jobs := []*event.Job{
		terminated(0, 0, 10),  // wait 0, slowdown 1
		terminated(0, 10, 10), // wait 10, slowdown 2
	}
	agg := Compute(jobs)
	assert.Equal(t, 2, agg.NumJobs)
	assert.InDelta(t, 1.5, agg.AverageSlowdown, 1e-9)
	assert.InDelta(t, 5.0, agg.AverageWaitTime, 1e-9)
	assert.InDelta(t, 15.0, agg.AverageFlowTime, 1e-9)
}

func TestCompute_PanicsOnEmptyInput(t *testing.T) {
	assert.Panics(t, func() { Compute(nil) })
}
