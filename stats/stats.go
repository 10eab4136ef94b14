// Package stats aggregates per-job slowdown and wait/flow-time metrics
// over a completed simulation run.
package stats

import "github.com/joeycumines/go-swfsim/event"

// Aggregate holds the summary statistics computed over a set of
// terminated jobs.
type Aggregate struct {
	NumJobs                int
	AverageSlowdown        float64
	AverageBoundedSlowdown float64
	AverageWaitTime        float64
	AverageFlowTime        float64
}

// boundedSlowdownFloor is the minimum denominator used for bounded
// slowdown: jobs shorter than this are treated as if they ran for
// exactly this long, so very short jobs don't dominate the average with
// enormous slowdown ratios.
const boundedSlowdownFloor = 10.0

// Compute computes summary statistics over jobs, which must all have
// been started and terminated. It panics if jobs is empty: an empty
// input almost always indicates an empty workload file.
func Compute(jobs []*event.Job) Aggregate {
	if len(jobs) == 0 {
		panic("stats: compute: no terminated jobs")
	}

	var sumSlowdown, sumBoundedSlowdown, sumWait, sumFlow float64
	for _, job := range jobs {
		wait := float64(job.StartToRunAtTime - job.SubmitTime)
		run := float64(job.ActualRunTime)

		sumSlowdown += (wait + run) / run

		denom := run
		if denom < boundedSlowdownFloor {
			denom = boundedSlowdownFloor
		}
		sumBoundedSlowdown += (wait + run) / denom

		sumWait += wait
		sumFlow += wait + run
	}

	n := float64(len(jobs))
	return Aggregate{
		NumJobs:                len(jobs),
		AverageSlowdown:        sumSlowdown / n,
		AverageBoundedSlowdown: sumBoundedSlowdown / n,
		AverageWaitTime:        sumWait / n,
		AverageFlowTime:        sumFlow / n,
	}
}
