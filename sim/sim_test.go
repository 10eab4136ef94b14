package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeycumines/go-swfsim/calendar"
	"github.com/joeycumines/go-swfsim/event"
	"github.com/joeycumines/go-swfsim/scheduler"
)

// requireFeasible replays every terminated job's actual reservation
// against a fresh calendar and requires that it never over-subscribes
// and drains back to a fully free machine.
func requireFeasible(t *testing.T, total int, s *Simulator) {
	t.Helper()
	require.NoError(t, calendar.New(total).FeasibilityCheck(s.Terminated()))
}

func job(id, submit, est, actual int64, procs int) *event.Job {
	return &event.Job{
		ID:                    id,
		SubmitTime:            submit,
		EstimatedRunTime:      est,
		ActualRunTime:         actual,
		NumRequiredProcessors: procs,
		PredictedRunTime:      est,
		StartToRunAtTime:      event.UnstartedTime,
	}
}

func TestSimulator_FCFSRunsJobsToCompletionInOrder(t *testing.T) {
	jobs := []*event.Job{
		job(1, 0, 10, 10, 5),
		job(2, 0, 10, 10, 5),
		job(3, 0, 10, 10, 5),
	}

	s := New(jobs, 5, func(q *event.Queue) scheduler.Scheduler {
		return scheduler.NewFCFS(5)
	})
	s.Run()

	require.Len(t, s.Terminated(), 3)
	assert.Equal(t, int64(1), s.Terminated()[0].ID)
	assert.Equal(t, int64(2), s.Terminated()[1].ID)
	assert.Equal(t, int64(3), s.Terminated()[2].ID)
	assert.Equal(t, int64(0), jobs[0].StartToRunAtTime)
	assert.Equal(t, int64(10), jobs[1].StartToRunAtTime)
	assert.Equal(t, int64(20), jobs[2].StartToRunAtTime)
	requireFeasible(t, 5, s)
}

func TestSimulator_EasyBackfillsAroundBlockedJob(t *testing.T) {
	jobs := []*event.Job{
		job(1, 0, 20, 20, 80),
		job(2, 0, 20, 20, 80),
		job(3, 0, 5, 5, 10),
	}

	s := New(jobs, 90, func(q *event.Queue) scheduler.Scheduler {
		return scheduler.NewEASY(90)
	})
	s.Run()

	require.Len(t, s.Terminated(), 3)
	assert.Equal(t, int64(0), jobs[0].StartToRunAtTime)
	assert.Equal(t, int64(0), jobs[2].StartToRunAtTime) // backfilled alongside job 1
	assert.Equal(t, int64(20), jobs[1].StartToRunAtTime)
	requireFeasible(t, 90, s)
}

func TestSimulator_EasyPlusPlusWiresPredictionExpiryThroughTheSharedQueue(t *testing.T) {
	jobs := []*event.Job{
		job(1, 0, 100, 10, 10),
		job(2, 10, 100, 10, 10),
		job(3, 20, 100, 50, 10),
	}
	jobs[0].UserID = 1
	jobs[1].UserID = 1
	jobs[2].UserID = 1

	s := New(jobs, 10, func(q *event.Queue) scheduler.Scheduler {
		return scheduler.NewEasyPlusPlus(10, q)
	})
	s.Run()

	require.Len(t, s.Terminated(), 3)
	assert.Equal(t, int64(20), jobs[2].StartToRunAtTime)
	assert.Equal(t, int64(70), jobs[2].FinishTime())
	requireFeasible(t, 10, s)
}

// TestSimulator_MauiWaitTimeWeightMatchesEasy runs the same workload
// under EASY and under Maui with only the wait-time weight set: ordering
// by wait time descending is submission order, so the two schedules
// must come out identical, start time for start time.
func TestSimulator_MauiWaitTimeWeightMatchesEasy(t *testing.T) {
	workload := func() []*event.Job {
		return []*event.Job{
			job(1, 0, 20, 15, 80),
			job(2, 0, 20, 20, 80),
			job(3, 1, 5, 5, 10),
			job(4, 2, 30, 25, 40),
			job(5, 3, 10, 10, 20),
		}
	}

	easyJobs := workload()
	easySim := New(easyJobs, 100, func(q *event.Queue) scheduler.Scheduler {
		return scheduler.NewEASY(100)
	})
	easySim.Run()

	w := scheduler.Weights{WTime: 1}
	mauiJobs := workload()
	mauiSim := New(mauiJobs, 100, func(q *event.Queue) scheduler.Scheduler {
		return scheduler.NewMaui(100, w, w)
	})
	mauiSim.Run()

	for i := range easyJobs {
		assert.Equal(t, easyJobs[i].StartToRunAtTime, mauiJobs[i].StartToRunAtTime,
			"job %d start time diverged", easyJobs[i].ID)
	}
	requireFeasible(t, 100, easySim)
	requireFeasible(t, 100, mauiSim)
}

func TestSimulator_GreedyEasyAndConservativeProduceFeasibleSchedules(t *testing.T) {
	workload := func() []*event.Job {
		return []*event.Job{
			job(1, 0, 20, 12, 90),
			job(2, 0, 10, 10, 2),
			job(3, 1, 10, 7, 8),
			job(4, 5, 40, 40, 50),
			job(5, 6, 5, 5, 50),
		}
	}

	for name, newScheduler := range map[string]NewScheduler{
		"greedy-easy": func(q *event.Queue) scheduler.Scheduler {
			return scheduler.NewGreedyEASY(100, nil, nil)
		},
		"conservative": func(q *event.Queue) scheduler.Scheduler {
			return scheduler.NewConservative(100)
		},
	} {
		t.Run(name, func(t *testing.T) {
			jobs := workload()
			s := New(jobs, 100, newScheduler)
			s.Run()
			require.Len(t, s.Terminated(), len(jobs))
			for _, j := range jobs {
				assert.GreaterOrEqual(t, j.StartToRunAtTime, j.SubmitTime, "job %d", j.ID)
			}
			requireFeasible(t, 100, s)
		})
	}
}
