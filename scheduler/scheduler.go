// Package scheduler implements six batch scheduling policies: FCFS,
// Conservative Backfill, EASY, EASY++, Maui, and Greedy-EASY.
//
// Every scheduler owns a private calendar.Calendar and a waiting list of
// not-yet-dispatched jobs, and implements the same submission/
// termination contract so the sim package can drive any of them
// interchangeably.
package scheduler

import (
	"github.com/joeycumines/go-swfsim/event"
	"github.com/joeycumines/go-swfsim/logging"
)

// Scheduler is the contract every backfill policy in this package
// implements. Each method archives old calendar slices before acting,
// and returns the Start events the caller (the sim package) should add
// to the event.Queue.
type Scheduler interface {
	OnSubmission(job *event.Job, now int64) []event.Event
	OnTermination(job *event.Job, now int64) []event.Event
}

// PredictionExpiryHandler is implemented only by EASY++: it is the one
// scheduler that needs a third event kind.
type PredictionExpiryHandler interface {
	OnPredictionExpiry(job *event.Job, now int64) []event.Event
}

// startEvent builds the Start event for a job already assigned a start
// time in the calendar.
func startEvent(job *event.Job) event.Event {
	return event.NewEvent(event.KindStart, job.StartToRunAtTime, job)
}

// removeJob returns list with job removed (by identity), preserving
// order. It panics if job is not present: callers only ever remove a
// job they just found in the list.
func removeJob(list []*event.Job, job *event.Job) []*event.Job {
	for i, j := range list {
		if j == job {
			return append(list[:i:i], list[i+1:]...)
		}
	}
	panic("scheduler: remove job: job not present in list")
}

// Options is the shared functional-options alias used by every
// scheduler constructor in this package.
type Options = logging.Options

// Option configures a scheduler constructor.
type Option = logging.Option

// WithLogger is re-exported for convenience so callers need not import
// the logging package directly just to configure a scheduler.
var WithLogger = logging.WithLogger
