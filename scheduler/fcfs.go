package scheduler

import (
	"github.com/joeycumines/go-swfsim/calendar"
	"github.com/joeycumines/go-swfsim/event"
	"github.com/joeycumines/go-swfsim/logging"
)

// FCFS is plain first-come-first-served: no backfill, the head of the
// waiting list blocks everyone behind it.
type FCFS struct {
	cal     *calendar.Calendar
	waiting []*event.Job
	logger  logging.Logger
}

// NewFCFS constructs an FCFS scheduler for a machine of total
// processors.
func NewFCFS(total int, opts ...Option) *FCFS {
	o := logging.Resolve(opts...)
	return &FCFS{cal: calendar.New(total), logger: o.Logger}
}

func (s *FCFS) OnSubmission(job *event.Job, now int64) []event.Event {
	s.cal.ArchiveOldSlices(now)
	s.waiting = append(s.waiting, job)
	return s.schedule(now)
}

func (s *FCFS) OnTermination(job *event.Job, now int64) []event.Event {
	s.cal.ArchiveOldSlices(now)
	if err := s.cal.ReleaseTail(job); err != nil {
		panic("scheduler: fcfs: " + err.Error())
	}
	return s.schedule(now)
}

// schedule advances the head of the waiting list for as long as it can
// start immediately. FCFS never looks past the head.
func (s *FCFS) schedule(now int64) []event.Event {
	var events []event.Event
	for len(s.waiting) > 0 {
		head := s.waiting[0]
		if !s.cal.CanStartNow(head, now) {
			break
		}
		if err := s.cal.Assign(head, now); err != nil {
			panic("scheduler: fcfs: " + err.Error())
		}
		s.waiting = s.waiting[1:]
		events = append(events, startEvent(head))
		logging.Debug(s.logger, "fcfs scheduled head", logging.F("job_id", head.ID), logging.F("now", now))
	}
	return events
}
