package scheduler

import (
	"github.com/joeycumines/go-swfsim/calendar"
	"github.com/joeycumines/go-swfsim/event"
	"github.com/joeycumines/go-swfsim/logging"
)

// EASY is the EASY Backfill policy: the head of the waiting list gets a
// shadow time reservation, and any tail job may run now if doing so
// does not push the shadow later.
type EASY struct {
	cal     *calendar.Calendar
	waiting []*event.Job
	logger  logging.Logger
}

// NewEASY constructs an EASY scheduler for a machine of total
// processors.
func NewEASY(total int, opts ...Option) *EASY {
	o := logging.Resolve(opts...)
	return &EASY{cal: calendar.New(total), logger: o.Logger}
}

func (s *EASY) OnSubmission(job *event.Job, now int64) []event.Event {
	s.cal.ArchiveOldSlices(now)
	s.waiting = append(s.waiting, job)
	return s.schedule(now)
}

func (s *EASY) OnTermination(job *event.Job, now int64) []event.Event {
	s.cal.ArchiveOldSlices(now)
	if err := s.cal.ReleaseTail(job); err != nil {
		panic("scheduler: easy: " + err.Error())
	}
	return s.schedule(now)
}

func (s *EASY) schedule(now int64) []event.Event {
	var events []event.Event

	for len(s.waiting) > 0 && s.cal.CanStartNow(s.waiting[0], now) {
		head := s.waiting[0]
		if err := s.cal.Assign(head, now); err != nil {
			panic("scheduler: easy: " + err.Error())
		}
		s.waiting = s.waiting[1:]
		events = append(events, startEvent(head))
	}
	if len(s.waiting) == 0 {
		return events
	}

	head := s.waiting[0]
	shadow := s.cal.EarliestStart(head, now)

	for _, j := range append([]*event.Job(nil), s.waiting[1:]...) {
		if err := s.cal.Assign(j, now); err != nil {
			// j cannot even start now with its full requirement.
			continue
		}
		if newShadow := s.cal.EarliestStart(head, now); newShadow <= shadow {
			s.waiting = removeJob(s.waiting, j)
			events = append(events, startEvent(j))
			logging.Debug(s.logger, "easy backfilled job", logging.F("job_id", j.ID), logging.F("now", now))
		} else {
			if err := s.cal.ReleaseFull(j); err != nil {
				panic("scheduler: easy: " + err.Error())
			}
		}
	}
	return events
}
