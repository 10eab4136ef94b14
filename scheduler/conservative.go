package scheduler

import (
	"github.com/joeycumines/go-swfsim/calendar"
	"github.com/joeycumines/go-swfsim/event"
	"github.com/joeycumines/go-swfsim/logging"
)

// Conservative is the Conservative Backfill policy: every job is
// reserved immediately at its earliest possible start, and terminations
// may pull later reservations earlier. A job's reserved start time only
// ever decreases.
type Conservative struct {
	cal          *calendar.Calendar
	reservations []*event.Job // every unterminated job, in submission order
	logger       logging.Logger
}

// NewConservative constructs a Conservative scheduler for a machine of
// total processors.
func NewConservative(total int, opts ...Option) *Conservative {
	o := logging.Resolve(opts...)
	return &Conservative{cal: calendar.New(total), logger: o.Logger}
}

func (s *Conservative) OnSubmission(job *event.Job, now int64) []event.Event {
	s.cal.ArchiveOldSlices(now)
	if err := s.cal.AssignEarliest(job, now); err != nil {
		panic("scheduler: conservative: " + err.Error())
	}
	s.reservations = append(s.reservations, job)
	logging.Debug(s.logger, "conservative reserved job", logging.F("job_id", job.ID), logging.F("start", job.StartToRunAtTime))
	return []event.Event{startEvent(job)}
}

func (s *Conservative) OnTermination(job *event.Job, now int64) []event.Event {
	s.cal.ArchiveOldSlices(now)
	if err := s.cal.ReleaseTail(job); err != nil {
		panic("scheduler: conservative: " + err.Error())
	}
	s.reservations = removeJob(s.reservations, job)

	var events []event.Event
	for _, other := range s.reservations {
		if other.StartToRunAtTime < now {
			// already running; never re-placed.
			continue
		}
		prevStart := other.StartToRunAtTime
		if err := s.cal.ReleaseFull(other); err != nil {
			panic("scheduler: conservative: " + err.Error())
		}
		if err := s.cal.AssignEarliest(other, now); err != nil {
			panic("scheduler: conservative: " + err.Error())
		}
		if other.StartToRunAtTime != prevStart {
			// only emit a fresh Start event when the reservation actually
			// moved: the previously queued event for prevStart will be
			// discarded by the machine as stale, but an unconditional
			// re-emission here would otherwise queue a second, non-stale
			// Start event at the same unchanged timestamp and cause the
			// job to be started (and terminated) twice.
			events = append(events, startEvent(other))
		}
	}
	return events
}
