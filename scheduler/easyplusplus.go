package scheduler

import (
	"sort"

	"github.com/joeycumines/go-swfsim/calendar"
	"github.com/joeycumines/go-swfsim/event"
	"github.com/joeycumines/go-swfsim/logging"
)

// EasyPlusPlus is the adaptive-prediction EASY++ policy. It reserves
// using each job's (possibly optimistic) predicted run time rather than
// the full user estimate, backfills shortest-predicted-first, and
// relies on a PredictionExpiry event to extend a reservation whose
// prediction proves too short. The user estimate remains the hard
// upper bound throughout.
type EasyPlusPlus struct {
	cal     *calendar.Calendar
	queue   *event.Queue
	waiting []*event.Job
	// userHistory holds, per user, the actual run times of their last
	// (at most two) completed jobs, most recent last.
	userHistory map[int64][]int64
	finished    map[int64]bool
	logger      logging.Logger
}

// NewEasyPlusPlus constructs an EASY++ scheduler. It needs the
// simulation's event.Queue directly (unlike the other schedulers here)
// because it must self-schedule PredictionExpiry events for jobs it
// dispatches with an optimistic reservation.
func NewEasyPlusPlus(total int, q *event.Queue, opts ...Option) *EasyPlusPlus {
	o := logging.Resolve(opts...)
	s := &EasyPlusPlus{
		cal:         calendar.New(total),
		queue:       q,
		userHistory: make(map[int64][]int64),
		finished:    make(map[int64]bool),
		logger:      o.Logger,
	}
	q.AddHandler(event.KindPredictionExpiry, func(e event.Event) {
		for _, ev := range s.OnPredictionExpiry(e.Job, e.Timestamp) {
			s.queue.Add(ev)
		}
	})
	return s
}

func (s *EasyPlusPlus) OnSubmission(job *event.Job, now int64) []event.Event {
	s.cal.ArchiveOldSlices(now)
	s.applyPrediction(job)
	s.waiting = append(s.waiting, job)
	return s.schedule(now)
}

func (s *EasyPlusPlus) OnTermination(job *event.Job, now int64) []event.Event {
	s.cal.ArchiveOldSlices(now)
	if err := s.cal.ReleaseTail(job); err != nil {
		panic("scheduler: easy++: " + err.Error())
	}
	s.finished[job.ID] = true
	h := append(s.userHistory[job.UserID], job.ActualRunTime)
	if len(h) > 2 {
		h = h[len(h)-2:]
	}
	s.userHistory[job.UserID] = h
	for _, j := range s.waiting {
		if j.UserID == job.UserID {
			s.applyPrediction(j)
		}
	}
	return s.schedule(now)
}

// OnPredictionExpiry extends job's reservation to its full estimate when
// its optimistic prediction proves too short. Stale events (for jobs
// that already terminated before the expiry fires) are ignored.
func (s *EasyPlusPlus) OnPredictionExpiry(job *event.Job, now int64) []event.Event {
	s.cal.ArchiveOldSlices(now)
	if s.finished[job.ID] {
		return nil
	}
	if err := s.cal.ReattachTail(job); err != nil {
		panic("scheduler: easy++: " + err.Error())
	}
	return nil
}

// applyPrediction recomputes job.PredictedRunTime from the submitting
// user's history: min(estimated, average of the user's last two actual
// run times), or the full estimate if the user has fewer than two
// completions.
func (s *EasyPlusPlus) applyPrediction(job *event.Job) {
	h := s.userHistory[job.UserID]
	if len(h) < 2 {
		job.PredictedRunTime = job.EstimatedRunTime
		return
	}
	avg := (h[0] + h[1]) / 2
	if avg < job.EstimatedRunTime {
		job.PredictedRunTime = avg
	} else {
		job.PredictedRunTime = job.EstimatedRunTime
	}
}

func (s *EasyPlusPlus) schedule(now int64) []event.Event {
	var events []event.Event

	for len(s.waiting) > 0 && s.cal.CanStartNowPredicted(s.waiting[0], now) {
		head := s.waiting[0]
		if err := s.cal.AssignPredicted(head, now); err != nil {
			panic("scheduler: easy++: " + err.Error())
		}
		s.dispatch(head, now, &events)
		s.waiting = s.waiting[1:]
	}
	if len(s.waiting) == 0 {
		return events
	}

	head := s.waiting[0]
	shadow := s.cal.EarliestStartPredicted(head, now)

	tail := append([]*event.Job(nil), s.waiting[1:]...)
	sort.SliceStable(tail, func(i, j int) bool {
		return tail[i].PredictedRunTime < tail[j].PredictedRunTime
	})

	for _, j := range tail {
		if err := s.cal.AssignPredicted(j, now); err != nil {
			continue
		}
		if newShadow := s.cal.EarliestStartPredicted(head, now); newShadow <= shadow {
			s.waiting = removeJob(s.waiting, j)
			s.dispatch(j, now, &events)
		} else {
			if err := s.cal.ReleaseFull(j); err != nil {
				panic("scheduler: easy++: " + err.Error())
			}
		}
	}
	return events
}

// dispatch emits job's Start event and, if its reservation is strictly
// optimistic, schedules the PredictionExpiry event that will later
// extend it if needed. The caller must have already committed job's
// AssignPredicted reservation.
func (s *EasyPlusPlus) dispatch(job *event.Job, now int64, events *[]event.Event) {
	*events = append(*events, startEvent(job))
	if job.PredictedRunTime < job.EstimatedRunTime {
		s.queue.Add(event.NewEvent(event.KindPredictionExpiry, now+job.PredictedRunTime, job))
	}
	logging.Debug(s.logger, "easy++ dispatched job", logging.F("job_id", job.ID), logging.F("predicted", job.PredictedRunTime))
}
