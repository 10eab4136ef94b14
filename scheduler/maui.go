package scheduler

import (
	"sort"

	"github.com/joeycumines/go-swfsim/calendar"
	"github.com/joeycumines/go-swfsim/event"
	"github.com/joeycumines/go-swfsim/logging"
)

// Weights is a Maui priority weight vector: a job's priority is the
// weighted sum of its wait time, slowdown-so-far, user and admin QoS,
// bypass counter, and processor count. The zero value reduces Maui to
// submission order (every coordinate contributes zero, and a stable
// sort over an already-submission-ordered list is a no-op).
type Weights struct {
	WTime  float64
	SLD    float64
	User   float64
	Bypass float64
	Admin  float64
	Size   float64
}

// Maui is a weighted-priority scheduler with two independently
// configured weight vectors: the waiting list is sorted by listWeights
// for head selection, then the tail is re-sorted by backfillWeights
// before EASY-style backfill runs over it.
type Maui struct {
	cal             *calendar.Calendar
	waiting         []*event.Job
	listWeights     Weights
	backfillWeights Weights
	counter         int64
	logger          logging.Logger
}

// NewMaui constructs a Maui scheduler for a machine of total
// processors, with the given list- and backfill-ordering weight
// vectors.
func NewMaui(total int, listWeights, backfillWeights Weights, opts ...Option) *Maui {
	o := logging.Resolve(opts...)
	return &Maui{
		cal:             calendar.New(total),
		listWeights:     listWeights,
		backfillWeights: backfillWeights,
		logger:          o.Logger,
	}
}

func (s *Maui) OnSubmission(job *event.Job, now int64) []event.Event {
	s.cal.ArchiveOldSlices(now)
	job.MauiCounter = s.counter
	s.counter++
	s.waiting = append(s.waiting, job)
	return s.schedule(now)
}

func (s *Maui) OnTermination(job *event.Job, now int64) []event.Event {
	s.cal.ArchiveOldSlices(now)
	if err := s.cal.ReleaseTail(job); err != nil {
		panic("scheduler: maui: " + err.Error())
	}
	return s.schedule(now)
}

func (s *Maui) weight(w Weights, job *event.Job, now int64) float64 {
	wait := float64(now - job.SubmitTime)
	sld := (wait + float64(job.EstimatedRunTime)) / float64(job.EstimatedRunTime)
	return w.WTime*wait +
		w.SLD*sld +
		w.User*float64(job.UserQoS) +
		w.Bypass*float64(job.MauiBypassCounter) +
		w.Admin*float64(job.AdminQoS) +
		w.Size*float64(job.NumRequiredProcessors)
}

func (s *Maui) schedule(now int64) []event.Event {
	var events []event.Event

	sort.SliceStable(s.waiting, func(i, j int) bool {
		return s.weight(s.listWeights, s.waiting[i], now) > s.weight(s.listWeights, s.waiting[j], now)
	})

	for len(s.waiting) > 0 && s.cal.CanStartNow(s.waiting[0], now) {
		head := s.waiting[0]
		if err := s.cal.Assign(head, now); err != nil {
			panic("scheduler: maui: " + err.Error())
		}
		s.waiting = s.waiting[1:]
		events = append(events, startEvent(head))
	}
	if len(s.waiting) == 0 {
		return events
	}

	head := s.waiting[0]
	tail := append([]*event.Job(nil), s.waiting[1:]...)
	sort.SliceStable(tail, func(i, j int) bool {
		return s.weight(s.backfillWeights, tail[i], now) > s.weight(s.backfillWeights, tail[j], now)
	})

	shadow := s.cal.EarliestStart(head, now)
	for _, j := range tail {
		if err := s.cal.Assign(j, now); err != nil {
			continue
		}
		if newShadow := s.cal.EarliestStart(head, now); newShadow <= shadow {
			s.waiting = removeJob(s.waiting, j)
			events = append(events, startEvent(j))
			s.incrementBypassCounters(j)
		} else {
			if err := s.cal.ReleaseFull(j); err != nil {
				panic("scheduler: maui: " + err.Error())
			}
		}
	}
	return events
}

// incrementBypassCounters bumps MauiBypassCounter on every still-waiting
// job that was submitted before backfilled (i.e. has a smaller
// MauiCounter), since backfilled just ran ahead of it.
func (s *Maui) incrementBypassCounters(backfilled *event.Job) {
	for _, w := range s.waiting {
		if w.MauiCounter < backfilled.MauiCounter {
			w.MauiBypassCounter++
		}
	}
}
