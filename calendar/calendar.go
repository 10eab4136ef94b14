// Package calendar implements the reservation calendar: a time-sliced
// representation of free processors over the future, supporting
// reservation, earliest-start search, tail trimming on early
// termination, and feasibility checks.
//
// The calendar owns an ordered sequence of contiguous half-open slices
// covering [now, +inf), each carrying a constant free-processor count.
// Reservations split the first and last covered slice to align their
// boundaries, and releases re-merge adjacent equal-count slices, so the
// sequence length stays proportional to the number of distinct future
// boundaries.
package calendar

import (
	"fmt"
	"sort"

	"golang.org/x/exp/slices"

	"github.com/joeycumines/go-swfsim/event"
	"github.com/joeycumines/go-swfsim/logging"
)

// Infinite marks the duration of the calendar's final, unbounded slice.
const Infinite int64 = 1<<63 - 1

// Slice is a half-open time interval [Start, End) with a constant free
// count. The calendar's final slice always has End == Infinite.
type Slice struct {
	Start int64
	End   int64
	Free  int
}

// Calendar is the reservation calendar for a machine with Total
// processors. The active sequence covers [now, +inf); slices that have
// ended at or before the most recent ArchiveOldSlices call are moved to
// an append-only archive.
type Calendar struct {
	total   int
	now     int64
	slices  []Slice
	archive []Slice
	logger  logging.Logger
}

// Option configures a Calendar.
type Option = logging.Option

// New constructs a Calendar for a machine with the given number of
// processors, fully idle.
func New(total int, opts ...Option) *Calendar {
	if total <= 0 {
		panic("calendar: new: total must be positive")
	}
	o := logging.Resolve(opts...)
	return &Calendar{
		total:  total,
		slices: []Slice{{Start: 0, End: Infinite, Free: total}},
		logger: o.Logger,
	}
}

// Total returns the machine's total processor count.
func (c *Calendar) Total() int { return c.total }

// Now returns the timestamp of the most recent ArchiveOldSlices call (or
// zero, if none has occurred).
func (c *Calendar) Now() int64 { return c.now }

// ArchiveOldSlices moves slices ending at or before now into the
// archive; the active sequence begins at now afterward.
func (c *Calendar) ArchiveOldSlices(now int64) {
	for len(c.slices) > 0 {
		s := c.slices[0]
		if s.End <= now {
			c.archive = append(c.archive, s)
			c.slices = c.slices[1:]
			continue
		}
		if s.Start < now {
			c.archive = append(c.archive, Slice{Start: s.Start, End: now, Free: s.Free})
			c.slices[0] = Slice{Start: now, End: s.End, Free: s.Free}
		}
		break
	}
	if len(c.slices) == 0 {
		// can only happen if now has advanced past every finite slice,
		// which never happens since the last slice is Infinite.
		panic("calendar: archive old slices: ran out of active slices")
	}
	c.now = now
	logging.Debug(c.logger, "archived old slices", logging.F("now", now), logging.F("active_slices", len(c.slices)))
}

// indexAt returns the index of the slice containing t. t must be >= the
// start of the first active slice.
func (c *Calendar) indexAt(t int64) int {
	i := sort.Search(len(c.slices), func(i int) bool { return c.slices[i].Start > t }) - 1
	if i < 0 {
		i = 0
	}
	return i
}

// FreeProcessorsAt returns the free-processor count of the slice
// containing t.
func (c *Calendar) FreeProcessorsAt(t int64) int {
	return c.slices[c.indexAt(t)].Free
}

// EarliestStart returns the smallest t >= notBefore such that every
// point in [t, t+job.EstimatedRunTime) has free processors >= the job's
// requirement. Existence is guaranteed by the unbounded, full-capacity
// tail slice.
func (c *Calendar) EarliestStart(job *event.Job, notBefore int64) int64 {
	return c.earliestStartFor(job, notBefore, job.EstimatedRunTime)
}

// EarliestStartPredicted is EarliestStart but sized by
// job.PredictedRunTime rather than job.EstimatedRunTime, for the EASY++
// scheduler's optimistic head-job shadow.
func (c *Calendar) EarliestStartPredicted(job *event.Job, notBefore int64) int64 {
	return c.earliestStartFor(job, notBefore, job.PredictedRunTime)
}

func (c *Calendar) earliestStartFor(job *event.Job, notBefore, dur int64) int64 {
	need := job.NumRequiredProcessors
	candidate := notBefore
	if candidate < c.slices[0].Start {
		candidate = c.slices[0].Start
	}
	for {
		end := candidate + dur
		i := c.indexAt(candidate)
		advanced := false
		for i < len(c.slices) && c.slices[i].Start < end {
			if c.slices[i].Free < need {
				candidate = c.slices[i].End
				advanced = true
				break
			}
			i++
		}
		if !advanced {
			return candidate
		}
	}
}

// CanStartNow reports whether job could be assigned to start exactly at
// t without delay.
func (c *Calendar) CanStartNow(job *event.Job, t int64) bool {
	return c.EarliestStart(job, t) == t
}

// CanStartNowPredicted is CanStartNow sized by job.PredictedRunTime.
func (c *Calendar) CanStartNowPredicted(job *event.Job, t int64) bool {
	return c.EarliestStartPredicted(job, t) == t
}

// splitAt ensures a slice boundary exists at t, splitting the slice that
// contains it if necessary. It is a no-op if a boundary already exists
// at t or t is at or before the first active slice's start.
func (c *Calendar) splitAt(t int64) {
	if t <= c.slices[0].Start {
		return
	}
	i := c.indexAt(t)
	s := c.slices[i]
	if s.Start == t {
		return
	}
	left := Slice{Start: s.Start, End: t, Free: s.Free}
	right := Slice{Start: t, End: s.End, Free: s.Free}
	c.slices[i] = left
	c.slices = slices.Insert(c.slices, i+1, right)
}

// mutate decrements (delta<0) or increments (delta>0) the free count of
// every slice overlapping [start, end), splitting boundaries as needed.
// It reports an error without mutating if the change would push any
// slice outside [0, total].
func (c *Calendar) mutate(start, end int64, delta int) error {
	if end <= start {
		return nil
	}
	c.splitAt(start)
	c.splitAt(end)

	i := c.indexAt(start)
	for j := i; j < len(c.slices) && c.slices[j].Start < end; j++ {
		nf := c.slices[j].Free + delta
		if nf < 0 || nf > c.total {
			return &ErrInfeasible{Start: c.slices[j].Start, End: c.slices[j].End, Free: c.slices[j].Free, Delta: delta, Total: c.total}
		}
	}
	for j := i; j < len(c.slices) && c.slices[j].Start < end; j++ {
		c.slices[j].Free += delta
	}
	c.mergeAround(i)
	return nil
}

// mergeAround merges adjacent slices with equal Free counts around index
// i (and its neighbours), bounding the growth of the slice sequence.
func (c *Calendar) mergeAround(i int) {
	// merge forward from a little before i, since splitAt may have
	// touched slices before i too.
	start := i - 1
	if start < 0 {
		start = 0
	}
	for k := start; k < len(c.slices)-1; {
		if c.slices[k].Free == c.slices[k+1].Free {
			c.slices[k].End = c.slices[k+1].End
			c.slices = slices.Delete(c.slices, k+1, k+2)
			continue
		}
		k++
	}
}

// Assign reserves [t, t+job.EstimatedRunTime) for job, sets
// job.StartToRunAtTime and job.ReservedRunTime, and returns an error if
// the reservation would over-subscribe any covered slice.
func (c *Calendar) Assign(job *event.Job, t int64) error {
	return c.assignFor(job, t, job.EstimatedRunTime)
}

// AssignPredicted reserves [t, t+job.PredictedRunTime) for job. It is
// used by the EASY++ scheduler, which reserves only its tightened
// prediction rather than the full conservative estimate; see
// ReattachTail for the safety-net extension back to EstimatedRunTime.
func (c *Calendar) AssignPredicted(job *event.Job, t int64) error {
	return c.assignFor(job, t, job.PredictedRunTime)
}

func (c *Calendar) assignFor(job *event.Job, t, duration int64) error {
	if err := c.mutate(t, t+duration, -job.NumRequiredProcessors); err != nil {
		return fmt.Errorf("calendar: assign: job %d: %w", job.ID, err)
	}
	job.StartToRunAtTime = t
	job.ReservedRunTime = duration
	logging.Debug(c.logger, "assigned job", logging.F("job_id", job.ID), logging.F("start", t), logging.F("duration", duration))
	return nil
}

// AssignEarliest assigns job at its EarliestStart(notBefore).
func (c *Calendar) AssignEarliest(job *event.Job, notBefore int64) error {
	return c.Assign(job, c.EarliestStart(job, notBefore))
}

// ReleaseTail restores capacity on [job.FinishTime(), reservedEnd) when
// the job's actual run time finished before the end of its current
// reservation (job.StartToRunAtTime+job.ReservedRunTime). It is a no-op
// if the job ran to, or past, its reserved end, and narrows
// job.ReservedRunTime to match what actually remains reserved.
func (c *Calendar) ReleaseTail(job *event.Job) error {
	actualEnd := job.FinishTime()
	reservedEnd := job.StartToRunAtTime + job.ReservedRunTime
	if actualEnd >= reservedEnd {
		return nil
	}
	if err := c.mutate(actualEnd, reservedEnd, job.NumRequiredProcessors); err != nil {
		return fmt.Errorf("calendar: release tail: job %d: %w", job.ID, err)
	}
	job.ReservedRunTime = actualEnd - job.StartToRunAtTime
	return nil
}

// ReleaseFull removes job's entire current reservation of
// [job.StartToRunAtTime, job.StartToRunAtTime+job.ReservedRunTime), and
// resets job.StartToRunAtTime to event.UnstartedTime and
// job.ReservedRunTime to zero. It undoes tentative backfill
// assignments, lifts a waiting job's reservation before Conservative
// re-places it, and clears FeasibilityCheck's replay; actual
// terminations use ReleaseTail.
func (c *Calendar) ReleaseFull(job *event.Job) error {
	if !job.Started() {
		return nil
	}
	start := job.StartToRunAtTime
	end := start + job.ReservedRunTime
	if err := c.mutate(start, end, job.NumRequiredProcessors); err != nil {
		return fmt.Errorf("calendar: release full: job %d: %w", job.ID, err)
	}
	job.StartToRunAtTime = event.UnstartedTime
	job.ReservedRunTime = 0
	return nil
}

// ReattachTail extends job's reservation from its current (predicted)
// end out to job.EstimatedFinishTime(), when an EASY++ prediction is
// proven too short by a PredictionExpiry event firing before the job
// terminates. It is a no-op if the reservation already reaches the
// estimated end.
func (c *Calendar) ReattachTail(job *event.Job) error {
	reservedEnd := job.StartToRunAtTime + job.ReservedRunTime
	estEnd := job.EstimatedFinishTime()
	if reservedEnd >= estEnd {
		return nil
	}
	if err := c.mutate(reservedEnd, estEnd, -job.NumRequiredProcessors); err != nil {
		return fmt.Errorf("calendar: reattach tail: job %d: %w", job.ID, err)
	}
	job.ReservedRunTime = job.EstimatedRunTime
	return nil
}

// Clone returns a deep copy of the calendar's active state (slices,
// total, and now), for speculative what-if scheduling (Greedy-EASY). The
// archive is not copied: clones are throwaway scoring instances, never
// archived into or read back from.
func (c *Calendar) Clone() *Calendar {
	out := &Calendar{
		total:  c.total,
		now:    c.now,
		slices: append([]Slice(nil), c.slices...),
		logger: c.logger,
	}
	return out
}

// Copy is an alias for Clone, matching the two names used by the
// original scheduler family (CpuSnapshot.copy / .clone).
func (c *Calendar) Copy() *Calendar { return c.Clone() }
