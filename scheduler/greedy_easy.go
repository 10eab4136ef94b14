package scheduler

import (
	"sort"
	"sync"

	"github.com/joeycumines/go-swfsim/calendar"
	"github.com/joeycumines/go-swfsim/event"
	"github.com/joeycumines/go-swfsim/logging"
)

// Comparator reports whether a should sort before b.
type Comparator func(a, b *event.Job) bool

// ScoreFunc scores a candidate set of tentatively-placed jobs; higher is
// better.
type ScoreFunc func(jobs []*event.Job) float64

// DefaultComparators returns the stock comparator set: submit time
// descending, submit time ascending, processor count ascending, and
// estimated run time ascending.
func DefaultComparators() []Comparator {
	return []Comparator{
		func(a, b *event.Job) bool { return a.SubmitTime > b.SubmitTime },
		func(a, b *event.Job) bool { return a.SubmitTime < b.SubmitTime },
		func(a, b *event.Job) bool { return a.NumRequiredProcessors < b.NumRequiredProcessors },
		func(a, b *event.Job) bool { return a.EstimatedRunTime < b.EstimatedRunTime },
	}
}

// DefaultScoreFunc scores a placement as the sum of processors x
// estimated run time over the tentatively placed set: it favours
// orderings that pack the most work onto the machine right now.
func DefaultScoreFunc(jobs []*event.Job) float64 {
	var val float64
	for _, j := range jobs {
		val += float64(j.NumRequiredProcessors) * float64(j.EstimatedRunTime)
	}
	return val
}

// GreedyEASY is the Greedy-EASY policy: at each backfill decision,
// several tail orderings are scored against a cloned calendar, the
// best-scoring ordering is committed, and ordinary EASY backfill runs
// over it.
type GreedyEASY struct {
	cal         *calendar.Calendar
	waiting     []*event.Job
	comparators []Comparator
	score       ScoreFunc
	logger      logging.Logger
}

// NewGreedyEASY constructs a Greedy-EASY scheduler. A nil comparators
// slice or score function uses the defaults above.
func NewGreedyEASY(total int, comparators []Comparator, score ScoreFunc, opts ...Option) *GreedyEASY {
	o := logging.Resolve(opts...)
	if comparators == nil {
		comparators = DefaultComparators()
	}
	if score == nil {
		score = DefaultScoreFunc
	}
	return &GreedyEASY{
		cal:         calendar.New(total),
		comparators: comparators,
		score:       score,
		logger:      o.Logger,
	}
}

func (s *GreedyEASY) OnSubmission(job *event.Job, now int64) []event.Event {
	s.cal.ArchiveOldSlices(now)
	s.waiting = append(s.waiting, job)
	return s.schedule(now)
}

func (s *GreedyEASY) OnTermination(job *event.Job, now int64) []event.Event {
	s.cal.ArchiveOldSlices(now)
	if err := s.cal.ReleaseTail(job); err != nil {
		panic("scheduler: greedy-easy: " + err.Error())
	}
	return s.schedule(now)
}

func (s *GreedyEASY) schedule(now int64) []event.Event {
	var events []event.Event

	sort.SliceStable(s.waiting, func(i, j int) bool { return s.waiting[i].SubmitTime < s.waiting[j].SubmitTime })

	for len(s.waiting) > 0 && s.cal.CanStartNow(s.waiting[0], now) {
		head := s.waiting[0]
		if err := s.cal.Assign(head, now); err != nil {
			panic("scheduler: greedy-easy: " + err.Error())
		}
		s.waiting = s.waiting[1:]
		events = append(events, startEvent(head))
	}
	if len(s.waiting) == 0 {
		return events
	}

	head := s.waiting[0]
	tail := s.waiting[1:]
	bestOrder := s.bestTailOrder(head, tail, now)
	s.waiting = append([]*event.Job{head}, bestOrder...)

	shadow := s.cal.EarliestStart(head, now)
	for _, j := range bestOrder {
		if err := s.cal.Assign(j, now); err != nil {
			continue
		}
		if newShadow := s.cal.EarliestStart(head, now); newShadow <= shadow {
			s.waiting = removeJob(s.waiting, j)
			events = append(events, startEvent(j))
			logging.Debug(s.logger, "greedy-easy backfilled job", logging.F("job_id", j.ID))
		} else {
			if err := s.cal.ReleaseFull(j); err != nil {
				panic("scheduler: greedy-easy: " + err.Error())
			}
		}
	}
	return events
}

// bestTailOrder scores each configured comparator's resulting tail order
// against a clone of the calendar (with head already reserved at its own
// earliest start), in parallel, and returns the order with the highest
// score. Ties favour the lowest comparator index, keeping the result
// deterministic despite the concurrent scoring.
func (s *GreedyEASY) bestTailOrder(head *event.Job, tail []*event.Job, now int64) []*event.Job {
	// reserve a copy of the head on the clone, never the head itself: the
	// real job must not pick up a speculative start time from a scoring
	// pass that is never committed.
	base := s.cal.Clone()
	headCopy := *head
	if err := base.AssignEarliest(&headCopy, now); err != nil {
		panic("scheduler: greedy-easy: " + err.Error())
	}

	scores := make([]float64, len(s.comparators))
	orders := make([][]*event.Job, len(s.comparators))

	var wg sync.WaitGroup
	for i, cmp := range s.comparators {
		wg.Add(1)
		go func(i int, cmp Comparator) {
			defer wg.Done()
			ordered := append([]*event.Job(nil), tail...)
			sort.SliceStable(ordered, func(a, b int) bool { return cmp(ordered[a], ordered[b]) })

			// Score against throwaway copies of each job: tmp is this
			// goroutine's own calendar clone, but the Job values
			// themselves are shared with every other comparator's
			// goroutine (and with the real waiting list), so assigning
			// the originals here would both race across goroutines and
			// leak a speculative start time into jobs that are never
			// actually committed.
			tmp := base.Clone()
			var tentative []*event.Job
			for _, j := range ordered {
				cp := *j
				if tmp.CanStartNow(&cp, now) {
					if err := tmp.Assign(&cp, now); err != nil {
						continue
					}
					tentative = append(tentative, &cp)
				}
			}
			orders[i] = ordered
			scores[i] = s.score(tentative)
		}(i, cmp)
	}
	wg.Wait()

	bestIdx := 0
	for i := 1; i < len(scores); i++ {
		if scores[i] > scores[bestIdx] {
			bestIdx = i
		}
	}
	return orders[bestIdx]
}
