package event

import "container/heap"

// Handler is invoked once per dispatched Event of the Kind it was
// registered for.
type Handler func(Event)

// Queue is a priority queue of Events, dispatching to per-Kind handler
// lists in registration order. It is not safe for concurrent use: the
// simulation is single-threaded cooperative, and handlers run to
// completion atomically.
type Queue struct {
	heap         eventHeap
	handlers     map[Kind][]Handler
	nextSeq      uint64
	lastDispatch int64
	hasDispatch  bool
}

// NewQueue constructs an empty Queue.
func NewQueue() *Queue {
	return &Queue{handlers: make(map[Kind][]Handler)}
}

// AddHandler registers fn to run whenever an Event of the given Kind is
// dispatched by Advance. Handlers for a Kind run in registration order.
func (q *Queue) AddHandler(kind Kind, fn Handler) {
	q.handlers[kind] = append(q.handlers[kind], fn)
}

// Add inserts an event into the queue. It is a programming error (and
// panics) to add an event timestamped strictly before the last event
// dispatched by Advance: simulation time only moves forward.
func (q *Queue) Add(e Event) {
	if q.hasDispatch && e.Timestamp < q.lastDispatch {
		panic("event: queue: add: timestamp precedes last dispatched event")
	}
	e.seq = q.nextSeq
	q.nextSeq++
	heap.Push(&q.heap, e)
}

// IsEmpty reports whether the queue has no pending events.
func (q *Queue) IsEmpty() bool {
	return q.heap.Len() == 0
}

// Advance removes the least Event (per the total order implemented by
// less) and invokes every handler registered for its Kind, in registration
// order. Each call dispatches exactly one event. Handlers may call Add;
// newly added events with a timestamp greater than or equal to the
// dispatched event's timestamp are dispatched by later calls to Advance
// when their turn comes up the queue (they are not executed inline).
func (q *Queue) Advance() {
	e := heap.Pop(&q.heap).(Event)
	q.lastDispatch = e.Timestamp
	q.hasDispatch = true
	for _, fn := range q.handlers[e.Kind] {
		fn(e)
	}
}

// eventHeap implements container/heap.Interface over Events ordered by
// the total order defined in event.go.
type eventHeap []Event

func (h eventHeap) Len() int           { return len(h) }
func (h eventHeap) Less(i, j int) bool { return less(h[i], h[j]) }
func (h eventHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *eventHeap) Push(x any)        { *h = append(*h, x.(Event)) }
func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}
