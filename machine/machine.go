// Package machine implements the validating machine actor: it reacts
// to Start events by tracking the job as running and scheduling its
// Termination, asserts the machine is never over-subscribed, and
// discards stale Start events left over from a scheduler decision that
// was since revised.
package machine

import (
	"fmt"

	"github.com/joeycumines/go-swfsim/event"
	"github.com/joeycumines/go-swfsim/logging"
)

// ErrOversubscribed is the value Machine panics with when a Start event
// would commit more processors than the machine has free.
// It indicates a scheduler defect: every scheduler in this module is
// required to check feasibility before emitting a Start event.
type ErrOversubscribed struct {
	JobID                 int64
	NumRequiredProcessors int
	FreeProcessors        int
	NumProcessors         int
}

func (e *ErrOversubscribed) Error() string {
	return fmt.Sprintf("machine: job %d requires %d processors, only %d of %d free",
		e.JobID, e.NumRequiredProcessors, e.FreeProcessors, e.NumProcessors)
}

// Machine is the validating machine actor: it owns no scheduling
// policy, only enforcement. It is wired to an event.Queue via
// AddHandler before the simulation runs.
type Machine struct {
	numProcessors int
	running       map[int64]*event.Job
	queue         *event.Queue
	logger        logging.Logger
}

// New constructs a Machine with numProcessors processors, registering
// its Start and Termination handlers on q.
func New(numProcessors int, q *event.Queue, opts ...logging.Option) *Machine {
	if numProcessors <= 0 {
		panic("machine: new: numProcessors must be positive")
	}
	o := logging.Resolve(opts...)
	m := &Machine{
		numProcessors: numProcessors,
		running:       make(map[int64]*event.Job),
		queue:         q,
		logger:        o.Logger,
	}
	q.AddHandler(event.KindStart, m.handleStart)
	q.AddHandler(event.KindTermination, m.handleTermination)
	return m
}

// NumProcessors returns the machine's total processor count.
func (m *Machine) NumProcessors() int { return m.numProcessors }

// FreeProcessors returns the number of processors not currently
// occupied by a running job.
func (m *Machine) FreeProcessors() int {
	return m.numProcessors - m.BusyProcessors()
}

// BusyProcessors returns the number of processors currently occupied.
func (m *Machine) BusyProcessors() int {
	busy := 0
	for _, j := range m.running {
		busy += j.NumRequiredProcessors
	}
	return busy
}

// Running reports whether job is currently running on the machine.
func (m *Machine) Running(job *event.Job) bool {
	_, ok := m.running[job.ID]
	return ok
}

func (m *Machine) handleStart(e event.Event) {
	job := e.Job
	if job.StartToRunAtTime != event.UnstartedTime && job.StartToRunAtTime != e.Timestamp {
		// a stale Start event from a superseded scheduling decision.
		logging.Debug(m.logger, "discarding stale start event", logging.F("job_id", job.ID))
		return
	}
	if job.NumRequiredProcessors > m.FreeProcessors() {
		panic(&ErrOversubscribed{
			JobID:                 job.ID,
			NumRequiredProcessors: job.NumRequiredProcessors,
			FreeProcessors:        m.FreeProcessors(),
			NumProcessors:         m.numProcessors,
		})
	}
	m.running[job.ID] = job
	logging.Info(m.logger, "job started", logging.F("job_id", job.ID), logging.F("timestamp", e.Timestamp))
	m.queue.Add(event.NewEvent(event.KindTermination, e.Timestamp+job.ActualRunTime, job))
}

func (m *Machine) handleTermination(e event.Event) {
	job := e.Job
	if _, ok := m.running[job.ID]; !ok {
		panic(fmt.Sprintf("machine: termination: job %d is not running", job.ID))
	}
	delete(m.running, job.ID)
	logging.Info(m.logger, "job terminated", logging.F("job_id", job.ID), logging.F("timestamp", e.Timestamp))
}
