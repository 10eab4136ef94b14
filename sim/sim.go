// Package sim wires the event queue, machine, and scheduler together and
// drives the simulation to exhaustion.
package sim

import (
	"github.com/joeycumines/go-swfsim/event"
	"github.com/joeycumines/go-swfsim/logging"
	"github.com/joeycumines/go-swfsim/machine"
	"github.com/joeycumines/go-swfsim/scheduler"
)

// Option configures a Simulator.
type Option = logging.Option

// WithLogger sets the Logger used for per-event bookkeeping.
var WithLogger = logging.WithLogger

// NewScheduler builds a scheduler.Scheduler against an already-constructed
// event.Queue. Most schedulers ignore q; EASY++ registers its
// PredictionExpiry handler on it at construction time.
type NewScheduler func(q *event.Queue) scheduler.Scheduler

// Simulator assembles one run of the discrete-event simulation: every
// submitted job produces a Submission event; the
// scheduler reacts to Submission/Termination (and, for EASY++,
// PredictionExpiry) by emitting Start events; the machine validates and
// executes Start events and self-schedules their Termination.
type Simulator struct {
	queue     *event.Queue
	machine   *machine.Machine
	scheduler scheduler.Scheduler

	jobs     []*event.Job
	finished []*event.Job
	logger   logging.Logger
}

// New constructs a Simulator for the given jobs, machine capacity, and
// scheduler factory. Jobs are not yet added to the queue; call Run to
// execute the simulation.
func New(jobs []*event.Job, numProcessors int, newScheduler NewScheduler, opts ...Option) *Simulator {
	o := logging.Resolve(opts...)

	q := event.NewQueue()
	m := machine.New(numProcessors, q, logging.WithLogger(o.Logger))
	s := newScheduler(q)

	sim := &Simulator{
		queue:     q,
		machine:   m,
		scheduler: s,
		jobs:      jobs,
		logger:    o.Logger,
	}

	q.AddHandler(event.KindSubmission, sim.handleSubmission)
	q.AddHandler(event.KindTermination, sim.handleTermination)

	return sim
}

// Terminated returns every job that has finished, in the order their
// Termination events were dispatched.
func (s *Simulator) Terminated() []*event.Job {
	return s.finished
}

// Run seeds one Submission event per job and advances the queue until it
// is empty. It is a programming error to call Run twice on the same
// Simulator.
func (s *Simulator) Run() {
	for _, job := range s.jobs {
		s.queue.Add(event.NewEvent(event.KindSubmission, job.SubmitTime, job))
	}
	for !s.queue.IsEmpty() {
		s.queue.Advance()
	}
	if len(s.finished) != len(s.jobs) {
		panic("sim: run: event queue exhausted with jobs still unterminated")
	}
}

func (s *Simulator) handleSubmission(e event.Event) {
	logging.Debug(s.logger, "submission", logging.F("job", e.Job.ID), logging.F("time", e.Timestamp))
	for _, ev := range s.scheduler.OnSubmission(e.Job, e.Timestamp) {
		s.queue.Add(ev)
	}
}

func (s *Simulator) handleTermination(e event.Event) {
	logging.Debug(s.logger, "termination", logging.F("job", e.Job.ID), logging.F("time", e.Timestamp))
	s.finished = append(s.finished, e.Job)
	for _, ev := range s.scheduler.OnTermination(e.Job, e.Timestamp) {
		s.queue.Add(ev)
	}
}
