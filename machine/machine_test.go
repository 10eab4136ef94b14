package machine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeycumines/go-swfsim/event"
)

func TestMachine_StartThenAutomaticallyTerminates(t *testing.T) {
	q := event.NewQueue()
	m := New(4, q)
	job := &event.Job{ID: 1, NumRequiredProcessors: 4, ActualRunTime: 10, StartToRunAtTime: event.UnstartedTime}

	var terminated bool
	q.AddHandler(event.KindTermination, func(e event.Event) {
		terminated = true
		assert.Equal(t, int64(10), e.Timestamp)
	})

	job.StartToRunAtTime = 0
	q.Add(event.NewEvent(event.KindStart, 0, job))
	q.Advance()
	assert.True(t, m.Running(job))
	assert.Equal(t, 0, m.FreeProcessors())

	q.Advance()
	assert.True(t, terminated)
	assert.False(t, m.Running(job))
	assert.Equal(t, 4, m.FreeProcessors())
}

func TestMachine_DiscardsStaleStartEvent(t *testing.T) {
	q := event.NewQueue()
	m := New(4, q)
	job := &event.Job{ID: 1, NumRequiredProcessors: 4, ActualRunTime: 10, StartToRunAtTime: 5}

	q.Add(event.NewEvent(event.KindStart, 0, job))
	q.Advance()
	assert.False(t, m.Running(job))
}

func TestMachine_OversubscriptionPanics(t *testing.T) {
	q := event.NewQueue()
	New(4, q)
	job := &event.Job{ID: 1, NumRequiredProcessors: 8, ActualRunTime: 10, StartToRunAtTime: 0}
	q.Add(event.NewEvent(event.KindStart, 0, job))
	assert.Panics(t, func() { q.Advance() })
}

func TestMachine_BusyAndFreeProcessors(t *testing.T) {
	q := event.NewQueue()
	m := New(10, q)
	j1 := &event.Job{ID: 1, NumRequiredProcessors: 3, ActualRunTime: 100, StartToRunAtTime: 0}
	j2 := &event.Job{ID: 2, NumRequiredProcessors: 4, ActualRunTime: 100, StartToRunAtTime: 0}
	q.Add(event.NewEvent(event.KindStart, 0, j1))
	q.Add(event.NewEvent(event.KindStart, 0, j2))
	q.Advance()
	q.Advance()
	require.Equal(t, 7, m.BusyProcessors())
	require.Equal(t, 3, m.FreeProcessors())
}
