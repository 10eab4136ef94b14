package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestEASY_BackfillSuccess: a small job backfills ahead of a blocked
// second job without delaying it.
func TestEASY_BackfillSuccess(t *testing.T) {
	s := NewEASY(90)
	a := newJob(1, 0, 20, 20, 80)
	b := newJob(2, 0, 20, 20, 80)
	c := newJob(3, 0, 5, 5, 10)

	evs := s.OnSubmission(a, 0)
	require.Len(t, evs, 1)
	assert.Equal(t, int64(0), a.StartToRunAtTime)

	evs = s.OnSubmission(b, 0)
	assert.Empty(t, evs) // B can't start now (A has 80/90 busy)

	evs = s.OnSubmission(c, 0)
	require.Len(t, evs, 1)
	assert.Equal(t, c, evs[0].Job)
	assert.Equal(t, int64(0), c.StartToRunAtTime) // C backfills without delaying B's shadow

	evs = s.OnTermination(a, 20)
	require.Len(t, evs, 1)
	assert.Equal(t, b, evs[0].Job)
	assert.Equal(t, int64(20), b.StartToRunAtTime)
}

func TestEASY_BackfillRejectedWhenItWouldDelayShadow(t *testing.T) {
	s := NewEASY(100)
	a := newJob(1, 0, 20, 20, 80)
	s.OnSubmission(a, 0)
	b := newJob(2, 0, 20, 20, 90)
	s.OnSubmission(b, 0) // B's shadow is 20: once A frees, 100 free >= 90.

	// D fits in the 20 free now, but still running past t=20 would leave
	// only 85 free (100-15), not enough for B, pushing B's shadow to 30.
	d := newJob(4, 0, 30, 30, 15)
	evs := s.OnSubmission(d, 0)
	assert.Empty(t, evs)
	assert.Equal(t, int64(-1), d.StartToRunAtTime)
}
