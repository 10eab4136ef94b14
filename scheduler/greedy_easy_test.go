package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGreedyEASY_BackfillsLikeEASYUnderDefaults(t *testing.T) {
	s := NewGreedyEASY(90, nil, nil)
	a := newJob(1, 0, 20, 20, 80)
	b := newJob(2, 0, 20, 20, 80)
	c := newJob(3, 0, 5, 5, 10)

	s.OnSubmission(a, 0)
	evs := s.OnSubmission(b, 0)
	assert.Empty(t, evs)

	evs = s.OnSubmission(c, 0)
	require.Len(t, evs, 1)
	assert.Equal(t, c, evs[0].Job)
}

func TestGreedyEASY_PicksHigherScoringOrderWhenOnlyOneFits(t *testing.T) {
	s := NewGreedyEASY(100, nil, nil)
	blocker := newJob(1, 0, 20, 20, 90)
	filler := newJob(2, 0, 5, 5, 10)
	head := newJob(3, 0, 10, 10, 50)
	small := newJob(4, 1, 10, 10, 3) // cheap: small score contribution
	big := newJob(5, 2, 10, 10, 8)   // bigger score contribution (size x time)

	s.OnSubmission(blocker, 0)
	s.OnSubmission(filler, 0)
	evs := s.OnSubmission(head, 0)
	assert.Empty(t, evs) // head waits for the blocker: shadow time 20
	evs = s.OnSubmission(small, 1)
	assert.Empty(t, evs) // machine fully busy until the filler ends
	evs = s.OnSubmission(big, 2)
	assert.Empty(t, evs)

	// the filler ends at 5, leaving 10 free until 20: small (3) and big
	// (8) each fit, but not together. Submit-time-descending puts big
	// first and scores 8x10=80; every other default order puts small
	// first and scores 3x10=30, so big's order is committed.
	evs = s.OnTermination(filler, 5)
	require.Len(t, evs, 1)
	assert.Equal(t, big, evs[0].Job)
	assert.Equal(t, int64(5), big.StartToRunAtTime)
	assert.False(t, small.Started())
}
