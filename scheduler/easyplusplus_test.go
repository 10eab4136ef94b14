package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeycumines/go-swfsim/event"
)

func TestEasyPlusPlus_PredictedDefaultsToEstimatedForNewUser(t *testing.T) {
	q := event.NewQueue()
	s := NewEasyPlusPlus(10, q)
	j := newJob(1, 0, 100, 100, 10)
	j.UserID = 42
	evs := s.OnSubmission(j, 0)
	require.Len(t, evs, 1)
	assert.Equal(t, int64(100), j.PredictedRunTime)
}

func TestEasyPlusPlus_PredictionTightensAfterTwoCompletions(t *testing.T) {
	q := event.NewQueue()
	s := NewEasyPlusPlus(10, q)

	first := newJob(1, 0, 100, 20, 10)
	first.UserID = 7
	s.OnSubmission(first, 0)
	s.OnTermination(first, 20)

	second := newJob(2, 20, 100, 30, 10)
	second.UserID = 7
	s.OnSubmission(second, 20)
	s.OnTermination(second, 50)

	third := newJob(3, 50, 100, 10, 10)
	third.UserID = 7
	s.OnSubmission(third, 50)
	// average of the user's last two actuals (20, 30) is 25, below the estimate.
	assert.Equal(t, int64(25), third.PredictedRunTime)
}

func TestEasyPlusPlus_PredictionExpiryReattachesTail(t *testing.T) {
	q := event.NewQueue()
	s := NewEasyPlusPlus(10, q)

	first := newJob(1, 0, 100, 10, 10)
	first.UserID = 1
	s.OnSubmission(first, 0)
	s.OnTermination(first, 10)
	second := newJob(2, 10, 100, 10, 10)
	second.UserID = 1
	s.OnSubmission(second, 10)
	s.OnTermination(second, 20)

	// this user's prediction is now tight: average(10,10)=10, well below
	// a 100-estimate job's full reservation.
	third := newJob(3, 20, 100, 50, 10)
	third.UserID = 1
	evs := s.OnSubmission(third, 20)
	require.Len(t, evs, 1)
	assert.Equal(t, int64(10), third.PredictedRunTime)
	assert.Equal(t, int64(10), third.ReservedRunTime)

	// queue should now hold a PredictionExpiry at 20+10=30.
	require.False(t, q.IsEmpty())
	q.Advance() // dispatches PredictionExpiry, reattaching the tail.
	assert.Equal(t, int64(100), third.ReservedRunTime)
}
