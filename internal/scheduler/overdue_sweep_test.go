package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshelf/openshelf/internal/entities"
)

type fakeSweeper struct {
	mu      sync.Mutex
	calls   int
	overdue []entities.Loan
}

func (f *fakeSweeper) SweepOverdue(now time.Time) ([]entities.Loan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.overdue, nil
}

func (f *fakeSweeper) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestScheduler_RunNow(t *testing.T) {
	sweeper := &fakeSweeper{overdue: []entities.Loan{{ID: 1}}}
	s := NewOverdueSweepScheduler(sweeper, nil, "0 6 * * *")

	s.RunNow()

	require.Eventually(t, func() bool {
		return sweeper.callCount() == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestScheduler_StartStop(t *testing.T) {
	sweeper := &fakeSweeper{}
	s := NewOverdueSweepScheduler(sweeper, nil, "0 6 * * *")

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())

	next := s.GetNextRunTime()
	require.NotNil(t, next)
	assert.True(t, next.After(time.Now()))

	s.Stop()
	assert.False(t, s.IsRunning())
	assert.Nil(t, s.GetNextRunTime())
}

func TestScheduler_InvalidSchedule(t *testing.T) {
	s := NewOverdueSweepScheduler(&fakeSweeper{}, nil, "not a schedule")

	err := s.Start(context.Background())
	assert.Error(t, err)
	assert.False(t, s.IsRunning())
}
