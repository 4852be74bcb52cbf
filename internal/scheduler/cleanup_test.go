package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pablopelardas/dulceysalado-sync/internal/config"
)

type fakeCleaner struct {
	mu    sync.Mutex
	calls []int
	err   error
}

func (f *fakeCleaner) CleanupOlderThan(days int) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, days)
	return 2, f.err
}

func (f *fakeCleaner) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func TestCleanupSchedulerStartStop(t *testing.T) {
	cleaner := &fakeCleaner{}
	s := NewCleanupScheduler(config.Cleanup{
		Enabled:       true,
		Schedule:      "0 3 * * *",
		RetentionDays: 30,
	}, cleaner)

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())

	next := s.GetNextRunTime()
	require.NotNil(t, next)
	assert.True(t, next.After(time.Now()))

	// Starting twice is a no-op.
	require.NoError(t, s.Start(context.Background()))

	s.Stop()
	assert.False(t, s.IsRunning())
	assert.Nil(t, s.GetNextRunTime())

	// Stopping twice is a no-op.
	s.Stop()
}

func TestCleanupSchedulerDisabled(t *testing.T) {
	s := NewCleanupScheduler(config.Cleanup{Enabled: false}, &fakeCleaner{})

	require.NoError(t, s.Start(context.Background()))
	assert.False(t, s.IsRunning())
}

func TestCleanupSchedulerInvalidSchedule(t *testing.T) {
	s := NewCleanupScheduler(config.Cleanup{
		Enabled:  true,
		Schedule: "not a schedule",
	}, &fakeCleaner{})

	err := s.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid cron schedule")
}

func TestCleanupSchedulerStopsOnContextCancel(t *testing.T) {
	s := NewCleanupScheduler(config.Cleanup{
		Enabled:       true,
		Schedule:      "0 3 * * *",
		RetentionDays: 30,
	}, &fakeCleaner{})

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Start(ctx))
	cancel()

	require.Eventually(t, func() bool {
		return !s.IsRunning()
	}, time.Second, 10*time.Millisecond)
}

func TestRunCleanup(t *testing.T) {
	t.Run("passes configured retention", func(t *testing.T) {
		cleaner := &fakeCleaner{}
		s := NewCleanupScheduler(config.Cleanup{RetentionDays: 45}, cleaner)

		s.runCleanup()
		require.Equal(t, 1, cleaner.callCount())
		assert.Equal(t, 45, cleaner.calls[0])
	})

	t.Run("defaults retention when unset", func(t *testing.T) {
		cleaner := &fakeCleaner{}
		s := NewCleanupScheduler(config.Cleanup{}, cleaner)

		s.runCleanup()
		require.Equal(t, 1, cleaner.callCount())
		assert.Equal(t, 30, cleaner.calls[0])
	})

	t.Run("cleaner failure is swallowed", func(t *testing.T) {
		cleaner := &fakeCleaner{err: errors.New("db locked")}
		s := NewCleanupScheduler(config.Cleanup{RetentionDays: 30}, cleaner)

		s.runCleanup()
		assert.Equal(t, 1, cleaner.callCount())
	})
}
