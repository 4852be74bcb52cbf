package tasks

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSessionCleaner struct {
	gotDays int
	deleted int64
	err     error
}

func (f *fakeSessionCleaner) CleanupOlderThan(days int) (int64, error) {
	f.gotDays = days
	return f.deleted, f.err
}

func TestCleanupSyncSessionsProcessor(t *testing.T) {
	t.Run("passes retention days through", func(t *testing.T) {
		cleaner := &fakeSessionCleaner{deleted: 3}
		processor := CleanupSyncSessionsProcessor(cleaner)

		err := processor(context.Background(), CleanupSyncSessionsTask{RetentionDays: 45})
		require.NoError(t, err)
		assert.Equal(t, 45, cleaner.gotDays)
	})

	t.Run("defaults retention to 30 days", func(t *testing.T) {
		cleaner := &fakeSessionCleaner{}
		processor := CleanupSyncSessionsProcessor(cleaner)

		err := processor(context.Background(), CleanupSyncSessionsTask{})
		require.NoError(t, err)
		assert.Equal(t, 30, cleaner.gotDays)
	})

	t.Run("propagates cleaner errors", func(t *testing.T) {
		cleaner := &fakeSessionCleaner{err: errors.New("db unreachable")}
		processor := CleanupSyncSessionsProcessor(cleaner)

		err := processor(context.Background(), CleanupSyncSessionsTask{RetentionDays: 10})
		assert.Error(t, err)
	})

	t.Run("fails without a cleaner", func(t *testing.T) {
		processor := CleanupSyncSessionsProcessor(nil)
		err := processor(context.Background(), CleanupSyncSessionsTask{})
		assert.Error(t, err)
	})
}
