package sessions

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pablopelardas/dulceysalado-sync/internal/entities"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.SyncSession{}))

	return db
}

func newSession(id string, companyID uint, state entities.SessionState, startedAt time.Time) *entities.SyncSession {
	return &entities.SyncSession{
		ID:        id,
		CompanyID: companyID,
		State:     state,
		StartedAt: startedAt,
	}
}

func TestCreateWithGuard(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	now := time.Now().UTC()

	t.Run("first session passes the guard", func(t *testing.T) {
		err := repo.CreateWithGuard(newSession("s1", 1, entities.SessionStateStarted, now))
		require.NoError(t, err)
	})

	t.Run("second active session is rejected", func(t *testing.T) {
		err := repo.CreateWithGuard(newSession("s2", 1, entities.SessionStateStarted, now))
		assert.ErrorIs(t, err, ErrActiveSessionExists)
	})

	t.Run("processing counts as active", func(t *testing.T) {
		got, err := repo.GetByID("s1")
		require.NoError(t, err)
		got.State = entities.SessionStateProcessing
		require.NoError(t, repo.Save(got))

		err = repo.CreateWithGuard(newSession("s3", 1, entities.SessionStateStarted, now))
		assert.ErrorIs(t, err, ErrActiveSessionExists)
	})

	t.Run("terminal sessions do not block", func(t *testing.T) {
		got, err := repo.GetByID("s1")
		require.NoError(t, err)
		got.State = entities.SessionStateCompleted
		require.NoError(t, repo.Save(got))

		err = repo.CreateWithGuard(newSession("s4", 1, entities.SessionStateStarted, now))
		require.NoError(t, err)
	})

	t.Run("guard is per company", func(t *testing.T) {
		err := repo.CreateWithGuard(newSession("s5", 2, entities.SessionStateStarted, now))
		require.NoError(t, err)
	})
}

func TestCreateWithGuardConcurrent(t *testing.T) {
	// A file-backed database in WAL mode, so the two writers genuinely race
	// instead of sharing one in-memory connection.
	dsn := filepath.Join(t.TempDir(), "sessions.db") + "?_journal=WAL&_busy_timeout=5000"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.SyncSession{}))
	repo := NewRepository(db)

	start := make(chan struct{})
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		id := fmt.Sprintf("racer-%d", i)
		go func() {
			<-start
			results <- repo.CreateWithGuard(newSession(id, 1, entities.SessionStateStarted, time.Now().UTC()))
		}()
	}
	close(start)

	succeeded := 0
	for i := 0; i < 2; i++ {
		if err := <-results; err == nil {
			succeeded++
		}
	}
	assert.Equal(t, 1, succeeded, "exactly one concurrent open may pass the guard")

	var count int64
	require.NoError(t, db.Model(&entities.SyncSession{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestHasActiveSession(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	now := time.Now().UTC()

	active, err := repo.HasActiveSession(1)
	require.NoError(t, err)
	assert.False(t, active)

	require.NoError(t, repo.CreateWithGuard(newSession("s1", 1, entities.SessionStateStarted, now)))

	active, err = repo.HasActiveSession(1)
	require.NoError(t, err)
	assert.True(t, active)

	active, err = repo.HasActiveSession(2)
	require.NoError(t, err)
	assert.False(t, active)
}

func TestSaveTouchesUpdatedAt(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	session := newSession("s1", 1, entities.SessionStateStarted, time.Now().UTC())
	require.NoError(t, repo.CreateWithGuard(session))

	before := session.UpdatedAt
	time.Sleep(2 * time.Millisecond)

	session.BatchesProcessed = 1
	require.NoError(t, repo.Save(session))
	assert.True(t, session.UpdatedAt.After(before))
}

func TestListForCompany(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	base := time.Now().UTC()

	seed := []entities.SyncSession{
		*newSession("a", 1, entities.SessionStateCompleted, base.Add(-3*time.Hour)),
		*newSession("b", 1, entities.SessionStateFailed, base.Add(-2*time.Hour)),
		*newSession("c", 1, entities.SessionStateCompleted, base.Add(-1*time.Hour)),
		*newSession("d", 2, entities.SessionStateCompleted, base),
	}
	for i := range seed {
		require.NoError(t, db.Create(&seed[i]).Error)
	}

	t.Run("most recent first", func(t *testing.T) {
		got, total, err := repo.ListForCompany(1, 1, 10, nil)
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, got, 3)
		assert.Equal(t, "c", got[0].ID)
		assert.Equal(t, "a", got[2].ID)
	})

	t.Run("state filter", func(t *testing.T) {
		state := entities.SessionStateFailed
		got, total, err := repo.ListForCompany(1, 1, 10, &state)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, got, 1)
		assert.Equal(t, "b", got[0].ID)
	})

	t.Run("pagination", func(t *testing.T) {
		got, total, err := repo.ListForCompany(1, 2, 2, nil)
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, got, 1)
		assert.Equal(t, "a", got[0].ID)
	})
}

func TestDeleteTerminalOlderThan(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	old := time.Now().UTC().AddDate(0, 0, -60)
	fresh := time.Now().UTC()
	seed := []entities.SyncSession{
		*newSession("old-done", 1, entities.SessionStateCompleted, old),
		*newSession("old-failed", 1, entities.SessionStateFailed, old),
		*newSession("old-cancelled", 1, entities.SessionStateCancelled, old),
		*newSession("old-running", 1, entities.SessionStateProcessing, old),
		*newSession("fresh-done", 1, entities.SessionStateCompleted, fresh),
	}
	for i := range seed {
		require.NoError(t, db.Create(&seed[i]).Error)
	}

	removed, err := repo.DeleteTerminalOlderThan(time.Now().UTC().AddDate(0, 0, -30))
	require.NoError(t, err)
	assert.Equal(t, int64(3), removed)

	var remaining []entities.SyncSession
	require.NoError(t, db.Order("id").Find(&remaining).Error)
	require.Len(t, remaining, 2)
	assert.Equal(t, "fresh-done", remaining[0].ID)
	assert.Equal(t, "old-running", remaining[1].ID)
}
