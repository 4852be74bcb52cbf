package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// SessionCleaner provides the ability to delete old terminal sync sessions.
type SessionCleaner interface {
	CleanupOlderThan(days int) (int64, error)
}

// CleanupSyncSessionsTask removes terminal sync sessions older than the
// configured retention period. Non-terminal sessions are left alone.
type CleanupSyncSessionsTask struct {
	RetentionDays int `json:"retention_days"`
}

// Config returns the queue configuration for session cleanup tasks.
func (t CleanupSyncSessionsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "cleanup_sync_sessions",
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// CleanupSyncSessionsProcessor creates a processor function for CleanupSyncSessionsTask.
func CleanupSyncSessionsProcessor(cleaner SessionCleaner) backlite.QueueProcessor[CleanupSyncSessionsTask] {
	return func(ctx context.Context, task CleanupSyncSessionsTask) error {
		if cleaner == nil {
			return fmt.Errorf("session cleaner not configured")
		}

		retentionDays := task.RetentionDays
		if retentionDays <= 0 {
			retentionDays = 30
		}

		deleted, err := cleaner.CleanupOlderThan(retentionDays)
		if err != nil {
			return fmt.Errorf("cleanup sync sessions: %w", err)
		}

		log.Printf("[TASK] Cleaned up %d sync sessions older than %d days", deleted, retentionDays)
		return nil
	}
}

// NewCleanupSyncSessionsQueue creates a backlite queue for session cleanup tasks.
func NewCleanupSyncSessionsQueue(cleaner SessionCleaner) backlite.Queue {
	return backlite.NewQueue(CleanupSyncSessionsProcessor(cleaner))
}
