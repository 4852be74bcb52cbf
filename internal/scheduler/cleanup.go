// Package scheduler runs the periodic retention sweep for terminal sync
// sessions on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/pablopelardas/dulceysalado-sync/internal/config"
	"github.com/pablopelardas/dulceysalado-sync/internal/tasks"
)

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// CleanupScheduler enqueues session retention cleanups on a cron schedule.
type CleanupScheduler struct {
	cfg     config.Cleanup
	cleaner tasks.SessionCleaner

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

// NewCleanupScheduler creates a new scheduler instance.
func NewCleanupScheduler(cfg config.Cleanup, cleaner tasks.SessionCleaner) *CleanupScheduler {
	return &CleanupScheduler{
		cfg:     cfg,
		cleaner: cleaner,
		cron:    cron.New(cron.WithParser(cronParser)),
	}
}

// Start begins the scheduler if cleanup is enabled.
func (s *CleanupScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if !s.cfg.Enabled {
		log.Printf("Session cleanup scheduler: disabled")
		return nil
	}

	if _, err := cronParser.Parse(s.cfg.Schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.cfg.Schedule, err)
	}

	entryID, err := s.cron.AddFunc(s.cfg.Schedule, func() {
		s.runCleanup()
	})
	if err != nil {
		return fmt.Errorf("failed to schedule cleanup job: %w", err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	log.Printf("Session cleanup scheduler: started with schedule '%s' (retention %d days)",
		s.cfg.Schedule, s.cfg.RetentionDays)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler, waiting for a running sweep to finish.
func (s *CleanupScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	s.cancelFunc = nil

	log.Printf("Session cleanup scheduler: stopped")
}

// RunNow triggers an immediate sweep.
func (s *CleanupScheduler) RunNow() {
	go s.runCleanup()
}

// IsRunning returns whether the scheduler is active.
func (s *CleanupScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRunTime returns when the next sweep will occur.
func (s *CleanupScheduler) GetNextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}

	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

func (s *CleanupScheduler) runCleanup() {
	retentionDays := s.cfg.RetentionDays
	if retentionDays <= 0 {
		retentionDays = 30
	}

	// The cleaner logs its own outcome: a direct engine sweep reports the
	// removed count, a queue-backed cleaner reports it when the task runs.
	if _, err := s.cleaner.CleanupOlderThan(retentionDays); err != nil {
		log.Printf("Session cleanup: failed: %v", err)
		return
	}
	log.Printf("Session cleanup: sweep dispatched (retention %d days)", retentionDays)
}
