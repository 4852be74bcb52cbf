package entrypoint

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pablopelardas/dulceysalado-sync/internal/cache"
	"github.com/pablopelardas/dulceysalado-sync/internal/config"
	"github.com/pablopelardas/dulceysalado-sync/internal/database"
	"github.com/pablopelardas/dulceysalado-sync/internal/scheduler"
	"github.com/pablopelardas/dulceysalado-sync/internal/sync"
	"github.com/pablopelardas/dulceysalado-sync/internal/tasks"
)

// Run starts the worker: it wires the database, the sync engine, the task
// queue and the cleanup scheduler, then blocks until SIGINT/SIGTERM.
func Run(cfg *config.Config, version string) {
	log.Printf("Starting catalog sync worker v%s", version)

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	stockCache := cache.NewStockCache(cfg.Sync.StockCacheTTL)
	engine := sync.NewEngine(db.DB, stockCache, sync.Config{
		ErrorRateThreshold: cfg.Sync.ErrorRateThreshold,
		SlowBatchMs:        cfg.Sync.SlowBatchMs,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var taskClient *tasks.Client
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.Config{
			Workers:           cfg.Tasks.Workers,
			MaxRetries:        cfg.Tasks.MaxRetries,
			RetryDelay:        cfg.Tasks.RetryDelay,
			TaskTimeout:       cfg.Tasks.TaskTimeout,
			ReleaseAfter:      cfg.Tasks.ReleaseAfter,
			CleanupInterval:   cfg.Tasks.CleanupInterval,
			RetentionDuration: cfg.Tasks.RetentionDuration,
		})
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer taskClient.Close()

		taskClient.Register(tasks.NewCleanupSyncSessionsQueue(engine))
		go taskClient.Start(ctx)
	}

	cleanupScheduler := scheduler.NewCleanupScheduler(cfg.Cleanup, cleanerFor(taskClient, engine))
	if err := cleanupScheduler.Start(ctx); err != nil {
		log.Fatalf("Failed to start cleanup scheduler: %v", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second
	log.Printf("Shutting down worker, waiting up to %v", timeout)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
	defer shutdownCancel()

	cleanupScheduler.Stop()
	if taskClient != nil {
		taskClient.Stop(shutdownCtx)
	}

	log.Println("Worker exiting")
}

// enqueueCleaner routes scheduled sweeps through the task queue so they get
// retries and run bookkeeping. Without a queue the engine is called directly.
type enqueueCleaner struct {
	client *tasks.Client
}

func (c *enqueueCleaner) CleanupOlderThan(days int) (int64, error) {
	if _, err := c.client.Add(tasks.CleanupSyncSessionsTask{RetentionDays: days}).Save(); err != nil {
		return 0, err
	}
	// The sweep runs asynchronously; the processor logs the removed count.
	return 0, nil
}

func cleanerFor(client *tasks.Client, engine *sync.Engine) tasks.SessionCleaner {
	if client != nil {
		return &enqueueCleaner{client: client}
	}
	return engine
}
