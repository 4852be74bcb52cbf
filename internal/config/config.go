package config

import (
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		Database
		Sync
		Cleanup
		Tasks
		Global
	}

	Database struct {
		Path string
	}

	Sync struct {
		BatchSize          int     // Records per submitted batch (feed driver)
		ErrorRateThreshold float64 // Failed-product ratio that fails a finalized session
		SlowBatchMs        int64   // Batch duration flagged as slow in metrics
		StockCacheTTL      time.Duration
	}

	Cleanup struct {
		Enabled       bool
		Schedule      string // Cron format: "0 3 * * *" = daily at 03:00
		RetentionDays int    // Days to keep terminal sync sessions
	}

	Tasks struct {
		Enabled           bool
		Workers           int
		MaxRetries        int
		RetryDelay        time.Duration
		TaskTimeout       time.Duration
		ReleaseAfter      time.Duration
		CleanupInterval   time.Duration
		RetentionDuration time.Duration
	}

	Global struct {
		ShutdownTimeoutInSeconds int
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("shutdown_timeout_in_seconds", 2)

	// Sync engine defaults
	v.SetDefault("sync_batch_size", 100)
	v.SetDefault("sync_error_rate_threshold", 0.1)
	v.SetDefault("sync_slow_batch_ms", 5000)
	v.SetDefault("sync_stock_cache_ttl", "5m")

	// Session retention defaults
	v.SetDefault("cleanup_enabled", true)
	v.SetDefault("cleanup_schedule", "0 3 * * *") // Daily at 03:00
	v.SetDefault("cleanup_retention_days", 30)

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_max_retries", 3)
	v.SetDefault("task_retry_delay", "1m")
	v.SetDefault("task_timeout", "5m")
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")
	v.SetDefault("task_retention_duration", "24h")

	return &Config{
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Sync: Sync{
			BatchSize:          v.GetInt("SYNC_BATCH_SIZE"),
			ErrorRateThreshold: v.GetFloat64("SYNC_ERROR_RATE_THRESHOLD"),
			SlowBatchMs:        v.GetInt64("SYNC_SLOW_BATCH_MS"),
			StockCacheTTL:      v.GetDuration("SYNC_STOCK_CACHE_TTL"),
		},
		Cleanup: Cleanup{
			Enabled:       v.GetBool("CLEANUP_ENABLED"),
			Schedule:      v.GetString("CLEANUP_SCHEDULE"),
			RetentionDays: v.GetInt("CLEANUP_RETENTION_DAYS"),
		},
		Tasks: Tasks{
			Enabled:           v.GetBool("TASKS_ENABLED"),
			Workers:           v.GetInt("TASK_WORKERS"),
			MaxRetries:        v.GetInt("TASK_MAX_RETRIES"),
			RetryDelay:        v.GetDuration("TASK_RETRY_DELAY"),
			TaskTimeout:       v.GetDuration("TASK_TIMEOUT"),
			ReleaseAfter:      v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval:   v.GetDuration("TASK_CLEANUP_INTERVAL"),
			RetentionDuration: v.GetDuration("TASK_RETENTION_DURATION"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
	}
}
