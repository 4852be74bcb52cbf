package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/pablopelardas/dulceysalado-sync/internal/config"
	"github.com/pablopelardas/dulceysalado-sync/internal/database"
	"github.com/pablopelardas/dulceysalado-sync/internal/sync"
)

// CleanupSessionsCommand runs a one-shot retention sweep over terminal sync
// sessions.
type CleanupSessionsCommand struct {
	DatabasePath  string
	RetentionDays int
}

func NewCleanupSessionsCommand() *CleanupSessionsCommand {
	return &CleanupSessionsCommand{}
}

func (cmd *CleanupSessionsCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("cleanup-sessions", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the catalog database file")
	fs.IntVar(&cmd.RetentionDays, "days", 30, "Delete terminal sessions older than this many days")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s cleanup-sessions [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Delete old terminal sync sessions. Sessions still running are never touched.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.RetentionDays <= 0 {
		return fmt.Errorf("-days must be positive")
	}

	return nil
}

func (cmd *CleanupSessionsCommand) Run() error {
	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	engine := sync.NewEngine(db.DB, nil, sync.Config{})
	removed, err := engine.CleanupOlderThan(cmd.RetentionDays)
	if err != nil {
		return err
	}

	fmt.Printf("Removed %d terminal sessions older than %d days\n", removed, cmd.RetentionDays)
	return nil
}
