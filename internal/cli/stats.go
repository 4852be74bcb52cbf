package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/pablopelardas/dulceysalado-sync/internal/config"
	"github.com/pablopelardas/dulceysalado-sync/internal/database"
	"github.com/pablopelardas/dulceysalado-sync/internal/sync"
)

// StatsCommand prints a company's sync statistics from the audit trail.
type StatsCommand struct {
	DatabasePath string
	CompanyID    uint
	Days         int
	RecentRuns   int
}

func NewStatsCommand() *StatsCommand {
	return &StatsCommand{}
}

func (cmd *StatsCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)

	var companyID uint64
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the catalog database file")
	fs.Uint64Var(&companyID, "company", 0, "Company id (required)")
	fs.IntVar(&cmd.Days, "days", 30, "Trailing window in days")
	fs.IntVar(&cmd.RecentRuns, "recent", 5, "How many recent runs to list")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s stats -company <id> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Show sync run statistics for a company.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if companyID == 0 {
		return fmt.Errorf("required flag -company not provided")
	}
	cmd.CompanyID = uint(companyID)

	return nil
}

func (cmd *StatsCommand) Run() error {
	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	engine := sync.NewEngine(db.DB, nil, sync.Config{})

	stats, err := engine.CompanyStats(cmd.CompanyID, cmd.Days)
	if err != nil {
		return fmt.Errorf("failed to load stats: %w", err)
	}

	fmt.Printf("Sync stats for company %d (last %d days)\n", cmd.CompanyID, cmd.Days)
	fmt.Println("=========================================")
	fmt.Printf("Total runs:       %d\n", stats.TotalRuns)
	fmt.Printf("Products created: %d\n", stats.ProductsCreated)
	fmt.Printf("Products updated: %d\n", stats.ProductsUpdated)
	fmt.Printf("Errors:           %d\n", stats.ErrorCount)
	fmt.Printf("Avg duration:     %.0fms\n", stats.AvgDurationMs)
	fmt.Printf("Success rate:     %.1f%%\n", stats.SuccessRate*100)
	if stats.LastRunAt != nil {
		fmt.Printf("Last run:         %s\n", stats.LastRunAt.Format("2006-01-02 15:04:05 MST"))
	}

	if cmd.RecentRuns > 0 {
		logs, err := engine.RecentLogs(cmd.CompanyID, cmd.RecentRuns)
		if err != nil {
			return fmt.Errorf("failed to load recent runs: %w", err)
		}
		if len(logs) > 0 {
			fmt.Println("\nRecent runs:")
			for _, l := range logs {
				fmt.Printf("  %s  %-12s  created=%d updated=%d errors=%d (%dms)  %s\n",
					l.ProcessedAt.Format("2006-01-02 15:04"), l.Status,
					l.ProductsCreated, l.ProductsUpdated, l.ErrorCount,
					l.ProcessingTimeMs, l.SourceFileName)
			}
		}
	}

	return nil
}
