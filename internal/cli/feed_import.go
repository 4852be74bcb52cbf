package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/pablopelardas/dulceysalado-sync/internal/config"
	"github.com/pablopelardas/dulceysalado-sync/internal/database"
	"github.com/pablopelardas/dulceysalado-sync/internal/importers"
	"github.com/pablopelardas/dulceysalado-sync/internal/sync"
)

// FeedImportCommand ingests one exported ERP feed file for a company.
type FeedImportCommand struct {
	FeedPath     string
	DatabasePath string
	CompanyID    uint
	PriceListID  uint
	BatchSize    int
	InitiatedBy  string
	DryRun       bool
}

func NewFeedImportCommand() *FeedImportCommand {
	return &FeedImportCommand{}
}

func (cmd *FeedImportCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("feed-import", flag.ExitOnError)

	var companyID, priceListID uint64
	fs.StringVar(&cmd.FeedPath, "file", "", "Path to the exported feed file (required)")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the catalog database file")
	fs.Uint64Var(&companyID, "company", 0, "Company id owning the catalog (required)")
	fs.Uint64Var(&priceListID, "price-list", 1, "Target price list for this run")
	fs.IntVar(&cmd.BatchSize, "batch-size", 100, "Records per submitted batch")
	fs.StringVar(&cmd.InitiatedBy, "initiated-by", "cli", "Operator or system recorded on the audit trail")
	fs.BoolVar(&cmd.DryRun, "dry-run", false, "Parse and report the feed without making changes")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s feed-import -file <path> -company <id> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Ingest an exported ERP feed file into the company's catalog.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s feed-import -file feed-2024-08-01.json -company 7\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s feed-import -file feed.json -company 7 -price-list 2 -batch-size 250\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.FeedPath == "" {
		return fmt.Errorf("required flag -file not provided")
	}
	if companyID == 0 {
		return fmt.Errorf("required flag -company not provided")
	}
	cmd.CompanyID = uint(companyID)
	cmd.PriceListID = uint(priceListID)

	return nil
}

func (cmd *FeedImportCommand) Run() error {
	fmt.Println("Feed Import")
	fmt.Println("===========")

	if _, err := os.Stat(cmd.FeedPath); os.IsNotExist(err) {
		return fmt.Errorf("feed file not found: %s", cmd.FeedPath)
	}

	feed, err := importers.ParseFeedFile(cmd.FeedPath)
	if err != nil {
		return fmt.Errorf("failed to parse feed: %w", err)
	}
	fmt.Printf("File: %s (%d products)\n", cmd.FeedPath, len(feed.Products))

	if cmd.DryRun {
		fmt.Println("DRY RUN MODE - No changes will be made")
		return nil
	}

	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	cfg := config.NewConfig()
	engine := sync.NewEngine(db.DB, nil, sync.Config{
		ErrorRateThreshold: cfg.Sync.ErrorRateThreshold,
		SlowBatchMs:        cfg.Sync.SlowBatchMs,
	})
	pipeline := importers.NewPipeline(engine, cmd.BatchSize)

	result, err := pipeline.RunFile(cmd.CompanyID, cmd.PriceListID, cmd.FeedPath, cmd.InitiatedBy)
	if err != nil {
		return fmt.Errorf("feed import failed: %w", err)
	}

	fmt.Printf("\nSession: %s\n", result.SessionID)
	fmt.Printf("Batches: %d\n", result.Batches)
	fmt.Printf("Created: %d, Updated: %d, Failed: %d\n",
		result.ProductsCreated, result.ProductsUpdated, result.ProductsFailed)
	fmt.Printf("Status: %s\n", result.LogStatus)

	return nil
}
