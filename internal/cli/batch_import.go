package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/hsinyu-chen/novelshelf/internal/ai"
	"github.com/hsinyu-chen/novelshelf/internal/batchimport"
	"github.com/hsinyu-chen/novelshelf/internal/config"
	"github.com/hsinyu-chen/novelshelf/internal/database"
	"github.com/hsinyu-chen/novelshelf/internal/database/books"
	"github.com/hsinyu-chen/novelshelf/internal/scraper"
)

// BatchImportCommand reconciles CSV book lists into the library.
type BatchImportCommand struct {
	GamingCSVPath   string
	BooklistCSVPath string
	DatabasePath    string
	ReportPath      string
	DateStrategy    string
	DisableAI       bool
}

// NewBatchImportCommand creates a new BatchImportCommand
func NewBatchImportCommand() *BatchImportCommand {
	return &BatchImportCommand{}
}

// ParseFlags parses command line flags
func (cmd *BatchImportCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("batch-import", flag.ExitOnError)

	fs.StringVar(&cmd.GamingCSVPath, "gaming", "", "Path to the gaming-forum export CSV")
	fs.StringVar(&cmd.BooklistCSVPath, "booklist", "", "Path to the booklist CSV")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the library database file")
	fs.StringVar(&cmd.ReportPath, "report", config.DefaultReportPath, "Where to write the failure report CSV")
	fs.StringVar(&cmd.DateStrategy, "date-strategy", "", "Completion date backfill for the gaming export: none, fixed or random (overrides IMPORT_DATE_STRATEGY)")
	fs.BoolVar(&cmd.DisableAI, "no-ai", false, "Skip AI analysis even when an API key is configured")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s batch-import [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Import book lists from CSV exports, skipping books already stored.\n")
		fmt.Fprintf(os.Stderr, "Candidates with a URL are re-scraped so stored metadata comes from the\n")
		fmt.Fprintf(os.Stderr, "live page whenever the page still matches the CSV's title and author.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s batch-import -booklist booklist.csv\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s batch-import -gaming gaming.csv -date-strategy random\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.GamingCSVPath == "" && cmd.BooklistCSVPath == "" {
		fs.Usage()
		return fmt.Errorf("at least one of -gaming or -booklist is required")
	}
	return nil
}

// Run executes the command
func (cmd *BatchImportCommand) Run() error {
	cfg := config.NewConfig()
	cfg.Database.Path = cmd.DatabasePath
	if cmd.DateStrategy != "" {
		cfg.Import.DateStrategy = cmd.DateStrategy
	}

	strategy := batchimport.ParseDateStrategy(cfg.Import.DateStrategy)

	var candidates []batchimport.Candidate
	if cmd.GamingCSVPath != "" {
		loaded, err := batchimport.LoadGamingCSV(cmd.GamingCSVPath, strategy)
		if err != nil {
			return fmt.Errorf("load gaming CSV: %w", err)
		}
		fmt.Printf("Loaded %d candidates from %s\n", len(loaded), cmd.GamingCSVPath)
		candidates = append(candidates, loaded...)
	}
	if cmd.BooklistCSVPath != "" {
		loaded, err := batchimport.LoadBooklistCSV(cmd.BooklistCSVPath, strategy)
		if err != nil {
			return fmt.Errorf("load booklist CSV: %w", err)
		}
		fmt.Printf("Loaded %d candidates from %s\n", len(loaded), cmd.BooklistCSVPath)
		candidates = append(candidates, loaded...)
	}

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	sc := scraper.New(scraper.Config{
		Timeout:     cfg.Scraper.Timeout,
		UserAgent:   cfg.Scraper.UserAgent,
		FC2Password: cfg.Scraper.FC2Password,
	})

	var analyzer ai.Analyzer
	if cfg.AI.APIKey != "" && !cmd.DisableAI {
		analyzer = ai.NewGeminiAnalyzer(cfg.AI.APIKey, cfg.AI.Model, float32(cfg.AI.Temperature))
	}

	importer := batchimport.NewImporter(sc, analyzer, books.NewRepository(db.DB), cfg.Import.RequestDelay)

	stats, failures, err := importer.Run(context.Background(), candidates)
	if err != nil {
		return err
	}

	fmt.Printf("Import finished: %d imported, %d skipped by URL, %d skipped by title, %d errors\n",
		stats.Succeeded, stats.SkippedURL, stats.SkippedTitle, stats.Errored)

	if len(failures) > 0 {
		if err := batchimport.WriteFailureReport(cmd.ReportPath, failures); err != nil {
			return fmt.Errorf("write failure report: %w", err)
		}
		fmt.Printf("%d pages could not back up their CSV rows, see %s\n", len(failures), cmd.ReportPath)
	}
	return nil
}
