package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/hsinyu-chen/novelshelf/internal/config"
	"github.com/hsinyu-chen/novelshelf/internal/database"
	"github.com/hsinyu-chen/novelshelf/internal/entrypoint"
)

// RepairCommand re-scrapes and re-analyzes every book still carrying
// AI placeholders.
type RepairCommand struct {
	DatabasePath string
}

// NewRepairCommand creates a new RepairCommand
func NewRepairCommand() *RepairCommand {
	return &RepairCommand{}
}

// ParseFlags parses command line flags
func (cmd *RepairCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("repair", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the library database file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s repair [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Re-scrape and re-analyze books whose AI fields still hold placeholders.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

// Run executes the command
func (cmd *RepairCommand) Run() error {
	cfg := config.NewConfig()
	cfg.Database.Path = cmd.DatabasePath

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	service := entrypoint.BuildService(cfg, db)

	stats, err := service.RepairPending(context.Background())
	if err != nil {
		return err
	}

	fmt.Printf("Repair finished: %d attempted, %d repaired, %d failed\n",
		stats.Attempted, stats.Repaired, stats.Failed)
	return nil
}
