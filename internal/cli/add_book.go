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

// AddBookCommand ingests a single book URL from the command line.
type AddBookCommand struct {
	URL          string
	DatabasePath string
}

// NewAddBookCommand creates a new AddBookCommand
func NewAddBookCommand() *AddBookCommand {
	return &AddBookCommand{}
}

// ParseFlags parses command line flags
func (cmd *AddBookCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("add", flag.ExitOnError)

	fs.StringVar(&cmd.URL, "url", "", "Book page URL to scrape and store")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the library database file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s add -url <page-url> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Scrape a book page, analyze it and store it in the library.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s add -url https://www.jjwxc.net/onebook.php?novelid=123\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.URL == "" {
		fs.Usage()
		return fmt.Errorf("-url is required")
	}
	return nil
}

// Run executes the command
func (cmd *AddBookCommand) Run() error {
	cfg := config.NewConfig()
	cfg.Database.Path = cmd.DatabasePath

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	service := entrypoint.BuildService(cfg, db)

	book, err := service.AddBook(context.Background(), cmd.URL)
	if err != nil {
		return err
	}

	fmt.Printf("Added %q by %s (%s)\n", book.Title, book.Author, book.Source)
	return nil
}
