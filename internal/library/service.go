// Package library implements the add-book pipeline and the user-facing
// mutations on the collection: one URL in, one persisted record out, with
// AI analysis applied best-effort and repairable later.
package library

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/hsinyu-chen/novelshelf/internal/ai"
	"github.com/hsinyu-chen/novelshelf/internal/entities"
	"github.com/hsinyu-chen/novelshelf/internal/scraper"
	"github.com/hsinyu-chen/novelshelf/internal/textnorm"
)

// Scraper is the page-fetching collaborator.
type Scraper interface {
	Scrape(ctx context.Context, url string) (*scraper.RawMetadata, error)
}

// Store is the keyed record store the pipeline persists into.
type Store interface {
	Upsert(book *entities.Book) error
	GetByID(id string) (*entities.Book, error)
	GetAll() ([]entities.Book, error)
	Delete(id string) error
	ListPendingAnalysis() ([]entities.Book, error)
}

// Service orchestrates scraping, AI enrichment and persistence.
type Service struct {
	scraper  Scraper
	analyzer ai.Analyzer // nil disables AI analysis
	store    Store
	now      func() time.Time
}

func NewService(s Scraper, analyzer ai.Analyzer, store Store) *Service {
	return &Service{scraper: s, analyzer: analyzer, store: store, now: time.Now}
}

// AddBook ingests one URL: scrape, analyze best-effort, persist. A scrape
// or persist failure returns an error and writes nothing; an AI failure
// persists the record with placeholder AI fields for a later repair pass.
func (s *Service) AddBook(ctx context.Context, url string) (*entities.Book, error) {
	log.Printf("Adding book from %s", url)

	raw, err := s.scraper.Scrape(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("scrape %s: %w", url, err)
	}

	tags := entities.TagList{}
	aiSummary := entities.AIPendingSummary
	aiPlot := entities.AIPendingPlot

	if result := s.analyze(ctx, *raw); result != nil {
		tags = entities.TagList(result.Tags)
		aiSummary = result.Summary
		aiPlot = result.Plot
	}

	book := &entities.Book{
		ID:             uuid.NewString(),
		Title:          raw.Title,
		Author:         raw.Author,
		Source:         raw.SourceName,
		URL:            url,
		Status:         entities.StatusUnread,
		Tags:           tags,
		AISummary:      aiSummary,
		OfficialDesc:   raw.Description,
		AIPlotAnalysis: aiPlot,
		AddedDate:      s.now(),
	}

	if err := s.store.Upsert(book); err != nil {
		return nil, fmt.Errorf("persist book %q: %w", book.Title, err)
	}

	log.Printf("Book stored: %s (%s)", book.Title, book.ID)
	return book, nil
}

// analyze runs the AI capability, swallowing all failures.
func (s *Service) analyze(ctx context.Context, raw scraper.RawMetadata) *ai.Analysis {
	if s.analyzer == nil {
		return nil
	}
	result, err := s.analyzer.Analyze(ctx, raw)
	if err != nil {
		log.Printf("AI analysis failed for %q: %v", raw.Title, err)
		return nil
	}
	return result
}

// List returns all books, newest first.
func (s *Service) List() ([]entities.Book, error) {
	return s.store.GetAll()
}

// Get returns one book by id.
func (s *Service) Get(id string) (*entities.Book, error) {
	return s.store.GetByID(id)
}

// UpdateStatus changes a book's reading status, stamping the completion
// date when it first moves to completed.
func (s *Service) UpdateStatus(id string, status entities.ReadingStatus) (*entities.Book, error) {
	book, err := s.store.GetByID(id)
	if err != nil {
		return nil, err
	}

	book.Status = status
	if status == entities.StatusCompleted && book.CompletedDate == nil {
		now := s.now()
		book.CompletedDate = &now
	}

	if err := s.store.Upsert(book); err != nil {
		return nil, err
	}
	return book, nil
}

// SaveReview stores the user's rating and review text.
func (s *Service) SaveReview(id string, rating int, review string) (*entities.Book, error) {
	if rating < 0 || rating > 5 {
		return nil, fmt.Errorf("rating %d out of range 0-5", rating)
	}

	book, err := s.store.GetByID(id)
	if err != nil {
		return nil, err
	}

	book.UserRating = rating
	book.UserReview = review

	if err := s.store.Upsert(book); err != nil {
		return nil, err
	}
	return book, nil
}

// Remove deletes a book.
func (s *Service) Remove(id string) error {
	return s.store.Delete(id)
}

// Repair re-scrapes and re-analyzes one book, overwriting its
// description, tags and AI fields. The record keeps its identity, status
// and user fields.
func (s *Service) Repair(ctx context.Context, id string) (*entities.Book, error) {
	book, err := s.store.GetByID(id)
	if err != nil {
		return nil, err
	}
	if book.URL == "" {
		return nil, fmt.Errorf("book %q has no source url to re-scrape", book.Title)
	}

	raw, err := s.scraper.Scrape(ctx, book.URL)
	if err != nil {
		return nil, fmt.Errorf("scrape %s: %w", book.URL, err)
	}

	// Only accept the re-scrape when it still describes the same work;
	// dead links frequently get recycled into unrelated pages.
	if ok, reason := textnorm.VerifyIdentity(
		textnorm.Work{Title: book.Title, Author: book.Author},
		textnorm.Work{Title: raw.Title, Author: raw.Author},
	); !ok {
		return nil, fmt.Errorf("re-scrape of %q rejected: %s", book.Title, reason)
	}

	book.OfficialDesc = raw.Description
	book.Source = raw.SourceName

	if result := s.analyze(ctx, *raw); result != nil {
		book.Tags = entities.TagList(result.Tags)
		book.AISummary = result.Summary
		book.AIPlotAnalysis = result.Plot
	}

	if err := s.store.Upsert(book); err != nil {
		return nil, err
	}
	return book, nil
}

// RepairStats summarizes one repair sweep.
type RepairStats struct {
	Attempted int `json:"attempted"`
	Repaired  int `json:"repaired"`
	Failed    int `json:"failed"`
}

// RepairPending sweeps every book still carrying placeholder AI fields
// and tries to repair each one. Per-book failures are logged and counted,
// never fatal to the sweep.
func (s *Service) RepairPending(ctx context.Context) (RepairStats, error) {
	pending, err := s.store.ListPendingAnalysis()
	if err != nil {
		return RepairStats{}, fmt.Errorf("list pending books: %w", err)
	}

	stats := RepairStats{Attempted: len(pending)}
	for i := range pending {
		if ctx.Err() != nil {
			return stats, ctx.Err()
		}
		if pending[i].URL == "" {
			stats.Failed++
			continue
		}
		if _, err := s.Repair(ctx, pending[i].ID); err != nil {
			log.Printf("Repair failed for %q: %v", pending[i].Title, err)
			stats.Failed++
			continue
		}
		stats.Repaired++
	}

	log.Printf("Repair sweep finished: %d attempted, %d repaired, %d failed",
		stats.Attempted, stats.Repaired, stats.Failed)
	return stats, nil
}
