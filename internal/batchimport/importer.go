package batchimport

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/hsinyu-chen/novelshelf/internal/ai"
	"github.com/hsinyu-chen/novelshelf/internal/entities"
	"github.com/hsinyu-chen/novelshelf/internal/scraper"
	"github.com/hsinyu-chen/novelshelf/internal/textnorm"
)

// urlKeepMarkers lists URL fragments that are kept on the record even
// when the page could not be verified. These hosts are known to serve
// the right book behind a password or anti-bot wall, so the link is
// still worth keeping.
var urlKeepMarkers = []string{"egg19910707", "blog.fc2.com"}

// Scraper fetches metadata for a candidate's URL.
type Scraper interface {
	Scrape(ctx context.Context, pageURL string) (*scraper.RawMetadata, error)
}

// Store is the persistence surface the importer needs.
type Store interface {
	Upsert(book *entities.Book) error
	GetAll() ([]entities.Book, error)
}

// Stats summarizes one import run.
type Stats struct {
	Succeeded    int
	SkippedURL   int
	SkippedTitle int
	Errored      int
}

// FailureEntry records one candidate whose page could not back up the
// CSV data. The candidate is still inserted from its CSV fields; the
// entry exists so the owner can fix the link later.
type FailureEntry struct {
	Title  string
	URL    string
	Reason string
}

// Importer reconciles CSV candidates against the store.
type Importer struct {
	scraper  Scraper
	analyzer ai.Analyzer // nil disables AI enrichment
	store    Store

	requestDelay time.Duration
	now          func() time.Time
	sleep        func(time.Duration)
}

// NewImporter wires an importer. analyzer may be nil.
func NewImporter(sc Scraper, analyzer ai.Analyzer, store Store, requestDelay time.Duration) *Importer {
	return &Importer{
		scraper:      sc,
		analyzer:     analyzer,
		store:        store,
		requestDelay: requestDelay,
		now:          time.Now,
		sleep:        time.Sleep,
	}
}

// identityKey builds the duplicate-detection key for a title/author
// pair. Aggressive title normalization folds bracketed decorations and
// status suffixes so re-listed editions of the same book collide.
func identityKey(title, author string) string {
	return textnorm.Normalize(title, true) + "|" + textnorm.Normalize(author, false)
}

// Run reconciles candidates against the store. Candidates whose URL or
// identity key already exists are skipped; the rest are refined by
// scraping, optionally enriched and inserted. Newly inserted records
// join the duplicate sets immediately so repeated rows within one batch
// collapse to a single record.
func (im *Importer) Run(ctx context.Context, candidates []Candidate) (Stats, []FailureEntry, error) {
	existing, err := im.store.GetAll()
	if err != nil {
		return Stats{}, nil, fmt.Errorf("load existing books: %w", err)
	}

	urls := make(map[string]bool)
	keys := make(map[string]bool)
	for _, b := range existing {
		if b.URL != "" {
			urls[b.URL] = true
		}
		keys[identityKey(b.Title, b.Author)] = true
	}

	var stats Stats
	var failures []FailureEntry
	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return stats, failures, err
		}
		if c.URL != "" && urls[c.URL] {
			log.Printf("batch import: skip %q, url already stored", c.Title)
			stats.SkippedURL++
			continue
		}
		key := identityKey(c.Title, c.Author)
		if keys[key] {
			log.Printf("batch import: skip %q, title/author already stored", c.Title)
			stats.SkippedTitle++
			continue
		}

		book, failure := im.buildBook(ctx, c)
		if failure != nil {
			failures = append(failures, *failure)
		}
		if err := im.store.Upsert(book); err != nil {
			log.Printf("batch import: persist %q failed: %v", c.Title, err)
			stats.Errored++
			continue
		}
		stats.Succeeded++
		if book.URL != "" {
			urls[book.URL] = true
		}
		keys[key] = true
		keys[identityKey(book.Title, book.Author)] = true
	}
	return stats, failures, nil
}

// buildBook turns one candidate into a record, scraping its URL for
// better metadata when possible. It always returns a book; the failure
// entry is non-nil when the page could not confirm the CSV identity.
func (im *Importer) buildBook(ctx context.Context, c Candidate) (*entities.Book, *FailureEntry) {
	var meta *scraper.RawMetadata
	var failure *FailureEntry
	verified := false

	switch {
	case c.URL == "":
		// Nothing to refine from.
	case scraper.IsUnsupportedHost(c.URL):
		failure = &FailureEntry{Title: c.Title, URL: c.URL, Reason: "不支援的來源網站"}
	default:
		scraped, err := im.scraper.Scrape(ctx, c.URL)
		if err != nil {
			failure = &FailureEntry{Title: c.Title, URL: c.URL, Reason: fmt.Sprintf("抓取失敗: %v", err)}
		} else {
			ok, reason := textnorm.VerifyIdentity(
				textnorm.Work{Title: c.Title, Author: c.Author},
				textnorm.Work{Title: scraped.Title, Author: scraped.Author},
			)
			if ok {
				meta = scraped
				verified = true
			} else {
				failure = &FailureEntry{Title: c.Title, URL: c.URL, Reason: reason}
			}
		}
	}

	book := &entities.Book{
		ID:        uuid.NewString(),
		Title:     textnorm.ToTraditional(c.Title),
		Author:    textnorm.ToTraditional(c.Author),
		Status:    c.Status,
		AddedDate: im.now(),
	}
	if c.CompletedDate != nil {
		d := *c.CompletedDate
		book.CompletedDate = &d
		book.AddedDate = d
	}
	book.UserRating = c.UserRating

	if verified {
		if meta.Title != scraper.UnknownTitle {
			book.Title = meta.Title
		}
		if meta.Author != scraper.UnknownAuthor {
			book.Author = meta.Author
		}
		book.Source = meta.SourceName
		book.URL = c.URL
	} else {
		book.Source = SourceCSVImport
		if urlIsKeepable(c.URL) {
			book.Source = SourceEggKept
			book.URL = c.URL
			// The link itself is trusted; drop the failure entry.
			failure = nil
		}
	}

	book.OfficialDesc = scraper.NoDescription
	switch c.OriginalSource {
	case SourceGamingCSV:
		// The gaming export's text column is the owner's review, not a
		// synopsis.
		book.UserReview = c.DescriptionText
		if verified && meta.Description != scraper.NoDescription {
			book.OfficialDesc = meta.Description
		}
	default:
		if c.DescriptionText != "" {
			book.OfficialDesc = c.DescriptionText
		}
		if verified && meta.Description != scraper.NoDescription {
			book.OfficialDesc = meta.Description
		}
	}

	im.enrich(ctx, c, book)
	return book, failure
}

// enrich runs AI analysis when there is enough text to prompt with,
// and settles tags and placeholders either way.
func (im *Importer) enrich(ctx context.Context, c Candidate, book *entities.Book) {
	tags := append([]string(nil), c.Tags...)

	promptText := book.OfficialDesc
	if promptText == scraper.NoDescription {
		promptText = ""
	}
	promptText += book.UserReview

	var analysis *ai.Analysis
	if im.analyzer != nil && utf8.RuneCountInString(promptText) > ai.MinPromptLength {
		if im.requestDelay > 0 {
			im.sleep(im.requestDelay)
		}
		meta := scraper.RawMetadata{
			Title:       book.Title,
			Author:      book.Author,
			Description: strings.TrimSpace(promptText),
		}
		a, err := im.analyzer.Analyze(ctx, meta)
		if err != nil {
			log.Printf("batch import: AI analysis for %q failed: %v", book.Title, err)
		} else {
			analysis = a
		}
	}

	if analysis != nil {
		book.AISummary = analysis.Summary
		book.AIPlotAnalysis = analysis.Plot
		tags = append(tags, analysis.Tags...)
	} else {
		book.AISummary = entities.AIBacklogSummary
		book.AIPlotAnalysis = entities.AIInsufficientPlot
	}

	seen := make(map[string]bool)
	merged := entities.TagList{}
	for _, t := range tags {
		t = textnorm.ToTraditional(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		merged = append(merged, t)
	}
	book.Tags = merged
}

func urlIsKeepable(pageURL string) bool {
	for _, marker := range urlKeepMarkers {
		if strings.Contains(pageURL, marker) {
			return true
		}
	}
	return false
}
