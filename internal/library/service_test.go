package library

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/hsinyu-chen/novelshelf/internal/ai"
	"github.com/hsinyu-chen/novelshelf/internal/entities"
	"github.com/hsinyu-chen/novelshelf/internal/scraper"
)

type mockScraper struct {
	result *scraper.RawMetadata
	err    error
	calls  int
}

func (m *mockScraper) Scrape(ctx context.Context, url string) (*scraper.RawMetadata, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	md := *m.result
	md.URL = url
	return &md, nil
}

type mockAnalyzer struct {
	result *ai.Analysis
	err    error
}

func (m *mockAnalyzer) Analyze(ctx context.Context, raw scraper.RawMetadata) (*ai.Analysis, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

type mockStore struct {
	books     map[string]*entities.Book
	upsertErr error
	upserts   int
}

func newMockStore() *mockStore {
	return &mockStore{books: map[string]*entities.Book{}}
}

func (m *mockStore) Upsert(book *entities.Book) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.upserts++
	clone := *book
	m.books[book.ID] = &clone
	return nil
}

func (m *mockStore) GetByID(id string) (*entities.Book, error) {
	book, ok := m.books[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *book
	return &clone, nil
}

func (m *mockStore) GetAll() ([]entities.Book, error) {
	var all []entities.Book
	for _, b := range m.books {
		all = append(all, *b)
	}
	return all, nil
}

func (m *mockStore) Delete(id string) error {
	delete(m.books, id)
	return nil
}

func (m *mockStore) ListPendingAnalysis() ([]entities.Book, error) {
	var pending []entities.Book
	for _, b := range m.books {
		if b.NeedsAnalysis() {
			pending = append(pending, *b)
		}
	}
	return pending, nil
}

var scrapedMeta = scraper.RawMetadata{
	Title:       "鎮魂",
	Author:      "priest",
	Description: "沉默寡言的大學教授與特別調查處處長聯手辦案的故事",
	SourceName:  "晉江文學城",
}

func TestAddBookSuccess(t *testing.T) {
	store := newMockStore()
	svc := NewService(
		&mockScraper{result: &scrapedMeta},
		&mockAnalyzer{result: &ai.Analysis{Tags: []string{"懸疑", "都市"}, Summary: "好看", Plot: "辦案"}},
		store,
	)

	book, err := svc.AddBook(context.Background(), "https://www.jjwxc.net/onebook.php?novelid=1")
	require.NoError(t, err)

	assert.NotEmpty(t, book.ID)
	assert.Equal(t, "鎮魂", book.Title)
	assert.Equal(t, "priest", book.Author)
	assert.Equal(t, entities.StatusUnread, book.Status)
	assert.Equal(t, entities.TagList{"懸疑", "都市"}, book.Tags)
	assert.Equal(t, "好看", book.AISummary)
	assert.False(t, book.AddedDate.IsZero())
	assert.Equal(t, 1, store.upserts)
}

func TestAddBookScrapeFailureWritesNothing(t *testing.T) {
	store := newMockStore()
	svc := NewService(&mockScraper{err: errors.New("connection refused")}, nil, store)

	book, err := svc.AddBook(context.Background(), "https://example.com/book/1")
	assert.Nil(t, book)
	assert.Error(t, err)
	assert.Equal(t, 0, store.upserts)
}

func TestAddBookAIFailureStoresPlaceholders(t *testing.T) {
	store := newMockStore()
	svc := NewService(
		&mockScraper{result: &scrapedMeta},
		&mockAnalyzer{err: errors.New("model timeout")},
		store,
	)

	book, err := svc.AddBook(context.Background(), "https://example.com/book/1")
	require.NoError(t, err)

	assert.Equal(t, entities.AIPendingSummary, book.AISummary)
	assert.Equal(t, entities.AIPendingPlot, book.AIPlotAnalysis)
	assert.Empty(t, book.Tags)
	assert.Equal(t, 1, store.upserts)
	assert.True(t, book.NeedsAnalysis())
}

func TestAddBookNilAnalyzer(t *testing.T) {
	store := newMockStore()
	svc := NewService(&mockScraper{result: &scrapedMeta}, nil, store)

	book, err := svc.AddBook(context.Background(), "https://example.com/book/1")
	require.NoError(t, err)
	assert.Equal(t, entities.AIPendingSummary, book.AISummary)
}

func TestAddBookPersistFailure(t *testing.T) {
	store := newMockStore()
	store.upsertErr = errors.New("disk full")
	svc := NewService(&mockScraper{result: &scrapedMeta}, nil, store)

	book, err := svc.AddBook(context.Background(), "https://example.com/book/1")
	assert.Nil(t, book)
	assert.Error(t, err)
	assert.Empty(t, store.books)
}

func TestUpdateStatusStampsCompletedDate(t *testing.T) {
	store := newMockStore()
	store.books["id-1"] = &entities.Book{ID: "id-1", Title: "鎮魂", Status: entities.StatusReading}
	svc := NewService(nil, nil, store)

	book, err := svc.UpdateStatus("id-1", entities.StatusCompleted)
	require.NoError(t, err)
	require.NotNil(t, book.CompletedDate)
	first := *book.CompletedDate

	// Completing again keeps the original date.
	book, err = svc.UpdateStatus("id-1", entities.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, first, *book.CompletedDate)
}

func TestSaveReviewValidatesRating(t *testing.T) {
	store := newMockStore()
	store.books["id-1"] = &entities.Book{ID: "id-1"}
	svc := NewService(nil, nil, store)

	_, err := svc.SaveReview("id-1", 6, "太好看了")
	assert.Error(t, err)

	book, err := svc.SaveReview("id-1", 5, "太好看了")
	require.NoError(t, err)
	assert.Equal(t, 5, book.UserRating)
	assert.Equal(t, "太好看了", book.UserReview)
}

func TestRepairOverwritesAIFields(t *testing.T) {
	store := newMockStore()
	store.books["id-1"] = &entities.Book{
		ID:        "id-1",
		Title:     "鎮魂",
		Author:    "priest",
		URL:       "https://www.jjwxc.net/onebook.php?novelid=1",
		AISummary: entities.AIBacklogSummary,
		Status:    entities.StatusCompleted,
	}
	svc := NewService(
		&mockScraper{result: &scrapedMeta},
		&mockAnalyzer{result: &ai.Analysis{Tags: []string{"懸疑"}, Summary: "新短評", Plot: "新摘要"}},
		store,
	)

	book, err := svc.Repair(context.Background(), "id-1")
	require.NoError(t, err)
	assert.Equal(t, "新短評", book.AISummary)
	assert.Equal(t, "新摘要", book.AIPlotAnalysis)
	assert.Equal(t, entities.TagList{"懸疑"}, book.Tags)
	// User state survives the repair.
	assert.Equal(t, entities.StatusCompleted, book.Status)
}

func TestRepairRejectsMismatchedPage(t *testing.T) {
	store := newMockStore()
	store.books["id-1"] = &entities.Book{
		ID:     "id-1",
		Title:  "完全不同的另一本書",
		Author: "另一個作者",
		URL:    "https://example.com/book/1",
	}
	svc := NewService(&mockScraper{result: &scrapedMeta}, nil, store)

	_, err := svc.Repair(context.Background(), "id-1")
	assert.Error(t, err)
}

func TestRepairPendingSweep(t *testing.T) {
	store := newMockStore()
	store.books["id-1"] = &entities.Book{
		ID: "id-1", Title: "鎮魂", Author: "priest",
		URL: "https://example.com/book/1", AISummary: entities.AIPendingSummary,
	}
	store.books["id-2"] = &entities.Book{
		ID: "id-2", Title: "沒有網址", AISummary: entities.AIPendingSummary,
	}
	store.books["id-3"] = &entities.Book{
		ID: "id-3", Title: "已分析", AISummary: "真實短評",
	}

	svc := NewService(
		&mockScraper{result: &scrapedMeta},
		&mockAnalyzer{result: &ai.Analysis{Tags: []string{"懸疑"}, Summary: "短評", Plot: "摘要"}},
		store,
	)

	stats, err := svc.RepairPending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, RepairStats{Attempted: 2, Repaired: 1, Failed: 1}, stats)
	assert.Equal(t, "短評", store.books["id-1"].AISummary)
	assert.Equal(t, "真實短評", store.books["id-3"].AISummary)
}
