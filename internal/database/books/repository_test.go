package books

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/hsinyu-chen/novelshelf/internal/entities"
)

func testRepository(t *testing.T) *Repository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.Book{}))
	return NewRepository(db)
}

func testBook(id, title string, added time.Time) *entities.Book {
	return &entities.Book{
		ID:        id,
		Title:     title,
		Author:    "priest",
		Status:    entities.StatusUnread,
		Tags:      entities.TagList{"懸疑"},
		AISummary: "一句話短評",
		AddedDate: added,
	}
}

func TestUpsertAndGetByID(t *testing.T) {
	repo := testRepository(t)
	book := testBook("id-1", "鎮魂", time.Now())

	require.NoError(t, repo.Upsert(book))

	got, err := repo.GetByID("id-1")
	require.NoError(t, err)
	assert.Equal(t, "鎮魂", got.Title)
	assert.Equal(t, entities.TagList{"懸疑"}, got.Tags)
}

func TestUpsertReplacesExisting(t *testing.T) {
	repo := testRepository(t)
	require.NoError(t, repo.Upsert(testBook("id-1", "鎮魂", time.Now())))

	updated := testBook("id-1", "鎮魂", time.Now())
	updated.UserRating = 5
	updated.Status = entities.StatusCompleted
	require.NoError(t, repo.Upsert(updated))

	got, err := repo.GetByID("id-1")
	require.NoError(t, err)
	assert.Equal(t, 5, got.UserRating)
	assert.Equal(t, entities.StatusCompleted, got.Status)

	all, err := repo.GetAll()
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestGetAllOrdering(t *testing.T) {
	repo := testRepository(t)
	day := 24 * time.Hour
	now := time.Now().Truncate(time.Second)

	require.NoError(t, repo.Upsert(testBook("id-old", "舊書", now.Add(-day))))
	require.NoError(t, repo.Upsert(testBook("id-b", "乙", now)))
	require.NoError(t, repo.Upsert(testBook("id-a", "甲", now)))

	all, err := repo.GetAll()
	require.NoError(t, err)
	require.Len(t, all, 3)
	// Newest first; same-day entries ordered by title.
	assert.Equal(t, "id-old", all[2].ID)
	assert.Equal(t, []string{all[0].Title, all[1].Title}, []string{"乙", "甲"})
}

func TestDelete(t *testing.T) {
	repo := testRepository(t)
	require.NoError(t, repo.Upsert(testBook("id-1", "鎮魂", time.Now())))
	require.NoError(t, repo.Delete("id-1"))

	_, err := repo.GetByID("id-1")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// Deleting again is a no-op.
	assert.NoError(t, repo.Delete("id-1"))
}

func TestListPendingAnalysis(t *testing.T) {
	repo := testRepository(t)

	pending := testBook("id-1", "待分析", time.Now())
	pending.AISummary = entities.AIPendingSummary
	require.NoError(t, repo.Upsert(pending))

	backlog := testBook("id-2", "待補完", time.Now())
	backlog.AISummary = entities.AIBacklogSummary
	require.NoError(t, repo.Upsert(backlog))

	done := testBook("id-3", "已分析", time.Now())
	require.NoError(t, repo.Upsert(done))

	got, err := repo.ListPendingAnalysis()
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, b := range got {
		assert.True(t, b.NeedsAnalysis())
	}
}
