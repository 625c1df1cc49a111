// Package books provides database operations for the book collection.
//
// The repository exposes only keyed CRUD plus one fixed ordering; all
// filtering happens above the storage layer.
package books

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/hsinyu-chen/novelshelf/internal/entities"
)

// Repository handles all book database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Upsert inserts the book, replacing any existing record with the same id.
func (r *Repository) Upsert(book *entities.Book) error {
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(book).Error
	if err != nil {
		return fmt.Errorf("upsert book %s: %w", book.ID, err)
	}
	return nil
}

// GetByID retrieves a book by its id.
func (r *Repository) GetByID(id string) (*entities.Book, error) {
	var book entities.Book
	if err := r.db.First(&book, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

// GetAll returns every book, newest additions first, title as tiebreaker.
func (r *Repository) GetAll() ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.Order("added_date DESC, title ASC").Find(&books).Error
	return books, err
}

// Delete removes a book by id. Deleting a missing id is not an error.
func (r *Repository) Delete(id string) error {
	return r.db.Delete(&entities.Book{}, "id = ?", id).Error
}

// ListPendingAnalysis returns books whose AI fields still hold
// placeholder values, in the same order as GetAll.
func (r *Repository) ListPendingAnalysis() ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.
		Where("ai_summary IN ? OR ai_summary = ''", entities.AISummaryPlaceholders).
		Order("added_date DESC, title ASC").
		Find(&books).Error
	return books, err
}
