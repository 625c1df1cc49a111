package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hsinyu-chen/novelshelf/internal/entities"
	"github.com/hsinyu-chen/novelshelf/internal/library"
)

// LibraryService is the slice of the library the controllers need.
type LibraryService interface {
	AddBook(ctx context.Context, url string) (*entities.Book, error)
	List() ([]entities.Book, error)
	Get(id string) (*entities.Book, error)
	UpdateStatus(id string, status entities.ReadingStatus) (*entities.Book, error)
	SaveReview(id string, rating int, review string) (*entities.Book, error)
	Remove(id string) error
	Repair(ctx context.Context, id string) (*entities.Book, error)
	RepairPending(ctx context.Context) (library.RepairStats, error)
}

type BooksController struct {
	library LibraryService
}

func NewBooksController(library LibraryService) *BooksController {
	return &BooksController{
		library: library,
	}
}

func (controller *BooksController) GetAllBooks(c *gin.Context) {
	books, err := controller.library.List()
	if err != nil {
		c.IndentedJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"books": books, "count": len(books)})
}

func (controller *BooksController) GetBook(c *gin.Context) {
	book, err := controller.library.Get(c.Param("id"))
	if err != nil {
		c.IndentedJSON(http.StatusNotFound, gin.H{"error": "book not found"})
		return
	}
	c.IndentedJSON(http.StatusOK, book)
}

type addBookRequest struct {
	URL string `json:"url" binding:"required"`
}

func (controller *BooksController) AddBook(c *gin.Context) {
	var req addBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.IndentedJSON(http.StatusBadRequest, gin.H{"error": "url is required"})
		return
	}

	book, err := controller.library.AddBook(c.Request.Context(), req.URL)
	if err != nil {
		c.IndentedJSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.IndentedJSON(http.StatusCreated, book)
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (controller *BooksController) UpdateStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.IndentedJSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}

	book, err := controller.library.UpdateStatus(c.Param("id"), entities.ParseReadingStatus(req.Status))
	if err != nil {
		c.IndentedJSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.IndentedJSON(http.StatusOK, book)
}

type saveReviewRequest struct {
	Rating int    `json:"rating"`
	Review string `json:"review"`
}

func (controller *BooksController) SaveReview(c *gin.Context) {
	var req saveReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.IndentedJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	book, err := controller.library.SaveReview(c.Param("id"), req.Rating, req.Review)
	if err != nil {
		c.IndentedJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.IndentedJSON(http.StatusOK, book)
}

func (controller *BooksController) DeleteBook(c *gin.Context) {
	if err := controller.library.Remove(c.Param("id")); err != nil {
		c.IndentedJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (controller *BooksController) RepairBook(c *gin.Context) {
	book, err := controller.library.Repair(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.IndentedJSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.IndentedJSON(http.StatusOK, book)
}

func (controller *BooksController) RepairPending(c *gin.Context) {
	stats, err := controller.library.RepairPending(c.Request.Context())
	if err != nil {
		c.IndentedJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.IndentedJSON(http.StatusOK, stats)
}
