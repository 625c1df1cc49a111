package http

import (
	"github.com/gin-gonic/gin"

	"github.com/hsinyu-chen/novelshelf/internal/database"
)

// RouterConfig contains all dependencies needed to create the HTTP
// router.
type RouterConfig struct {
	Library  LibraryService
	Database *database.Database
	Version  string
}

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	healthController := NewHealthController(cfg.Database, cfg.Version)
	router.GET("/health", healthController.Status)

	booksController := NewBooksController(cfg.Library)
	api := router.Group("/api")
	{
		api.GET("/books", booksController.GetAllBooks)
		api.POST("/books", booksController.AddBook)
		api.GET("/books/:id", booksController.GetBook)
		api.PATCH("/books/:id/status", booksController.UpdateStatus)
		api.PUT("/books/:id/review", booksController.SaveReview)
		api.DELETE("/books/:id", booksController.DeleteBook)
		api.POST("/books/:id/repair", booksController.RepairBook)
		api.POST("/repair", booksController.RepairPending)
	}

	return router
}
