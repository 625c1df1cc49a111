package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"

	"github.com/hsinyu-chen/novelshelf/internal/ai"
	"github.com/hsinyu-chen/novelshelf/internal/config"
	"github.com/hsinyu-chen/novelshelf/internal/database"
	"github.com/hsinyu-chen/novelshelf/internal/database/books"
	http_controllers "github.com/hsinyu-chen/novelshelf/internal/http"
	"github.com/hsinyu-chen/novelshelf/internal/library"
	"github.com/hsinyu-chen/novelshelf/internal/scraper"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

// BuildService wires the scraper, the optional Gemini analyzer and the
// book repository into a library service. The CLI commands and the HTTP
// server share this wiring.
func BuildService(cfg *config.Config, db *database.Database) *library.Service {
	sc := scraper.New(scraper.Config{
		Timeout:     cfg.Scraper.Timeout,
		UserAgent:   cfg.Scraper.UserAgent,
		FC2Password: cfg.Scraper.FC2Password,
	})

	var analyzer ai.Analyzer
	if cfg.AI.APIKey != "" {
		analyzer = ai.NewGeminiAnalyzer(cfg.AI.APIKey, cfg.AI.Model, float32(cfg.AI.Temperature))
	} else {
		log.Printf("WARNING: Gemini API key is not set. AI analysis is disabled. Set 'GEMINI_API_KEY' environment variable to enable.")
	}

	repo := books.NewRepository(db.DB)
	return library.NewService(sc, analyzer, repo)
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting NovelShelf v%s", version)

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	service := BuildService(cfg, db)

	// Background repair sweep for records still carrying AI placeholders.
	var scheduler *cron.Cron
	if cfg.Repair.Enabled {
		scheduler = cron.New()
		_, err := scheduler.AddFunc(cfg.Repair.Schedule, func() {
			stats, err := service.RepairPending(context.Background())
			if err != nil {
				log.Printf("Scheduled repair sweep failed: %v", err)
				return
			}
			log.Printf("Scheduled repair sweep: %d attempted, %d repaired, %d failed",
				stats.Attempted, stats.Repaired, stats.Failed)
		})
		if err != nil {
			log.Fatalf("Invalid repair schedule %q: %v", cfg.Repair.Schedule, err)
		}
		scheduler.Start()
		log.Printf("Repair sweep scheduled: %s", cfg.Repair.Schedule)
	}

	router := http_controllers.NewRouter(http_controllers.RouterConfig{
		Library:  service,
		Database: db,
		Version:  version,
	})

	onShutdown := func(ctx context.Context) {
		if scheduler != nil {
			stopCtx := scheduler.Stop()
			select {
			case <-stopCtx.Done():
			case <-ctx.Done():
			}
		}
	}

	Serve(router, cfg, onShutdown)
}
