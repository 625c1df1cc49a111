package config

import (
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Global
		Database
		Scraper
		AI
		Import
		Repair
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Path string
	}
	Scraper struct {
		Timeout     time.Duration
		UserAgent   string
		FC2Password string // Password for locked FC2 blog entries
	}
	AI struct {
		APIKey      string
		Model       string
		Temperature float64
	}
	Import struct {
		DateStrategy string        // none | fixed | random
		RequestDelay time.Duration // Pause before each AI call during batch runs
		ReportPath   string        // Where the failure report CSV is written
	}
	Repair struct {
		Enabled  bool
		Schedule string // Cron format: "0 3 * * *" = daily at 03:00
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8188)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)

	// Scraper defaults
	v.SetDefault("scraper_timeout", "15s")
	v.SetDefault("scraper_user_agent", "")
	v.SetDefault("scraper_fc2_password", "")

	// AI defaults
	v.SetDefault("gemini_api_key", "")
	v.SetDefault("gemini_model", DefaultGeminiModel)
	v.SetDefault("gemini_temperature", 0.7)

	// Batch import defaults
	v.SetDefault("import_date_strategy", "none")
	v.SetDefault("import_request_delay", "1s")
	v.SetDefault("import_report_path", DefaultReportPath)

	// Repair sweep defaults
	v.SetDefault("repair_enabled", false)
	v.SetDefault("repair_schedule", "0 3 * * *") // Daily at 03:00

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Scraper: Scraper{
			Timeout:     v.GetDuration("SCRAPER_TIMEOUT"),
			UserAgent:   v.GetString("SCRAPER_USER_AGENT"),
			FC2Password: v.GetString("SCRAPER_FC2_PASSWORD"),
		},
		AI: AI{
			APIKey:      v.GetString("GEMINI_API_KEY"),
			Model:       v.GetString("GEMINI_MODEL"),
			Temperature: v.GetFloat64("GEMINI_TEMPERATURE"),
		},
		Import: Import{
			DateStrategy: v.GetString("IMPORT_DATE_STRATEGY"),
			RequestDelay: v.GetDuration("IMPORT_REQUEST_DELAY"),
			ReportPath:   v.GetString("IMPORT_REPORT_PATH"),
		},
		Repair: Repair{
			Enabled:  v.GetBool("REPAIR_ENABLED"),
			Schedule: v.GetString("REPAIR_SCHEDULE"),
		},
	}
}
