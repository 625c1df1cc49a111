package config

const (
	// DefaultDatabasePath is the default path for the library database
	DefaultDatabasePath = "./novelshelf.db"

	// DefaultGeminiModel is the model used for book analysis
	DefaultGeminiModel = "gemini-2.5-flash"

	// DefaultReportPath is where batch import failure reports land
	DefaultReportPath = "./import-failures.csv"
)
