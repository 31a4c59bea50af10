package common

import (
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Extract ExtractConfig
	Text    TextConfig
	Export  ExportConfig
	History HistoryConfig
}

// ExtractConfig holds resolver/pipeline configuration
type ExtractConfig struct {
	Workers int
}

// TextConfig holds text-supply configuration
type TextConfig struct {
	Pdftotext string
	CacheTTL  time.Duration
}

// ExportConfig holds spreadsheet output configuration
type ExportConfig struct {
	OutputDir        string
	FilenamePrefix   string
	IncludeTimestamp bool
}

// HistoryConfig holds run-history persistence configuration
type HistoryConfig struct {
	DBPath string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Extract: ExtractConfig{
			Workers: getEnvAsInt("EXTRACT_WORKERS", runtime.NumCPU()),
		},
		Text: TextConfig{
			Pdftotext: getEnv("PDFTOTEXT_BIN", "pdftotext"),
			CacheTTL:  getEnvAsDuration("TEXT_CACHE_TTL", 10*time.Minute),
		},
		Export: ExportConfig{
			OutputDir:        getEnv("EXPORT_OUTPUT_DIR", "."),
			FilenamePrefix:   getEnv("EXPORT_FILENAME_PREFIX", "extraction_results"),
			IncludeTimestamp: getEnvAsBool("EXPORT_INCLUDE_TIMESTAMP", true),
		},
		History: HistoryConfig{
			DBPath: getEnv("HISTORY_DB", ""),
		},
	}
}

// LogLevel parses LOG_LEVEL into a slog level, defaulting to info.
func LogLevel() slog.Level {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Extract.Workers <= 0 {
		return NewConfigError("EXTRACT_WORKERS must be positive", ErrInvalidInput)
	}
	if c.Text.Pdftotext == "" {
		return NewConfigError("PDFTOTEXT_BIN must not be empty", ErrInvalidInput)
	}
	return nil
}
