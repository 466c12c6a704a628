// Package cli holds the bootstrap steps shared by cmd/jobtrack and
// cmd/jobtrack-export: logging, .env loading, configuration and storage.
package cli

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"jobtrack/internal/config"
	applog "jobtrack/internal/log"
	"jobtrack/internal/storage"
)

// SetupLogger initializes structured logging at the given level and sets
// it as the process default.
func SetupLogger(level slog.Level) *applog.Logger {
	logger := applog.New(applog.Config{Level: level, Component: applog.ComponentApp})
	applog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as the file is optional.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *applog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// OpenRepository opens the SQLite repository at cfg.DBPath, running any
// pending migrations. Exits the process on failure.
func OpenRepository(logger *applog.Logger, cfg *config.Config) *storage.Repository {
	repo, err := storage.Open(cfg.DBPath, storage.Options{CascadeDelete: cfg.CascadeDelete})
	if err != nil {
		logger.Error("Failed to open database", applog.FieldError, err, "db_path", cfg.DBPath)
		os.Exit(1)
	}
	return repo
}
