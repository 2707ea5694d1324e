// Package cli provides common startup utilities shared by cmd/networth
// and cmd/networth-worker.
package cli

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"networth/internal/config"
	applog "networth/internal/log"
	"networth/internal/provider"
	"networth/internal/provider/memory"
	"networth/internal/provider/stripe"
	"networth/internal/storage"
)

// SetupLogger initializes structured logging for the given component and
// sets it as the process default.
func SetupLogger(component string) *applog.Logger {
	logger := applog.New(applog.Config{
		Level:     slog.LevelInfo,
		Component: component,
	})
	applog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *applog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// InitSQLite initializes a SQLite repository with the given path.
// Returns the repository or exits the process on failure.
func InitSQLite(logger *applog.Logger, dbPath string) *storage.SQLiteRepository {
	repo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", dbPath)
		os.Exit(1)
	}
	return repo
}

// InitProvider selects the upstream feed backend from configuration.
func InitProvider(logger *applog.Logger, cfg *config.Config) provider.Feed {
	switch cfg.ProviderBackend {
	case "stripe":
		var opts []stripe.Option
		if cfg.StripeBaseURL != "" {
			opts = append(opts, stripe.WithBaseURL(cfg.StripeBaseURL))
		}
		logger.Info("Initialized stripe provider backend")
		return stripe.New(cfg.StripeAPIKey, opts...)
	default:
		logger.Info("Initialized memory provider backend")
		return memory.New()
	}
}
