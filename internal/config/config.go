// Package config loads process configuration from the environment. A .env
// file in the working directory is honored when present. Missing
// credentials never abort startup; the affected subsystem degrades to
// failure reporting instead.
package config

import (
	"errors"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

// Defaults applied when the environment is silent.
const (
	DefaultModel  = "gpt-4.1-nano"
	DefaultLogDir = ".stepflow/sessions"
)

// Config holds everything read from the environment at startup.
type Config struct {
	// OpenAIAPIKey authenticates model calls. Empty means model calls
	// report failure instead of the process refusing to start.
	OpenAIAPIKey string

	// OpenAIBaseURL overrides the OpenAI endpoint, for compatible
	// providers and tests.
	OpenAIBaseURL string

	// Model is the model identifier sent with each completion request.
	Model string

	// DBPath is the SQLite file for the turn store. Empty disables
	// persistence (writes are reported as warnings, progression continues).
	DBPath string

	// LogDir receives per-session JSONL event logs.
	LogDir string
}

// Load reads configuration from a .env file (if any) and the process
// environment.
func Load() Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Debug("no .env file loaded", "error", err)
	}

	return Config{
		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL: os.Getenv("OPENAI_BASE_URL"),
		Model:         envOr("STEPFLOW_MODEL", DefaultModel),
		DBPath:        os.Getenv("STEPFLOW_DB"),
		LogDir:        envOr("STEPFLOW_LOG_DIR", DefaultLogDir),
	}
}

// ModelConfigured reports whether model credentials are available.
func (c Config) ModelConfigured() bool {
	return c.OpenAIAPIKey != ""
}

// PersistenceConfigured reports whether a turn store is configured.
func (c Config) PersistenceConfigured() bool {
	return c.DBPath != ""
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
