package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"OPENAI_API_KEY", "OPENAI_BASE_URL", "STEPFLOW_MODEL", "STEPFLOW_DB", "STEPFLOW_LOG_DIR"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, DefaultModel, cfg.Model)
	assert.Equal(t, DefaultLogDir, cfg.LogDir)
	assert.False(t, cfg.ModelConfigured())
	assert.False(t, cfg.PersistenceConfigured())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_BASE_URL", "http://localhost:8080/v1")
	t.Setenv("STEPFLOW_MODEL", "gpt-4.1-mini")
	t.Setenv("STEPFLOW_DB", "/tmp/turns.db")
	t.Setenv("STEPFLOW_LOG_DIR", "/tmp/logs")

	cfg := Load()
	assert.Equal(t, "sk-test", cfg.OpenAIAPIKey)
	assert.Equal(t, "http://localhost:8080/v1", cfg.OpenAIBaseURL)
	assert.Equal(t, "gpt-4.1-mini", cfg.Model)
	assert.Equal(t, "/tmp/turns.db", cfg.DBPath)
	assert.Equal(t, "/tmp/logs", cfg.LogDir)
	assert.True(t, cfg.ModelConfigured())
	assert.True(t, cfg.PersistenceConfigured())
}
