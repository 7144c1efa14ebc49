package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaultsWithNoFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Server.Mode)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 12, cfg.Concurrency.MaxParallelSQLs)
	assert.Equal(t, 3, cfg.Concurrency.MaxParallelTests)
	assert.Equal(t, 10, cfg.Concurrency.CommentChunkSize)
	assert.Equal(t, 4, cfg.Concurrency.NumWorkers)
	assert.Equal(t, "SQLiteVec", cfg.VectorStore.Backend)
	assert.Equal(t, "data", cfg.Database.RootPath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "data/thoth.db", cfg.StorePath)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	t.Setenv("THOTH_SERVER_PORT", "9090")
	t.Setenv("THOTH_LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	// fields left untouched by env still fall back to their defaults
	assert.Equal(t, "dev", cfg.Server.Mode)
}

func TestModelToModelSpec(t *testing.T) {
	temp := 0.2
	m := Model{
		Provider:    "anthropic",
		ModelID:     "claude-opus",
		APIKey:      "sk-test",
		BaseURL:     "https://api.example.com",
		Temperature: &temp,
	}

	spec := m.ToModelSpec()
	assert.Equal(t, "anthropic", spec.Provider)
	assert.Equal(t, "claude-opus", spec.ModelID)
	assert.Equal(t, "sk-test", spec.APIKey)
	assert.Equal(t, "https://api.example.com", spec.BaseURL)
	require.NotNil(t, spec.Temperature)
	assert.Equal(t, temp, *spec.Temperature)
}
