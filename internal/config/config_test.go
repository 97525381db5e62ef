package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 3, cfg.Engine.MaxLayers)
	assert.Equal(t, 0.75, cfg.Engine.MinCoverage)
	assert.Equal(t, 0.6, cfg.Engine.AspectWeight)
	assert.Equal(t, 0.4, cfg.Engine.KeywordWeight)
	assert.Equal(t, 100, cfg.Fetch.ContainerMinChars)
	assert.Equal(t, 10000, cfg.Fetch.TextCap)
	assert.Equal(t, 20000, cfg.Fetch.MarkdownCap)
	assert.Equal(t, 50, cfg.Engine.ScrapeMinChar)

	require.NoError(t, cfg.Validate())
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Engine, cfg.Engine)
}

func TestLoad_FileValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "strata.yaml")
	data := []byte("engine:\n  max_layers: 2\n  min_coverage: 0.5\n  num_results: 8\n  fetch_workers: 4\n  scrape_min_chars: 50\n  aspect_weight: 0.6\n  keyword_weight: 0.4\nsearch:\n  brave_api_key: file-key\n")
	require.NoError(t, os.WriteFile(path, data, 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Engine.MaxLayers)
	assert.Equal(t, 0.5, cfg.Engine.MinCoverage)
	assert.Equal(t, 8, cfg.Engine.NumResults)
	assert.Equal(t, "file-key", cfg.Search.BraveAPIKey)
}

func TestEnvOverrides(t *testing.T) {
	t.Run("BRAVE_API_KEY overrides file value", func(t *testing.T) {
		t.Setenv("BRAVE_API_KEY", "env-key")

		cfg := DefaultConfig()
		cfg.Search.BraveAPIKey = "file-key"
		cfg.applyEnvOverrides()

		assert.Equal(t, "env-key", cfg.Search.BraveAPIKey)
	})

	t.Run("GEMINI_API_KEY sets analyzer key", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "gem-key")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "gem-key", cfg.Analyzer.GeminiAPIKey)
	})

	t.Run("STRATA_MAX_LAYERS parses integer", func(t *testing.T) {
		t.Setenv("STRATA_MAX_LAYERS", "5")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, 5, cfg.Engine.MaxLayers)
	})

	t.Run("invalid STRATA_MIN_COVERAGE is ignored", func(t *testing.T) {
		t.Setenv("STRATA_MIN_COVERAGE", "not-a-float")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, 0.75, cfg.Engine.MinCoverage)
	})
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero max layers", func(c *Config) { c.Engine.MaxLayers = 0 }},
		{"coverage above 1", func(c *Config) { c.Engine.MinCoverage = 1.5 }},
		{"zero results", func(c *Config) { c.Engine.NumResults = 0 }},
		{"weights not summing to 1", func(c *Config) { c.Engine.AspectWeight = 0.9 }},
		{"tiny max bytes", func(c *Config) { c.Fetch.MaxBytes = 10 }},
		{"bad timeout", func(c *Config) { c.Fetch.Timeout = "soon" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
