package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all strata configuration.
type Config struct {
	// Search provider settings
	Search SearchConfig `yaml:"search"`

	// Page fetching settings
	Fetch FetchConfig `yaml:"fetch"`

	// Retrieval engine settings
	Engine EngineConfig `yaml:"engine"`

	// Optional LLM-backed query analysis
	Analyzer AnalyzerConfig `yaml:"analyzer"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// SearchConfig configures the search provider client.
type SearchConfig struct {
	// BraveAPIKey enables the token-authenticated provider. When empty,
	// the credential-free DuckDuckGo fallback is used instead.
	BraveAPIKey string `yaml:"brave_api_key"`
	BaseURL     string `yaml:"base_url"`
	Timeout     string `yaml:"timeout"`

	// Retry policy for rate-limited provider responses.
	MaxRetries     int    `yaml:"max_retries"`
	InitialBackoff string `yaml:"initial_backoff"`
	MaxBackoff     string `yaml:"max_backoff"`
}

// FetchConfig configures the page fetcher.
type FetchConfig struct {
	Timeout  string `yaml:"timeout"`
	MaxBytes int64  `yaml:"max_bytes"`

	// UseBrowser selects the headless-browser fetch strategy.
	UseBrowser bool `yaml:"use_browser"`

	// Extraction thresholds and caps. Heuristic constants preserved
	// from the reference tuning, overridable but not re-derived.
	ContainerMinChars int `yaml:"container_min_chars"`
	TextCap           int `yaml:"text_cap"`
	MarkdownCap       int `yaml:"markdown_cap"`
}

// EngineConfig configures the multi-layer retrieval engine.
type EngineConfig struct {
	MaxLayers     int     `yaml:"max_layers"`
	MinCoverage   float64 `yaml:"min_coverage"`
	NumResults    int     `yaml:"num_results"`
	FetchWorkers  int     `yaml:"fetch_workers"`
	ScrapeMinChar int     `yaml:"scrape_min_chars"`

	// Coverage score weights (aspect + keyword must sum to 1).
	AspectWeight  float64 `yaml:"aspect_weight"`
	KeywordWeight float64 `yaml:"keyword_weight"`
}

// AnalyzerConfig configures the optional GenAI query analyzer.
type AnalyzerConfig struct {
	GeminiAPIKey string `yaml:"gemini_api_key"`
	Model        string `yaml:"model"`
}

// LoggingConfig configures zap logger construction.
type LoggingConfig struct {
	Level      string `yaml:"level"`       // debug, info, warn, error
	JSONFormat bool   `yaml:"json_format"` // structured JSON vs console
}

// DefaultConfig returns a config with production defaults.
func DefaultConfig() *Config {
	return &Config{
		Search: SearchConfig{
			Timeout:        "30s",
			MaxRetries:     3,
			InitialBackoff: "1s",
			MaxBackoff:     "8s",
		},
		Fetch: FetchConfig{
			Timeout:           "15s",
			MaxBytes:          2 << 20,
			ContainerMinChars: 100,
			TextCap:           10000,
			MarkdownCap:       20000,
		},
		Engine: EngineConfig{
			MaxLayers:     3,
			MinCoverage:   0.75,
			NumResults:    5,
			FetchWorkers:  4,
			ScrapeMinChar: 50,
			AspectWeight:  0.6,
			KeywordWeight: 0.4,
		},
		Analyzer: AnalyzerConfig{
			Model: "gemini-2.0-flash",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads a YAML config file, applies env overrides, and validates.
// A missing file is not an error: defaults plus env overrides are used.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides lets environment variables override file values.
// Credentials always take the env value when present.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("BRAVE_API_KEY"); v != "" {
		c.Search.BraveAPIKey = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.Analyzer.GeminiAPIKey = v
	}
	if v := os.Getenv("STRATA_MAX_LAYERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Engine.MaxLayers = n
		}
	}
	if v := os.Getenv("STRATA_MIN_COVERAGE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Engine.MinCoverage = f
		}
	}
	if v := os.Getenv("STRATA_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// Validate checks that config values are within acceptable ranges.
func (c *Config) Validate() error {
	if c.Engine.MaxLayers < 1 {
		return fmt.Errorf("engine.max_layers must be >= 1")
	}
	if c.Engine.MinCoverage < 0 || c.Engine.MinCoverage > 1 {
		return fmt.Errorf("engine.min_coverage must be in [0,1]")
	}
	if c.Engine.NumResults < 1 {
		return fmt.Errorf("engine.num_results must be >= 1")
	}
	if c.Engine.FetchWorkers < 1 {
		return fmt.Errorf("engine.fetch_workers must be >= 1")
	}
	if w := c.Engine.AspectWeight + c.Engine.KeywordWeight; w < 0.999 || w > 1.001 {
		return fmt.Errorf("engine.aspect_weight and engine.keyword_weight must sum to 1")
	}
	if c.Fetch.MaxBytes < 1024 {
		return fmt.Errorf("fetch.max_bytes must be >= 1024")
	}
	if _, err := c.SearchTimeout(); err != nil {
		return fmt.Errorf("search.timeout: %w", err)
	}
	if _, _, err := c.SearchBackoff(); err != nil {
		return fmt.Errorf("search backoff: %w", err)
	}
	if _, err := c.FetchTimeout(); err != nil {
		return fmt.Errorf("fetch.timeout: %w", err)
	}
	return nil
}

// SearchTimeout parses the search provider timeout.
func (c *Config) SearchTimeout() (time.Duration, error) {
	return time.ParseDuration(c.Search.Timeout)
}

// FetchTimeout parses the per-URL fetch timeout.
func (c *Config) FetchTimeout() (time.Duration, error) {
	return time.ParseDuration(c.Fetch.Timeout)
}

// SearchBackoff parses the retry backoff bounds.
func (c *Config) SearchBackoff() (initial, max time.Duration, err error) {
	initial, err = time.ParseDuration(c.Search.InitialBackoff)
	if err != nil {
		return 0, 0, fmt.Errorf("initial_backoff: %w", err)
	}
	max, err = time.ParseDuration(c.Search.MaxBackoff)
	if err != nil {
		return 0, 0, fmt.Errorf("max_backoff: %w", err)
	}
	return initial, max, nil
}
