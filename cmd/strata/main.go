package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"strata/internal/analyze"
	"strata/internal/config"
	"strata/internal/coverage"
	"strata/internal/engine"
	"strata/internal/fetch"
	"strata/internal/logging"
	"strata/internal/search"
	"strata/internal/websearch"
)

var (
	// Global flags
	configPath  string
	maxLayers   int
	minCoverage float64
	numResults  int
	useBrowser  bool
	jsonOutput  bool
	showContent bool
	verbose     bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "strata <query>",
	Short: "strata - layered web retrieval",
	Long: `strata answers a query by searching in layers.

It analyzes the query, runs a first search-and-scrape pass, scores how
well the collected pages cover the question, and then issues targeted
follow-up searches for whatever is still missing, down to a bounded
depth. The result is a deduplicated, layer-attributed source set with
a final coverage score.`,
	Args: cobra.ExactArgs(1),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		applyFlags(cmd, cfg)
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		logger, err = logging.New(cfg.Logging)
		if err != nil {
			return fmt.Errorf("initializing logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runQuery(cmd.Context(), args[0])
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "path to config file (YAML)")
	pf.IntVar(&maxLayers, "max-layers", 0, "depth ceiling for the retrieval loop (1-3)")
	pf.Float64Var(&minCoverage, "min-coverage", -1, "coverage score at which to stop early (0-1)")
	pf.IntVar(&numResults, "results", 0, "web results per search call")
	pf.BoolVar(&useBrowser, "browser", false, "fetch pages with a headless browser instead of plain HTTP")
	pf.BoolVar(&jsonOutput, "json", false, "print the full session result as JSON")
	pf.BoolVar(&showContent, "show-content", false, "render scraped markdown for each source")
	pf.BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

// applyFlags layers explicitly-set flags over the file/env config.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("max-layers") {
		cfg.Engine.MaxLayers = maxLayers
	}
	if cmd.Flags().Changed("min-coverage") {
		cfg.Engine.MinCoverage = minCoverage
	}
	if cmd.Flags().Changed("results") {
		cfg.Engine.NumResults = numResults
	}
	if cmd.Flags().Changed("browser") {
		cfg.Fetch.UseBrowser = useBrowser
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
}

func runQuery(ctx context.Context, query string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	eng, cleanup, err := buildEngine(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	opts := engine.Options{
		MaxLayers:   cfg.Engine.MaxLayers,
		MinCoverage: cfg.Engine.MinCoverage,
		NumResults:  cfg.Engine.NumResults,
		Weights: coverage.Weights{
			Aspect:  cfg.Engine.AspectWeight,
			Keyword: cfg.Engine.KeywordWeight,
		},
	}
	if cfg.Analyzer.GeminiAPIKey != "" {
		ga, err := analyze.NewGenAIAnalyzer(ctx, cfg.Analyzer.GeminiAPIKey, cfg.Analyzer.Model, logger)
		if err != nil {
			logger.Warn("model analyzer unavailable, using heuristics", zap.Error(err))
		} else {
			opts.Analyzer = func(ctx context.Context, q string) (analyze.Analysis, error) {
				return ga.Analyze(ctx, q), nil
			}
		}
	}

	result := eng.RunSession(ctx, query, opts)

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	return renderSession(os.Stdout, result, showContent)
}

// buildEngine wires config into the provider client, fetcher, and
// integrated search. The returned cleanup closes the browser when one
// was started.
func buildEngine(ctx context.Context) (*engine.Engine, func(), error) {
	searchTimeout, err := cfg.SearchTimeout()
	if err != nil {
		return nil, nil, err
	}
	fetchTimeout, err := cfg.FetchTimeout()
	if err != nil {
		return nil, nil, err
	}
	initialBackoff, maxBackoff, err := cfg.SearchBackoff()
	if err != nil {
		return nil, nil, err
	}
	retry := search.RetryConfig{
		MaxRetries:     cfg.Search.MaxRetries,
		InitialBackoff: initialBackoff,
		MaxBackoff:     maxBackoff,
	}

	var primary search.Provider
	if cfg.Search.BraveAPIKey != "" {
		primary = search.NewBraveProvider(cfg.Search.BraveAPIKey, cfg.Search.BaseURL, searchTimeout, retry, logger)
	}
	client := search.NewClient(primary, search.NewDuckDuckGoProvider("", searchTimeout, retry, logger), logger)

	limits := fetch.Limits{
		ContainerMinChars: cfg.Fetch.ContainerMinChars,
		TextCap:           cfg.Fetch.TextCap,
		MarkdownCap:       cfg.Fetch.MarkdownCap,
	}
	var fetcher fetch.Fetcher
	cleanup := func() {}
	if cfg.Fetch.UseBrowser {
		bf := fetch.NewBrowserFetcher(limits, logger)
		cleanup = func() { _ = bf.Close() }
		fetcher = bf
	} else {
		fetcher = fetch.NewHTTPFetcher(limits, logger)
	}

	wsCfg := websearch.Config{
		Workers: cfg.Engine.FetchWorkers,
		FetchOptions: fetch.Options{
			Timeout:  fetchTimeout,
			MaxBytes: cfg.Fetch.MaxBytes,
		},
		MinContentChars: cfg.Engine.ScrapeMinChar,
	}
	integrated := websearch.New(client, fetcher, wsCfg, logger)

	return engine.New(integrated, logger), cleanup, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
