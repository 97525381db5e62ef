// Package engine drives the layered retrieval loop: analyze the
// query, search and scrape, score coverage, then spawn follow-up
// sub-queries until the answer is covered or the depth budget runs
// out.
package engine

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"strata/internal/analyze"
	"strata/internal/coverage"
	"strata/internal/subquery"
	"strata/internal/websearch"
)

// AnalyzerFunc optionally replaces the heuristic query analyzer.
type AnalyzerFunc func(ctx context.Context, query string) (analyze.Analysis, error)

// EvaluatorFunc optionally replaces the heuristic coverage evaluator
// and sub-query generator in one step.
type EvaluatorFunc func(ctx context.Context, query string, sources []Source, a analyze.Analysis) (Evaluation, error)

// Evaluation is an override's verdict after one layer.
type Evaluation struct {
	Coverage   float64
	Gaps       []analyze.Aspect
	SubQueries []string
}

// Options configures one session.
type Options struct {
	MaxLayers   int     // depth ceiling, >= 1
	MinCoverage float64 // stop once coverage reaches this
	NumResults  int     // web results per search call

	Weights coverage.Weights // zero value means the standard split

	Analyzer  AnalyzerFunc // nil means the built-in heuristics
	Evaluator EvaluatorFunc
}

// DefaultOptions returns the standard session parameters.
func DefaultOptions() Options {
	return Options{
		MaxLayers:   3,
		MinCoverage: 0.75,
		NumResults:  5,
		Weights:     coverage.DefaultWeights(),
	}
}

func (o Options) normalized() Options {
	if o.MaxLayers < 1 {
		o.MaxLayers = 1
	}
	if o.NumResults < 1 {
		o.NumResults = DefaultOptions().NumResults
	}
	if o.MinCoverage < 0 {
		o.MinCoverage = 0
	}
	if o.MinCoverage > 1 {
		o.MinCoverage = 1
	}
	if o.Weights.Aspect == 0 && o.Weights.Keyword == 0 {
		o.Weights = coverage.DefaultWeights()
	}
	return o
}

// Engine runs retrieval sessions over an integrated searcher.
type Engine struct {
	search Searcher
	log    *zap.Logger
}

// Searcher is the integrated-search dependency.
type Searcher interface {
	Run(ctx context.Context, query string, opts websearch.Options) *websearch.Response
}

// New creates an engine.
func New(search Searcher, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		search: search,
		log:    logger.Named("engine"),
	}
}

// RunSession executes the full layered loop for one query. It always
// returns a result; exhausting the depth budget below the coverage
// target is normal termination, not an error.
func (e *Engine) RunSession(ctx context.Context, query string, opts Options) *SessionResult {
	opts = opts.normalized()
	start := time.Now()

	session := &SessionResult{
		ID:    uuid.NewString(),
		Query: query,
	}

	session.Analysis = e.analyzeQuery(ctx, query, opts)
	targetDepth := session.Analysis.SuggestedDepth
	if targetDepth > opts.MaxLayers {
		targetDepth = opts.MaxLayers
	}
	if targetDepth < 1 {
		targetDepth = 1
	}

	seen := make(map[string]bool)
	seenNews := make(map[string]bool)

	// Layer 1: single wide search with the media lists enabled.
	resp := e.search.Run(ctx, query, websearch.Options{
		NumResults:    opts.NumResults + 2,
		IncludeNews:   true,
		IncludeImages: true,
		ScrapeContent: true,
	})
	session.SearchCalls++
	added := e.absorb(session, resp, 1, seen, seenNews)
	ev := e.evaluate(ctx, session, opts, 1)
	session.Layers = append(session.Layers, LayerResult{
		Layer:      1,
		Queries:    query,
		NewSources: added,
		Coverage:   ev.Coverage,
		Gaps:       ev.Gaps,
	})
	session.Coverage = ev.Coverage

	for layer := 2; layer <= targetDepth; layer++ {
		if session.Coverage >= opts.MinCoverage {
			break
		}
		queries := ev.SubQueries
		if len(queries) == 0 {
			e.log.Debug("no follow-up queries, stopping", zap.Int("layer", layer))
			break
		}

		responses := e.searchParallel(ctx, queries, opts.NumResults, layer)
		session.SearchCalls += len(queries)

		var added []Source
		for _, resp := range responses {
			added = append(added, e.absorb(session, resp, layer, seen, seenNews)...)
		}

		ev = e.evaluate(ctx, session, opts, layer)
		session.Layers = append(session.Layers, LayerResult{
			Layer:      layer,
			Queries:    strings.Join(queries, " | "),
			NewSources: added,
			Coverage:   ev.Coverage,
			Gaps:       ev.Gaps,
		})
		session.Coverage = ev.Coverage
	}

	session.Duration = time.Since(start)
	e.log.Info("session done",
		zap.String("query", query),
		zap.Int("layers", len(session.Layers)),
		zap.Int("sources", len(session.Sources)),
		zap.Int("search_calls", session.SearchCalls),
		zap.Float64("coverage", session.Coverage))
	return session
}

// searchParallel runs every sub-query concurrently and returns the
// responses in submission order, so the downstream merge is
// deterministic regardless of completion order.
func (e *Engine) searchParallel(ctx context.Context, queries []string, numResults, layer int) []*websearch.Response {
	responses := make([]*websearch.Response, len(queries))

	var g errgroup.Group
	g.SetLimit(subquery.MaxSubQueries)
	for i, q := range queries {
		i, q := i, q
		g.Go(func() error {
			responses[i] = e.search.Run(ctx, q, websearch.Options{
				NumResults: numResults,
				// The image budget is spent on layer 1; news stays on
				// through layer 2 and goes dark beyond it.
				IncludeNews:   layer == 2,
				ScrapeContent: true,
			})
			return nil
		})
	}
	_ = g.Wait()
	return responses
}

// absorb merges one search response into the running session state,
// deduplicating by normalized URL with first-layer-wins ties, and
// returns only the sources new to this layer.
func (e *Engine) absorb(session *SessionResult, resp *websearch.Response, layer int, seen, seenNews map[string]bool) []Source {
	if resp == nil {
		return nil
	}

	var added []Source
	for _, doc := range resp.Web {
		key := normalizeURL(doc.URL)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		src := Source{Document: doc, Layer: layer}
		session.Sources = append(session.Sources, src)
		added = append(added, src)
	}
	for _, item := range resp.News {
		key := normalizeURL(item.URL)
		if key == "" || seenNews[key] {
			continue
		}
		seenNews[key] = true
		session.News = append(session.News, item)
	}
	session.Images = append(session.Images, resp.Images...)
	return added
}

func (e *Engine) analyzeQuery(ctx context.Context, query string, opts Options) analyze.Analysis {
	if opts.Analyzer != nil {
		a, err := opts.Analyzer(ctx, query)
		if err == nil {
			return a
		}
		e.log.Warn("analyzer override failed, using heuristics", zap.Error(err))
	}
	return analyze.Analyze(query)
}

// evaluate scores the cumulative source set, not just the latest
// layer's additions, and proposes the next layer's sub-queries.
func (e *Engine) evaluate(ctx context.Context, session *SessionResult, opts Options, completedLayer int) Evaluation {
	if opts.Evaluator != nil {
		ev, err := opts.Evaluator(ctx, session.Query, session.Sources, session.Analysis)
		if err == nil {
			return ev
		}
		e.log.Warn("evaluator override failed, using heuristics", zap.Error(err))
	}

	texts := make([]coverage.SourceText, 0, len(session.Sources))
	urls := make([]string, 0, len(session.Sources))
	for _, s := range session.Sources {
		texts = append(texts, coverage.SourceText{
			Title:       s.Title,
			Description: s.Description,
			Content:     s.Content,
		})
		urls = append(urls, s.URL)
	}

	report := coverage.Evaluate(session.Analysis.Aspects, session.Analysis.Keywords, texts, opts.Weights)
	return Evaluation{
		Coverage:   report.Coverage,
		Gaps:       report.Gaps,
		SubQueries: subquery.Generate(session.Query, session.Analysis, urls, completedLayer),
	}
}
