package search

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// Client is the search provider client. The provider is chosen once
// per call: the token-authenticated primary when configured, the
// credential-free fallback otherwise. Never mixed within one call.
type Client struct {
	primary  Provider // nil when no credential is configured
	fallback Provider
	log      *zap.Logger
}

// NewClient builds a client over the given providers. Pass a nil
// primary when no search credential is configured.
func NewClient(primary, fallback Provider, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		primary:  primary,
		fallback: fallback,
		log:      logger.Named("search"),
	}
}

// Search runs one query. It never returns an error: provider-side
// failures of any kind degrade to empty result lists so a bad query
// can never fail a whole session.
func (c *Client) Search(ctx context.Context, query string, opts Options) *Results {
	if strings.TrimSpace(query) == "" {
		return &Results{}
	}
	if opts.NumResults <= 0 {
		opts.NumResults = 5
	}

	provider := c.fallback
	if c.primary != nil {
		provider = c.primary
	}
	if provider == nil {
		c.log.Error("no search provider configured")
		return &Results{}
	}

	results, err := provider.Search(ctx, query, opts)
	if err != nil {
		c.log.Warn("search failed",
			zap.String("provider", provider.Name()),
			zap.String("query", query),
			zap.Error(err))
		return &Results{}
	}

	capResults(results, opts)

	c.log.Debug("search completed",
		zap.String("provider", provider.Name()),
		zap.String("query", query),
		zap.Int("web", len(results.Web)),
		zap.Int("news", len(results.News)),
		zap.Int("images", len(results.Images)))
	return results
}

// capResults enforces the requested sizes and drops result types the
// caller did not ask for.
func capResults(r *Results, opts Options) {
	if len(r.Web) > opts.NumResults {
		r.Web = r.Web[:opts.NumResults]
	}
	if !opts.IncludeNews {
		r.News = nil
	} else if len(r.News) > opts.NumResults {
		r.News = r.News[:opts.NumResults]
	}
	if !opts.IncludeImages {
		r.Images = nil
	} else if len(r.Images) > opts.NumResults {
		r.Images = r.Images[:opts.NumResults]
	}
}
