// Package search issues one query against one web search provider.
// Two interchangeable providers satisfy the same contract: the
// token-authenticated Brave Search API and a credential-free
// DuckDuckGo HTML fallback. It has no knowledge of scraping.
package search

import "context"

// WebResult is one organic web search hit.
type WebResult struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
}

// NewsItem is one news search hit.
type NewsItem struct {
	Title  string `json:"title"`
	URL    string `json:"url"`
	Source string `json:"source,omitempty"`
	Date   string `json:"date,omitempty"`
}

// ImageItem is one image search hit. Images are capped by request
// size but never deduplicated.
type ImageItem struct {
	Title        string `json:"title"`
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	SourceURL    string `json:"source_url,omitempty"`
}

// Results holds the three independent result lists for one query.
type Results struct {
	Web    []WebResult `json:"web"`
	News   []NewsItem  `json:"news"`
	Images []ImageItem `json:"images"`
}

// Options controls one search call.
type Options struct {
	NumResults    int
	IncludeNews   bool
	IncludeImages bool
}

// Provider runs one query against one search backend. Providers may
// return fewer results than requested; that is never an error.
type Provider interface {
	Name() string
	Search(ctx context.Context, query string, opts Options) (*Results, error)
}
