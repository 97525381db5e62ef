package engine

import (
	"net/url"
	"strings"
	"time"

	"strata/internal/analyze"
	"strata/internal/search"
	"strata/internal/websearch"
)

// Source is one deduplicated document with the layer that found it.
type Source struct {
	websearch.Document
	Layer int `json:"layer"`
}

// LayerResult records one layer's contribution. The source list holds
// only the documents new to that layer; cumulative state lives on the
// session.
type LayerResult struct {
	Layer      int              `json:"layer"`
	Queries    string           `json:"queries"` // pipe-joined beyond layer 1
	NewSources []Source         `json:"new_sources"`
	Coverage   float64          `json:"coverage"`
	Gaps       []analyze.Aspect `json:"gaps,omitempty"`
}

// SessionResult is the complete output of one retrieval session.
type SessionResult struct {
	ID          string             `json:"id"`
	Query       string             `json:"query"`
	Analysis    analyze.Analysis   `json:"analysis"`
	Layers      []LayerResult      `json:"layers"`
	Sources     []Source           `json:"sources"`
	News        []search.NewsItem  `json:"news,omitempty"`
	Images      []search.ImageItem `json:"images,omitempty"`
	SearchCalls int                `json:"search_calls"`
	Coverage    float64            `json:"coverage"`
	Duration    time.Duration      `json:"duration"`
}

// normalizeURL reduces a URL to its dedup key: scheme, host and path,
// with the trailing slash and a leading www. dropped. Query strings
// and fragments are ignored so tracking parameters do not defeat
// deduplication.
func normalizeURL(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return ""
	}
	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	path := strings.TrimSuffix(u.Path, "/")
	return strings.ToLower(u.Scheme) + "://" + host + path
}
