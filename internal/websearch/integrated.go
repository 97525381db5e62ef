// Package websearch composes the search provider client with the page
// fetcher: one query in, scraped-and-merged documents out. It holds no
// memory of prior queries.
package websearch

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"strata/internal/fetch"
	"strata/internal/search"
)

// Document is one web result merged with whatever scraping produced.
type Document struct {
	Title        string `json:"title"`
	URL          string `json:"url"`
	Description  string `json:"description,omitempty"`
	Content      string `json:"content,omitempty"`
	Markdown     string `json:"markdown,omitempty"`
	Favicon      string `json:"favicon,omitempty"`
	PreviewImage string `json:"preview_image,omitempty"`
	SiteName     string `json:"site_name,omitempty"`
	Scraped      bool   `json:"scraped"`
}

// Response holds one integrated search call's output.
type Response struct {
	Web    []Document         `json:"web"`
	News   []search.NewsItem  `json:"news"`
	Images []search.ImageItem `json:"images"`
}

// Options controls one integrated search call.
type Options struct {
	NumResults    int
	IncludeNews   bool
	IncludeImages bool
	ScrapeContent bool
}

// Config tunes the scraping stage.
type Config struct {
	Workers      int           // bounded fetch concurrency
	FetchOptions fetch.Options // per-URL timeout and byte limit

	// MinContentChars is the scraped-content threshold below which the
	// provider description is preferred over the fetched page.
	MinContentChars int
}

// DefaultConfig returns the standard scraping parameters.
func DefaultConfig() Config {
	return Config{
		Workers:         4,
		FetchOptions:    fetch.DefaultOptions(),
		MinContentChars: 50,
	}
}

// Searcher is the provider-client dependency.
type Searcher interface {
	Search(ctx context.Context, query string, opts search.Options) *search.Results
}

// Integrated runs one query and scrapes the results.
type Integrated struct {
	searcher Searcher
	fetcher  fetch.Fetcher
	cfg      Config
	log      *zap.Logger
}

// New creates an integrated search over a provider client and a fetcher.
func New(searcher Searcher, fetcher fetch.Fetcher, cfg Config, logger *zap.Logger) *Integrated {
	if cfg.Workers < 1 {
		cfg.Workers = DefaultConfig().Workers
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Integrated{
		searcher: searcherOrNop(searcher),
		fetcher:  fetcher,
		cfg:      cfg,
		log:      logger.Named("websearch"),
	}
}

// Run searches, then (optionally) fetches every web result with
// bounded concurrency and merges the scraped content back on.
func (s *Integrated) Run(ctx context.Context, query string, opts Options) *Response {
	results := s.searcher.Search(ctx, query, search.Options{
		NumResults:    opts.NumResults,
		IncludeNews:   opts.IncludeNews,
		IncludeImages: opts.IncludeImages,
	})

	resp := &Response{
		News:   results.News,
		Images: results.Images,
	}

	var pages []*fetch.PageData
	if opts.ScrapeContent && len(results.Web) > 0 {
		pages = s.fetchAll(ctx, results.Web)
	}

	resp.Web = make([]Document, 0, len(results.Web))
	for i, r := range results.Web {
		var page *fetch.PageData
		if pages != nil {
			page = pages[i]
		}
		resp.Web = append(resp.Web, s.merge(r, page))
	}

	s.log.Debug("integrated search done",
		zap.String("query", query),
		zap.Int("web", len(resp.Web)),
		zap.Bool("scraped", opts.ScrapeContent))
	return resp
}

// fetchAll scrapes every result URL in a bounded worker pool. Each
// fetch carries its own timeout; one hanging URL cannot cancel or
// block its siblings, and the batch settles completely before return.
func (s *Integrated) fetchAll(ctx context.Context, web []search.WebResult) []*fetch.PageData {
	pages := make([]*fetch.PageData, len(web))
	var mu sync.Mutex

	// Plain errgroup with a limit: workers always return nil so one
	// failure never cancels the group.
	var g errgroup.Group
	g.SetLimit(s.cfg.Workers)

	for i, r := range web {
		i, r := i, r
		g.Go(func() error {
			page, err := s.fetcher.Fetch(ctx, r.URL, s.cfg.FetchOptions)
			if err != nil {
				s.log.Debug("scrape failed", zap.String("url", r.URL), zap.Error(err))
				return nil
			}
			mu.Lock()
			pages[i] = page
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return pages
}

// merge prefers fetched content when it is substantial, and otherwise
// synthesizes a fallback document from the provider result. A web
// result is never dropped because scraping failed.
func (s *Integrated) merge(r search.WebResult, page *fetch.PageData) Document {
	doc := Document{
		Title:       r.Title,
		URL:         r.URL,
		Description: r.Description,
	}

	if page != nil && (utf8.RuneCountInString(page.BodyText) >= s.cfg.MinContentChars ||
		utf8.RuneCountInString(page.BodyMarkdown) >= s.cfg.MinContentChars) {
		if page.Title != "" {
			doc.Title = page.Title
		}
		if page.Description != "" {
			doc.Description = page.Description
		}
		doc.Content = page.BodyText
		doc.Markdown = page.BodyMarkdown
		doc.Favicon = page.Favicon
		doc.PreviewImage = page.PreviewImage
		doc.SiteName = page.SiteName
		doc.Scraped = true
	} else {
		doc.Content = r.Description
		doc.Markdown = "# " + r.Title + "\n\n" + r.Description
	}

	if doc.SiteName == "" {
		doc.SiteName = hostnameOf(r.URL)
	}
	return doc
}

// hostnameOf returns the URL's hostname with a leading www. stripped.
func hostnameOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}

// nopSearcher guards against a nil dependency in tests.
type nopSearcher struct{}

func (nopSearcher) Search(context.Context, string, search.Options) *search.Results {
	return &search.Results{}
}

func searcherOrNop(s Searcher) Searcher {
	if s == nil {
		return nopSearcher{}
	}
	return s
}
