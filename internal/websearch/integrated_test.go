package websearch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"strata/internal/fetch"
	"strata/internal/search"
)

type fakeSearcher struct {
	results *search.Results
	queries []string
}

func (f *fakeSearcher) Search(_ context.Context, query string, _ search.Options) *search.Results {
	f.queries = append(f.queries, query)
	if f.results == nil {
		return &search.Results{}
	}
	return f.results
}

type fakeFetcher struct {
	mu    sync.Mutex
	pages map[string]*fetch.PageData

	calls   atomic.Int64
	active  atomic.Int64
	maxSeen atomic.Int64
	delay   time.Duration
}

func (f *fakeFetcher) Fetch(_ context.Context, rawURL string, _ fetch.Options) (*fetch.PageData, error) {
	f.calls.Add(1)
	cur := f.active.Add(1)
	for {
		max := f.maxSeen.Load()
		if cur <= max || f.maxSeen.CompareAndSwap(max, cur) {
			break
		}
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.active.Add(-1)

	f.mu.Lock()
	page, ok := f.pages[rawURL]
	f.mu.Unlock()
	if !ok {
		return nil, errors.New("fetch failed")
	}
	return page, nil
}

func webResults(n int) []search.WebResult {
	out := make([]search.WebResult, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, search.WebResult{
			Title:       fmt.Sprintf("Result %d", i),
			URL:         fmt.Sprintf("https://www.example.org/page/%d", i),
			Description: fmt.Sprintf("Description of result %d", i),
		})
	}
	return out
}

func TestRunScrapeDisabledMakesNoFetches(t *testing.T) {
	searcher := &fakeSearcher{results: &search.Results{Web: webResults(3)}}
	fetcher := &fakeFetcher{}
	ws := New(searcher, fetcher, DefaultConfig(), zap.NewNop())

	resp := ws.Run(context.Background(), "go generics", Options{NumResults: 3})

	require.Len(t, resp.Web, 3)
	assert.Zero(t, fetcher.calls.Load())
	for i, doc := range resp.Web {
		assert.False(t, doc.Scraped)
		assert.Equal(t, fmt.Sprintf("Description of result %d", i), doc.Content)
		assert.Equal(t, fmt.Sprintf("# Result %d\n\nDescription of result %d", i, i), doc.Markdown)
		assert.Equal(t, "example.org", doc.SiteName)
	}
}

func TestRunMergesScrapedContent(t *testing.T) {
	web := webResults(2)
	long := strings.Repeat("substantial body text. ", 10)
	searcher := &fakeSearcher{results: &search.Results{Web: web}}
	fetcher := &fakeFetcher{pages: map[string]*fetch.PageData{
		web[0].URL: {
			Title:        "Fetched Title",
			Description:  "Fetched description.",
			BodyText:     long,
			BodyMarkdown: "## Section\n\n" + long,
			Favicon:      "https://www.example.org/favicon.ico",
			PreviewImage: "https://www.example.org/og.png",
			SiteName:     "Example",
		},
	}}
	ws := New(searcher, fetcher, DefaultConfig(), zap.NewNop())

	resp := ws.Run(context.Background(), "q", Options{NumResults: 2, ScrapeContent: true})
	require.Len(t, resp.Web, 2)

	scraped := resp.Web[0]
	assert.True(t, scraped.Scraped)
	assert.Equal(t, "Fetched Title", scraped.Title)
	assert.Equal(t, "Fetched description.", scraped.Description)
	assert.Equal(t, long, scraped.Content)
	assert.Equal(t, "Example", scraped.SiteName)
	assert.Equal(t, "https://www.example.org/og.png", scraped.PreviewImage)

	// Fetch failure degrades to the provider fields, not a dropped result.
	fallback := resp.Web[1]
	assert.False(t, fallback.Scraped)
	assert.Equal(t, "Result 1", fallback.Title)
	assert.Equal(t, "Description of result 1", fallback.Content)
	assert.Equal(t, "example.org", fallback.SiteName)
}

func TestRunShortScrapePrefersDescription(t *testing.T) {
	web := webResults(1)
	searcher := &fakeSearcher{results: &search.Results{Web: web}}
	fetcher := &fakeFetcher{pages: map[string]*fetch.PageData{
		web[0].URL: {Title: "Thin Page", BodyText: "too short", BodyMarkdown: "thin"},
	}}
	ws := New(searcher, fetcher, DefaultConfig(), zap.NewNop())

	resp := ws.Run(context.Background(), "q", Options{NumResults: 1, ScrapeContent: true})
	require.Len(t, resp.Web, 1)

	doc := resp.Web[0]
	assert.False(t, doc.Scraped)
	assert.Equal(t, "Result 0", doc.Title)
	assert.Equal(t, "Description of result 0", doc.Content)
	assert.Equal(t, "# Result 0\n\nDescription of result 0", doc.Markdown)
	assert.Equal(t, int64(1), fetcher.calls.Load())
}

func TestRunContentThresholdCountsCharacters(t *testing.T) {
	web := webResults(1)
	// 20 CJK characters span 60 bytes; the 50-character threshold must
	// still treat the page as too thin.
	searcher := &fakeSearcher{results: &search.Results{Web: web}}
	fetcher := &fakeFetcher{pages: map[string]*fetch.PageData{
		web[0].URL: {Title: "Thin CJK Page", BodyText: strings.Repeat("日", 20)},
	}}
	ws := New(searcher, fetcher, DefaultConfig(), zap.NewNop())

	resp := ws.Run(context.Background(), "q", Options{NumResults: 1, ScrapeContent: true})
	require.Len(t, resp.Web, 1)
	assert.False(t, resp.Web[0].Scraped)

	// 50 CJK characters clear it.
	fetcher.mu.Lock()
	fetcher.pages[web[0].URL] = &fetch.PageData{Title: "Full CJK Page", BodyText: strings.Repeat("日", 50)}
	fetcher.mu.Unlock()

	resp = ws.Run(context.Background(), "q", Options{NumResults: 1, ScrapeContent: true})
	require.Len(t, resp.Web, 1)
	assert.True(t, resp.Web[0].Scraped)
}

func TestRunBoundsFetchConcurrency(t *testing.T) {
	web := webResults(12)
	pages := make(map[string]*fetch.PageData, len(web))
	body := strings.Repeat("x", 80)
	for _, r := range web {
		pages[r.URL] = &fetch.PageData{Title: r.Title, BodyText: body}
	}
	searcher := &fakeSearcher{results: &search.Results{Web: web}}
	fetcher := &fakeFetcher{pages: pages, delay: 10 * time.Millisecond}

	cfg := DefaultConfig()
	cfg.Workers = 3
	ws := New(searcher, fetcher, cfg, zap.NewNop())

	resp := ws.Run(context.Background(), "q", Options{NumResults: 12, ScrapeContent: true})

	require.Len(t, resp.Web, 12)
	assert.Equal(t, int64(12), fetcher.calls.Load())
	assert.LessOrEqual(t, fetcher.maxSeen.Load(), int64(3))
	// Merge order follows provider order regardless of fetch completion.
	for i, doc := range resp.Web {
		assert.Equal(t, fmt.Sprintf("Result %d", i), doc.Title)
		assert.True(t, doc.Scraped)
	}
}

func TestRunPassesThroughNewsAndImages(t *testing.T) {
	searcher := &fakeSearcher{results: &search.Results{
		Web:    webResults(1),
		News:   []search.NewsItem{{Title: "Headline", URL: "https://news.example.org/a"}},
		Images: []search.ImageItem{{Title: "Pic", URL: "https://img.example.org/a.png"}},
	}}
	ws := New(searcher, &fakeFetcher{}, DefaultConfig(), zap.NewNop())

	resp := ws.Run(context.Background(), "q", Options{NumResults: 1, IncludeNews: true, IncludeImages: true})

	require.Len(t, resp.News, 1)
	require.Len(t, resp.Images, 1)
	assert.Equal(t, "Headline", resp.News[0].Title)
	assert.Equal(t, "Pic", resp.Images[0].Title)
}

func TestHostnameOf(t *testing.T) {
	assert.Equal(t, "example.org", hostnameOf("https://www.example.org/a/b"))
	assert.Equal(t, "sub.example.org", hostnameOf("http://sub.example.org"))
	assert.Equal(t, "", hostnameOf("::not a url"))
}
