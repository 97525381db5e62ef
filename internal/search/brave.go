package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
)

const defaultBraveBaseURL = "https://api.search.brave.com/res/v1"

// BraveProvider queries the Brave Search API with a subscription
// token. Web is required; news and images are best effort.
type BraveProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
	retry   RetryConfig
	log     *zap.Logger
}

// NewBraveProvider creates the token-authenticated provider.
func NewBraveProvider(apiKey, baseURL string, timeout time.Duration, retry RetryConfig, logger *zap.Logger) *BraveProvider {
	if baseURL == "" {
		baseURL = defaultBraveBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BraveProvider{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		retry:   retry,
		log:     logger.Named("search.brave"),
	}
}

func (p *BraveProvider) Name() string { return "brave" }

// Search runs the web query, plus news/images when requested. A web
// failure fails the call; news/image failures degrade to empty lists.
func (p *BraveProvider) Search(ctx context.Context, query string, opts Options) (*Results, error) {
	results := &Results{}

	web, err := p.searchWeb(ctx, query, opts.NumResults)
	if err != nil {
		return nil, fmt.Errorf("brave web search: %w", err)
	}
	results.Web = web

	if opts.IncludeNews {
		news, err := p.searchNews(ctx, query, opts.NumResults)
		if err != nil {
			p.log.Warn("news search failed", zap.String("query", query), zap.Error(err))
		} else {
			results.News = news
		}
	}

	if opts.IncludeImages {
		images, err := p.searchImages(ctx, query, opts.NumResults)
		if err != nil {
			p.log.Warn("image search failed", zap.String("query", query), zap.Error(err))
		} else {
			results.Images = images
		}
	}

	return results, nil
}

// get issues one authenticated GET with bounded 429 retry.
func (p *BraveProvider) get(ctx context.Context, endpoint, query string, count int) ([]byte, error) {
	reqURL := fmt.Sprintf("%s/%s?q=%s&count=%s",
		p.baseURL, endpoint, url.QueryEscape(query), strconv.Itoa(count))

	resp, err := doWithRetry(ctx, p.retry, func(ctx context.Context) (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("X-Subscription-Token", p.apiKey)
		return p.client.Do(req)
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	return io.ReadAll(io.LimitReader(resp.Body, 1<<20))
}

func (p *BraveProvider) searchWeb(ctx context.Context, query string, count int) ([]WebResult, error) {
	body, err := p.get(ctx, "web/search", query, count)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Web struct {
			Results []struct {
				Title       string `json:"title"`
				URL         string `json:"url"`
				Description string `json:"description"`
			} `json:"results"`
		} `json:"web"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("malformed response: %w", err)
	}

	results := make([]WebResult, 0, len(payload.Web.Results))
	for _, r := range payload.Web.Results {
		if len(results) >= count {
			break
		}
		results = append(results, WebResult{
			Title:       r.Title,
			URL:         r.URL,
			Description: r.Description,
		})
	}
	return results, nil
}

func (p *BraveProvider) searchNews(ctx context.Context, query string, count int) ([]NewsItem, error) {
	body, err := p.get(ctx, "news/search", query, count)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Results []struct {
			Title   string `json:"title"`
			URL     string `json:"url"`
			Age     string `json:"age"`
			MetaURL struct {
				Hostname string `json:"hostname"`
			} `json:"meta_url"`
		} `json:"results"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("malformed response: %w", err)
	}

	items := make([]NewsItem, 0, len(payload.Results))
	for _, r := range payload.Results {
		if len(items) >= count {
			break
		}
		items = append(items, NewsItem{
			Title:  r.Title,
			URL:    r.URL,
			Source: r.MetaURL.Hostname,
			Date:   r.Age,
		})
	}
	return items, nil
}

func (p *BraveProvider) searchImages(ctx context.Context, query string, count int) ([]ImageItem, error) {
	body, err := p.get(ctx, "images/search", query, count)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Results []struct {
			Title     string `json:"title"`
			URL       string `json:"url"`
			Thumbnail struct {
				Src string `json:"src"`
			} `json:"thumbnail"`
			Properties struct {
				URL string `json:"url"`
			} `json:"properties"`
		} `json:"results"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("malformed response: %w", err)
	}

	items := make([]ImageItem, 0, len(payload.Results))
	for _, r := range payload.Results {
		if len(items) >= count {
			break
		}
		items = append(items, ImageItem{
			Title:        r.Title,
			URL:          r.Properties.URL,
			ThumbnailURL: r.Thumbnail.Src,
			SourceURL:    r.URL,
		})
	}
	return items, nil
}
