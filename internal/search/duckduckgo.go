package search

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html"
)

const defaultDuckDuckGoURL = "https://html.duckduckgo.com/html/"

// DuckDuckGoProvider scrapes the DuckDuckGo HTML interface. It needs
// no credential and returns web results only; news and image lists
// are always empty (best effort per the provider contract).
type DuckDuckGoProvider struct {
	baseURL string
	client  *http.Client
	retry   RetryConfig
	log     *zap.Logger
}

// NewDuckDuckGoProvider creates the credential-free fallback provider.
func NewDuckDuckGoProvider(baseURL string, timeout time.Duration, retry RetryConfig, logger *zap.Logger) *DuckDuckGoProvider {
	if baseURL == "" {
		baseURL = defaultDuckDuckGoURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DuckDuckGoProvider{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		retry:   retry,
		log:     logger.Named("search.ddg"),
	}
}

func (p *DuckDuckGoProvider) Name() string { return "duckduckgo" }

// Search scrapes one results page.
func (p *DuckDuckGoProvider) Search(ctx context.Context, query string, opts Options) (*Results, error) {
	searchURL := p.baseURL + "?q=" + url.QueryEscape(query)

	resp, err := doWithRetry(ctx, p.retry, func(ctx context.Context) (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		req.Header.Set("Accept-Language", "en-US,en;q=0.5")
		return p.client.Do(req)
	})
	if err != nil {
		return nil, fmt.Errorf("duckduckgo request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	page := string(body)
	if isChallengePage(page) {
		return nil, fmt.Errorf("anti-bot challenge detected")
	}

	web, err := parseDuckDuckGoResults(page, opts.NumResults)
	if err != nil {
		return nil, err
	}

	p.log.Debug("duckduckgo search", zap.String("query", query), zap.Int("results", len(web)))
	return &Results{Web: web}, nil
}

// isChallengePage detects the DuckDuckGo anomaly interstitial.
func isChallengePage(page string) bool {
	return strings.Contains(page, "anomaly-modal") ||
		strings.Contains(page, "challenge-form")
}

// parseDuckDuckGoResults extracts results from the HTML serp.
// Result blocks carry class="result results_links ...".
func parseDuckDuckGoResults(htmlContent string, maxResults int) ([]WebResult, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var results []WebResult

	var findResults func(*html.Node)
	findResults = func(n *html.Node) {
		if len(results) >= maxResults {
			return
		}

		if n.Type == html.ElementNode && n.Data == "div" {
			class := nodeAttr(n, "class")
			if strings.Contains(class, "result") && strings.Contains(class, "results_links") {
				if r := extractResult(n); r.URL != "" && r.Title != "" {
					results = append(results, r)
				}
				return
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			findResults(c)
		}
	}
	findResults(doc)

	return results, nil
}

// extractResult pulls title/url/snippet out of one result div.
func extractResult(n *html.Node) WebResult {
	var result WebResult

	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			class := nodeAttr(n, "class")
			if strings.Contains(class, "result__a") {
				result.URL = nodeAttr(n, "href")
				result.Title = nodeText(n)
			} else if strings.Contains(class, "result__snippet") {
				result.Description = nodeText(n)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)

	result.URL = decodeRedirect(result.URL)
	return result
}

// decodeRedirect unwraps DuckDuckGo /l/?uddg= redirect URLs.
func decodeRedirect(raw string) string {
	const prefix = "//duckduckgo.com/l/?uddg="
	if !strings.HasPrefix(raw, prefix) {
		return raw
	}
	decoded, err := url.QueryUnescape(strings.TrimPrefix(raw, prefix))
	if err != nil {
		return raw
	}
	if idx := strings.Index(decoded, "&"); idx > 0 {
		decoded = decoded[:idx]
	}
	return decoded
}

// nodeAttr returns the value of an attribute.
func nodeAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// nodeText returns all text content within a node.
func nodeText(n *html.Node) string {
	var sb strings.Builder
	var getText func(*html.Node)
	getText = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(strings.TrimSpace(n.Data))
			sb.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			getText(c)
		}
	}
	getText(n)
	return strings.TrimSpace(sb.String())
}
