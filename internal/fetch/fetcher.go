package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// Limits holds the extraction thresholds and output caps.
type Limits struct {
	ContainerMinChars int // minimum text for a container candidate
	TextCap           int // plain text truncation cap
	MarkdownCap       int // markdown truncation cap
}

// DefaultLimits returns the standard extraction limits.
func DefaultLimits() Limits {
	return Limits{
		ContainerMinChars: 100,
		TextCap:           10000,
		MarkdownCap:       20000,
	}
}

// HTTPFetcher fetches pages over plain HTTP. It performs exactly one
// request per call: no retries, no redirect beyond the client default.
type HTTPFetcher struct {
	client *http.Client
	limits Limits
	log    *zap.Logger
}

// NewHTTPFetcher creates an HTTP page fetcher.
func NewHTTPFetcher(limits Limits, logger *zap.Logger) *HTTPFetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPFetcher{
		client: &http.Client{},
		limits: limits,
		log:    logger.Named("fetch"),
	}
}

// Fetch retrieves one URL and parses it into PageData.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string, opts Options) (*PageData, error) {
	if _, err := url.ParseRequestURI(rawURL); err != nil {
		return nil, &Error{Kind: KindNetwork, URL: rawURL, Err: fmt.Errorf("invalid url: %w", err)}
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, URL: rawURL, Err: err}
	}
	setBrowserHeaders(req)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{Kind: KindHTTPStatus, URL: rawURL, Err: fmt.Errorf("HTTP %d", resp.StatusCode)}
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType != "" && !strings.Contains(contentType, "html") {
		return nil, &Error{Kind: KindContentType, URL: rawURL, Err: fmt.Errorf("unsupported content type %q", contentType)}
	}

	// Oversized bodies are truncated and processed, not rejected, so
	// partial content still contributes to the session.
	maxBytes := opts.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultOptions().MaxBytes
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes))
	if err != nil {
		return nil, &Error{Kind: KindNetwork, URL: rawURL, Err: fmt.Errorf("failed to read body: %w", err)}
	}

	page, err := parsePage(string(body), rawURL, f.limits)
	if err != nil {
		return nil, err
	}

	f.log.Debug("page fetched",
		zap.String("url", rawURL),
		zap.Int("text_chars", len(page.BodyText)),
		zap.Int("markdown_chars", len(page.BodyMarkdown)))
	return page, nil
}

// parsePage runs the shared extraction pipeline: head metadata first,
// then boilerplate stripping, container selection, and conversion.
func parsePage(rawHTML, pageURL string, limits Limits) (*PageData, error) {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil, &Error{Kind: KindParse, URL: pageURL, Err: err}
	}

	meta := extractMeta(doc)

	stripBoilerplate(doc)
	container := selectContainer(doc, limits.ContainerMinChars)

	text := textContent(container)
	markdown := toMarkdown(container)

	if meta.Title == "" && text == "" {
		return nil, &Error{Kind: KindParse, URL: pageURL, Err: fmt.Errorf("no extractable content")}
	}

	return &PageData{
		URL:          pageURL,
		Title:        meta.Title,
		Description:  meta.Description,
		BodyText:     truncateRunes(text, limits.TextCap),
		BodyMarkdown: truncateRunes(markdown, limits.MarkdownCap),
		Favicon:      resolveRef(pageURL, meta.Favicon),
		PreviewImage: resolveRef(pageURL, meta.OGImage),
		SiteName:     meta.SiteName,
	}, nil
}

// resolveRef resolves a possibly relative reference against the page URL.
func resolveRef(pageURL, ref string) string {
	if ref == "" {
		return ""
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return ref
	}
	resolved, err := base.Parse(ref)
	if err != nil {
		return ref
	}
	return resolved.String()
}
