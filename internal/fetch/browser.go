// Package fetch - headless-browser fetch strategy.
// Same contract as HTTPFetcher; useful for JavaScript-rendered pages.
package fetch

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
)

// BrowserFetcher renders pages with a shared headless browser and runs
// the rendered HTML through the same extraction pipeline as the HTTP
// strategy.
type BrowserFetcher struct {
	limits Limits
	log    *zap.Logger

	mu      sync.Mutex
	browser *rod.Browser
}

// NewBrowserFetcher creates a browser-backed page fetcher. The browser
// process is launched lazily on first Fetch.
func NewBrowserFetcher(limits Limits, logger *zap.Logger) *BrowserFetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BrowserFetcher{
		limits: limits,
		log:    logger.Named("fetch.browser"),
	}
}

// ensureBrowser launches and connects the shared browser once.
func (f *BrowserFetcher) ensureBrowser(ctx context.Context) (*rod.Browser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.browser != nil {
		return f.browser, nil
	}

	controlURL, err := launcher.New().Headless(true).Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	f.log.Info("headless browser launched")
	f.browser = browser
	return browser, nil
}

// Fetch renders one URL and parses it into PageData.
func (f *BrowserFetcher) Fetch(ctx context.Context, rawURL string, opts Options) (*PageData, error) {
	browser, err := f.ensureBrowser(context.WithoutCancel(ctx))
	if err != nil {
		return nil, &Error{Kind: KindNetwork, URL: rawURL, Err: err}
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: rawURL})
	if err != nil {
		return nil, &Error{Kind: KindNetwork, URL: rawURL, Err: err}
	}
	defer page.Close()

	page = page.Context(ctx)
	if err := page.WaitLoad(); err != nil {
		return nil, &Error{Kind: KindNetwork, URL: rawURL, Err: fmt.Errorf("page load: %w", err)}
	}

	rendered, err := page.HTML()
	if err != nil {
		return nil, &Error{Kind: KindParse, URL: rawURL, Err: fmt.Errorf("html snapshot: %w", err)}
	}

	f.log.Debug("page rendered", zap.String("url", rawURL), zap.Int("html_bytes", len(rendered)))
	return parsePage(rendered, rawURL, f.limits)
}

// Close shuts down the shared browser, if one was launched.
func (f *BrowserFetcher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.browser == nil {
		return nil
	}
	err := f.browser.Close()
	f.browser = nil
	return err
}
