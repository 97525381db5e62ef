package fetch

import (
	"net/http"
	"sync/atomic"
)

// userAgents is a small pool of browserlike User-Agent strings cycled
// across requests. Basic rotation only, no anti-bot evasion.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
}

var uaCounter atomic.Uint64

// nextUserAgent returns the next User-Agent in rotation order.
func nextUserAgent() string {
	n := uaCounter.Add(1)
	return userAgents[(n-1)%uint64(len(userAgents))]
}

// setBrowserHeaders applies rotating browserlike headers to a request.
func setBrowserHeaders(req *http.Request) {
	req.Header.Set("User-Agent", nextUserAgent())
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
}
