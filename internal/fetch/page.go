// Package fetch turns one URL into normalized page data.
// It has no knowledge of queries; retry policy belongs to callers.
package fetch

import (
	"context"
	"fmt"
	"time"
)

// PageData is the normalized result of fetching and parsing one page.
type PageData struct {
	URL          string `json:"url"`
	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
	BodyText     string `json:"body_text,omitempty"`
	BodyMarkdown string `json:"body_markdown,omitempty"`
	Favicon      string `json:"favicon,omitempty"`
	PreviewImage string `json:"preview_image,omitempty"`
	SiteName     string `json:"site_name,omitempty"`
}

// ErrorKind classifies fetch failures.
type ErrorKind int

const (
	KindNetwork     ErrorKind = iota // timeout, connection failure
	KindHTTPStatus                   // non-2xx response
	KindContentType                  // non-HTML payload
	KindParse                        // unparseable or empty content
)

// String returns a stable name for the kind.
func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindHTTPStatus:
		return "http_status"
	case KindContentType:
		return "content_type"
	case KindParse:
		return "parse"
	default:
		return "unknown"
	}
}

// Error is the typed failure returned by fetchers. It is a value the
// caller inspects, never a reason to abort a whole search session.
type Error struct {
	Kind ErrorKind
	URL  string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Options controls one fetch call.
type Options struct {
	Timeout  time.Duration
	MaxBytes int64
}

// DefaultOptions returns the standard fetch limits.
func DefaultOptions() Options {
	return Options{
		Timeout:  15 * time.Second,
		MaxBytes: 2 << 20,
	}
}

// Fetcher retrieves one page. Implementations must not retry
// internally and must not share cancellation between calls.
type Fetcher interface {
	Fetch(ctx context.Context, url string, opts Options) (*PageData, error)
}
