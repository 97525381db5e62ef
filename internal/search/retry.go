// Package search - bounded retry for rate-limited provider requests.
package search

import (
	"context"
	"errors"
	"math"
	"net/http"
	"time"
)

// RetryConfig bounds the exponential backoff applied to provider
// requests that fail at the network level or hit HTTP 429.
type RetryConfig struct {
	MaxRetries     int           // attempts beyond the first
	InitialBackoff time.Duration // doubles each retry
	MaxBackoff     time.Duration // hard ceiling
}

// DefaultRetryConfig returns sensible retry defaults.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:     3,
		InitialBackoff: 1 * time.Second,
		MaxBackoff:     8 * time.Second,
	}
}

// ErrMaxRetriesExceeded indicates all retry attempts failed.
var ErrMaxRetriesExceeded = errors.New("maximum retries exceeded")

// doWithRetry executes fn with exponential backoff, retrying on
// transport errors and HTTP 429. Any other response is returned to
// the caller as-is, including other non-2xx statuses.
func doWithRetry(ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) (*http.Response, error)) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		resp, err := fn(ctx)
		if err == nil && resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}
		if err != nil {
			lastErr = err
		} else {
			resp.Body.Close()
			lastErr = errors.New("HTTP 429")
		}

		if attempt < cfg.MaxRetries {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoffFor(cfg, attempt)):
			}
		}
	}

	return nil, errors.Join(ErrMaxRetriesExceeded, lastErr)
}

// backoffFor computes initial * 2^attempt, capped at MaxBackoff.
func backoffFor(cfg RetryConfig, attempt int) time.Duration {
	backoff := float64(cfg.InitialBackoff) * math.Pow(2, float64(attempt))
	if backoff > float64(cfg.MaxBackoff) {
		backoff = float64(cfg.MaxBackoff)
	}
	return time.Duration(backoff)
}
