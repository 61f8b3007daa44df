package shopify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/computerwizzy/shopify-inventory-sync/internal/resilience"
)

// ErrRateLimited indicates the API returned 429.
var ErrRateLimited = errors.New("shopify API rate limit exceeded")

// ErrOverloaded indicates the API returned 529. Overload is treated as a
// stronger signal than a plain rate limit: batch runs abort on it.
var ErrOverloaded = errors.New("shopify API overloaded")

// RateLimitError carries the Retry-After hint from a 429 response. It
// unwraps to ErrRateLimited.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("shopify API rate limit exceeded, retry after %s", e.RetryAfter)
	}
	return ErrRateLimited.Error()
}

func (e *RateLimitError) Unwrap() error { return ErrRateLimited }

// ServerError represents a 5xx error other than overload.
type ServerError struct {
	StatusCode int
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("shopify server error: HTTP %d", e.StatusCode)
}

// APIError represents a 4xx response. These are request problems, not API
// health problems, and are never retried.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("shopify API error: HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("shopify API error: HTTP %d: %s", e.StatusCode, e.Message)
}

// TransportError wraps a network-level failure (connection refused, reset,
// timeout). Retryable.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "shopify request failed: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsRateLimited reports whether err stems from a 429 response.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// IsOverloaded reports whether err stems from a 529 response.
func IsOverloaded(err error) bool {
	return errors.Is(err, ErrOverloaded)
}

// IsRetryable reports whether another attempt could help: rate limits,
// overloads, server errors and transport failures qualify. Client errors,
// an open breaker and context cancellation do not.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, resilience.ErrCircuitOpen) {
		return false
	}
	if errors.Is(err, ErrRateLimited) || errors.Is(err, ErrOverloaded) {
		return true
	}
	var serverErr *ServerError
	if errors.As(err, &serverErr) {
		return true
	}
	var transportErr *TransportError
	return errors.As(err, &transportErr)
}
