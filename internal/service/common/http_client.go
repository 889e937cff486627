package common

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// HTTPClient is the subset of *http.Client used by the YouTube clients
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// NewHTTPClient creates an *http.Client with the given request timeout
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
	}
}

// RateLimiter blocks until a request may be sent
type RateLimiter interface {
	Wait(ctx context.Context) error
}

// NewRateLimiter returns a token bucket allowing rps requests per second.
// rps <= 0 disables limiting.
func NewRateLimiter(rps float64) RateLimiter {
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Limit(rps), 1)
}
