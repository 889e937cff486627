// Package youtube lists channel uploads through the Data API search endpoint and
// extracts caption tracks from watch pages.
package youtube

import (
	"context"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/CodingGarden/yt-caption-downloader/internal/errors"
	"github.com/CodingGarden/yt-caption-downloader/internal/service/common"
)

const (
	defaultSearchURL = "https://www.googleapis.com/youtube/v3/search"
	defaultWatchURL  = "https://www.youtube.com/watch"

	// maxBodySize caps any single response; watch pages run to about 1.5 MB
	maxBodySize = 16 << 20
)

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient common.HTTPClient) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithSearchURL sets the search endpoint (useful for testing).
func WithSearchURL(url string) ClientOption {
	return func(c *Client) {
		c.searchURL = url
	}
}

// WithWatchURL sets the watch page URL videos are fetched from (useful for testing).
func WithWatchURL(url string) ClientOption {
	return func(c *Client) {
		c.watchURL = url
	}
}

// WithRateLimiter throttles search requests.
func WithRateLimiter(limiter common.RateLimiter) ClientOption {
	return func(c *Client) {
		c.limiter = limiter
	}
}

// WithCaptionLocator replaces the strategy that finds the caption blob in a watch page.
func WithCaptionLocator(locator CaptionLocator) ClientOption {
	return func(c *Client) {
		c.locator = locator
	}
}

// Client implements VideoLister and TranscriptExtractor.
type Client struct {
	apiKey     string
	searchURL  string
	watchURL   string
	httpClient common.HTTPClient
	limiter    common.RateLimiter
	locator    CaptionLocator
}

// NewClient creates a YouTube client authenticated with a static API key.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		apiKey:     apiKey,
		searchURL:  defaultSearchURL,
		watchURL:   defaultWatchURL,
		httpClient: &http.Client{},
		limiter:    common.NewRateLimiter(0),
		locator:    DefaultCaptionLocator(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// doRequest performs a GET and returns the status code and body. Non-2xx
// statuses are not errors here; callers decide how to read the body.
func (c *Client) doRequest(ctx context.Context, rawURL string, header http.Header) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to create request")
	}
	for key, values := range header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, apperrors.Wrap(err, apperrors.CodeExternal, fmt.Sprintf("request to %s failed", req.URL.Host))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return resp.StatusCode, nil, apperrors.Wrap(err, apperrors.CodeExternal, "failed to read response body")
	}

	return resp.StatusCode, body, nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
