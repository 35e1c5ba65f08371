// Package http implements the registry's structured search API and the PDF
// downloader over net/http.
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/fwojciec/adamsdoc"
	"github.com/fwojciec/adamsdoc/retry"
)

// Defaults for requests against the registry.
const (
	DefaultSearchEndpoint  = "https://adams-search.nrc.gov/api/search"
	DefaultAPITimeout      = 30 * time.Second
	DefaultDownloadTimeout = 120 * time.Second
	MaxRedirects           = 5
)

// UserAgent is sent with every request; the registry rejects unknown clients.
const UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// Option configures a SearchAPI or Downloader.
type Option func(*config)

type config struct {
	timeout  time.Duration
	policy   retry.Policy
	endpoint string
	urls     func(id string) []string
	now      func() time.Time
}

func newConfig(timeout time.Duration, opts []Option) config {
	cfg := config{
		timeout:  timeout,
		policy:   retry.DefaultPolicy(),
		endpoint: DefaultSearchEndpoint,
		urls:     DownloadURLs,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithTimeout sets the timeout for a single HTTP request.
// Defaults to DefaultAPITimeout for searches and DefaultDownloadTimeout for downloads.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		c.timeout = d
	}
}

// WithRetryPolicy sets the policy applied to each request.
func WithRetryPolicy(p retry.Policy) Option {
	return func(c *config) {
		c.policy = p
	}
}

// WithEndpoint sets the search API endpoint.
func WithEndpoint(url string) Option {
	return func(c *config) {
		c.endpoint = url
	}
}

// WithURLs sets the ordered download URLs tried for a document.
// Defaults to DownloadURLs.
func WithURLs(fn func(id string) []string) Option {
	return func(c *config) {
		c.urls = fn
	}
}

// WithClock sets the time source used to date download folders.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		c.now = now
	}
}

// DownloadURLs returns the primary and alternate URL for a document.
func DownloadURLs(id string) []string {
	return []string{adamsdoc.PrimaryURL(id), adamsdoc.AlternateURL(id)}
}

func newClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= MaxRedirects {
				return fmt.Errorf("stopped after %d redirects", MaxRedirects)
			}
			return nil
		},
	}
}

// statusError classifies a non-200 response. Server errors are transient;
// anything else will not improve on retry.
func statusError(code int, url string) error {
	if code >= http.StatusInternalServerError {
		return adamsdoc.Errorf(adamsdoc.EUNAVAILABLE, "HTTP %d for %s", code, url)
	}
	return retry.Permanent(adamsdoc.Errorf(adamsdoc.ECONTENT, "HTTP %d for %s", code, url))
}

// requestError classifies a failed round trip.
func requestError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return retry.Permanent(ctx.Err())
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return adamsdoc.Errorf(adamsdoc.EUNAVAILABLE, "request timed out: %v", err)
	}
	return adamsdoc.Errorf(adamsdoc.EUNAVAILABLE, "request failed: %v", err)
}
