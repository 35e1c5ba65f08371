package acquire

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"time"

	"github.com/fwojciec/adamsdoc"
	"github.com/fwojciec/adamsdoc/goquery"
	"github.com/fwojciec/adamsdoc/retry"
)

// Dynamic wait defaults for the rendered results page.
const (
	DefaultMinWait       = 5 * time.Second
	DefaultMaxWait       = 15 * time.Second
	DefaultCheckInterval = 500 * time.Millisecond
)

// ResultsBaseURL is the registry's client-rendered results page.
const ResultsBaseURL = "https://adams-search.nrc.gov/results/"

var _ adamsdoc.SearchStrategy = (*BrowserStrategy)(nil)

// BrowserStrategy searches by rendering the registry's results page in a
// headless browser and parsing the result table.
type BrowserStrategy struct {
	browser    adamsdoc.Browser
	navPolicy  retry.Policy
	evalPolicy retry.Policy
	minWait    time.Duration
	maxWait    time.Duration
	interval   time.Duration
	resultsURL func(query string) string
}

// BrowserOption configures a BrowserStrategy.
type BrowserOption func(*BrowserStrategy)

// WithWait sets the dynamic wait: results are polled every interval after
// minWait has elapsed, giving up once maxWait has elapsed.
func WithWait(minWait, maxWait, interval time.Duration) BrowserOption {
	return func(s *BrowserStrategy) {
		s.minWait = minWait
		s.maxWait = maxWait
		s.interval = interval
	}
}

// WithNavigationPolicy sets the retry policy for page navigation.
func WithNavigationPolicy(p retry.Policy) BrowserOption {
	return func(s *BrowserStrategy) {
		s.navPolicy = p
	}
}

// WithEvaluationPolicy sets the retry policy for reading the result table.
// Defaults to 3 attempts 2 seconds apart.
func WithEvaluationPolicy(p retry.Policy) BrowserOption {
	return func(s *BrowserStrategy) {
		s.evalPolicy = p
	}
}

// WithResultsURL overrides how the results page URL is built.
func WithResultsURL(fn func(query string) string) BrowserOption {
	return func(s *BrowserStrategy) {
		s.resultsURL = fn
	}
}

// NewBrowserStrategy creates a BrowserStrategy using browser.
func NewBrowserStrategy(browser adamsdoc.Browser, opts ...BrowserOption) *BrowserStrategy {
	s := &BrowserStrategy{
		browser:    browser,
		navPolicy:  retry.DefaultPolicy(),
		evalPolicy: retry.Policy{MaxAttempts: 3, Delay: 2 * time.Second, Multiplier: 1},
		minWait:    DefaultMinWait,
		maxWait:    DefaultMaxWait,
		interval:   DefaultCheckInterval,
		resultsURL: ResultsURL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name implements adamsdoc.SearchStrategy.
func (s *BrowserStrategy) Name() string {
	return "browser"
}

type resultsParams struct {
	Keywords        string `json:"keywords"`
	LegacyLibFilter bool   `json:"legacyLibFilter"`
	MainLibFilter   bool   `json:"mainLibFilter"`
	Any             []any  `json:"any"`
	All             []any  `json:"all"`
}

// ResultsURL returns the results page URL for query. The search parameters
// are JSON-encoded into the final path segment.
func ResultsURL(query string) string {
	data, _ := json.Marshal(resultsParams{
		Keywords:        query,
		LegacyLibFilter: true,
		MainLibFilter:   true,
		Any:             []any{},
		All:             []any{},
	})
	return ResultsBaseURL + strings.ReplaceAll(url.QueryEscape(string(data)), "+", "%20")
}

// Search opens a page, waits for results to render and parses them.
// Results that never render yield an empty slice and a nil error.
func (s *BrowserStrategy) Search(ctx context.Context, query string, maxResults int) ([]*adamsdoc.Descriptor, error) {
	page, err := s.browser.OpenPage(ctx)
	if err != nil {
		return nil, err
	}
	defer page.Close()

	target := s.resultsURL(query)
	if _, err := retry.Do(ctx, s.navPolicy, "navigate to results", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, page.Navigate(ctx, target)
	}); err != nil {
		return nil, err
	}

	found, err := s.waitForResults(ctx, page)
	if err != nil {
		return nil, err
	}
	if !found {
		return []*adamsdoc.Descriptor{}, nil
	}

	docs, err := retry.Do(ctx, s.evalPolicy, "evaluate results", func(ctx context.Context) ([]*adamsdoc.Descriptor, error) {
		html, err := page.HTML(ctx)
		if err != nil {
			return nil, err
		}
		return goquery.ParseResults(html)
	})
	if err != nil {
		return nil, err
	}

	return uniqueDescriptors(docs, maxResults), nil
}

// waitForResults sleeps minWait, then polls the page until a result row
// appears or maxWait has elapsed since the start. Snapshot errors while
// polling are treated as not ready yet.
func (s *BrowserStrategy) waitForResults(ctx context.Context, page adamsdoc.Page) (bool, error) {
	start := time.Now()
	if err := sleep(ctx, s.minWait); err != nil {
		return false, err
	}

	for {
		if html, err := page.HTML(ctx); err == nil && goquery.HasResults(html) {
			return true, nil
		}
		if time.Since(start) >= s.maxWait {
			return false, nil
		}
		if err := sleep(ctx, s.interval); err != nil {
			return false, err
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
