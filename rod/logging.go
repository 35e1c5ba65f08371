package rod

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/adamsdoc"
)

// Ensure LoggingBrowser implements adamsdoc.Browser.
var _ adamsdoc.Browser = (*LoggingBrowser)(nil)

// LoggingBrowser wraps a Browser with debug logging of page activity.
type LoggingBrowser struct {
	next   adamsdoc.Browser
	logger *slog.Logger
}

// NewLoggingBrowser creates a new LoggingBrowser.
func NewLoggingBrowser(next adamsdoc.Browser, logger *slog.Logger) *LoggingBrowser {
	return &LoggingBrowser{next: next, logger: logger}
}

// OpenPage opens a page whose navigation and snapshots are logged.
func (b *LoggingBrowser) OpenPage(ctx context.Context) (adamsdoc.Page, error) {
	page, err := b.next.OpenPage(ctx)
	if err != nil {
		b.logger.Debug("open page", "err", err)
		return nil, err
	}
	return &loggingPage{next: page, logger: b.logger}, nil
}

// Close delegates to the wrapped browser.
func (b *LoggingBrowser) Close() error {
	return b.next.Close()
}

type loggingPage struct {
	next   adamsdoc.Page
	logger *slog.Logger
}

func (p *loggingPage) Navigate(ctx context.Context, url string) (err error) {
	defer func(begin time.Time) {
		p.logger.Debug("navigate",
			"url", url,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return p.next.Navigate(ctx, url)
}

func (p *loggingPage) HTML(ctx context.Context) (html string, err error) {
	defer func(begin time.Time) {
		p.logger.Debug("page html",
			"bytes", len(html),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return p.next.HTML(ctx)
}

func (p *loggingPage) Close() error {
	return p.next.Close()
}
