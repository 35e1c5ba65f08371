package rod

import (
	"context"
	"fmt"
	"time"

	"github.com/fwojciec/adamsdoc"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

var _ adamsdoc.Page = (*Page)(nil)

// Page is a browser tab opened by Browser.OpenPage.
type Page struct {
	page    *rod.Page
	router  *rod.HijackRouter
	timeout time.Duration
}

// Navigate loads url and waits until the DOM content has loaded.
func (p *Page) Navigate(ctx context.Context, url string) error {
	opCtx, cancel := p.bound(ctx)
	defer cancel()
	pg := p.page.Context(opCtx)

	wait := pg.WaitNavigation(proto.PageLifecycleEventNameDOMContentLoaded)
	if err := pg.Navigate(url); err != nil {
		return p.opError(ctx, opCtx, err, "navigating to "+url)
	}
	wait()

	if opCtx.Err() != nil {
		return p.opError(ctx, opCtx, opCtx.Err(), "navigating to "+url)
	}
	return nil
}

// HTML returns the rendered document.
func (p *Page) HTML(ctx context.Context) (string, error) {
	opCtx, cancel := p.bound(ctx)
	defer cancel()

	html, err := p.page.Context(opCtx).HTML()
	if err != nil {
		return "", p.opError(ctx, opCtx, err, "reading page")
	}
	return html, nil
}

// Close stops request interception and closes the tab.
func (p *Page) Close() error {
	if p.router != nil {
		_ = p.router.Stop()
	}
	return p.page.Close()
}

func (p *Page) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, p.timeout)
}

// opError prefers the caller's context error over the page's own timeout.
func (p *Page) opError(ctx, opCtx context.Context, err error, op string) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if opCtx.Err() != nil {
		return fmt.Errorf("%s: timed out after %s: %w", op, p.timeout, context.DeadlineExceeded)
	}
	return adamsdoc.Errorf(adamsdoc.EUNAVAILABLE, "%s: %v", op, err)
}
