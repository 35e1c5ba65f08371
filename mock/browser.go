package mock

import (
	"context"

	"github.com/fwojciec/adamsdoc"
)

var (
	_ adamsdoc.Browser = (*Browser)(nil)
	_ adamsdoc.Page    = (*Page)(nil)
)

// Browser is a mock implementation of adamsdoc.Browser.
type Browser struct {
	OpenPageFn func(ctx context.Context) (adamsdoc.Page, error)
	CloseFn    func() error
}

func (b *Browser) OpenPage(ctx context.Context) (adamsdoc.Page, error) {
	return b.OpenPageFn(ctx)
}

func (b *Browser) Close() error {
	return b.CloseFn()
}

// Page is a mock implementation of adamsdoc.Page.
type Page struct {
	NavigateFn func(ctx context.Context, url string) error
	HTMLFn     func(ctx context.Context) (string, error)
	CloseFn    func() error
}

func (p *Page) Navigate(ctx context.Context, url string) error {
	return p.NavigateFn(ctx, url)
}

func (p *Page) HTML(ctx context.Context) (string, error) {
	return p.HTMLFn(ctx)
}

func (p *Page) Close() error {
	return p.CloseFn()
}
