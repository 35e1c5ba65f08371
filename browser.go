package adamsdoc

import "context"

// Browser drives a headless browser.
// A single Browser is reused across a session; each caller opens its own Page.
type Browser interface {
	// OpenPage opens a new tab. The caller must Close it.
	OpenPage(ctx context.Context) (Page, error)

	// Close releases browser resources.
	Close() error
}

// Page is a single browser tab.
type Page interface {
	// Navigate loads the URL and waits for the DOM content to be loaded.
	Navigate(ctx context.Context, url string) error

	// HTML returns a snapshot of the rendered document.
	HTML(ctx context.Context) (string, error)

	// Close closes the tab.
	Close() error
}
