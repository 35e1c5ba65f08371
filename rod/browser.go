// Package rod implements adamsdoc.Browser with headless Chrome driven by go-rod.
package rod

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fwojciec/adamsdoc"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultMaxPages is the default number of pages before browser recycling.
const DefaultMaxPages = 75

// DefaultNavigationTimeout bounds each page operation when the caller's
// context has no earlier deadline.
const DefaultNavigationTimeout = 60 * time.Second

// UserAgent is presented by every page.
const UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// DefaultBlockedResources are request types aborted on every page. The result
// grid renders without them.
var DefaultBlockedResources = []proto.NetworkResourceType{
	proto.NetworkResourceTypeImage,
	proto.NetworkResourceTypeStylesheet,
	proto.NetworkResourceTypeFont,
	proto.NetworkResourceTypeMedia,
}

var _ adamsdoc.Browser = (*Browser)(nil)

// Browser owns a single headless Chrome for the session. Chrome is launched
// on the first OpenPage and recycled after maxPages pages, since its memory
// baseline grows under load and never returns to the initial level.
//
// Browser is safe for concurrent use.
type Browser struct {
	browser   *rod.Browser
	launcher  *launcher.Launcher
	pageCount int64
	maxPages  int64
	timeout   time.Duration
	blocked   []proto.NetworkResourceType
	mu        sync.Mutex
	closed    atomic.Bool
}

// Option configures a Browser.
type Option func(*Browser)

// WithMaxPages sets the maximum number of pages before the browser is recycled.
// Defaults to 75 if not specified.
func WithMaxPages(n int64) Option {
	return func(b *Browser) {
		b.maxPages = n
	}
}

// WithBlockedResources sets the resource types aborted on every page.
// Pass no types to load everything.
func WithBlockedResources(types ...proto.NetworkResourceType) Option {
	return func(b *Browser) {
		b.blocked = types
	}
}

// WithNavigationTimeout sets how long a single Navigate or HTML call may
// take. Defaults to 60 seconds if not specified.
func WithNavigationTimeout(d time.Duration) Option {
	return func(b *Browser) {
		b.timeout = d
	}
}

// NewBrowser creates a Browser. No process is started until the first page
// is opened. Close must be called when the Browser is no longer needed.
func NewBrowser(opts ...Option) *Browser {
	b := &Browser{
		maxPages: DefaultMaxPages,
		timeout:  DefaultNavigationTimeout,
		blocked:  DefaultBlockedResources,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// OpenPage opens a new tab with non-essential resources blocked.
func (b *Browser) OpenPage(ctx context.Context) (adamsdoc.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rb, err := b.current()
	if err != nil {
		return nil, err
	}

	p, err := rb.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, adamsdoc.Errorf(adamsdoc.EUNAVAILABLE, "opening page: %v", err)
	}
	atomic.AddInt64(&b.pageCount, 1)

	if err := p.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: UserAgent}); err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("setting user agent: %w", err)
	}

	page := &Page{page: p, timeout: b.timeout}
	if len(b.blocked) > 0 {
		router := p.HijackRequests()
		for _, t := range b.blocked {
			if err := router.Add("*", t, func(h *rod.Hijack) {
				h.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
			}); err != nil {
				_ = router.Stop()
				_ = p.Close()
				return nil, fmt.Errorf("blocking %s requests: %w", t, err)
			}
		}
		go router.Run()
		page.router = router
	}

	return page, nil
}

// Close releases browser resources. Close is safe to call multiple times.
func (b *Browser) Close() error {
	if !b.closed.CompareAndSwap(false, true) {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	return b.closeBrowser()
}

// current returns the running browser, launching it on first use and
// recycling it once the page budget is spent.
func (b *Browser) current() (*rod.Browser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed.Load() {
		return nil, adamsdoc.Errorf(adamsdoc.EINVALID, "browser is closed")
	}

	if b.browser == nil {
		if err := b.launchBrowser(); err != nil {
			return nil, err
		}
		return b.browser, nil
	}

	if atomic.LoadInt64(&b.pageCount) >= b.maxPages {
		b.recycleBrowser()
	}
	return b.browser, nil
}

// launchBrowser starts a new browser instance with stability flags.
// Must be called with mu held.
func (b *Browser) launchBrowser() error {
	lnchr := launcher.New().
		Set("disable-background-timer-throttling").
		Set("disable-backgrounding-occluded-windows").
		Set("disable-renderer-backgrounding").
		Set("disable-dev-shm-usage").
		Set("disable-hang-monitor").
		Set("no-sandbox").
		Leakless(true).
		Headless(true)

	u, err := lnchr.Launch()
	if err != nil {
		return fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		lnchr.Kill()
		return fmt.Errorf("connecting to browser: %w", err)
	}

	b.browser = browser
	b.launcher = lnchr
	atomic.StoreInt64(&b.pageCount, 0)
	return nil
}

// closeBrowser shuts down the current browser and launcher.
// Must be called with mu held.
func (b *Browser) closeBrowser() error {
	var err error
	if b.browser != nil {
		err = b.browser.Close()
		b.browser = nil
	}
	if b.launcher != nil {
		b.launcher.Kill()
		b.launcher = nil
	}
	return err
}

// recycleBrowser starts a fresh browser and closes the old one.
// If launching the new browser fails, the old browser is kept.
// Must be called with mu held.
func (b *Browser) recycleBrowser() {
	oldBrowser := b.browser
	oldLauncher := b.launcher
	b.browser = nil
	b.launcher = nil

	if err := b.launchBrowser(); err != nil {
		b.browser = oldBrowser
		b.launcher = oldLauncher
		return
	}

	if oldBrowser != nil {
		_ = oldBrowser.Close()
	}
	if oldLauncher != nil {
		oldLauncher.Kill()
	}
}

// LauncherPID returns the process ID of the browser launcher, or 0 when no
// browser is running.
func (b *Browser) LauncherPID() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.launcher == nil {
		return 0
	}
	return b.launcher.PID()
}
