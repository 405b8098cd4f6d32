package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/maltedev/price-registry-scraper/pkg/logger"
)

// SessionInitError is returned when the browser engine cannot be started.
type SessionInitError struct {
	Err error
}

func (e *SessionInitError) Error() string {
	return fmt.Sprintf("browser session init: %v", e.Err)
}

func (e *SessionInitError) Unwrap() error { return e.Err }

type Browser struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	page    *page
	sink    logger.Sink
	logger  *slog.Logger

	stopOnce sync.Once
}

type Options struct {
	Headless       bool
	InstallDriver  bool
	Timeout        time.Duration
	UserAgent      string
	ViewportWidth  int
	ViewportHeight int
	Locale         string
	TimezoneID     string
	Sink           logger.Sink
}

func DefaultOptions() *Options {
	return &Options{
		Headless:       false,
		Timeout:        30 * time.Second,
		UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		ViewportWidth:  1920,
		ViewportHeight: 1080,
		Locale:         "sr-Latn-RS",
		TimezoneID:     "Europe/Belgrade",
	}
}

func New(opts *Options) (*Browser, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	sink := opts.Sink
	if sink == nil {
		sink = logger.Nop()
	}

	sink.Log("Initializing Chrome driver...", logger.LevelInfo)

	runOpts := &playwright.RunOptions{
		Browsers: []string{"chromium"},
		Verbose:  false,
	}
	if opts.InstallDriver {
		if err := playwright.Install(runOpts); err != nil {
			return nil, initFailed(sink, fmt.Errorf("failed to install driver: %w", err))
		}
	}

	pw, err := playwright.Run(runOpts)
	if err != nil {
		return nil, initFailed(sink, fmt.Errorf("failed to start playwright: %w", err))
	}

	launchOpts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		Args: []string{
			"--start-maximized",
			"--disable-gpu",
			"--no-sandbox",
			"--disable-dev-shm-usage",
			"--log-level=3",
			fmt.Sprintf("--window-size=%d,%d", opts.ViewportWidth, opts.ViewportHeight),
		},
	}

	browser, err := pw.Chromium.Launch(launchOpts)
	if err != nil {
		pw.Stop()
		return nil, initFailed(sink, fmt.Errorf("failed to launch browser: %w", err))
	}

	context, err := browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent:  &opts.UserAgent,
		Locale:     &opts.Locale,
		TimezoneId: &opts.TimezoneID,
		Viewport: &playwright.Size{
			Width:  opts.ViewportWidth,
			Height: opts.ViewportHeight,
		},
	})
	if err != nil {
		browser.Close()
		pw.Stop()
		return nil, initFailed(sink, fmt.Errorf("failed to create browser context: %w", err))
	}

	pg, err := context.NewPage()
	if err != nil {
		context.Close()
		browser.Close()
		pw.Stop()
		return nil, initFailed(sink, fmt.Errorf("failed to create new page: %w", err))
	}
	pg.SetDefaultTimeout(float64(opts.Timeout.Milliseconds()))

	sink.Log("Chrome driver initialized successfully", logger.LevelInfo)

	return &Browser{
		pw:      pw,
		browser: browser,
		context: context,
		page:    &page{pg: pg, timeout: opts.Timeout},
		sink:    sink,
		logger:  slog.Default().With("component", "browser"),
	}, nil
}

// Launch adapts New to the Launcher signature, using base for every other
// option.
func Launch(base Options) Launcher {
	return func(ctx context.Context, headless bool) (Session, error) {
		if err := ctx.Err(); err != nil {
			return nil, &SessionInitError{Err: err}
		}
		opts := base
		opts.Headless = headless
		b, err := New(&opts)
		if err != nil {
			return nil, err
		}
		return b, nil
	}
}

func initFailed(sink logger.Sink, err error) error {
	sink.Log(fmt.Sprintf("Failed to initialize Chrome driver: %v", err), logger.LevelError)
	return &SessionInitError{Err: err}
}

func (b *Browser) Page() Page {
	return b.page
}

// Stop closes the page, context, browser and driver. It is safe to call more
// than once; close failures are logged and swallowed.
func (b *Browser) Stop() {
	b.stopOnce.Do(func() {
		b.sink.Log("Closing browser", logger.LevelInfo)
		if err := b.close(); err != nil {
			b.logger.Error("close failed", "error", err)
			b.sink.Log(fmt.Sprintf("Error closing browser: %v", err), logger.LevelError)
			return
		}
		b.sink.Log("Browser closed successfully", logger.LevelInfo)
	})
}

func (b *Browser) close() error {
	var errs []error

	if b.context != nil {
		if err := b.context.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close context: %w", err))
		}
	}

	if b.browser != nil {
		if err := b.browser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close browser: %w", err))
		}
	}

	if b.pw != nil {
		if err := b.pw.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop playwright: %w", err))
		}
	}

	return errors.Join(errs...)
}

type page struct {
	pg      playwright.Page
	timeout time.Duration
}

func (p *page) Goto(url string) error {
	_, err := p.pg.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(float64(p.timeout.Milliseconds())),
	})
	if err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

func (p *page) QueryAll(loc Locator) ([]Element, error) {
	locs, err := p.pg.Locator(loc.Selector()).All()
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", loc, err)
	}
	out := make([]Element, len(locs))
	for i, l := range locs {
		out[i] = &element{loc: l}
	}
	return out, nil
}

// element wraps a locator resolved to a single node by All.
type element struct {
	loc playwright.Locator
}

func (e *element) Text() (string, error) {
	return e.loc.InnerText()
}

func (e *element) Attribute(name string) (string, error) {
	return e.loc.GetAttribute(name)
}

func (e *element) InnerHTML() (string, error) {
	return e.loc.InnerHTML()
}

func (e *element) Visible() (bool, error) {
	return e.loc.IsVisible()
}

func (e *element) Enabled() (bool, error) {
	return e.loc.IsEnabled()
}

func (e *element) ScrollIntoView() error {
	return e.loc.ScrollIntoViewIfNeeded()
}

func (e *element) Click() error {
	return e.loc.Click()
}
