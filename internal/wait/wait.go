// Package wait polls the page until an element shows up.
package wait

import (
	"context"
	"fmt"
	"time"

	"github.com/maltedev/price-registry-scraper/internal/browser"
	"github.com/maltedev/price-registry-scraper/pkg/logger"
)

const DefaultInterval = 500 * time.Millisecond

// ElementNotFoundError is returned when the timeout elapses before a
// matching element appears (or becomes clickable).
type ElementNotFoundError struct {
	Locator   browser.Locator
	Timeout   time.Duration
	Clickable bool
	// Last is the most recent query error, if any.
	Last error
}

func (e *ElementNotFoundError) Error() string {
	cond := "present"
	if e.Clickable {
		cond = "clickable"
	}
	msg := fmt.Sprintf("element %s not %s after %s", e.Locator, cond, e.Timeout)
	if e.Last != nil {
		msg += ": " + e.Last.Error()
	}
	return msg
}

func (e *ElementNotFoundError) Unwrap() error { return e.Last }

type Waiter struct {
	page     browser.Page
	sink     logger.Sink
	interval time.Duration
}

func New(page browser.Page, sink logger.Sink, interval time.Duration) *Waiter {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if sink == nil {
		sink = logger.Nop()
	}
	return &Waiter{page: page, sink: sink, interval: interval}
}

// Await returns the first element matching loc. With clickable set the
// element must also be visible and enabled. The page is checked right away
// and then once per interval until timeout elapses.
func (w *Waiter) Await(ctx context.Context, loc browser.Locator, timeout time.Duration, clickable bool) (browser.Element, error) {
	w.sink.Log(fmt.Sprintf("Waiting for element: %s", loc), logger.LevelInfo)

	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	var last error
	for {
		el, err := w.match(loc, clickable)
		if err != nil {
			last = err
		}
		if el != nil {
			w.sink.Log(fmt.Sprintf("Element found: %s", loc), logger.LevelInfo)
			return el, nil
		}

		if !time.Now().Before(deadline) {
			w.sink.Log(fmt.Sprintf("Timeout waiting for element: %s", loc), logger.LevelError)
			return nil, &ElementNotFoundError{Locator: loc, Timeout: timeout, Clickable: clickable, Last: last}
		}

		select {
		case <-ctx.Done():
			w.sink.Log(fmt.Sprintf("Error finding element %s: %v", loc, ctx.Err()), logger.LevelError)
			return nil, fmt.Errorf("wait for %s: %w", loc, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (w *Waiter) match(loc browser.Locator, clickable bool) (browser.Element, error) {
	els, err := w.page.QueryAll(loc)
	if err != nil {
		return nil, err
	}
	for _, el := range els {
		if !clickable {
			return el, nil
		}
		if ok, err := isClickable(el); err == nil && ok {
			return el, nil
		}
	}
	return nil, nil
}

func isClickable(el browser.Element) (bool, error) {
	visible, err := el.Visible()
	if err != nil || !visible {
		return false, err
	}
	return el.Enabled()
}
