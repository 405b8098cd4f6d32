package browser

import (
	"context"
	"fmt"
	"time"
)

type LocatorKind int

const (
	ByXPath LocatorKind = iota
	ByClass
	ByCSS
)

// Locator describes how to find an element on the page.
type Locator struct {
	Kind  LocatorKind
	Value string
}

func XPath(expr string) Locator   { return Locator{Kind: ByXPath, Value: expr} }
func Class(name string) Locator   { return Locator{Kind: ByClass, Value: name} }
func CSS(selector string) Locator { return Locator{Kind: ByCSS, Value: selector} }

// Selector renders the locator in playwright selector syntax.
func (l Locator) Selector() string {
	switch l.Kind {
	case ByClass:
		return "." + l.Value
	case ByCSS:
		return "css=" + l.Value
	}
	return "xpath=" + l.Value
}

func (l Locator) String() string { return l.Value }

// Element is a handle to one DOM node.
type Element interface {
	Text() (string, error)
	Attribute(name string) (string, error)
	InnerHTML() (string, error)
	Visible() (bool, error)
	Enabled() (bool, error)
	ScrollIntoView() error
	Click() error
}

// Page is the part of a browser tab the scraper drives.
type Page interface {
	Goto(url string) error
	QueryAll(loc Locator) ([]Element, error)
}

// Session owns one browser tab for the duration of a run.
type Session interface {
	Page() Page
	Stop()
}

// Launcher starts a session. headless hides the browser window.
type Launcher func(ctx context.Context, headless bool) (Session, error)

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// ClickSafely scrolls el into view and clicks it, settling before and after
// the click so animated transitions finish.
func ClickSafely(ctx context.Context, el Element, settle time.Duration) error {
	if err := el.ScrollIntoView(); err != nil {
		return fmt.Errorf("scroll into view: %w", err)
	}
	if err := Sleep(ctx, settle); err != nil {
		return err
	}
	if err := el.Click(); err != nil {
		return fmt.Errorf("click: %w", err)
	}
	return Sleep(ctx, settle)
}
