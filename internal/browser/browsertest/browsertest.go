// Package browsertest provides an in-memory Page for driving scraper code
// without a browser.
package browsertest

import (
	"errors"
	"sync"

	"github.com/maltedev/price-registry-scraper/internal/browser"
)

// Element is a fake DOM node. Zero value is a visible, enabled, empty node.
type Element struct {
	TextValue string
	HTML      string
	Attrs     map[string]string
	Hidden    bool
	Disabled  bool

	TextErr  error
	AttrErr  error
	HTMLErr  error
	ClickErr error

	// OnClick runs after a successful click, e.g. to change the page.
	OnClick func()

	page     *Page
	selector string
	clicks   int
}

func (e *Element) Text() (string, error) {
	return e.TextValue, e.TextErr
}

func (e *Element) Attribute(name string) (string, error) {
	if e.AttrErr != nil {
		return "", e.AttrErr
	}
	return e.Attrs[name], nil
}

func (e *Element) InnerHTML() (string, error) {
	return e.HTML, e.HTMLErr
}

func (e *Element) Visible() (bool, error) { return !e.Hidden, nil }
func (e *Element) Enabled() (bool, error) { return !e.Disabled, nil }
func (e *Element) ScrollIntoView() error  { return nil }

func (e *Element) Click() error {
	if e.ClickErr != nil {
		return e.ClickErr
	}
	e.clicks++
	if e.page != nil {
		e.page.recordClick(e.selector)
	}
	if e.OnClick != nil {
		e.OnClick()
	}
	return nil
}

// Clicks returns how often the element was clicked.
func (e *Element) Clicks() int { return e.clicks }

// Page maps selectors to elements. Lookups that miss the map go to Fallback.
type Page struct {
	mu       sync.Mutex
	elements map[string][]*Element
	queries  map[string]int
	clicked  []string
	visited  []string

	GotoErr  error
	QueryErr error
	Fallback func(loc browser.Locator) []*Element
}

func NewPage() *Page {
	return &Page{
		elements: make(map[string][]*Element),
		queries:  make(map[string]int),
	}
}

// Set replaces the elements matched by loc.
func (p *Page) Set(loc browser.Locator, els ...*Element) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, el := range els {
		el.page = p
		el.selector = loc.Selector()
	}
	p.elements[loc.Selector()] = els
}

// Remove makes loc match nothing.
func (p *Page) Remove(loc browser.Locator) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.elements, loc.Selector())
}

func (p *Page) Goto(url string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.GotoErr != nil {
		return p.GotoErr
	}
	p.visited = append(p.visited, url)
	return nil
}

func (p *Page) QueryAll(loc browser.Locator) ([]browser.Element, error) {
	p.mu.Lock()
	p.queries[loc.Selector()]++
	if p.QueryErr != nil {
		p.mu.Unlock()
		return nil, p.QueryErr
	}
	els, ok := p.elements[loc.Selector()]
	fallback := p.Fallback
	p.mu.Unlock()

	if !ok && fallback != nil {
		els = fallback(loc)
		p.mu.Lock()
		for _, el := range els {
			if el.page == nil {
				el.page = p
				el.selector = loc.Selector()
			}
		}
		p.mu.Unlock()
	}

	out := make([]browser.Element, len(els))
	for i, el := range els {
		out[i] = el
	}
	return out, nil
}

func (p *Page) recordClick(selector string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clicked = append(p.clicked, selector)
}

// Clicked lists the selectors of clicked elements in click order.
func (p *Page) Clicked() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.clicked...)
}

// Visited lists navigated URLs.
func (p *Page) Visited() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.visited...)
}

// Queries returns how many times loc was looked up.
func (p *Page) Queries(loc browser.Locator) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.queries[loc.Selector()]
}

// Session wraps a Page as a browser.Session and counts Stop calls.
type Session struct {
	P     *Page
	mu    sync.Mutex
	stops int
}

func (s *Session) Page() browser.Page { return s.P }

func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stops++
}

func (s *Session) Stops() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stops
}

// ErrDetached mimics an element that left the DOM between lookup and use.
var ErrDetached = errors.New("element is not attached to the DOM")
