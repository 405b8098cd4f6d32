// Package sitetest simulates the registry's filter bar and result grid on a
// browsertest.Page.
package sitetest

import (
	"fmt"
	"html"
	"strings"
	"sync"

	"github.com/maltedev/price-registry-scraper/internal/browser"
	"github.com/maltedev/price-registry-scraper/internal/browser/browsertest"
	"github.com/maltedev/price-registry-scraper/internal/models"
	"github.com/maltedev/price-registry-scraper/internal/site"
)

// Site serves a fixed result set. Every filter control is present and
// clickable unless hidden; the grid shows one page at a time and the next
// button advances it.
type Site struct {
	Page *browsertest.Page

	mu        sync.Mutex
	pages     [][]string
	current   int
	hidden    map[string]bool
	next      *browsertest.Element
	stuckNext bool
	onPage    func(page int)
}

// New builds a site reporting totalItems in its pagination summary and
// serving pages of row markup.
func New(totalItems int, pages ...[]string) *Site {
	s := &Site{
		Page:   browsertest.NewPage(),
		pages:  pages,
		hidden: make(map[string]bool),
	}
	s.Page.Fallback = s.control
	s.Page.Set(site.PaginationText, &browsertest.Element{TextValue: Summary(totalItems)})

	s.next = &browsertest.Element{OnClick: s.advance}
	s.Page.Set(site.NextPage, s.next)

	s.mu.Lock()
	s.render()
	s.mu.Unlock()
	return s
}

// NewGenerated builds a site with totalItems generated rows split into
// pages of site.ItemsPerPage.
func NewGenerated(totalItems int) *Site {
	return New(totalItems, Pages(totalItems, site.ItemsPerPage)...)
}

// Summary renders a pagination line the way the grid footer shows it.
func Summary(totalItems int) string {
	end := min(totalItems, site.ItemsPerPage)
	start := 1
	if totalItems == 0 {
		start = 0
	}
	return fmt.Sprintf("%d–%d od %d", start, end, totalItems)
}

// Hide removes loc from the page so waiting for it times out.
func (s *Site) Hide(loc browser.Locator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hidden[loc.Selector()] = true
	s.Page.Remove(loc)
}

// RemoveNext drops the next-page button entirely.
func (s *Site) RemoveNext() {
	s.Hide(site.NextPage)
}

// KeepNextEnabled leaves the next button enabled on the last page, as a
// grid reporting fewer items than it holds would.
func (s *Site) KeepNextEnabled() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stuckNext = true
	s.render()
}

// OnPage registers a hook that runs after the grid moves to a new page.
func (s *Site) OnPage(fn func(page int)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onPage = fn
}

// CurrentPage is the 1-based page on display.
func (s *Site) CurrentPage() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current + 1
}

// Clicked counts the clicks on elements matched by loc.
func (s *Site) Clicked(loc browser.Locator) int {
	n := 0
	for _, sel := range s.Page.Clicked() {
		if sel == loc.Selector() {
			n++
		}
	}
	return n
}

func (s *Site) control(loc browser.Locator) []*browsertest.Element {
	s.mu.Lock()
	defer s.mu.Unlock()
	if loc.Kind != browser.ByXPath || s.hidden[loc.Selector()] {
		return nil
	}
	return []*browsertest.Element{{TextValue: loc.Value}}
}

func (s *Site) advance() {
	s.mu.Lock()
	if s.current < len(s.pages)-1 {
		s.current++
	}
	s.render()
	hook, page := s.onPage, s.current+1
	s.mu.Unlock()

	if hook != nil {
		hook(page)
	}
}

// render must be called with s.mu held.
func (s *Site) render() {
	if len(s.pages) == 0 || len(s.pages[s.current]) == 0 {
		s.Page.Remove(site.GridRow)
	} else {
		rows := make([]*browsertest.Element, len(s.pages[s.current]))
		for i, h := range s.pages[s.current] {
			rows[i] = &browsertest.Element{HTML: h}
		}
		s.Page.Set(site.GridRow, rows...)
	}

	class := "MuiButtonBase-root MuiIconButton-root"
	if s.current >= len(s.pages)-1 && !s.stuckNext {
		class += " " + site.DisabledClass
	}
	s.next.Attrs = map[string]string{"class": class}
}

// Pages generates total rows split into pages of perPage.
func Pages(total, perPage int) [][]string {
	var pages [][]string
	for start := 0; start < total; start += perPage {
		end := min(start+perPage, total)
		page := make([]string, 0, end-start)
		for i := start; i < end; i++ {
			page = append(page, RecordRow(Record(i)))
		}
		pages = append(pages, page)
	}
	return pages
}

// Record is the deterministic record behind generated row i.
func Record(i int) models.Record {
	return models.Record{
		Type:         "Stan",
		Date:         fmt.Sprintf("%02d.03.2023", i%28+1),
		Price:        fmt.Sprintf("%d €", 50000+i*1000),
		Area:         fmt.Sprintf("%d m²", 40+i%60),
		PricePerArea: fmt.Sprintf("%d €/m²", 1500+i),
		Subject:      fmt.Sprintf("Stan %d, Garaža", i),
		Location:     "Beograd, Vračar",
	}
}

// RecordRow renders rec as grid row markup. The subject is split on ", "
// into one aria-label per part.
func RecordRow(rec models.Record) string {
	return Row(rec.Type, rec.Date, rec.Price, rec.Area, rec.PricePerArea,
		Labels(strings.Split(rec.Subject, ", ")...), rec.Location)
}

// Row renders cells as grid row markup. Cells are raw HTML.
func Row(cells ...string) string {
	var b strings.Builder
	for i, c := range cells {
		fmt.Fprintf(&b, `<div class="MuiDataGrid-cell" data-colindex="%d">%s</div>`, i, c)
	}
	return b.String()
}

// Labels renders one icon span per aria-label.
func Labels(labels ...string) string {
	var b strings.Builder
	for _, l := range labels {
		fmt.Fprintf(&b, `<span aria-label="%s"><svg></svg></span>`, html.EscapeString(l))
	}
	return b.String()
}
