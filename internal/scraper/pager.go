package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/maltedev/price-registry-scraper/internal/browser"
	"github.com/maltedev/price-registry-scraper/internal/models"
	"github.com/maltedev/price-registry-scraper/internal/site"
	"github.com/maltedev/price-registry-scraper/internal/wait"
	"github.com/maltedev/price-registry-scraper/pkg/logger"
)

// Pager walks the result grid page by page and collects its rows.
type Pager struct {
	page         browser.Page
	waiter       *wait.Waiter
	sink         logger.Sink
	timing       Timing
	metrics      *Metrics
	itemsPerPage int

	// OnPage, when set, is called after each processed page.
	OnPage func(cursor PageCursor, rows int)
}

func NewPager(page browser.Page, waiter *wait.Waiter, sink logger.Sink, timing Timing, metrics *Metrics) *Pager {
	return &Pager{
		page:         page,
		waiter:       waiter,
		sink:         sink,
		timing:       timing,
		metrics:      metrics,
		itemsPerPage: site.ItemsPerPage,
	}
}

// Extract returns every readable row across all pages, in page order.
func (p *Pager) Extract(ctx context.Context) ([]models.Record, error) {
	p.sink.Log("Starting data scraping...", logger.LevelInfo)

	cursor, err := p.plan(ctx)
	if err != nil {
		p.sink.Log(fmt.Sprintf("Error during scraping: %v", err), logger.LevelError)
		return nil, err
	}

	p.sink.Log(fmt.Sprintf("Found %d items across %d pages", cursor.TotalItems, cursor.TotalPages), logger.LevelInfo)

	var records []models.Record
	if cursor.TotalItems == 0 {
		p.sink.Log("Scraping completed. Total rows scraped: 0", logger.LevelInfo)
		return records, nil
	}

	for {
		start := time.Now()

		rows, err := p.scrapePage(ctx, cursor)
		if err != nil {
			p.sink.Log(fmt.Sprintf("Error during scraping: %v", err), logger.LevelError)
			return nil, err
		}
		records = append(records, rows...)

		p.metrics.IncPage()
		p.metrics.AddRows(len(rows))
		p.sink.Log(fmt.Sprintf("Page %d completed in %.2f seconds", cursor.PageIndex, time.Since(start).Seconds()), logger.LevelInfo)
		if p.OnPage != nil {
			p.OnPage(cursor, len(rows))
		}

		if cursor.PageIndex >= cursor.TotalPages {
			// The next button should be disabled here already; if it is not,
			// the item count read at the start is the only bound we have.
			if p.hasNext(ctx) {
				p.sink.Log(fmt.Sprintf("Next page still enabled after %d of %d pages, stopping", cursor.PageIndex, cursor.TotalPages), logger.LevelWarning)
			}
			break
		}
		if !p.advance(ctx) {
			break
		}
		cursor.PageIndex++
		p.sink.Log(fmt.Sprintf("Moving to page %d", cursor.PageIndex), logger.LevelInfo)
	}

	p.sink.Log(fmt.Sprintf("Scraping completed. Total rows scraped: %d", len(records)), logger.LevelInfo)
	return records, nil
}

func (p *Pager) plan(ctx context.Context) (PageCursor, error) {
	if err := browser.Sleep(ctx, p.timing.ExtractSettle); err != nil {
		return PageCursor{}, &ExtractionSetupError{Err: err}
	}

	el, err := p.waiter.Await(ctx, site.PaginationText, p.timing.ElementTimeout, false)
	if err != nil {
		return PageCursor{}, &ExtractionSetupError{Err: err}
	}
	text, err := el.Text()
	if err != nil {
		return PageCursor{}, &ExtractionSetupError{Err: fmt.Errorf("read pagination text: %w", err)}
	}
	total, err := ParseTotalItems(text)
	if err != nil {
		return PageCursor{}, &ExtractionSetupError{Err: err}
	}
	return NewPageCursor(total, p.itemsPerPage), nil
}

func (p *Pager) scrapePage(ctx context.Context, cursor PageCursor) ([]models.Record, error) {
	if _, err := p.waiter.Await(ctx, site.GridRow, p.timing.ElementTimeout, false); err != nil {
		return nil, &PageRenderTimeoutError{Page: cursor.PageIndex, Err: err}
	}
	rows, err := p.page.QueryAll(site.GridRow)
	if err != nil {
		return nil, &PageRenderTimeoutError{Page: cursor.PageIndex, Err: err}
	}

	p.sink.Log(fmt.Sprintf("Processing page %d/%d with %d rows", cursor.PageIndex, cursor.TotalPages, len(rows)), logger.LevelInfo)

	records := make([]models.Record, 0, len(rows))
	for i, row := range rows {
		n := i + 1
		rec, err := readRow(row)
		if err != nil {
			p.metrics.IncSkipped(err)
			p.sink.Log(fmt.Sprintf("Error processing row %d on page %d: %v", n, cursor.PageIndex, err), logger.LevelError)
			continue
		}
		records = append(records, rec)

		if n%5 == 0 {
			p.sink.Log(fmt.Sprintf("Processed %d/%d rows on page %d", n, len(rows), cursor.PageIndex), logger.LevelInfo)
		}
	}
	return records, nil
}

func readRow(row browser.Element) (models.Record, error) {
	html, err := row.InnerHTML()
	if err != nil {
		return models.Record{}, fmt.Errorf("read row markup: %w", err)
	}
	return ParseRow(html)
}

// nextButton returns the next-page control if it exists and is enabled.
// A missing button and a disabled one both mean there is no next page.
func (p *Pager) nextButton(ctx context.Context) (browser.Element, bool) {
	el, err := p.waiter.Await(ctx, site.NextPage, p.timing.NextPageTimeout, false)
	if err != nil {
		p.sink.Log("No more pages to scrape", logger.LevelInfo)
		return nil, false
	}
	class, err := el.Attribute("class")
	if err != nil {
		p.sink.Log(fmt.Sprintf("No more pages to scrape: %v", err), logger.LevelInfo)
		return nil, false
	}
	if strings.Contains(class, site.DisabledClass) {
		p.sink.Log("Reached last page", logger.LevelInfo)
		return nil, false
	}
	return el, true
}

func (p *Pager) hasNext(ctx context.Context) bool {
	_, ok := p.nextButton(ctx)
	return ok
}

func (p *Pager) advance(ctx context.Context) bool {
	el, ok := p.nextButton(ctx)
	if !ok {
		return false
	}
	if err := browser.ClickSafely(ctx, el, p.timing.ClickSettle); err != nil {
		p.sink.Log(fmt.Sprintf("No more pages to scrape: %v", err), logger.LevelWarning)
		return false
	}
	return true
}
