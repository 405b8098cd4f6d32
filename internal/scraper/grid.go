package scraper

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/maltedev/price-registry-scraper/internal/models"
	"github.com/maltedev/price-registry-scraper/internal/site"
)

// PageCursor tracks the pager's position. It is built once per extraction.
type PageCursor struct {
	PageIndex    int `json:"page_index"`
	TotalPages   int `json:"total_pages"`
	TotalItems   int `json:"total_items"`
	ItemsPerPage int `json:"items_per_page"`
}

func NewPageCursor(totalItems, itemsPerPage int) PageCursor {
	return PageCursor{
		PageIndex:    1,
		TotalPages:   TotalPages(totalItems, itemsPerPage),
		TotalItems:   totalItems,
		ItemsPerPage: itemsPerPage,
	}
}

// TotalPages is ceil(totalItems/itemsPerPage), never less than 1.
func TotalPages(totalItems, itemsPerPage int) int {
	if itemsPerPage <= 0 || totalItems <= 0 {
		return 1
	}
	return (totalItems + itemsPerPage - 1) / itemsPerPage
}

// ParseTotalItems reads the trailing count of a pagination summary such as
// "1–25 od 57" or "26–50 of 1.204".
func ParseTotalItems(text string) (int, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return 0, fmt.Errorf("empty pagination text")
	}
	last := strings.NewReplacer(".", "", ",", "").Replace(fields[len(fields)-1])
	n, err := strconv.Atoi(last)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("no item count in pagination text %q", text)
	}
	return n, nil
}

// ParseRow turns the inner markup of one grid row into a Record.
func ParseRow(html string) (models.Record, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return models.Record{}, fmt.Errorf("parse row markup: %w", err)
	}

	cells := doc.Find(site.GridCellSelector)
	if cells.Length() < site.MinCells {
		return models.Record{}, fmt.Errorf("%w: got %d, need %d", ErrShortRow, cells.Length(), site.MinCells)
	}

	text := func(i int) string {
		return strings.Join(strings.Fields(cells.Eq(i).Text()), " ")
	}

	return models.Record{
		Type:         text(0),
		Date:         text(1),
		Price:        text(2),
		Area:         text(3),
		PricePerArea: text(4),
		Subject:      subject(cells.Eq(site.SubjectCell)),
		Location:     text(6),
	}, nil
}

// subject joins the aria-labels found inside the cell.
func subject(cell *goquery.Selection) string {
	var labels []string
	cell.Find(site.LabelSelector).Each(func(_ int, s *goquery.Selection) {
		if label, ok := s.Attr("aria-label"); ok && strings.TrimSpace(label) != "" {
			labels = append(labels, strings.TrimSpace(label))
		}
	})
	return strings.Join(labels, ", ")
}
