package scraper

import (
	"errors"
	"fmt"

	"github.com/maltedev/price-registry-scraper/internal/browser"
	"github.com/maltedev/price-registry-scraper/internal/wait"
)

// FilterApplicationError aborts a run when any filter step fails.
type FilterApplicationError struct {
	Step string
	Err  error
}

func (e *FilterApplicationError) Error() string {
	return fmt.Sprintf("apply filters: step %s: %v", e.Step, e.Err)
}

func (e *FilterApplicationError) Unwrap() error { return e.Err }

// ExtractionSetupError means the total item count could not be read, so no
// page plan can be formed.
type ExtractionSetupError struct {
	Err error
}

func (e *ExtractionSetupError) Error() string {
	return fmt.Sprintf("extraction setup: %v", e.Err)
}

func (e *ExtractionSetupError) Unwrap() error { return e.Err }

// PageRenderTimeoutError means no grid rows rendered on a page.
type PageRenderTimeoutError struct {
	Page int
	Err  error
}

func (e *PageRenderTimeoutError) Error() string {
	return fmt.Sprintf("page %d did not render: %v", e.Page, e.Err)
}

func (e *PageRenderTimeoutError) Unwrap() error { return e.Err }

// ErrShortRow marks a grid row with fewer cells than a record needs.
var ErrShortRow = errors.New("row has too few cells")

func errorTypeLabel(err error) string {
	if err == nil {
		return "unknown"
	}
	var sessionInit *browser.SessionInitError
	if errors.As(err, &sessionInit) {
		return "session_init"
	}
	var filter *FilterApplicationError
	if errors.As(err, &filter) {
		return "filter"
	}
	var setup *ExtractionSetupError
	if errors.As(err, &setup) {
		return "extraction_setup"
	}
	var render *PageRenderTimeoutError
	if errors.As(err, &render) {
		return "page_render_timeout"
	}
	var notFound *wait.ElementNotFoundError
	if errors.As(err, &notFound) {
		return "element_not_found"
	}
	if errors.Is(err, ErrShortRow) {
		return "short_row"
	}
	return "other"
}
