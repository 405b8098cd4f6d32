package scraper

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/maltedev/price-registry-scraper/internal/browser"
	"github.com/maltedev/price-registry-scraper/internal/models"
	"github.com/maltedev/price-registry-scraper/internal/site"
	"github.com/maltedev/price-registry-scraper/internal/wait"
	"github.com/maltedev/price-registry-scraper/pkg/logger"
)

// FilterSequencer drives the filter bar through its fixed click sequence.
type FilterSequencer struct {
	page    browser.Page
	waiter  *wait.Waiter
	sink    logger.Sink
	timing  Timing
	baseURL string
}

func NewFilterSequencer(page browser.Page, waiter *wait.Waiter, sink logger.Sink, timing Timing, baseURL string) *FilterSequencer {
	if baseURL == "" {
		baseURL = site.BaseURL
	}
	return &FilterSequencer{
		page:    page,
		waiter:  waiter,
		sink:    sink,
		timing:  timing,
		baseURL: baseURL,
	}
}

// ApplyFilters runs every step in order and stops at the first failure.
// The site either shows the selected data set or the run is aborted.
func (f *FilterSequencer) ApplyFilters(ctx context.Context, sel models.FilterSelection) error {
	f.sink.Log("Setting filters - "+sel.String(), logger.LevelInfo)

	if err := f.page.Goto(f.baseURL); err != nil {
		return f.fail("navigate", err)
	}
	if err := browser.Sleep(ctx, f.timing.BootstrapSettle); err != nil {
		return f.fail("navigate", err)
	}

	for i, loc := range site.BootstrapPanels {
		if err := f.click(ctx, loc, f.timing.ClickSettle); err != nil {
			return f.fail(fmt.Sprintf("bootstrap-panel-%d", i+1), err)
		}
	}

	f.sink.Log(fmt.Sprintf("Selecting view type: %s", sel.ViewType()), logger.LevelInfo)
	if err := f.click(ctx, site.ViewToggle(sel.ViewType()), f.timing.ClickSettle); err != nil {
		return f.fail("view-type", err)
	}

	if err := f.choose(ctx, site.RolePeriod, sel.Period()); err != nil {
		return err
	}
	if err := f.choose(ctx, site.RoleYear, strconv.Itoa(sel.Year())); err != nil {
		return err
	}
	if sel.Region() != "" {
		if err := f.choose(ctx, site.RoleRegion, sel.Region()); err != nil {
			return err
		}
	}
	if sel.HasSubRegion() {
		if err := f.choose(ctx, site.RoleSubRegion, sel.SubRegion()); err != nil {
			return err
		}
	}

	if err := f.click(ctx, site.ApplyButton, f.timing.ApplySettle); err != nil {
		return f.fail("apply", err)
	}

	f.sink.Log("Filters applied successfully", logger.LevelInfo)
	return nil
}

// choose opens the role's dropdown and picks the option labelled value.
func (f *FilterSequencer) choose(ctx context.Context, role site.Role, value string) error {
	f.sink.Log(fmt.Sprintf("Selecting %s: %s", role, value), logger.LevelInfo)

	if err := f.click(ctx, site.LocateControl(role), f.timing.ClickSettle); err != nil {
		return f.fail(role.String()+"-dropdown", err)
	}
	if err := f.click(ctx, site.Option(value), f.timing.ClickSettle); err != nil {
		return f.fail(role.String()+"-option", err)
	}
	return nil
}

func (f *FilterSequencer) click(ctx context.Context, loc browser.Locator, settle time.Duration) error {
	el, err := f.waiter.Await(ctx, loc, f.timing.ElementTimeout, true)
	if err != nil {
		return err
	}
	f.sink.Log("Attempting to click element", logger.LevelInfo)
	if err := browser.ClickSafely(ctx, el, settle); err != nil {
		f.sink.Log(fmt.Sprintf("Failed to click element: %v", err), logger.LevelError)
		return err
	}
	f.sink.Log("Element clicked successfully", logger.LevelInfo)
	return nil
}

func (f *FilterSequencer) fail(step string, err error) error {
	f.sink.Log(fmt.Sprintf("Error applying filters at %s: %v", step, err), logger.LevelError)
	return &FilterApplicationError{Step: step, Err: err}
}
