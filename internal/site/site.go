// Package site holds everything tied to the markup of cenenekretnina.rs.
// When the site changes structure, this is the only package to touch.
package site

import (
	"fmt"
	"strings"

	"github.com/maltedev/price-registry-scraper/internal/browser"
	"github.com/maltedev/price-registry-scraper/internal/models"
)

const (
	BaseURL = "https://www.cenenekretnina.rs/"

	// ItemsPerPage is the grid's page size.
	ItemsPerPage = 25

	// MinCells is the number of grid cells a row needs to become a record.
	MinCells = 7

	// SubjectCell is the index of the cell whose aria-labels form the subject.
	SubjectCell = 5

	DisabledClass = "Mui-disabled"
)

var (
	// The two panels that must be clicked before the filter bar is usable.
	BootstrapPanels = []browser.Locator{
		browser.XPath("/html/body/div[1]/div/div/div[2]/div[2]/div[1]/div/div/button[4]"),
		browser.XPath("/html/body/div[1]/div/div/div[2]/div[1]/div/div[2]"),
	}

	ApplyButton    = browser.XPath("//button[contains(text(), 'Primeni')]")
	PaginationText = browser.Class("MuiTablePagination-displayedRows")
	GridRow        = browser.Class("MuiDataGrid-row")
	NextPage       = browser.XPath("//button[@aria-label='Sledeća strana']")
)

// GridCellSelector and LabelSelector are CSS selectors applied to row markup.
const (
	GridCellSelector = ".MuiDataGrid-cell"
	LabelSelector    = "[aria-label]"
)

// ViewToggle returns the button that switches between monthly and quarterly.
func ViewToggle(v models.ViewType) browser.Locator {
	label := "Mesečno"
	if v == models.ViewQuarterly {
		label = "Kvartalno"
	}
	return browser.XPath(fmt.Sprintf("//button[contains(text(), %s)]", xpathLiteral(label)))
}

// Role names one of the filter dropdowns.
type Role int

const (
	RolePeriod Role = iota + 1
	RoleYear
	RoleRegion
	RoleSubRegion
)

func (r Role) String() string {
	switch r {
	case RolePeriod:
		return "period"
	case RoleYear:
		return "year"
	case RoleRegion:
		return "region"
	case RoleSubRegion:
		return "sub-region"
	}
	return fmt.Sprintf("role(%d)", int(r))
}

// LocateControl returns the dropdown for role. The dropdowns carry no
// identifiers, so they are addressed by their position among the
// MuiSelect-select elements; the role's value is that 1-based position.
func LocateControl(r Role) browser.Locator {
	return browser.XPath(fmt.Sprintf("(//div[contains(@class, 'MuiSelect-select')])[%d]", int(r)))
}

// Option returns the open dropdown's menu item whose text equals label.
func Option(label string) browser.Locator {
	return browser.XPath(fmt.Sprintf("//li[contains(@class, 'MuiMenuItem-root') and text()=%s]", xpathLiteral(label)))
}

// xpathLiteral quotes s as an XPath 1.0 string literal.
func xpathLiteral(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	parts := strings.Split(s, "'")
	return "concat('" + strings.Join(parts, `', "'", '`) + "')"
}
