package models

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

type ViewType string

const (
	ViewMonthly   ViewType = "monthly"
	ViewQuarterly ViewType = "quarterly"
)

// SubRegionAll is the site's "all sub-regions" option. Selecting it means the
// sub-region dropdown is left untouched.
const SubRegionAll = "Sve"

// MinYear is the first year the registry publishes data for.
const MinYear = 2014

var (
	Months = []string{
		"Januar", "Februar", "Mart", "April", "Maj", "Jun",
		"Jul", "Avgust", "Septembar", "Oktobar", "Novembar", "Decembar",
	}

	Quarters = []string{"Q1", "Q2", "Q3", "Q4"}

	Regions = []string{
		"Beograd", "Čukarica", "Novi Beograd", "Palilula", "Rakovica",
		"Savski venac", "Stari grad", "Voždovac", "Vračar", "Zemun",
		"Zvezdara", "Novi Sad", "Niš", "Kragujevac",
	}
)

// ParseViewType accepts the lowercase names and the labels shown by the site.
func ParseViewType(s string) (ViewType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "monthly", "month", "mesečno", "mesecno":
		return ViewMonthly, nil
	case "quarterly", "quarter", "kvartalno":
		return ViewQuarterly, nil
	}
	return "", fmt.Errorf("unknown view type %q", s)
}

// Periods returns the period labels valid for the view type.
func Periods(v ViewType) []string {
	if v == ViewQuarterly {
		return Quarters
	}
	return Months
}

// Years returns every selectable year up to and including now's year.
func Years(now time.Time) []int {
	var years []int
	for y := MinYear; y <= now.Year(); y++ {
		years = append(years, y)
	}
	return years
}

// IsAllSubRegions reports whether s selects every sub-region.
func IsAllSubRegions(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || s == SubRegionAll || strings.EqualFold(s, "all")
}

// FilterSelection is the immutable set of filters applied for one run.
type FilterSelection struct {
	viewType  ViewType
	period    string
	year      int
	region    string
	subRegion string
}

// NewFilterSelection validates the user's choices against the site's option
// lists. now bounds the year range.
func NewFilterSelection(view ViewType, period string, year int, region, subRegion string, now time.Time) (FilterSelection, error) {
	if view != ViewMonthly && view != ViewQuarterly {
		return FilterSelection{}, fmt.Errorf("unknown view type %q", view)
	}

	period = strings.TrimSpace(period)
	if !slices.Contains(Periods(view), period) {
		return FilterSelection{}, fmt.Errorf("period %q is not valid for %s view", period, view)
	}

	if year < MinYear || year > now.Year() {
		return FilterSelection{}, fmt.Errorf("year %d out of range %d-%d", year, MinYear, now.Year())
	}

	region = strings.TrimSpace(region)
	if region != "" && !slices.Contains(Regions, region) {
		return FilterSelection{}, fmt.Errorf("unknown region %q", region)
	}

	subRegion = strings.TrimSpace(subRegion)
	if IsAllSubRegions(subRegion) {
		subRegion = SubRegionAll
	}

	return FilterSelection{
		viewType:  view,
		period:    period,
		year:      year,
		region:    region,
		subRegion: subRegion,
	}, nil
}

func (f FilterSelection) ViewType() ViewType { return f.viewType }
func (f FilterSelection) Period() string     { return f.period }
func (f FilterSelection) Year() int          { return f.year }
func (f FilterSelection) Region() string     { return f.region }
func (f FilterSelection) SubRegion() string  { return f.subRegion }

// HasSubRegion reports whether the sub-region dropdown must be touched.
func (f FilterSelection) HasSubRegion() bool {
	return !IsAllSubRegions(f.subRegion)
}

func (f FilterSelection) String() string {
	return fmt.Sprintf("View Type: %s, Period: %s, Year: %d, Region: %s, Sub-region: %s",
		f.viewType, f.period, f.year, f.region, f.subRegion)
}
