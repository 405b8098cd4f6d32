package scraper

import "time"

// Timing holds every settle delay and timeout the pipeline uses.
type Timing struct {
	// BootstrapSettle follows the initial navigation. The app has no
	// readiness signal, so this is a flat delay.
	BootstrapSettle time.Duration
	// ClickSettle is applied before and after every click.
	ClickSettle time.Duration
	// ApplySettle replaces ClickSettle for the Apply button, which
	// dispatches the server query.
	ApplySettle time.Duration
	// ExtractSettle precedes reading the pagination summary.
	ExtractSettle time.Duration

	ElementTimeout  time.Duration
	NextPageTimeout time.Duration
	PollInterval    time.Duration
}

func DefaultTiming() Timing {
	return Timing{
		BootstrapSettle: 5 * time.Second,
		ClickSettle:     1 * time.Second,
		ApplySettle:     2 * time.Second,
		ExtractSettle:   2 * time.Second,
		ElementTimeout:  20 * time.Second,
		NextPageTimeout: 5 * time.Second,
		PollInterval:    500 * time.Millisecond,
	}
}
