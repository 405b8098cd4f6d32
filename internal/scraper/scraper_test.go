package scraper

import (
	"time"

	"github.com/maltedev/price-registry-scraper/internal/browser"
	"github.com/maltedev/price-registry-scraper/internal/wait"
	"github.com/maltedev/price-registry-scraper/pkg/logger"
)

// fastTiming keeps the real step order but drops every settle delay.
func fastTiming() Timing {
	return Timing{
		ElementTimeout:  40 * time.Millisecond,
		NextPageTimeout: 20 * time.Millisecond,
		PollInterval:    time.Millisecond,
	}
}

func newWaiter(page browser.Page, sink logger.Sink) *wait.Waiter {
	return wait.New(page, sink, time.Millisecond)
}

func messages(rec *logger.Recorder) []string {
	var out []string
	for _, e := range rec.Tail(0) {
		out = append(out, e.Message)
	}
	return out
}
