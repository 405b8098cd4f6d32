package config

import (
	"github.com/maltedev/price-registry-scraper/internal/browser"
	"github.com/maltedev/price-registry-scraper/internal/database"
	"github.com/maltedev/price-registry-scraper/internal/scraper"
)

func (t TimingConfig) Scraper() scraper.Timing {
	return scraper.Timing{
		BootstrapSettle: t.BootstrapSettle,
		ClickSettle:     t.ClickSettle,
		ApplySettle:     t.ApplySettle,
		ExtractSettle:   t.ExtractSettle,
		ElementTimeout:  t.ElementTimeout,
		NextPageTimeout: t.NextPageTimeout,
		PollInterval:    t.PollInterval,
	}
}

// Options returns browser options with the engine defaults filled in.
// The sink is left for the caller.
func (b BrowserConfig) Options() browser.Options {
	opts := *browser.DefaultOptions()
	opts.Headless = b.Headless
	opts.InstallDriver = b.InstallDriver
	opts.Timeout = b.Timeout
	opts.ViewportWidth = b.ViewportWidth
	opts.ViewportHeight = b.ViewportHeight
	opts.TimezoneID = b.TimezoneID
	opts.Locale = b.Locale
	return opts
}

func (d DatabaseConfig) Database() database.Config {
	return database.Config{
		Host:     d.Host,
		Port:     d.Port,
		User:     d.User,
		Password: d.Password,
		Database: d.DBName,
		SSLMode:  d.SSLMode,
		MaxConns: d.MaxConns,
	}
}
