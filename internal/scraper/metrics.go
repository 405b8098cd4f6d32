package scraper

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for runs, pages and rows.
type Metrics struct {
	Registry      *prometheus.Registry
	RunsTotal     *prometheus.CounterVec
	RunDuration   prometheus.Histogram
	PagesTotal    prometheus.Counter
	RowsExtracted prometheus.Counter
	RowsSkipped   prometheus.Counter
	ErrorsTotal   *prometheus.CounterVec
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	runs := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_runs_total",
			Help: "Finished runs by outcome.",
		},
		[]string{"outcome"},
	)
	runDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scraper_run_duration_seconds",
			Help:    "Wall time of a run from launch to session release.",
			Buckets: []float64{10, 30, 60, 120, 300, 600, 1200, 2400},
		},
	)
	pages := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scraper_pages_total",
			Help: "Grid pages processed.",
		},
	)
	rows := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scraper_rows_extracted_total",
			Help: "Grid rows turned into records.",
		},
	)
	skipped := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scraper_rows_skipped_total",
			Help: "Grid rows skipped because they could not be read.",
		},
	)
	errorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_errors_total",
			Help: "Total number of scraper errors by type.",
		},
		[]string{"error_type"},
	)

	registry.MustRegister(runs, runDuration, pages, rows, skipped, errorsTotal)

	return &Metrics{
		Registry:      registry,
		RunsTotal:     runs,
		RunDuration:   runDuration,
		PagesTotal:    pages,
		RowsExtracted: rows,
		RowsSkipped:   skipped,
		ErrorsTotal:   errorsTotal,
	}
}

// ObserveRun records a finished run.
func (m *Metrics) ObserveRun(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues(outcome).Inc()
	m.RunDuration.Observe(d.Seconds())
}

func (m *Metrics) IncPage() {
	if m == nil {
		return
	}
	m.PagesTotal.Inc()
}

func (m *Metrics) AddRows(n int) {
	if m == nil {
		return
	}
	m.RowsExtracted.Add(float64(n))
}

func (m *Metrics) IncSkipped(err error) {
	if m == nil {
		return
	}
	m.RowsSkipped.Inc()
	m.ErrorsTotal.WithLabelValues(errorTypeLabel(err)).Inc()
}

// IncError counts a fatal error by its type label.
func (m *Metrics) IncError(err error) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(errorTypeLabel(err)).Inc()
}
