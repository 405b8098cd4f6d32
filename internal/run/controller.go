// Package run owns the lifecycle of a scraping run: one browser session,
// the filter sequence, extraction and export.
package run

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/maltedev/price-registry-scraper/internal/browser"
	"github.com/maltedev/price-registry-scraper/internal/export"
	"github.com/maltedev/price-registry-scraper/internal/models"
	"github.com/maltedev/price-registry-scraper/internal/scraper"
	"github.com/maltedev/price-registry-scraper/internal/wait"
	"github.com/maltedev/price-registry-scraper/pkg/logger"
)

// ErrRunActive is reported by Run when another run has not finished yet.
var ErrRunActive = errors.New("a run is already in progress")

// Request is what a front-end asks for.
type Request struct {
	Selection models.FilterSelection
	Headless  bool
	// Dest overrides the generated output path.
	Dest string
}

// Reporter is notified once per finished run.
type Reporter interface {
	ReportOutcome(models.Outcome)
}

type Options struct {
	Launcher  browser.Launcher
	Writer    export.Writer
	Sink      logger.Sink
	Logger    *slog.Logger
	Metrics   *scraper.Metrics
	Timing    scraper.Timing
	BaseURL   string
	OutputDir string
	Reporters []Reporter
}

// Status is a snapshot of the controller for front-ends.
type Status struct {
	State       models.RunState     `json:"state"`
	RunID       string              `json:"run_id,omitempty"`
	Selection   string              `json:"selection,omitempty"`
	StartedAt   *time.Time          `json:"started_at,omitempty"`
	Cursor      *scraper.PageCursor `json:"cursor,omitempty"`
	Rows        int                 `json:"rows"`
	LastOutcome *models.Outcome     `json:"last_outcome,omitempty"`
}

type Controller struct {
	opts   Options
	sink   logger.Sink
	logger *slog.Logger

	mu     sync.Mutex
	status Status
	stop   *atomic.Bool
	wg     sync.WaitGroup

	now   func() time.Time
	newID func() string
}

func NewController(opts Options) *Controller {
	sink := opts.Sink
	if sink == nil {
		sink = logger.Nop()
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	if opts.Writer == nil {
		opts.Writer = export.NewExcelWriter(sink)
	}
	if opts.Timing == (scraper.Timing{}) {
		opts.Timing = scraper.DefaultTiming()
	}

	return &Controller{
		opts:   opts,
		sink:   sink,
		logger: log.With("component", "run_controller"),
		status: Status{State: models.StateIdle},
		now:    time.Now,
		newID:  func() string { return uuid.New().String() },
	}
}

// Run executes a run on the calling goroutine.
func (c *Controller) Run(ctx context.Context, req Request) models.Outcome {
	id, stop, ok := c.begin(req)
	if !ok {
		return models.Outcome{Status: models.OutcomeFailed, Err: ErrRunActive, StartedAt: c.now()}
	}
	return c.execute(ctx, id, stop, req)
}

// Start launches a run in the background. It returns false, and does
// nothing, while another run is active.
func (c *Controller) Start(ctx context.Context, req Request) bool {
	id, stop, ok := c.begin(req)
	if !ok {
		c.sink.Log("A run is already in progress", logger.LevelWarning)
		return false
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.execute(ctx, id, stop, req)
	}()
	return true
}

// Wait blocks until the background run, if any, has finished.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// RequestStop asks the active run to skip its export. It is safe to call at
// any time and from any goroutine; it never touches the browser.
func (c *Controller) RequestStop() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !models.CanTransition(c.status.State, models.StateStopping) {
		return false
	}
	c.stop.Store(true)
	c.status.State = models.StateStopping
	c.logger.Info("stop requested", "run_id", c.status.RunID)
	c.sink.Log("Stopping scraping process...", logger.LevelWarning)
	return true
}

func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.status
	if s.Cursor != nil {
		cursor := *s.Cursor
		s.Cursor = &cursor
	}
	if s.LastOutcome != nil {
		o := *s.LastOutcome
		s.LastOutcome = &o
	}
	return s
}

func (c *Controller) begin(req Request) (string, *atomic.Bool, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !models.CanTransition(c.status.State, models.StateRunning) {
		return "", nil, false
	}

	id := c.newID()
	started := c.now()
	c.stop = new(atomic.Bool)
	c.status = Status{
		State:       models.StateRunning,
		RunID:       id,
		Selection:   req.Selection.String(),
		StartedAt:   &started,
		LastOutcome: c.status.LastOutcome,
	}
	return id, c.stop, true
}

func (c *Controller) execute(ctx context.Context, id string, stop *atomic.Bool, req Request) models.Outcome {
	started := c.now()
	c.sink.Log("Starting scraping process...", logger.LevelInfo)
	c.logger.Info("run started", "run_id", id, "selection", req.Selection.String())

	outcome := models.Outcome{RunID: id, StartedAt: started}
	records, dest, stopped, err := c.pipeline(ctx, req, stop)
	switch {
	case err != nil:
		outcome.Status = models.OutcomeFailed
		outcome.Err = err
	case stopped:
		outcome.Status = models.OutcomeStopped
	default:
		outcome.Status = models.OutcomeCompleted
		outcome.Destination = dest
		outcome.Records = len(records)
	}
	outcome.Duration = c.now().Sub(started)

	c.finish(outcome)
	return outcome
}

// pipeline returns an empty dest when nothing was written. The stop token
// is read once, between extraction and export.
func (c *Controller) pipeline(ctx context.Context, req Request, stop *atomic.Bool) (records []models.Record, dest string, stopped bool, err error) {
	session, err := c.opts.Launcher(ctx, req.Headless)
	if err != nil {
		return nil, "", false, err
	}
	defer session.Stop()

	page := session.Page()
	waiter := wait.New(page, c.sink, c.opts.Timing.PollInterval)

	filters := scraper.NewFilterSequencer(page, waiter, c.sink, c.opts.Timing, c.opts.BaseURL)
	if err := filters.ApplyFilters(ctx, req.Selection); err != nil {
		return nil, "", false, err
	}

	pager := scraper.NewPager(page, waiter, c.sink, c.opts.Timing, c.opts.Metrics)
	pager.OnPage = c.onPage
	records, err = pager.Extract(ctx)
	if err != nil {
		return nil, "", false, err
	}

	if stop.Load() {
		c.sink.Log("Scraping stopped by user, discarding results", logger.LevelWarning)
		return records, "", true, nil
	}

	dest = req.Dest
	if dest == "" {
		dest, err = export.OutputPath(c.opts.OutputDir, req.Selection, c.now())
		if err != nil {
			return nil, "", false, &export.Error{Sink: "excel", Dest: c.opts.OutputDir, Err: err}
		}
	}

	if err := c.opts.Writer.WriteRecords(ctx, records, dest); err != nil {
		return nil, "", false, err
	}
	if len(records) == 0 {
		return records, "", false, nil
	}
	c.sink.Log(fmt.Sprintf("Data successfully saved to %s", dest), logger.LevelInfo)
	return records, dest, false, nil
}

func (c *Controller) onPage(cursor scraper.PageCursor, rows int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status.Cursor = &cursor
	c.status.Rows += rows
}

func (c *Controller) finish(o models.Outcome) {
	terminal := models.StateCompleted
	if o.Status == models.OutcomeFailed {
		terminal = models.StateFailed
	}

	c.mu.Lock()
	if models.CanTransition(c.status.State, terminal) {
		c.status.State = terminal
	}
	c.status.LastOutcome = &o
	c.mu.Unlock()

	c.opts.Metrics.ObserveRun(string(o.Status), o.Duration)
	if o.Err != nil {
		c.opts.Metrics.IncError(o.Err)
		c.sink.Log(fmt.Sprintf("Error: %v", o.Err), logger.LevelError)
		c.logger.Error("run failed", "run_id", o.RunID, "error", o.Err)
	} else {
		c.logger.Info("run finished", "run_id", o.RunID, "status", o.Status, "records", o.Records)
	}
	c.sink.Log(fmt.Sprintf("Scraping completed in %.2f seconds", o.Duration.Seconds()), logger.LevelInfo)

	for _, r := range c.opts.Reporters {
		r.ReportOutcome(o)
	}
}
