// Package app assembles the run controller and its collaborators from
// configuration. Both entry points share it.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/maltedev/price-registry-scraper/internal/browser"
	"github.com/maltedev/price-registry-scraper/internal/config"
	"github.com/maltedev/price-registry-scraper/internal/database"
	"github.com/maltedev/price-registry-scraper/internal/events"
	"github.com/maltedev/price-registry-scraper/internal/export"
	"github.com/maltedev/price-registry-scraper/internal/run"
	"github.com/maltedev/price-registry-scraper/internal/scraper"
	"github.com/maltedev/price-registry-scraper/pkg/logger"
)

type App struct {
	Config     *config.Config
	Logger     *slog.Logger
	Recorder   *logger.Recorder
	Sink       logger.Sink
	Metrics    *scraper.Metrics
	Controller *run.Controller
	LogFile    string

	closers []func()
}

// New wires everything cfg enables. ctx bounds the background publisher.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg}

	logFile, err := logger.OpenRunLog(cfg.Output.LogDir, time.Now())
	if err != nil {
		return nil, err
	}
	a.LogFile = logFile.Name()
	a.closers = append(a.closers, func() { logFile.Close() })

	a.Logger = slog.New(logger.Fanout(
		logger.NewHandler(os.Stdout, cfg.Logging.Level, cfg.Logging.Format),
		logger.NewHandler(logFile, cfg.Logging.Level, "text"),
	))
	a.Recorder = logger.NewRecorder(500)
	sinks := []logger.Sink{logger.NewSlogSink(a.Logger), a.Recorder}

	var reporters []run.Reporter
	if cfg.Redis.Addr != "" {
		publisher, err := a.startPublisher(ctx)
		if err != nil {
			a.Close()
			return nil, err
		}
		sinks = append(sinks, publisher)
		reporters = append(reporters, publisher)
	}
	a.Sink = logger.Multi(sinks...)
	a.Metrics = scraper.NewMetrics()

	writer, err := a.writers(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	opts := cfg.Browser.Options()
	opts.Sink = a.Sink

	a.Controller = run.NewController(run.Options{
		Launcher:  browser.Launch(opts),
		Writer:    writer,
		Sink:      a.Sink,
		Logger:    a.Logger,
		Metrics:   a.Metrics,
		Timing:    cfg.Timing.Scraper(),
		BaseURL:   cfg.Site.BaseURL,
		OutputDir: cfg.Output.Dir,
		Reporters: reporters,
	})

	return a, nil
}

func (a *App) startPublisher(ctx context.Context) (*events.Publisher, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     a.Config.Redis.Addr,
		Password: a.Config.Redis.Password,
		DB:       a.Config.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	publisher := events.NewPublisher(client, a.Logger, events.Config{
		LogStream: a.Config.Redis.LogStream,
		RunStream: a.Config.Redis.RunStream,
		MaxLen:    a.Config.Redis.MaxLen,
	})

	pubCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := publisher.Start(pubCtx); err != nil {
			a.Logger.Error("publisher stopped with error", "error", err)
		}
	}()

	// Stop the publisher, let it flush, then drop the connection.
	a.closers = append(a.closers, func() {
		cancel()
		<-done
		client.Close()
	})
	return publisher, nil
}

func (a *App) writers(ctx context.Context) (export.Writer, error) {
	var writers []export.Writer
	if a.Config.HasSink(config.SinkExcel) {
		writers = append(writers, export.NewExcelWriter(a.Sink))
	}
	if a.Config.HasSink(config.SinkPostgres) {
		db, err := database.New(ctx, a.Config.Database.Database())
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		if err := db.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		writers = append(writers, export.NewPostgresWriter(db, a.Sink))
	}
	return export.Tee(writers...), nil
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
