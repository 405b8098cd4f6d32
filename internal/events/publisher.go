// Package events mirrors run progress and outcomes onto Redis streams.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/maltedev/price-registry-scraper/internal/models"
	"github.com/maltedev/price-registry-scraper/pkg/logger"
)

const (
	DefaultLogStream = "stream:price_scraper:log"
	DefaultRunStream = "stream:price_scraper:runs"
)

// RedisClient interface for Redis operations (for testing)
type RedisClient interface {
	XAdd(ctx context.Context, args *redis.XAddArgs) *redis.StringCmd
}

type Config struct {
	LogStream string
	RunStream string
	// MaxLen caps each stream approximately. Zero leaves streams unbounded.
	MaxLen       int64
	BufferSize   int
	WriteTimeout time.Duration
}

type logEvent struct {
	at      time.Time
	level   logger.Level
	message string
}

// Publisher is a logger.Sink that forwards pipeline events to a Redis
// stream from its own goroutine. Log never blocks: when the buffer is full
// the event is dropped and counted.
type Publisher struct {
	client  RedisClient
	logger  *slog.Logger
	cfg     Config
	queue   chan logEvent
	dropped atomic.Int64
	now     func() time.Time
}

func NewPublisher(client RedisClient, log *slog.Logger, cfg Config) *Publisher {
	if cfg.LogStream == "" {
		cfg.LogStream = DefaultLogStream
	}
	if cfg.RunStream == "" {
		cfg.RunStream = DefaultRunStream
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 256
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}

	return &Publisher{
		client: client,
		logger: log.With("component", "events"),
		cfg:    cfg,
		queue:  make(chan logEvent, cfg.BufferSize),
		now:    time.Now,
	}
}

func (p *Publisher) Log(message string, level logger.Level) {
	select {
	case p.queue <- logEvent{at: p.now(), level: level, message: message}:
	default:
		p.dropped.Add(1)
	}
}

// Dropped returns how many events were discarded because the buffer was full.
func (p *Publisher) Dropped() int64 { return p.dropped.Load() }

// Start publishes queued events until ctx is done, then flushes what is
// still buffered within one write timeout.
func (p *Publisher) Start(ctx context.Context) error {
	p.logger.Info("starting publisher", "stream", p.cfg.LogStream, "buffer", p.cfg.BufferSize)

	for {
		select {
		case <-ctx.Done():
			p.flush()
			p.logger.Info("publisher stopped", "dropped", p.Dropped())
			return nil
		case ev := <-p.queue:
			p.publishLog(ctx, ev)
		}
	}
}

func (p *Publisher) flush() {
	ctx, cancel := context.WithTimeout(context.Background(), p.cfg.WriteTimeout)
	defer cancel()
	for {
		select {
		case ev := <-p.queue:
			p.publishLog(ctx, ev)
		default:
			return
		}
	}
}

func (p *Publisher) publishLog(ctx context.Context, ev logEvent) {
	err := p.add(ctx, p.cfg.LogStream, map[string]any{
		"level":     string(ev.level),
		"message":   ev.message,
		"timestamp": ev.at.Format(time.RFC3339Nano),
	})
	if err != nil {
		p.logger.Error("failed to publish log event", "error", err)
	}
}

// ReportOutcome appends the run's outcome to the runs stream.
func (p *Publisher) ReportOutcome(o models.Outcome) {
	data, err := json.Marshal(o)
	if err != nil {
		p.logger.Error("failed to marshal outcome", "run_id", o.RunID, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.cfg.WriteTimeout)
	defer cancel()

	err = p.add(ctx, p.cfg.RunStream, map[string]any{
		"run_id":    o.RunID,
		"status":    string(o.Status),
		"records":   o.Records,
		"data":      string(data),
		"timestamp": fmt.Sprintf("%d", p.now().UnixNano()),
	})
	if err != nil {
		p.logger.Error("failed to publish outcome", "run_id", o.RunID, "error", err)
		return
	}
	p.logger.Info("outcome published", "run_id", o.RunID, "status", o.Status)
}

func (p *Publisher) add(ctx context.Context, stream string, values map[string]any) error {
	args := &redis.XAddArgs{
		Stream: stream,
		Values: values,
	}
	if p.cfg.MaxLen > 0 {
		args.MaxLen = p.cfg.MaxLen
		args.Approx = true
	}
	if _, err := p.client.XAdd(ctx, args).Result(); err != nil {
		return fmt.Errorf("failed to publish to redis: %w", err)
	}
	return nil
}
