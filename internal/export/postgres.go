package export

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/maltedev/price-registry-scraper/internal/models"
	"github.com/maltedev/price-registry-scraper/pkg/logger"
)

// RecordStore is implemented by *database.DB.
type RecordStore interface {
	InsertRecords(ctx context.Context, batch string, scrapedAt time.Time, records []models.Record) (int64, error)
}

// PostgresWriter stores records in the price_records table. The batch key
// is the destination's base name without extension, so a Postgres batch
// and its spreadsheet share a name.
type PostgresWriter struct {
	store RecordStore
	sink  logger.Sink
	now   func() time.Time
}

func NewPostgresWriter(store RecordStore, sink logger.Sink) *PostgresWriter {
	if sink == nil {
		sink = logger.Nop()
	}
	return &PostgresWriter{store: store, sink: sink, now: time.Now}
}

func (w *PostgresWriter) WriteRecords(ctx context.Context, records []models.Record, dest string) error {
	if len(records) == 0 {
		w.sink.Log("No data to save", logger.LevelWarning)
		return nil
	}

	batch := BatchName(dest)
	n, err := w.store.InsertRecords(ctx, batch, w.now(), records)
	if err != nil {
		w.sink.Log(fmt.Sprintf("Error saving to database: %v", err), logger.LevelError)
		return &Error{Sink: "postgres", Dest: batch, Err: err}
	}

	w.sink.Log(fmt.Sprintf("Stored %d records in batch %s", n, batch), logger.LevelInfo)
	return nil
}

// BatchName turns an output path into a batch key.
func BatchName(dest string) string {
	base := filepath.Base(dest)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
