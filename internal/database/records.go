package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/maltedev/price-registry-scraper/internal/models"
)

const RecordsTable = "price_records"

var recordColumns = []string{
	"batch", "scraped_at", "record_type", "record_date", "price", "area",
	"price_per_area", "subject", "location",
}

const schema = `
CREATE TABLE IF NOT EXISTS price_records (
	id             BIGSERIAL PRIMARY KEY,
	batch          TEXT        NOT NULL,
	scraped_at     TIMESTAMPTZ NOT NULL,
	record_type    TEXT        NOT NULL,
	record_date    TEXT        NOT NULL,
	price          TEXT        NOT NULL,
	area           TEXT        NOT NULL,
	price_per_area TEXT        NOT NULL,
	subject        TEXT        NOT NULL,
	location       TEXT        NOT NULL
);
CREATE INDEX IF NOT EXISTS price_records_batch_idx ON price_records (batch)`

// EnsureSchema creates the records table when it does not exist.
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// InsertRecords replaces every row of batch with records in one transaction,
// so writing the same export twice leaves a single copy.
func (db *DB) InsertRecords(ctx context.Context, batch string, scrapedAt time.Time, records []models.Record) (int64, error) {
	var copied int64
	err := db.Transaction(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM price_records WHERE batch = $1`, batch); err != nil {
			return fmt.Errorf("failed to clear batch %s: %w", batch, err)
		}

		rows := make([][]any, len(records))
		for i, r := range records {
			rows[i] = []any{batch, scrapedAt, r.Type, r.Date, r.Price, r.Area, r.PricePerArea, r.Subject, r.Location}
		}

		n, err := tx.CopyFrom(ctx, pgx.Identifier{RecordsTable}, recordColumns, pgx.CopyFromRows(rows))
		if err != nil {
			return fmt.Errorf("failed to copy records: %w", err)
		}
		copied = n
		return nil
	})
	if err != nil {
		return 0, err
	}
	return copied, nil
}
