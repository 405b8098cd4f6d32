package export

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/maltedev/price-registry-scraper/internal/database"
	"github.com/maltedev/price-registry-scraper/internal/models"
	"github.com/maltedev/price-registry-scraper/pkg/logger"
)

var now = time.Date(2024, 6, 1, 14, 30, 5, 0, time.UTC)

func sampleRecords() []models.Record {
	return []models.Record{
		{Type: "Stan", Date: "01.03.2023", Price: "100.000 €", Area: "50 m²", PricePerArea: "2.000 €/m²", Subject: "Stan", Location: "Vračar"},
		{Type: "Garaža", Date: "05.03.2023", Price: "15.000 €", Area: "12 m²", PricePerArea: "1.250 €/m²", Subject: "Garaža, Parking", Location: "Zemun"},
	}
}

func TestOutputPath(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "output")
	sel, err := models.NewFilterSelection(models.ViewMonthly, "Mart", 2023, "Novi Beograd", "", now)
	require.NoError(t, err)

	path, err := OutputPath(dir, sel, now)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "real_estate_data_Novi Beograd_Mart_2023_20240601_143005.xlsx"), path)
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestExcelWriter(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "nested", "out.xlsx")
	rec := logger.NewRecorder(0)

	require.NoError(t, NewExcelWriter(rec).WriteRecords(context.Background(), sampleRecords(), dest))

	f, err := excelize.OpenFile(dest)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, models.RecordColumns, rows[0])
	assert.Equal(t, sampleRecords()[0].Values(), rows[1])
	assert.Equal(t, sampleRecords()[1].Values(), rows[2])

	var msgs []string
	for _, e := range rec.Tail(0) {
		msgs = append(msgs, e.Message)
	}
	assert.Contains(t, msgs, "Saving 2 records to Excel file: "+dest)
	assert.Contains(t, msgs, "Data saved successfully")
}

func TestExcelWriterEmptyIsNoop(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out.xlsx")
	rec := logger.NewRecorder(0)

	require.NoError(t, NewExcelWriter(rec).WriteRecords(context.Background(), nil, dest))

	_, err := os.Stat(dest)
	assert.True(t, os.IsNotExist(err))
	entries := rec.Tail(0)
	require.Len(t, entries, 1)
	assert.Equal(t, logger.LevelWarning, entries[0].Level)
	assert.Equal(t, "No data to save", entries[0].Message)
}

func TestExcelWriterFailure(t *testing.T) {
	dir := t.TempDir()
	// A file where the parent directory should be.
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	err := NewExcelWriter(nil).WriteRecords(context.Background(), sampleRecords(), filepath.Join(blocker, "out.xlsx"))

	var exportErr *Error
	require.ErrorAs(t, err, &exportErr)
	assert.Equal(t, "excel", exportErr.Sink)
}

func TestPostgresWriter(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM price_records WHERE batch = $1")).
		WithArgs("real_estate_data_Beograd_Mart_2023_20240601_143005").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{database.RecordsTable}, []string{
		"batch", "scraped_at", "record_type", "record_date", "price", "area",
		"price_per_area", "subject", "location",
	}).WillReturnResult(2)
	mock.ExpectCommit()

	w := NewPostgresWriter(database.NewWithPool(mock), nil)
	w.now = func() time.Time { return now }

	err = w.WriteRecords(context.Background(), sampleRecords(), "output/real_estate_data_Beograd_Mart_2023_20240601_143005.xlsx")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

type storeFunc func(ctx context.Context, batch string, scrapedAt time.Time, records []models.Record) (int64, error)

func (f storeFunc) InsertRecords(ctx context.Context, batch string, scrapedAt time.Time, records []models.Record) (int64, error) {
	return f(ctx, batch, scrapedAt, records)
}

func TestPostgresWriterFailure(t *testing.T) {
	store := storeFunc(func(context.Context, string, time.Time, []models.Record) (int64, error) {
		return 0, errors.New("connection reset")
	})

	err := NewPostgresWriter(store, nil).WriteRecords(context.Background(), sampleRecords(), "out.xlsx")

	var exportErr *Error
	require.ErrorAs(t, err, &exportErr)
	assert.Equal(t, "postgres", exportErr.Sink)
	assert.Equal(t, "out", exportErr.Dest)
}

type writerFunc func(ctx context.Context, records []models.Record, dest string) error

func (f writerFunc) WriteRecords(ctx context.Context, records []models.Record, dest string) error {
	return f(ctx, records, dest)
}

func TestTeeRunsEveryWriter(t *testing.T) {
	var calls []string
	failing := writerFunc(func(context.Context, []models.Record, string) error {
		calls = append(calls, "first")
		return &Error{Sink: "excel", Dest: "x", Err: errors.New("boom")}
	})
	ok := writerFunc(func(_ context.Context, _ []models.Record, dest string) error {
		calls = append(calls, "second:"+dest)
		return nil
	})

	err := Tee(failing, nil, ok).WriteRecords(context.Background(), sampleRecords(), "x")

	var exportErr *Error
	require.ErrorAs(t, err, &exportErr)
	assert.Equal(t, []string{"first", "second:x"}, calls)
}

func TestTeeSingleWriterIsUnwrapped(t *testing.T) {
	w := NewExcelWriter(nil)
	assert.Same(t, w, Tee(w, nil))
}

func TestBatchName(t *testing.T) {
	assert.Equal(t, "real_estate_data_x", BatchName("/tmp/out/real_estate_data_x.xlsx"))
	assert.Equal(t, "plain", BatchName("plain"))
}
