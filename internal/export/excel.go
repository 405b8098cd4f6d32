package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/maltedev/price-registry-scraper/internal/models"
	"github.com/maltedev/price-registry-scraper/pkg/logger"
)

const SheetName = "Sheet1"

// ExcelWriter writes records as a single-sheet workbook, one row per record
// under a header row.
type ExcelWriter struct {
	sink logger.Sink
}

func NewExcelWriter(sink logger.Sink) *ExcelWriter {
	if sink == nil {
		sink = logger.Nop()
	}
	return &ExcelWriter{sink: sink}
}

func (w *ExcelWriter) WriteRecords(ctx context.Context, records []models.Record, dest string) error {
	if len(records) == 0 {
		w.sink.Log("No data to save", logger.LevelWarning)
		return nil
	}
	w.sink.Log(fmt.Sprintf("Saving %d records to Excel file: %s", len(records), dest), logger.LevelInfo)

	if err := w.write(ctx, records, dest); err != nil {
		w.sink.Log(fmt.Sprintf("Error saving to Excel: %v", err), logger.LevelError)
		return &Error{Sink: "excel", Dest: dest, Err: err}
	}

	w.sink.Log("Data saved successfully", logger.LevelInfo)
	return nil
}

func (w *ExcelWriter) write(ctx context.Context, records []models.Record, dest string) error {
	if dir := filepath.Dir(dest); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}

	f := excelize.NewFile()
	defer f.Close()

	header := models.RecordColumns
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, r := range records {
		if i%500 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := r.Values()
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if err := f.SaveAs(dest); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}
