// Package export writes scraped records to their destinations.
package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/maltedev/price-registry-scraper/internal/models"
)

// Writer persists one run's records. An empty slice is a logged no-op.
type Writer interface {
	WriteRecords(ctx context.Context, records []models.Record, dest string) error
}

// Error wraps a failed write with the destination it was aimed at.
type Error struct {
	Sink string
	Dest string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("export to %s %s: %v", e.Sink, e.Dest, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// OutputPath builds dir/real_estate_data_{region}_{period}_{year}_{ts}.xlsx
// and creates dir when it is missing.
func OutputPath(dir string, sel models.FilterSelection, now time.Time) (string, error) {
	if dir == "" {
		dir = "output"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory %q: %w", dir, err)
	}

	name := strings.Join([]string{
		"real_estate_data",
		safeName(sel.Region()),
		safeName(sel.Period()),
		strconv.Itoa(sel.Year()),
		now.Format("20060102_150405"),
	}, "_") + ".xlsx"
	return filepath.Join(dir, name), nil
}

func safeName(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == os.PathSeparator {
			return '-'
		}
		return r
	}, s)
}

type tee []Writer

// Tee writes to every writer in order. All writers run even if one fails;
// the failures are joined.
func Tee(writers ...Writer) Writer {
	var out tee
	for _, w := range writers {
		if w != nil {
			out = append(out, w)
		}
	}
	if len(out) == 1 {
		return out[0]
	}
	return out
}

func (t tee) WriteRecords(ctx context.Context, records []models.Record, dest string) error {
	var errs []error
	for _, w := range t {
		if err := w.WriteRecords(ctx, records, dest); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
