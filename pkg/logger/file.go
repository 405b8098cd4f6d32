package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// OpenRunLog creates dir/scraping_log_<timestamp>.txt for append.
func OpenRunLog(dir string, now time.Time) (*os.File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log directory %q: %w", dir, err)
	}

	name := filepath.Join(dir, fmt.Sprintf("scraping_log_%s.txt", now.Format("20060102_150405")))
	f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}
