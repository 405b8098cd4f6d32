package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maltedev/price-registry-scraper/internal/config"
	"github.com/maltedev/price-registry-scraper/internal/models"
	"github.com/maltedev/price-registry-scraper/pkg/logger"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	chdir(t, t.TempDir())
	cfg, err := config.Load()
	require.NoError(t, err)
	cfg.Output.LogDir = filepath.Join(t.TempDir(), "logs")
	cfg.Output.Dir = filepath.Join(t.TempDir(), "output")
	return cfg
}

func TestNewWiresExcelOnly(t *testing.T) {
	cfg := testConfig(t)

	a, err := New(context.Background(), cfg)
	require.NoError(t, err)
	defer a.Close()

	require.NotNil(t, a.Controller)
	assert.Equal(t, models.StateIdle, a.Controller.Status().State)
	assert.True(t, strings.HasPrefix(filepath.Base(a.LogFile), "scraping_log_"))

	a.Sink.Log("Starting scraping process...", logger.LevelInfo)

	entries := a.Recorder.Tail(0)
	require.Len(t, entries, 1)
	assert.Equal(t, "Starting scraping process...", entries[0].Message)

	a.Close()
	data, err := os.ReadFile(a.LogFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Starting scraping process...")
}

func TestNewFailsWhenPostgresUnreachable(t *testing.T) {
	cfg := testConfig(t)
	cfg.Export.Sinks = []string{config.SinkExcel, config.SinkPostgres}
	cfg.Database.Host = "127.0.0.1"
	cfg.Database.Port = 1

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(ctx, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database")
}

// chdir changes the working directory for the duration of the test,
// matching testing.T.Chdir (Go 1.24+) on older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
