package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/maltedev/price-registry-scraper/internal/models"
	"github.com/maltedev/price-registry-scraper/internal/run"
	"github.com/maltedev/price-registry-scraper/pkg/logger"
)

type MockRunner struct {
	mock.Mock
}

func (m *MockRunner) Start(ctx context.Context, req run.Request) bool {
	return m.Called(ctx, req).Bool(0)
}

func (m *MockRunner) RequestStop() bool {
	return m.Called().Bool(0)
}

func (m *MockRunner) Status() run.Status {
	return m.Called().Get(0).(run.Status)
}

func newTestServer(t *testing.T, runner Runner, rec *logger.Recorder) http.Handler {
	t.Helper()
	if rec == nil {
		rec = logger.NewRecorder(10)
	}
	h := NewHandlers(context.Background(), runner, rec, true, slog.New(slog.NewTextHandler(io.Discard, nil)))
	h.now = func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }
	return NewRouter(h, RouterConfig{Gatherer: prometheus.NewRegistry()})
}

func do(t *testing.T, srv http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestStartRun(t *testing.T) {
	runner := new(MockRunner)
	runner.On("Start", mock.Anything, mock.MatchedBy(func(req run.Request) bool {
		sel := req.Selection
		return sel.ViewType() == models.ViewMonthly &&
			sel.Period() == "Mart" &&
			sel.Year() == 2023 &&
			sel.Region() == "Beograd" &&
			!sel.HasSubRegion() &&
			req.Headless
	})).Return(true)
	runner.On("Status").Return(run.Status{State: models.StateRunning, RunID: "run-1"})

	rec := do(t, newTestServer(t, runner, nil), http.MethodPost, "/api/v1/runs",
		`{"view_type":"monthly","period":"Mart","year":2023,"region":"Beograd","sub_region":"Sve"}`)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	var resp RunResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Started)
	assert.Equal(t, "run-1", resp.Status.RunID)
	runner.AssertExpectations(t)
}

func TestStartRunHeadlessOverride(t *testing.T) {
	runner := new(MockRunner)
	runner.On("Start", mock.Anything, mock.MatchedBy(func(req run.Request) bool { return !req.Headless })).Return(true)
	runner.On("Status").Return(run.Status{State: models.StateRunning})

	rec := do(t, newTestServer(t, runner, nil), http.MethodPost, "/api/v1/runs",
		`{"view_type":"quarterly","period":"Q1","year":2020,"headless":false}`)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	runner.AssertExpectations(t)
}

func TestStartRunConflict(t *testing.T) {
	runner := new(MockRunner)
	runner.On("Start", mock.Anything, mock.Anything).Return(false)
	runner.On("Status").Return(run.Status{State: models.StateRunning, RunID: "other"})

	rec := do(t, newTestServer(t, runner, nil), http.MethodPost, "/api/v1/runs",
		`{"view_type":"monthly","period":"Jun","year":2022}`)

	assert.Equal(t, http.StatusConflict, rec.Code)
	var resp RunResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Started)
}

func TestStartRunValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed", `{`},
		{"unknown view", `{"view_type":"weekly","period":"Mart","year":2023}`},
		{"period mismatch", `{"view_type":"quarterly","period":"Mart","year":2023}`},
		{"year too early", `{"view_type":"monthly","period":"Mart","year":2013}`},
		{"unknown region", `{"view_type":"monthly","period":"Mart","year":2023,"region":"Atlantis"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := new(MockRunner)
			rec := do(t, newTestServer(t, runner, nil), http.MethodPost, "/api/v1/runs", tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), `"error"`)
			runner.AssertNotCalled(t, "Start", mock.Anything, mock.Anything)
		})
	}
}

func TestStopRun(t *testing.T) {
	runner := new(MockRunner)
	runner.On("RequestStop").Return(true)
	runner.On("Status").Return(run.Status{State: models.StateStopping})

	rec := do(t, newTestServer(t, runner, nil), http.MethodPost, "/api/v1/runs/stop", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		StopRequested bool       `json:"stop_requested"`
		Status        run.Status `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.StopRequested)
	assert.Equal(t, models.StateStopping, resp.Status.State)
}

func TestGetStatus(t *testing.T) {
	runner := new(MockRunner)
	runner.On("Status").Return(run.Status{
		State: models.StateCompleted,
		Rows:  30,
		LastOutcome: &models.Outcome{
			RunID:    "run-1",
			Status:   models.OutcomeCompleted,
			Records:  30,
			Duration: 2 * time.Second,
		},
	})

	rec := do(t, newTestServer(t, runner, nil), http.MethodGet, "/api/v1/runs/status", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "completed", body["state"])
	last := body["last_outcome"].(map[string]any)
	assert.Equal(t, float64(2), last["duration_seconds"])
}

func TestGetLog(t *testing.T) {
	rec := logger.NewRecorder(10)
	rec.Log("Starting scraping process...", logger.LevelInfo)
	rec.Log("Reached last page", logger.LevelInfo)
	rec.Log("No data to save", logger.LevelWarning)

	srv := newTestServer(t, new(MockRunner), rec)

	resp := do(t, srv, http.MethodGet, "/api/v1/runs/log?limit=2", "")
	assert.Equal(t, http.StatusOK, resp.Code)
	var entries []logger.Entry
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "Reached last page", entries[0].Message)
	assert.Equal(t, logger.LevelWarning, entries[1].Level)

	assert.Equal(t, http.StatusBadRequest, do(t, srv, http.MethodGet, "/api/v1/runs/log?limit=x", "").Code)
}

func TestGetLogEmpty(t *testing.T) {
	resp := do(t, newTestServer(t, new(MockRunner), nil), http.MethodGet, "/api/v1/runs/log", "")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `[]`, resp.Body.String())
}

func TestGetOptions(t *testing.T) {
	resp := do(t, newTestServer(t, new(MockRunner), nil), http.MethodGet, "/api/v1/options", "")

	assert.Equal(t, http.StatusOK, resp.Code)
	var opts OptionsResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &opts))
	assert.Len(t, opts.Periods["monthly"], 12)
	assert.Equal(t, []string{"Q1", "Q2", "Q3", "Q4"}, opts.Periods["quarterly"])
	assert.Equal(t, 2014, opts.Years[0])
	assert.Equal(t, 2024, opts.Years[len(opts.Years)-1])
	assert.Contains(t, opts.Regions, "Novi Sad")
}

func TestHealthAndMetrics(t *testing.T) {
	runner := new(MockRunner)
	runner.On("Status").Return(run.Status{State: models.StateIdle})
	srv := newTestServer(t, runner, nil)

	health := do(t, srv, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, health.Code)
	assert.JSONEq(t, `{"status":"ok","run":"idle"}`, health.Body.String())

	assert.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/metrics", "").Code)
}
