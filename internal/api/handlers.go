package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/maltedev/price-registry-scraper/internal/models"
	"github.com/maltedev/price-registry-scraper/internal/run"
	"github.com/maltedev/price-registry-scraper/pkg/logger"
)

// Runner is the part of *run.Controller the handlers use.
type Runner interface {
	Start(ctx context.Context, req run.Request) bool
	RequestStop() bool
	Status() run.Status
}

type Handlers struct {
	// runCtx bounds background runs; it outlives any single request.
	runCtx   context.Context
	runner   Runner
	recorder *logger.Recorder
	logger   *slog.Logger
	headless bool
	now      func() time.Time
}

func NewHandlers(runCtx context.Context, runner Runner, recorder *logger.Recorder, headless bool, logger *slog.Logger) *Handlers {
	return &Handlers{
		runCtx:   runCtx,
		runner:   runner,
		recorder: recorder,
		logger:   logger.With("component", "api"),
		headless: headless,
		now:      time.Now,
	}
}

// RunRequest is the body of POST /api/v1/runs.
type RunRequest struct {
	ViewType  string `json:"view_type"`
	Period    string `json:"period"`
	Year      int    `json:"year"`
	Region    string `json:"region"`
	SubRegion string `json:"sub_region"`
	Headless  *bool  `json:"headless,omitempty"`
}

type RunResponse struct {
	Started bool       `json:"started"`
	Status  run.Status `json:"status"`
}

// StartRun validates the selection and starts a background run.
func (h *Handlers) StartRun(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	view, err := models.ParseViewType(req.ViewType)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	sel, err := models.NewFilterSelection(view, req.Period, req.Year, req.Region, req.SubRegion, h.now())
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	headless := h.headless
	if req.Headless != nil {
		headless = *req.Headless
	}

	if !h.runner.Start(h.runCtx, run.Request{Selection: sel, Headless: headless}) {
		h.respondJSON(w, http.StatusConflict, RunResponse{Started: false, Status: h.runner.Status()})
		return
	}

	h.logger.Info("run started", "selection", sel.String())
	h.respondJSON(w, http.StatusAccepted, RunResponse{Started: true, Status: h.runner.Status()})
}

// StopRun requests a cooperative stop of the active run.
func (h *Handlers) StopRun(w http.ResponseWriter, r *http.Request) {
	stopped := h.runner.RequestStop()
	h.respondJSON(w, http.StatusOK, map[string]any{
		"stop_requested": stopped,
		"status":         h.runner.Status(),
	})
}

func (h *Handlers) GetStatus(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.runner.Status())
}

// GetLog returns the most recent log entries. ?limit=N caps the count.
func (h *Handlers) GetLog(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			h.respondError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	entries := h.recorder.Tail(limit)
	if entries == nil {
		entries = []logger.Entry{}
	}
	h.respondJSON(w, http.StatusOK, entries)
}

// OptionsResponse lists every value the filter bar accepts.
type OptionsResponse struct {
	ViewTypes  []models.ViewType   `json:"view_types"`
	Periods    map[string][]string `json:"periods"`
	Years      []int               `json:"years"`
	Regions    []string            `json:"regions"`
	SubRegions []string            `json:"sub_regions"`
}

func (h *Handlers) GetOptions(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, OptionsResponse{
		ViewTypes: []models.ViewType{models.ViewMonthly, models.ViewQuarterly},
		Periods: map[string][]string{
			string(models.ViewMonthly):   models.Periods(models.ViewMonthly),
			string(models.ViewQuarterly): models.Periods(models.ViewQuarterly),
		},
		Years:      models.Years(h.now()),
		Regions:    models.Regions,
		SubRegions: []string{models.SubRegionAll},
	})
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"run":    h.runner.Status().State,
	})
}

// Helper methods
func (h *Handlers) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
