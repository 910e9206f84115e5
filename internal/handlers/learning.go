package handlers

import (
	"net/http"
	"strconv"

	"triage-kb/internal/contextutil"
	"triage-kb/internal/learning"
)

// LearningHandler exposes the derived side of the feedback loop: priors,
// weighted global stats, and the raw event export.
type LearningHandler struct {
	calc  *learning.Calculator
	store learning.Store
}

// NewLearningHandler creates a new LearningHandler.
func NewLearningHandler(calc *learning.Calculator, store learning.Store) *LearningHandler {
	return &LearningHandler{calc: calc, store: store}
}

func queryFloat(r *http.Request, key string) (float64, bool, error) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return 0, false, nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, false, err
	}
	return parsed, true, nil
}

// Priors handles GET requests for the per-document bias map.
// Query parameters: intent, half_life_days, m.
func (h *LearningHandler) Priors(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	opts := learning.Options{Intent: r.URL.Query().Get("intent")}
	if v, ok, err := queryFloat(r, "half_life_days"); err != nil {
		writeError(ctx, w, http.StatusBadRequest, "half_life_days must be a valid number")
		return
	} else if ok {
		opts.HalfLifeDays = v
	}
	if v, ok, err := queryFloat(r, "m"); err != nil {
		writeError(ctx, w, http.StatusBadRequest, "m must be a valid number")
		return
	} else if ok {
		opts.SmoothingM = v
	}

	priors, err := h.calc.Priors(ctx, opts)
	if err != nil {
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to compute priors", "error", err)
		writeError(ctx, w, http.StatusInternalServerError, "failed to compute priors")
		return
	}

	writeJSON(ctx, w, http.StatusOK, priors)
}

// Stats handles GET requests for weighted global feedback statistics.
func (h *LearningHandler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	halfLife := 0.0
	if v, ok, err := queryFloat(r, "half_life_days"); err != nil {
		writeError(ctx, w, http.StatusBadRequest, "half_life_days must be a valid number")
		return
	} else if ok {
		halfLife = v
	}

	stats, err := h.calc.Stats(ctx, halfLife)
	if err != nil {
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to compute feedback stats", "error", err)
		writeError(ctx, w, http.StatusInternalServerError, "failed to compute feedback stats")
		return
	}

	writeJSON(ctx, w, http.StatusOK, stats)
}

// Events handles GET requests exporting the full event log, oldest first.
func (h *LearningHandler) Events(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	events := []learning.Event{}
	err := h.store.ForEach(ctx, func(ev learning.Event) error {
		events = append(events, ev)
		return nil
	})
	if err != nil {
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to export feedback events", "error", err)
		writeError(ctx, w, http.StatusInternalServerError, "failed to export feedback events")
		return
	}

	writeJSON(ctx, w, http.StatusOK, events)
}
