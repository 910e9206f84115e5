package handlers

import (
	"encoding/json"
	"net/http"

	"triage-kb/internal/contextutil"
	"triage-kb/internal/kb"
	"triage-kb/internal/learning"
)

// Defaults are the config-supplied fallbacks for omitted request parameters
// and the aggregation knobs for prior computation.
type Defaults struct {
	SearchThreshold   float64
	AnswerThreshold   float64
	Alpha             float64
	PriorHalfLifeDays float64
	PriorSmoothingM   float64
}

// SearchHandler handles HTTP requests for knowledge-base search.
type SearchHandler struct {
	engine   *kb.Engine
	priors   learning.PriorSource
	defaults Defaults
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(engine *kb.Engine, priors learning.PriorSource, defaults Defaults) *SearchHandler {
	return &SearchHandler{engine: engine, priors: priors, defaults: defaults}
}

// SearchRequest is the HTTP payload for a search. Omitted threshold/alpha
// fall back to the configured defaults; set use_priors=false to rank on raw
// BM25 only.
type SearchRequest struct {
	Query     string   `json:"query"`
	K         int      `json:"k,omitempty"`
	Threshold *float64 `json:"threshold,omitempty"`
	Alpha     *float64 `json:"alpha,omitempty"`
	Intent    string   `json:"intent,omitempty"`
	UsePriors *bool    `json:"use_priors,omitempty"`
}

// SearchResponse is the ranked hit list.
type SearchResponse struct {
	Hits  []kb.Hit `json:"hits"`
	Count int      `json:"count"`
}

// resolvePriors fetches the per-document bias map for a request. A failure
// here degrades to unbiased ranking instead of failing the search.
func (h *SearchHandler) resolvePriors(r *http.Request, req SearchRequest) map[string]float64 {
	if req.UsePriors != nil && !*req.UsePriors {
		return nil
	}
	ctx := r.Context()
	priors, err := h.priors.Priors(ctx, learning.Options{
		Intent:       req.Intent,
		HalfLifeDays: h.defaults.PriorHalfLifeDays,
		SmoothingM:   h.defaults.PriorSmoothingM,
	})
	if err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "failed to compute priors, searching unbiased", "error", err)
		return nil
	}
	return priors
}

// ServeHTTP handles POST search requests.
func (h *SearchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	threshold := h.defaults.SearchThreshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}
	alpha := h.defaults.Alpha
	if req.Alpha != nil {
		alpha = *req.Alpha
	}

	hits, err := h.engine.Search(ctx, kb.SearchRequest{
		Query:     req.Query,
		K:         req.K,
		Threshold: threshold,
		Priors:    h.resolvePriors(r, req),
		Alpha:     alpha,
	})
	if err != nil {
		logger.WarnContext(ctx, "search rejected", "error", err)
		writeError(ctx, w, statusForError(err), err.Error())
		return
	}

	writeJSON(ctx, w, http.StatusOK, SearchResponse{Hits: hits, Count: len(hits)})
}
