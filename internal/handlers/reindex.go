package handlers

import (
	"net/http"

	"triage-kb/internal/contextutil"
	"triage-kb/internal/kb"
)

// ReindexHandler triggers a full rebuild of the live index snapshot.
type ReindexHandler struct {
	engine *kb.Engine
}

// NewReindexHandler creates a new ReindexHandler.
func NewReindexHandler(engine *kb.Engine) *ReindexHandler {
	return &ReindexHandler{engine: engine}
}

// ServeHTTP handles POST reindex requests. On failure the previous snapshot
// keeps serving and the error is reported as a failed reindex.
func (h *ReindexHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	stats, err := h.engine.Reindex(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "reindex failed", "error", err)
		writeError(ctx, w, http.StatusInternalServerError, "reindex failed: "+err.Error())
		return
	}

	writeJSON(ctx, w, http.StatusOK, stats)
}

// StatsHandler reports the currently served snapshot.
type StatsHandler struct {
	engine *kb.Engine
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(engine *kb.Engine) *StatsHandler {
	return &StatsHandler{engine: engine}
}

// ServeHTTP handles GET index stats requests.
func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, h.engine.Stats())
}
