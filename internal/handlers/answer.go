package handlers

import (
	"encoding/json"
	"net/http"

	"triage-kb/internal/contextutil"
	"triage-kb/internal/kb"
	"triage-kb/internal/learning"
)

// AnswerHandler serves the no-LLM fallback: a reply composed directly from
// the top knowledge-base hits.
type AnswerHandler struct {
	engine   *kb.Engine
	priors   learning.PriorSource
	defaults Defaults
}

// NewAnswerHandler creates a new AnswerHandler.
func NewAnswerHandler(engine *kb.Engine, priors learning.PriorSource, defaults Defaults) *AnswerHandler {
	return &AnswerHandler{engine: engine, priors: priors, defaults: defaults}
}

// AnswerRequest is the HTTP payload for a best-effort answer.
type AnswerRequest struct {
	Query     string   `json:"query"`
	Threshold *float64 `json:"threshold,omitempty"`
	MaxDocs   int      `json:"max_docs,omitempty"`
	Intent    string   `json:"intent,omitempty"`
}

// ServeHTTP handles POST answer requests. 404 means no article cleared the
// threshold, which callers treat as "escalate to a human".
func (h *AnswerHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	threshold := h.defaults.AnswerThreshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}

	priors, err := h.priors.Priors(ctx, learning.Options{
		Intent:       req.Intent,
		HalfLifeDays: h.defaults.PriorHalfLifeDays,
		SmoothingM:   h.defaults.PriorSmoothingM,
	})
	if err != nil {
		logger.WarnContext(ctx, "failed to compute priors, answering unbiased", "error", err)
		priors = nil
	}

	answer, err := h.engine.BestEffortAnswer(ctx, kb.AnswerRequest{
		Query:     req.Query,
		Threshold: threshold,
		Priors:    priors,
		MaxDocs:   req.MaxDocs,
	})
	if err != nil {
		logger.WarnContext(ctx, "answer rejected", "error", err)
		writeError(ctx, w, statusForError(err), err.Error())
		return
	}
	if answer == nil {
		writeError(ctx, w, http.StatusNotFound, "no knowledge article cleared the threshold")
		return
	}

	writeJSON(ctx, w, http.StatusOK, answer)
}
