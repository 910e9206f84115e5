package handlers

import (
	"encoding/json"
	"net/http"

	"triage-kb/internal/contextutil"
	"triage-kb/internal/learning"
)

// FeedbackHandler records retrieval outcomes and serves the administrative
// bulk reset.
type FeedbackHandler struct {
	store learning.Store
}

// NewFeedbackHandler creates a new FeedbackHandler.
func NewFeedbackHandler(store learning.Store) *FeedbackHandler {
	return &FeedbackHandler{store: store}
}

// FeedbackRequest is the HTTP payload for one recorded outcome.
type FeedbackRequest struct {
	DocPath  string `json:"doc_path"`
	Success  bool   `json:"success"`
	Intent   string `json:"intent,omitempty"`
	TicketID string `json:"ticket_id,omitempty"`
	UserHash string `json:"user_hash,omitempty"`
}

// FeedbackResponse acknowledges a feedback submission. Recorded is false
// when the write failed; feedback is best-effort telemetry and a lost sample
// never fails the user-facing flow.
type FeedbackResponse struct {
	Recorded bool `json:"recorded"`
}

// Record handles POST feedback requests.
func (h *FeedbackHandler) Record(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.DocPath == "" {
		writeError(ctx, w, http.StatusBadRequest, "doc_path is required")
		return
	}

	ev := learning.NewEvent(req.DocPath, req.Success, req.Intent, req.TicketID, req.UserHash)
	recorded := true
	if err := h.store.Append(ctx, ev); err != nil {
		logger.ErrorContext(ctx, "failed to record feedback, continuing", "doc_path", req.DocPath, "error", err)
		recorded = false
	} else {
		logger.InfoContext(ctx, "feedback recorded",
			"doc_path", req.DocPath,
			"success", req.Success,
			"intent", req.Intent,
		)
	}

	writeJSON(ctx, w, http.StatusAccepted, FeedbackResponse{Recorded: recorded})
}

// Reset handles DELETE requests clearing the whole feedback log.
func (h *FeedbackHandler) Reset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if err := h.store.Reset(ctx); err != nil {
		logger.ErrorContext(ctx, "failed to reset feedback log", "error", err)
		writeError(ctx, w, http.StatusInternalServerError, "failed to reset feedback log")
		return
	}

	logger.WarnContext(ctx, "feedback log reset")
	w.WriteHeader(http.StatusNoContent)
}
