package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"triage-kb/internal/contextutil"
	"triage-kb/internal/kb"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func writeError(ctx context.Context, w http.ResponseWriter, status int, msg string) {
	writeJSON(ctx, w, status, ErrorResponse{Error: msg})
}

// statusForError maps engine errors to HTTP status codes: parameter
// validation failures become 400, everything else 500.
func statusForError(err error) int {
	if errors.Is(err, kb.ErrInvalidInput) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
