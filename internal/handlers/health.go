package handlers

import (
	"net/http"
	"time"

	"triage-kb/internal/kb"
)

// HealthHandler handles HTTP requests for health checks.
type HealthHandler struct {
	engine *kb.Engine
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(engine *kb.Engine) *HealthHandler {
	return &HealthHandler{engine: engine}
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	// Overall health status: "healthy" or "degraded"
	Status string `json:"status"`

	// Timestamp of the health check
	Timestamp string `json:"timestamp"`

	// Individual check results
	Checks map[string]string `json:"checks"`
}

// ServeHTTP handles GET health requests. The service is degraded until the
// first successful index build installs a snapshot.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string)

	status := "healthy"
	httpStatus := http.StatusOK
	if h.engine.Stats().Built {
		checks["index"] = "ok"
	} else {
		checks["index"] = "not_built"
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(r.Context(), w, httpStatus, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	})
}
