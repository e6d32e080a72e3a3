package handlers

import (
	"context"
	"net/http"
	"time"

	"vault-assistant/internal/contextutil"
	"vault-assistant/internal/service"
)

// HealthHandler handles HTTP requests for health checks.
type HealthHandler struct {
	assistant          service.Assistant
	healthCheckTimeout time.Duration
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(assistant service.Assistant) *HealthHandler {
	return &HealthHandler{
		assistant:          assistant,
		healthCheckTimeout: 5 * time.Second,
	}
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	// Overall health status: "healthy" or "unhealthy"
	Status string `json:"status"`

	// Timestamp of the health check
	Timestamp string `json:"timestamp"`

	// Individual check results
	Checks map[string]string `json:"checks"`

	// Session is the active vault binding, if any.
	Session *service.SessionInfo `json:"session,omitempty"`

	// List of issues (only present if status is unhealthy)
	Issues []string `json:"issues,omitempty"`
}

// ServeHTTP reports the backend reachability and the active session.
// Returns 200 OK if healthy, 503 Service Unavailable otherwise. An
// uninitialized assistant is still healthy.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	checkCtx, cancel := context.WithTimeout(ctx, h.healthCheckTimeout)
	defer cancel()

	checks := make(map[string]string)
	var issues []string

	if err := h.assistant.Ping(checkCtx); err != nil {
		logger.WarnContext(ctx, "inference backend health check failed", "error", err)
		checks["backend"] = "error"
		issues = append(issues, "backend_unavailable")
	} else {
		checks["backend"] = "ok"
	}

	response := HealthResponse{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	}

	if info, ok := h.assistant.Session(); ok {
		checks["session"] = "initialized"
		response.Session = &info
	} else {
		checks["session"] = "uninitialized"
	}

	status := "healthy"
	httpStatus := http.StatusOK
	if len(issues) > 0 {
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
		response.Issues = issues
	}
	response.Status = status

	writeJSON(ctx, w, httpStatus, response)
}
