package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"vault-assistant/internal/contextutil"
	"vault-assistant/internal/llm"
	"vault-assistant/internal/rag"
	"vault-assistant/internal/service"
	"vault-assistant/internal/vault"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// writeJSON writes v with the given status code.
func writeJSON(ctx context.Context, w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Status:  statusError,
		Message: message,
	})
}

// decodeJSON decodes the request body into v. An empty body leaves v untouched.
func decodeJSON(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// handleServiceError maps service errors to appropriate HTTP status codes and responses.
func handleServiceError(ctx context.Context, w http.ResponseWriter, err error, defaultMsg string) {
	logger := contextutil.LoggerFromContext(ctx)
	status, message := classifyError(err, defaultMsg)
	if status >= http.StatusInternalServerError {
		logger.ErrorContext(ctx, "service error", "error", err, "status", status)
	} else {
		logger.WarnContext(ctx, "request rejected", "error", err, "status", status)
	}
	writeError(w, status, message)
}

func classifyError(err error, defaultMsg string) (int, string) {
	var validationErr *service.ValidationError
	if errors.As(err, &validationErr) {
		return http.StatusBadRequest, "Validation error: " + validationErr.Error()
	}

	var backendErr *llm.BackendError
	switch {
	case errors.Is(err, vault.ErrVaultNotFound):
		return http.StatusBadRequest, "Vault path does not exist or is not a directory"
	case errors.Is(err, rag.ErrEmptyQuery):
		return http.StatusBadRequest, "Query is required"
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest, "Invalid input"
	case errors.Is(err, service.ErrNotInitialized):
		return http.StatusConflict, "Assistant not initialized. Initialize a vault first."
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, "Resource not found"
	case errors.Is(err, llm.ErrBackendTimeout):
		return http.StatusGatewayTimeout, "Inference backend timed out"
	case errors.Is(err, llm.ErrBackendUnavailable):
		return http.StatusBadGateway, "Inference backend unavailable"
	case errors.As(err, &backendErr):
		return http.StatusBadGateway, "Inference backend error: " + backendErr.Detail
	case errors.Is(err, service.ErrExternalService):
		return http.StatusBadGateway, "External service error"
	}

	// Default to internal server error
	return http.StatusInternalServerError, defaultMsg
}
