package handlers

import (
	"net/http"
	"strings"

	"vault-assistant/internal/contextutil"
	"vault-assistant/internal/service"
)

// InitializeHandler binds the assistant to a vault.
type InitializeHandler struct {
	assistant service.Assistant
}

// NewInitializeHandler creates a new InitializeHandler.
func NewInitializeHandler(assistant service.Assistant) *InitializeHandler {
	return &InitializeHandler{assistant: assistant}
}

// InitializeRequest represents the HTTP request payload for initialization.
type InitializeRequest struct {
	VaultPath string `json:"vault_path"`
	ModelName string `json:"model_name"`
}

// InitializeResponse represents the HTTP response payload for initialization.
type InitializeResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
	VaultPath string `json:"vault_path"`
	Model     string `json:"model"`
}

// ServeHTTP handles POST /initialize.
func (h *InitializeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req InitializeRequest
	if err := decodeJSON(r, &req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if strings.TrimSpace(req.VaultPath) == "" {
		writeError(w, http.StatusBadRequest, "Vault path is required")
		return
	}

	info, err := h.assistant.Initialize(ctx, req.VaultPath, req.ModelName)
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to initialize assistant")
		return
	}

	writeJSON(ctx, w, http.StatusOK, InitializeResponse{
		Status:    statusSuccess,
		Message:   "Assistant initialized successfully",
		SessionID: info.ID,
		VaultPath: info.VaultPath,
		Model:     info.Model,
	})
}
