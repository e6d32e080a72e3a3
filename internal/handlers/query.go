package handlers

import (
	"net/http"
	"strings"

	"github.com/yuin/goldmark"

	"vault-assistant/internal/contextutil"
	"vault-assistant/internal/rag"
	"vault-assistant/internal/service"
)

// QueryHandler answers questions from the active vault.
type QueryHandler struct {
	assistant service.Assistant
	markdown  goldmark.Markdown
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(assistant service.Assistant) *QueryHandler {
	return &QueryHandler{
		assistant: assistant,
		markdown:  newAnswerMarkdown(),
	}
}

// QueryRequest represents the HTTP request payload for a question.
type QueryRequest struct {
	Query string `json:"query"`
}

// QueryResponse represents the HTTP response payload for a question.
type QueryResponse struct {
	Status string `json:"status"`
	// Response is the answer rendered as HTML.
	Response string `json:"response"`
	// Raw is the answer as returned by the model.
	Raw   string          `json:"raw"`
	Files []rag.CitedFile `json:"files"`
}

// ServeHTTP handles POST /query.
func (h *QueryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req QueryRequest
	if err := decodeJSON(r, &req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, "Query is required")
		return
	}

	answer, err := h.assistant.AnswerQuery(ctx, req.Query)
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to process query")
		return
	}

	rendered, err := renderMarkdown(h.markdown, []byte(answer.Response))
	if err != nil {
		logger.ErrorContext(ctx, "failed to render answer", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to render answer")
		return
	}

	files := answer.Files
	if files == nil {
		files = []rag.CitedFile{}
	}

	writeJSON(ctx, w, http.StatusOK, QueryResponse{
		Status:   statusSuccess,
		Response: `<div class="markdown-content">` + rendered + `</div>`,
		Raw:      answer.Response,
		Files:    files,
	})
}
