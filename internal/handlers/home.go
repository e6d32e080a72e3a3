package handlers

import (
	"bytes"
	"context"
	"embed"
	"html/template"
	"net/http"
	"time"

	"vault-assistant/internal/contextutil"
	"vault-assistant/internal/service"
)

//go:embed templates/index.html
var templateFS embed.FS

var homeTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// HomeHandler serves the browser UI.
type HomeHandler struct {
	assistant    service.Assistant
	defaultModel string
	modelTimeout time.Duration
}

type homePageData struct {
	Vaults       []string
	Models       []string
	DefaultModel string
	Session      *service.SessionInfo
}

// NewHomeHandler creates a new HomeHandler. defaultModel is preselected in the
// model picker.
func NewHomeHandler(assistant service.Assistant, defaultModel string) *HomeHandler {
	if defaultModel == "" {
		defaultModel = service.DefaultModel
	}
	return &HomeHandler{
		assistant:    assistant,
		defaultModel: defaultModel,
		modelTimeout: 5 * time.Second,
	}
}

// ServeHTTP renders the setup and question page. A backend that cannot list
// its models falls back to a free-text model field.
func (h *HomeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	data := homePageData{
		Vaults:       h.assistant.Vaults(ctx),
		DefaultModel: h.defaultModel,
	}

	modelCtx, cancel := context.WithTimeout(ctx, h.modelTimeout)
	models, err := h.assistant.Models(modelCtx)
	cancel()
	if err != nil {
		logger.WarnContext(ctx, "failed to list models", "error", err)
	} else {
		data.Models = models
	}

	if info, ok := h.assistant.Session(); ok {
		data.Session = &info
	}

	var buf bytes.Buffer
	if err := homeTemplate.Execute(&buf, data); err != nil {
		logger.ErrorContext(ctx, "failed to execute index template", "error", err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
