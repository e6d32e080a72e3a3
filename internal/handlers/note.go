package handlers

import (
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/yuin/goldmark"

	"vault-assistant/internal/contextutil"
	"vault-assistant/internal/service"
)

// NoteHandler serves notes of the active vault as rendered HTML pages.
type NoteHandler struct {
	assistant service.Assistant
	markdown  goldmark.Markdown
	template  *template.Template
}

// notePageData holds template data for rendered note pages.
type notePageData struct {
	Title   string
	Vault   string
	RelPath string
	Content template.HTML
}

var noteTemplate = template.Must(template.New("note").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{.Title}} | {{.Vault}}</title>
  <style>
    body {
      font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', sans-serif;
      margin: 0 auto;
      padding: 2rem;
      max-width: 860px;
      line-height: 1.6;
      background: #f7f7f5;
      color: #1f2328;
    }
    header {
      border-bottom: 1px solid #d0d7de;
      margin-bottom: 1.5rem;
    }
    article {
      background: #fff;
      border: 1px solid #d0d7de;
      border-radius: 8px;
      padding: 1.5rem 2rem;
    }
    pre {
      background: #f6f8fa;
      padding: 1rem;
      overflow-x: auto;
      border-radius: 6px;
    }
    code {
      font-family: 'SFMono-Regular', Consolas, Menlo, monospace;
    }
    .meta {
      color: #656d76;
      font-size: 0.9rem;
    }
  </style>
</head>
<body>
  <header>
    <h1>{{.Title}}</h1>
    <p class="meta">Vault: {{.Vault}} &middot; {{.RelPath}} &middot; <a href="/">back</a></p>
  </header>
  <article>{{.Content}}</article>
</body>
</html>`))

// NewNoteHandler creates a new handler for serving note files.
func NewNoteHandler(assistant service.Assistant) *NoteHandler {
	return &NoteHandler{
		assistant: assistant,
		markdown:  newNoteMarkdown(),
		template:  noteTemplate,
	}
}

// ServeHTTP renders the note at /notes/{rel_path}.
func (h *NoteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	decoded, err := url.PathUnescape(chi.URLParam(r, "*"))
	if err != nil {
		http.Error(w, "invalid path encoding", http.StatusBadRequest)
		return
	}

	relPath, err := cleanRelPath(decoded)
	if err != nil {
		http.Error(w, "invalid path", http.StatusBadRequest)
		return
	}

	info, ok := h.assistant.Session()
	if !ok {
		http.Error(w, "assistant not initialized", http.StatusConflict)
		return
	}

	absPath, err := buildAbsPath(info.VaultPath, relPath)
	if err != nil {
		logger.WarnContext(ctx, "invalid note path", "rel_path", relPath, "error", err)
		http.Error(w, "invalid path", http.StatusBadRequest)
		return
	}

	content, err := h.assistant.Note(ctx, absPath)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			http.Error(w, "note not found", http.StatusNotFound)
		case errors.Is(err, service.ErrNotInitialized):
			http.Error(w, "assistant not initialized", http.StatusConflict)
		default:
			logger.ErrorContext(ctx, "failed to read note", "path", absPath, "error", err)
			http.Error(w, "failed to read note", http.StatusInternalServerError)
		}
		return
	}

	htmlContent, err := renderMarkdown(h.markdown, []byte(content))
	if err != nil {
		logger.ErrorContext(ctx, "failed to render markdown", "path", absPath, "error", err)
		http.Error(w, "failed to render note", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.template.Execute(w, notePageData{
		Title:   inferTitle(relPath),
		Vault:   filepath.Base(info.VaultPath),
		RelPath: relPath,
		Content: template.HTML(htmlContent),
	}); err != nil {
		logger.ErrorContext(ctx, "failed to execute note template", "path", absPath, "error", err)
	}
}

// cleanRelPath normalizes a slash separated path and rejects traversal.
func cleanRelPath(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", errors.New("empty path")
	}
	for _, segment := range strings.Split(trimmed, "/") {
		if segment == ".." {
			return "", errors.New("path traversal detected")
		}
	}

	cleaned := strings.TrimPrefix(path.Clean("/"+trimmed), "/")
	if cleaned == "" || cleaned == "." {
		return "", errors.New("invalid path")
	}
	return cleaned, nil
}

func buildAbsPath(root, rel string) (string, error) {
	root = filepath.Clean(root)
	abs := filepath.Join(root, filepath.FromSlash(rel))

	if !strings.HasPrefix(abs, root+string(os.PathSeparator)) {
		return "", errors.New("path escapes vault root")
	}
	return abs, nil
}

func inferTitle(rel string) string {
	base := path.Base(rel)
	if base == "." || base == "/" || base == "" {
		return "Note"
	}
	return strings.TrimSuffix(base, path.Ext(base))
}
