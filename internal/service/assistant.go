package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_backend.go -package=mocks vault-assistant/internal/service Backend
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_assistant.go -package=mocks vault-assistant/internal/service Assistant

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"vault-assistant/internal/contextutil"
	"vault-assistant/internal/rag"
	"vault-assistant/internal/vault"
)

// DefaultModel is used when Initialize is called without a model name.
const DefaultModel = "mistral"

// Backend is the inference server as seen by the assistant.
// This interface is defined from the service layer's perspective (consumer-first).
type Backend interface {
	// Generate sends a prompt to model and returns the complete response.
	Generate(ctx context.Context, model, prompt string) (string, error)
	// Ping checks that the server is reachable.
	Ping(ctx context.Context) error
	// ListModels returns the models the server offers.
	ListModels(ctx context.Context) ([]string, error)
}

// SessionInfo describes the active vault binding.
type SessionInfo struct {
	ID        string      `json:"session_id"`
	VaultPath string      `json:"vault_path"`
	Model     string      `json:"model"`
	CreatedAt time.Time   `json:"created_at"`
	Cache     vault.Stats `json:"cache"`
}

// Assistant answers questions over one vault at a time.
type Assistant interface {
	// Initialize binds the assistant to a vault and model, replacing any previous
	// session and its cache. On failure the previous session stays active.
	Initialize(ctx context.Context, vaultPath, modelName string) (SessionInfo, error)
	// AnswerQuery answers query from the notes of the active session.
	AnswerQuery(ctx context.Context, query string) (rag.Answer, error)
	// Session returns the active session, if any.
	Session() (SessionInfo, bool)
	// Note returns the content of a note inside the active vault.
	Note(ctx context.Context, path string) (string, error)
	// Models lists the models offered by the inference backend.
	Models(ctx context.Context) ([]string, error)
	// Vaults lists vault candidates found in the configured search roots.
	Vaults(ctx context.Context) []string
	// Ping checks the inference backend.
	Ping(ctx context.Context) error
}

// Options configures an Assistant.
type Options struct {
	DefaultModel string
	Extension    string
	SearchRoots  []string
}

type session struct {
	id        string
	index     *vault.Index
	engine    rag.Engine
	model     string
	createdAt time.Time
}

func (s *session) info() SessionInfo {
	return SessionInfo{
		ID:        s.id,
		VaultPath: s.index.Root(),
		Model:     s.model,
		CreatedAt: s.createdAt,
		Cache:     s.index.Stats(),
	}
}

// assistant implements Assistant.
type assistant struct {
	backend Backend
	opts    Options

	mu      sync.RWMutex
	current *session
}

// NewAssistant creates an uninitialized Assistant.
func NewAssistant(backend Backend, opts Options) Assistant {
	if opts.DefaultModel == "" {
		opts.DefaultModel = DefaultModel
	}
	if opts.Extension == "" {
		opts.Extension = vault.DefaultExtension
	}
	return &assistant{
		backend: backend,
		opts:    opts,
	}
}

func (a *assistant) Initialize(ctx context.Context, vaultPath, modelName string) (SessionInfo, error) {
	logger := contextutil.LoggerFromContext(ctx)

	vaultPath = strings.TrimSpace(vaultPath)
	if vaultPath == "" {
		logger.WarnContext(ctx, "initialize called without vault path")
		return SessionInfo{}, &ValidationError{Field: "vault_path", Message: "is required"}
	}
	model := strings.TrimSpace(modelName)
	if model == "" {
		model = a.opts.DefaultModel
	}

	index, err := vault.NewIndex(vaultPath, vault.WithExtension(a.opts.Extension))
	if err != nil {
		logger.WarnContext(ctx, "vault path rejected", "vault", vaultPath, "error", err)
		return SessionInfo{}, err
	}

	if err := a.backend.Ping(ctx); err != nil {
		logger.ErrorContext(ctx, "inference backend check failed", "error", err)
		return SessionInfo{}, wrapBackendError(err, "failed to reach inference backend")
	}

	s := &session{
		id:        uuid.NewString(),
		index:     index,
		model:     model,
		createdAt: time.Now().UTC(),
	}
	s.engine = rag.NewEngine(index, a.backend, model)

	a.mu.Lock()
	previous := a.current
	a.current = s
	a.mu.Unlock()

	attrs := []any{"session_id", s.id, "vault", index.Root(), "model", model}
	if previous != nil {
		attrs = append(attrs, "replaced_session_id", previous.id)
	}
	logger.InfoContext(ctx, "assistant initialized", attrs...)

	return s.info(), nil
}

func (a *assistant) AnswerQuery(ctx context.Context, query string) (rag.Answer, error) {
	s := a.session()
	if s == nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "query before initialization")
		return rag.Answer{}, ErrNotInitialized
	}

	logger := contextutil.LoggerFromContext(ctx).With(slog.String("session_id", s.id))
	ctx = contextutil.WithLogger(ctx, logger)

	answer, err := s.engine.Answer(ctx, query)
	if err != nil {
		if errors.Is(err, rag.ErrEmptyQuery) {
			logger.WarnContext(ctx, "empty query")
			return rag.Answer{}, err
		}
		return rag.Answer{}, wrapBackendError(err, "failed to answer query")
	}

	logger.InfoContext(ctx, "query answered", "matched", answer.Matched, "cited", len(answer.Files))
	return answer, nil
}

func (a *assistant) Session() (SessionInfo, bool) {
	s := a.session()
	if s == nil {
		return SessionInfo{}, false
	}
	return s.info(), true
}

// Note reads through the session cache. Only note files inside the vault are served.
func (a *assistant) Note(ctx context.Context, path string) (string, error) {
	s := a.session()
	if s == nil {
		return "", ErrNotInitialized
	}

	rel, err := filepath.Rel(s.index.Root(), path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrNotFound
	}
	if filepath.Ext(path) != s.index.Extension() {
		return "", ErrNotFound
	}
	for _, segment := range strings.Split(filepath.ToSlash(rel), "/") {
		if segment == ".obsidian" {
			return "", ErrNotFound
		}
	}

	content, err := s.index.Note(ctx, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", ErrNotFound
		}
		return "", WrapError(err, "failed to read note")
	}
	return content, nil
}

func (a *assistant) Models(ctx context.Context) ([]string, error) {
	models, err := a.backend.ListModels(ctx)
	if err != nil {
		return nil, wrapBackendError(err, "failed to list models")
	}
	return models, nil
}

func (a *assistant) Vaults(ctx context.Context) []string {
	return vault.Discover(ctx, a.opts.SearchRoots, a.opts.Extension)
}

func (a *assistant) Ping(ctx context.Context) error {
	return wrapBackendError(a.backend.Ping(ctx), "inference backend check failed")
}

func (a *assistant) session() *session {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.current
}
