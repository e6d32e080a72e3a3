package rag

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_generator.go -package=mocks vault-assistant/internal/rag Generator

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"vault-assistant/internal/contextutil"
)

// Generator answers a prompt with a model. It is implemented by the llm backends.
type Generator interface {
	Generate(ctx context.Context, model, prompt string) (string, error)
}

// NoteSource enumerates and reads the notes of one vault.
type NoteSource interface {
	ListNotes(ctx context.Context) ([]string, error)
	ReadNote(ctx context.Context, path string) string
	RelPath(path string) string
}

// Engine answers questions from the notes of a single vault.
type Engine interface {
	// Search returns every note containing any query term, in enumeration order.
	Search(ctx context.Context, query string) ([]Match, error)
	// Answer searches the vault and asks the model using the first matches as context.
	Answer(ctx context.Context, query string) (Answer, error)
}

// ragEngine implements the Engine interface.
type ragEngine struct {
	notes     NoteSource
	generator Generator
	model     string
}

// NewEngine creates an Engine over notes that answers with model.
func NewEngine(notes NoteSource, generator Generator, model string) Engine {
	return &ragEngine{
		notes:     notes,
		generator: generator,
		model:     model,
	}
}

// Search scans every note on each call; there is no persistent index.
func (e *ragEngine) Search(ctx context.Context, query string) ([]Match, error) {
	logger := contextutil.LoggerFromContext(ctx)

	terms := Tokenize(query)
	if len(terms) == 0 {
		return nil, ErrEmptyQuery
	}

	paths, err := e.notes.ListNotes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}

	matches := []Match{}
	for start := 0; start < len(paths); start += BatchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		end := min(start+BatchSize, len(paths))
		for _, path := range paths[start:end] {
			content := e.notes.ReadNote(ctx, path)
			if containsAny(strings.ToLower(content), terms) {
				matches = append(matches, Match{Path: path, Content: content})
				logger.DebugContext(ctx, "note matched", "path", path)
			}
		}
	}

	logger.InfoContext(ctx, "search completed",
		"terms", len(terms),
		"notes", len(paths),
		"matches", len(matches),
	)
	return matches, nil
}

// Answer never calls the model when nothing matches.
func (e *ragEngine) Answer(ctx context.Context, query string) (Answer, error) {
	logger := contextutil.LoggerFromContext(ctx)

	matches, err := e.Search(ctx, query)
	if err != nil {
		return Answer{}, err
	}

	if len(matches) == 0 {
		logger.InfoContext(ctx, "no relevant notes found")
		return Answer{Response: NoMatchesResponse, Files: []CitedFile{}}, nil
	}

	used := limit(matches)
	prompt := BuildPrompt(BuildContext(used), query)

	start := time.Now()
	response, err := e.generator.Generate(ctx, e.model, prompt)
	if err != nil {
		logger.ErrorContext(ctx, "failed to generate answer", "model", e.model, "error", err)
		return Answer{}, fmt.Errorf("generate answer: %w", err)
	}
	logger.InfoContext(ctx, "answer generated",
		"model", e.model,
		"context_notes", len(used),
		"duration", time.Since(start),
	)

	files := make([]CitedFile, 0, len(used))
	for _, m := range used {
		files = append(files, CitedFile{
			Name:    filepath.Base(m.Path),
			Path:    m.Path,
			RelPath: e.notes.RelPath(m.Path),
		})
	}

	return Answer{
		Response: response,
		Files:    files,
		Matched:  len(matches),
	}, nil
}
