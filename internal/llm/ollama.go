package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"vault-assistant/internal/contextutil"
)

// DefaultOllamaURL is the address of a local Ollama server.
const DefaultOllamaURL = "http://localhost:11434"

// OllamaClient talks to the Ollama generate API.
type OllamaClient struct {
	BaseURL string
	client  *http.Client
}

// NewOllamaClient creates a client for the Ollama server at baseURL.
func NewOllamaClient(baseURL string, timeout time.Duration) *OllamaClient {
	if baseURL == "" {
		baseURL = DefaultOllamaURL
	}
	return &OllamaClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Model    string  `json:"model"`
	Response *string `json:"response"`
	Done     bool    `json:"done"`
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// Generate sends a non-streaming generate request and returns the response text.
func (c *OllamaClient) Generate(ctx context.Context, model, prompt string) (string, error) {
	logger := contextutil.LoggerFromContext(ctx)

	req, err := newJSONRequest(ctx, http.MethodPost, c.BaseURL+"/api/generate", generateRequest{
		Model:  model,
		Prompt: prompt,
		Stream: false,
	})
	if err != nil {
		return "", err
	}

	logger.DebugContext(ctx, "sending generate request", "model", model, "prompt_bytes", len(prompt))
	start := time.Now()

	var out generateResponse
	if err := doJSON(c.client, req, &out); err != nil {
		return "", fmt.Errorf("ollama generate: %w", err)
	}
	if out.Response == nil {
		return "", fmt.Errorf("ollama generate: %w: missing response field", ErrBackendProtocol)
	}

	logger.DebugContext(ctx, "received generate response",
		"model", model,
		"response_bytes", len(*out.Response),
		"duration", time.Since(start),
	)
	return *out.Response, nil
}

// Ping checks that the Ollama server answers on /api/tags.
func (c *OllamaClient) Ping(ctx context.Context) error {
	_, err := c.tags(ctx)
	return err
}

// ListModels returns the names of the locally available models.
func (c *OllamaClient) ListModels(ctx context.Context) ([]string, error) {
	tags, err := c.tags(ctx)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(tags.Models))
	for _, m := range tags.Models {
		names = append(names, m.Name)
	}
	return names, nil
}

func (c *OllamaClient) tags(ctx context.Context) (tagsResponse, error) {
	req, err := newJSONRequest(ctx, http.MethodGet, c.BaseURL+"/api/tags", nil)
	if err != nil {
		return tagsResponse{}, err
	}

	var out tagsResponse
	if err := doJSON(c.client, req, &out); err != nil {
		return tagsResponse{}, fmt.Errorf("ollama tags: %w", err)
	}
	return out, nil
}
