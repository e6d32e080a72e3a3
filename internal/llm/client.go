package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"vault-assistant/internal/contextutil"
)

// Client is a client for OpenAI-compatible chat completions servers such as llama.cpp.
type Client struct {
	BaseURL string
	APIKey  string
	Model   string
	client  *http.Client
}

// NewClient creates a new chat completions client.
func NewClient(baseURL, apiKey, model string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Model:   model,
		client:  &http.Client{Timeout: timeout},
	}
}

// ChatRequest represents the request payload for chat completions.
type ChatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
}

// ChatChoice represents a single choice in the chat response.
type ChatChoice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

// ChatResponse represents the response from the chat completions API.
type ChatResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Choices []ChatChoice `json:"choices"`
}

type modelsResponse struct {
	Data []struct {
		ID string `json:"id"`
	} `json:"data"`
}

// Generate sends prompt as a single user message and returns the first choice.
// An empty model falls back to the client's default model.
func (c *Client) Generate(ctx context.Context, model, prompt string) (string, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if model == "" {
		model = c.Model
	}

	req, err := newJSONRequest(ctx, http.MethodPost, c.BaseURL+"/v1/chat/completions", ChatRequest{
		Model: model,
		Messages: []Message{
			{
				Role:    "user",
				Content: prompt,
			},
		},
	})
	if err != nil {
		return "", err
	}
	c.authorize(req)

	logger.DebugContext(ctx, "sending chat completion request", "model", model, "prompt_bytes", len(prompt))

	var out ChatResponse
	if err := doJSON(c.client, req, &out); err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("chat completion: %w: no choices returned", ErrBackendProtocol)
	}

	return out.Choices[0].Message.Content, nil
}

// Ping checks that the server answers on /v1/models.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.models(ctx)
	return err
}

// ListModels returns the model identifiers the server advertises.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	out, err := c.models(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(out.Data))
	for _, m := range out.Data {
		ids = append(ids, m.ID)
	}
	return ids, nil
}

func (c *Client) models(ctx context.Context) (modelsResponse, error) {
	req, err := newJSONRequest(ctx, http.MethodGet, c.BaseURL+"/v1/models", nil)
	if err != nil {
		return modelsResponse{}, err
	}
	c.authorize(req)

	var out modelsResponse
	if err := doJSON(c.client, req, &out); err != nil {
		return modelsResponse{}, fmt.Errorf("list models: %w", err)
	}
	return out, nil
}

func (c *Client) authorize(req *http.Request) {
	if c.APIKey != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.APIKey))
	}
}
