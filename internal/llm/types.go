package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Provider names accepted by New.
const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
)

// DefaultTimeout bounds a single inference request.
const DefaultTimeout = 120 * time.Second

// Backend is an inference server able to answer a single prompt.
type Backend interface {
	// Generate sends prompt to model and returns the complete response text.
	Generate(ctx context.Context, model, prompt string) (string, error)
	// Ping checks that the server is reachable.
	Ping(ctx context.Context) error
	// ListModels returns the model names the server offers.
	ListModels(ctx context.Context) ([]string, error)
}

// Options configures a Backend built by New.
type Options struct {
	Provider string
	BaseURL  string
	APIKey   string
	Model    string
	Timeout  time.Duration
}

// New returns the Backend for opts.Provider.
func New(opts Options) (Backend, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	switch strings.ToLower(opts.Provider) {
	case "", ProviderOllama:
		return NewOllamaClient(opts.BaseURL, timeout), nil
	case ProviderOpenAI:
		return NewClient(opts.BaseURL, opts.APIKey, opts.Model, timeout), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", opts.Provider)
	}
}

// Message represents a single message in a chat conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// newJSONRequest builds a request carrying payload as a JSON body. A nil payload sends no body.
func newJSONRequest(ctx context.Context, method, url string, payload any) (*http.Request, error) {
	var body io.Reader = http.NoBody
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// doJSON executes req and decodes a 2xx JSON body into out.
func doJSON(client *http.Client, req *http.Request, out any) error {
	resp, err := client.Do(req)
	if err != nil {
		return classifyTransportError(err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		// The client timeout also covers reading the body.
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return fmt.Errorf("%w: %v", ErrBackendTimeout, err)
		}
		return fmt.Errorf("%w: decode response: %v", ErrBackendProtocol, err)
	}
	return nil
}
