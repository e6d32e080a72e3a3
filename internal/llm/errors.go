package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
)

var (
	// ErrBackendUnavailable is returned when the inference server cannot be reached.
	ErrBackendUnavailable = errors.New("inference backend unavailable")
	// ErrBackendTimeout is returned when the inference server does not answer in time.
	ErrBackendTimeout = errors.New("inference backend timed out")
	// ErrBackendProtocol is returned when the inference server answers with a malformed payload.
	ErrBackendProtocol = errors.New("malformed inference backend response")
)

// maxErrorBody bounds how much of a failed response body is kept as detail.
const maxErrorBody = 4096

// BackendError is returned when the inference server answers with a non-success status.
type BackendError struct {
	StatusCode int
	Detail     string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend error (status %d): %s", e.StatusCode, e.Detail)
}

// classifyTransportError maps a failed http.Client.Do into the backend error kinds.
func classifyTransportError(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
		return fmt.Errorf("%w: %v", ErrBackendTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// statusError builds a BackendError from a non-2xx response, preferring the
// server's {"error": ...} message when it sends one.
func statusError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	detail := strings.TrimSpace(string(raw))

	var body struct {
		Error json.RawMessage `json:"error"`
	}
	if json.Unmarshal(raw, &body) == nil && len(body.Error) > 0 {
		var msg string
		if json.Unmarshal(body.Error, &msg) == nil {
			detail = msg
		} else {
			var obj struct {
				Message string `json:"message"`
			}
			if json.Unmarshal(body.Error, &obj) == nil && obj.Message != "" {
				detail = obj.Message
			}
		}
	}
	if detail == "" {
		detail = http.StatusText(resp.StatusCode)
	}

	return &BackendError{StatusCode: resp.StatusCode, Detail: detail}
}
