package service

import (
	"errors"
	"fmt"
	"testing"

	"vault-assistant/internal/llm"
)

func TestValidationError_Error(t *testing.T) {
	tests := []struct {
		name    string
		err     *ValidationError
		want    string
	}{
		{
			name: "field and message",
			err: &ValidationError{
				Field:   "message",
				Message: "cannot be empty",
			},
			want: "validation error on field message: cannot be empty",
		},
		{
			name: "empty field",
			err: &ValidationError{
				Field:   "",
				Message: "invalid",
			},
			want: "validation error on field : invalid",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("ValidationError.Error() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWrapError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		msg     string
		wantNil bool
		wantMsg string
	}{
		{
			name:    "nil error",
			err:     nil,
			msg:     "context",
			wantNil: true,
		},
		{
			name:    "wrapped error",
			err:     errors.New("original error"),
			msg:     "context",
			wantNil: false,
			wantMsg: "context: original error",
		},
		{
			name:    "empty message",
			err:     errors.New("original error"),
			msg:     "",
			wantNil: false,
			wantMsg: ": original error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WrapError(tt.err, tt.msg)
			if tt.wantNil {
				if got != nil {
					t.Errorf("WrapError() = %v, want nil", got)
				}
				return
			}
			if got == nil {
				t.Errorf("WrapError() = nil, want error")
				return
			}
			if got.Error() != tt.wantMsg {
				t.Errorf("WrapError() = %v, want %v", got.Error(), tt.wantMsg)
			}
			// Verify error wrapping
			if !errors.Is(got, tt.err) {
				t.Errorf("WrapError() should wrap original error")
			}
		})
	}
}

func TestValidationError_IsInvalidInput(t *testing.T) {
	err := WrapError(&ValidationError{Field: "vault_path", Message: "is required"}, "initialize")
	if !errors.Is(err, ErrInvalidInput) {
		t.Error("ValidationError should match ErrInvalidInput")
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("ValidationError should not match ErrNotFound")
	}
}

func TestWrapBackendError(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		wantNil      bool
		wantExternal bool
	}{
		{name: "nil error", err: nil, wantNil: true},
		{name: "unavailable", err: fmt.Errorf("ollama tags: %w", llm.ErrBackendUnavailable), wantExternal: true},
		{name: "timeout", err: llm.ErrBackendTimeout, wantExternal: true},
		{name: "protocol", err: llm.ErrBackendProtocol, wantExternal: true},
		{name: "bad status", err: &llm.BackendError{StatusCode: 500, Detail: "boom"}, wantExternal: true},
		{name: "other error", err: errors.New("disk on fire"), wantExternal: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := wrapBackendError(tt.err, "answer")
			if tt.wantNil {
				if got != nil {
					t.Errorf("wrapBackendError() = %v, want nil", got)
				}
				return
			}
			if !errors.Is(got, tt.err) {
				t.Errorf("wrapBackendError() = %v, should wrap %v", got, tt.err)
			}
			if errors.Is(got, ErrExternalService) != tt.wantExternal {
				t.Errorf("errors.Is(wrapBackendError(), ErrExternalService) = %v, want %v", !tt.wantExternal, tt.wantExternal)
			}
		})
	}
}
