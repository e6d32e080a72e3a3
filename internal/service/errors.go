package service

import (
	"errors"
	"fmt"

	"vault-assistant/internal/llm"
)

var (
	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound is returned when a requested resource is not found.
	ErrNotFound = errors.New("not found")
	// ErrExternalService is returned when an external service call fails.
	ErrExternalService = errors.New("external service error")
	// ErrNotInitialized is returned when a query arrives before any vault is bound.
	ErrNotInitialized = errors.New("assistant not initialized")
)

// ValidationError represents a validation error with a field name.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field %s: %s", e.Field, e.Message)
}

// Is lets errors.Is(err, ErrInvalidInput) match any ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// WrapError wraps an error with additional context.
func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// wrapBackendError marks inference backend failures as ErrExternalService while
// keeping the original error in the chain.
func wrapBackendError(err error, msg string) error {
	if err == nil {
		return nil
	}
	if isBackendError(err) {
		return fmt.Errorf("%s: %w: %w", msg, ErrExternalService, err)
	}
	return WrapError(err, msg)
}

func isBackendError(err error) bool {
	var backendErr *llm.BackendError
	return errors.Is(err, llm.ErrBackendUnavailable) ||
		errors.Is(err, llm.ErrBackendTimeout) ||
		errors.Is(err, llm.ErrBackendProtocol) ||
		errors.As(err, &backendErr)
}
