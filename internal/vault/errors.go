package vault

import (
	"errors"
	"fmt"
)

var (
	// ErrVaultNotFound is returned when the vault root does not exist or is not a directory.
	ErrVaultNotFound = errors.New("vault not found")
	// ErrInvalidEncoding is returned when a note is not valid UTF-8.
	ErrInvalidEncoding = errors.New("note is not valid UTF-8")
)

// NoteReadError describes a note that could not be read or decoded.
// It never escapes ReadNote; callers of ReadNote see an empty string instead.
type NoteReadError struct {
	Path string
	Err  error
}

func (e *NoteReadError) Error() string {
	return fmt.Sprintf("read note %s: %v", e.Path, e.Err)
}

func (e *NoteReadError) Unwrap() error {
	return e.Err
}
