package rag

import "errors"

const (
	// BatchSize is the number of notes read per scan step.
	BatchSize = 10
	// MaxContextNotes is the number of matches included in the prompt context.
	MaxContextNotes = 3
	// NoMatchesResponse is returned when no note matches the query.
	NoMatchesResponse = "No relevant notes found."
)

// ErrEmptyQuery is returned when a query contains no search terms.
var ErrEmptyQuery = errors.New("query is empty")

// Match is a note whose content contains at least one query term.
type Match struct {
	Path    string
	Content string
}

// CitedFile identifies a note used to build the answer context.
type CitedFile struct {
	// Name is the note's file name (e.g., "meeting.md").
	Name string `json:"name"`
	// Path is the absolute path of the note.
	Path string `json:"path"`
	// RelPath is the path relative to the vault root, slash separated.
	RelPath string `json:"rel_path"`
}

// Answer is the result of answering a query.
type Answer struct {
	// Response is the backend's answer text, or NoMatchesResponse.
	Response string `json:"response"`
	// Files are the notes used as context, at most MaxContextNotes.
	Files []CitedFile `json:"files"`
	// Matched is the total number of matching notes, including those left out of the context.
	Matched int `json:"matched"`
}

// Found reports whether any note matched the query.
func (a Answer) Found() bool {
	return a.Matched > 0
}
