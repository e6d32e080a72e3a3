package rag

import (
	"path/filepath"
	"strings"
)

// Tokenize lower-cases raw and splits it on whitespace.
func Tokenize(raw string) []string {
	return strings.Fields(strings.ToLower(raw))
}

// containsAny reports whether any term occurs as a substring of text.
// text must already be lower-cased.
func containsAny(text string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}

// BuildContext renders the first MaxContextNotes matches as
// "File: <name>\n<content>\n" blocks, in order.
func BuildContext(matches []Match) string {
	var b strings.Builder
	for _, m := range limit(matches) {
		b.WriteString("File: ")
		b.WriteString(filepath.Base(m.Path))
		b.WriteString("\n")
		b.WriteString(m.Content)
		b.WriteString("\n")
	}
	return b.String()
}

// BuildPrompt combines the context and the raw query into the backend prompt.
func BuildPrompt(context, query string) string {
	return "Context: " + context + "\n\nQuestion: " + query
}

func limit(matches []Match) []Match {
	if len(matches) > MaxContextNotes {
		return matches[:MaxContextNotes]
	}
	return matches
}
