package vault

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSearchRoots(t *testing.T) {
	home := filepath.Join("/home", "someone")
	want := []string{
		filepath.Join(home, "Documents", "Obsidian"),
		filepath.Join(home, "Desktop"),
		filepath.Join(home, "Documents"),
		home,
	}
	assert.Equal(t, want, DefaultSearchRoots(home))
}

func TestDiscover(t *testing.T) {
	home := t.TempDir()

	// Vault marked by an Obsidian config dir, no notes yet.
	require.NoError(t, os.MkdirAll(filepath.Join(home, "Documents", "Obsidian", "Work", ".obsidian"), 0o755))
	// Vault recognised by a nested note.
	writeNotes(t, filepath.Join(home, "Desktop"), map[string]string{"journal/2024/jan.md": "cold"})
	// Directory without notes.
	writeNotes(t, filepath.Join(home, "Documents"), map[string]string{"taxes/return.pdf": "binary"})
	// Hidden directories are ignored even with notes.
	writeNotes(t, home, map[string]string{".cache/tool/readme.md": "hidden"})

	got := Discover(context.Background(), DefaultSearchRoots(home), ".md")

	want := []string{
		filepath.Join(home, "Documents", "Obsidian", "Work"),
		filepath.Join(home, "Desktop", "journal"),
		// The home root itself sees Desktop through the journal note.
		filepath.Join(home, "Desktop"),
	}
	assert.Equal(t, want, got)
}

func TestDiscover_MissingRoots(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope")
	got := Discover(context.Background(), []string{missing}, "")
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
