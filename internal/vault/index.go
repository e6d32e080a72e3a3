package vault

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"unicode/utf8"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/singleflight"

	"vault-assistant/internal/contextutil"
)

// DefaultExtension is the file extension treated as a note.
const DefaultExtension = ".md"

// obsidianDir is the Obsidian configuration directory, never scanned for notes.
const obsidianDir = ".obsidian"

// Entry is a cached note.
type Entry struct {
	Content  string
	Checksum uint64 // xxhash of the raw file bytes
}

// Stats summarizes the cache. Digest identifies the cached snapshot: it changes
// only when an entry is added, so it stays put while notes are edited on disk.
type Stats struct {
	Entries int    `json:"entries"`
	Bytes   int64  `json:"bytes"`
	Digest  string `json:"digest,omitempty"`
}

// Index enumerates the notes under a single vault root and caches their decoded
// content by absolute path. The cache never evicts: a note edited on disk after
// it was cached keeps returning the cached text until a new Index is built.
type Index struct {
	root      string
	extension string
	readFile  func(name string) ([]byte, error)

	mu      sync.RWMutex
	entries map[string]Entry
	group   singleflight.Group
}

// Option configures an Index.
type Option func(*Index)

// WithExtension sets the note file extension (default ".md").
func WithExtension(ext string) Option {
	return func(ix *Index) {
		if ext != "" {
			ix.extension = ext
		}
	}
}

// WithReadFunc replaces the function used to read note files.
func WithReadFunc(fn func(name string) ([]byte, error)) Option {
	return func(ix *Index) {
		if fn != nil {
			ix.readFile = fn
		}
	}
}

// NewIndex binds an Index to root. The root must be an existing directory.
func NewIndex(root string, opts ...Option) (*Index, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrVaultNotFound, root)
	}
	if err := checkRoot(abs); err != nil {
		return nil, err
	}

	ix := &Index{
		root:      abs,
		extension: DefaultExtension,
		readFile:  os.ReadFile,
		entries:   make(map[string]Entry),
	}
	for _, opt := range opts {
		opt(ix)
	}
	return ix, nil
}

// Root returns the absolute vault root.
func (ix *Index) Root() string {
	return ix.root
}

// Extension returns the note file extension.
func (ix *Index) Extension() string {
	return ix.extension
}

// ReadNote returns the content of the note at path, loading and caching it on a miss.
// Read and decode failures are logged and reported as an empty string; they are not
// cached, so a later call retries the read.
func (ix *Index) ReadNote(ctx context.Context, path string) string {
	content, err := ix.Note(ctx, path)
	if err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "skipping unreadable note", "path", path, "error", err)
		return ""
	}
	return content
}

// Note is ReadNote with the failure surfaced as a *NoteReadError.
func (ix *Index) Note(ctx context.Context, path string) (string, error) {
	if e, ok := ix.lookup(path); ok {
		return e.Content, nil
	}

	// Concurrent misses on one path share a single read.
	v, err, _ := ix.group.Do(path, func() (any, error) {
		if e, ok := ix.lookup(path); ok {
			return e, nil
		}
		e, err := ix.load(path)
		if err != nil {
			return Entry{}, err
		}
		ix.mu.Lock()
		ix.entries[path] = e
		ix.mu.Unlock()

		contextutil.LoggerFromContext(ctx).DebugContext(ctx, "note cached",
			"path", path,
			"bytes", len(e.Content),
			"checksum", fmt.Sprintf("%016x", e.Checksum),
		)
		return e, nil
	})
	if err != nil {
		return "", err
	}
	return v.(Entry).Content, nil
}

// Cached reports the cache entry for path without touching the filesystem.
func (ix *Index) Cached(path string) (Entry, bool) {
	return ix.lookup(path)
}

// Stats returns the number of cached notes, their total size and a digest
// folded from the per-entry checksums in path order.
func (ix *Index) Stats() Stats {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	s := Stats{Entries: len(ix.entries)}
	if s.Entries == 0 {
		return s
	}

	paths := make([]string, 0, len(ix.entries))
	for p, e := range ix.entries {
		paths = append(paths, p)
		s.Bytes += int64(len(e.Content))
	}
	sort.Strings(paths)

	d := xxhash.New()
	var sum [8]byte
	for _, p := range paths {
		_, _ = d.WriteString(p)
		binary.LittleEndian.PutUint64(sum[:], ix.entries[p].Checksum)
		_, _ = d.Write(sum[:])
	}
	s.Digest = fmt.Sprintf("%016x", d.Sum64())
	return s
}

// RelPath returns path relative to the vault root in slash form.
func (ix *Index) RelPath(path string) string {
	rel, err := filepath.Rel(ix.root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func (ix *Index) lookup(path string) (Entry, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	e, ok := ix.entries[path]
	return e, ok
}

func (ix *Index) load(path string) (Entry, error) {
	data, err := ix.readFile(path)
	if err != nil {
		return Entry{}, &NoteReadError{Path: path, Err: err}
	}
	if !utf8.Valid(data) {
		return Entry{}, &NoteReadError{Path: path, Err: ErrInvalidEncoding}
	}
	return Entry{
		Content:  string(data),
		Checksum: xxhash.Sum64(data),
	}, nil
}

func checkRoot(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrVaultNotFound, root)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrVaultNotFound, root)
	}
	return nil
}
