package vault

import (
	"context"
	"io/fs"
	"path/filepath"

	"vault-assistant/internal/contextutil"
)

// ListNotes returns the absolute path of every note under the vault root in
// lexical walk order. The .obsidian directory is skipped, and so are
// subdirectories that cannot be read. An empty vault yields an empty slice.
func (ix *Index) ListNotes(ctx context.Context) ([]string, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if err := checkRoot(ix.root); err != nil {
		return nil, err
	}

	paths := []string{}
	err := filepath.WalkDir(ix.root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if err != nil {
			if path == ix.root {
				return err
			}
			// Log error but continue scanning
			logger.WarnContext(ctx, "skipping unreadable path", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path != ix.root && d.Name() == obsidianDir {
				return filepath.SkipDir
			}
			return nil
		}

		if filepath.Ext(path) != ix.extension {
			return nil
		}

		paths = append(paths, path)
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if rootErr := checkRoot(ix.root); rootErr != nil {
			return nil, rootErr
		}
		return nil, err
	}

	logger.DebugContext(ctx, "listed notes", "root", ix.root, "count", len(paths))
	return paths, nil
}
