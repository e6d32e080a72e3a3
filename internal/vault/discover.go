package vault

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"vault-assistant/internal/contextutil"
)

var errNoteFound = errors.New("note found")

// DefaultSearchRoots returns the locations searched for vaults, relative to home.
func DefaultSearchRoots(home string) []string {
	return []string{
		filepath.Join(home, "Documents", "Obsidian"),
		filepath.Join(home, "Desktop"),
		filepath.Join(home, "Documents"),
		home,
	}
}

// Discover returns the immediate subdirectories of roots that look like vaults:
// they contain a .obsidian directory or at least one note with extension ext.
// Missing roots are ignored, hidden directories are not considered, and each
// vault is reported once, in search order.
func Discover(ctx context.Context, roots []string, ext string) []string {
	logger := contextutil.LoggerFromContext(ctx)
	if ext == "" {
		ext = DefaultExtension
	}

	seen := make(map[string]struct{})
	vaults := []string{}
	for _, root := range roots {
		if ctx.Err() != nil {
			break
		}

		items, err := os.ReadDir(root)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				logger.DebugContext(ctx, "skipping vault search root", "root", root, "error", err)
			}
			continue
		}

		for _, item := range items {
			if !item.IsDir() || strings.HasPrefix(item.Name(), ".") {
				continue
			}
			dir := filepath.Join(root, item.Name())
			if _, dup := seen[dir]; dup {
				continue
			}
			if isVault(ctx, dir, ext) {
				seen[dir] = struct{}{}
				vaults = append(vaults, dir)
			}
		}
	}

	logger.DebugContext(ctx, "discovered vaults", "count", len(vaults))
	return vaults
}

func isVault(ctx context.Context, dir, ext string) bool {
	if info, err := os.Stat(filepath.Join(dir, obsidianDir)); err == nil && info.IsDir() {
		return true
	}

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			if d != nil && d.IsDir() && path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() && filepath.Ext(path) == ext {
			return errNoteFound
		}
		return nil
	})
	return errors.Is(err, errNoteFound)
}
