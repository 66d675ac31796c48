package fsutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ExpandHomePath expands a leading ~/ to the current user's home directory.
// Other paths, including relative ones, are returned unchanged.
func ExpandHomePath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}

	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// ExpandHomePaths applies ExpandHomePath to each non-nil path in place.
func ExpandHomePaths(paths ...*string) error {
	for _, path := range paths {
		if path == nil {
			continue
		}

		expanded, err := ExpandHomePath(*path)
		if err != nil {
			return err
		}

		*path = expanded
	}

	return nil
}

// ResolveAgainst resolves a relative path that does not exist in the working
// directory against base. Absolute paths and paths found in the working
// directory are returned unchanged.
func ResolveAgainst(base, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}

	if _, err := os.Stat(path); err == nil {
		return path
	}

	return filepath.Join(base, path)
}
