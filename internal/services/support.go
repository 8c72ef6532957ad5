package services

import (
	"path/filepath"
	"strings"
)

// cleanPath canonicalizes a request path: symlinks resolved, absolute,
// cleaned. Paths that cannot be resolved (already deleted, synthetic)
// still come back cleaned and absolute so scope checks stay meaningful.
func cleanPath(path string) string {
	if path == "" {
		return path
	}
	clean := filepath.Clean(path)
	if resolved, err := filepath.EvalSymlinks(clean); err == nil {
		clean = resolved
	}
	abs, err := filepath.Abs(clean)
	if err != nil {
		return clean
	}
	return abs
}

// isWithin reports whether path equals root or lives below it.
func isWithin(root, path string) bool {
	if root == path {
		return true
	}
	rootWithSep := strings.TrimSuffix(root, string(filepath.Separator)) + string(filepath.Separator)
	return strings.HasPrefix(path, rootWithSep)
}
