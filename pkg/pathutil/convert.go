// Package pathutil converts between the absolute paths used internally
// and the relative, slash-separated paths reported to callers. Cache keys
// and filesystem operations use absolute paths; everything user-facing is
// relative to the project root.
package pathutil

import (
	"path/filepath"
	"strings"
)

// ToRelative converts an absolute path to a slash-separated path relative
// to rootDir. Paths outside the root, already-relative paths, and failed
// conversions come back unchanged (apart from slash normalization).
func ToRelative(absPath, rootDir string) string {
	if absPath == "" || rootDir == "" {
		return filepath.ToSlash(absPath)
	}
	if !filepath.IsAbs(absPath) {
		return filepath.ToSlash(absPath)
	}

	absPath = filepath.Clean(absPath)
	rootDir = filepath.Clean(rootDir)

	relPath, err := filepath.Rel(rootDir, absPath)
	if err != nil {
		return filepath.ToSlash(absPath)
	}
	// ".." means the file lies outside the root; the absolute path is
	// clearer than a traversal chain.
	if strings.HasPrefix(relPath, "..") {
		return filepath.ToSlash(absPath)
	}
	return filepath.ToSlash(relPath)
}

// ToAbsolute resolves a relative path against rootDir. Absolute inputs are
// cleaned and returned as-is.
func ToAbsolute(relPath, rootDir string) string {
	if relPath == "" {
		return rootDir
	}
	if filepath.IsAbs(relPath) {
		return filepath.Clean(relPath)
	}
	return filepath.Join(rootDir, filepath.FromSlash(relPath))
}
