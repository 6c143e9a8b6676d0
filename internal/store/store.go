package store

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"

	"github.com/codescope/codescope/internal/cache"
	"github.com/codescope/codescope/internal/config"
	cserr "github.com/codescope/codescope/internal/errors"
)

// Store performs path-validated file operations with pre-mutation backups.
// Reads may go through an injected content cache keyed by absolute path.
type Store struct {
	cfg    *config.Config
	files  *cache.Cache[string]
	logger *log.Logger
}

// WriteOptions controls Write behavior. The zero value disables both
// backups and directory creation; callers normally use DefaultWriteOptions.
type WriteOptions struct {
	Backup    bool
	EnsureDir bool
}

// DefaultWriteOptions returns the standard write behavior: back up existing
// content and create missing parent directories.
func DefaultWriteOptions() WriteOptions {
	return WriteOptions{Backup: true, EnsureDir: true}
}

// FindOptions narrows FindFiles results
type FindOptions struct {
	Include  []string // doublestar globs; empty means config file patterns
	Exclude  []string // doublestar globs, applied after includes
	MaxDepth int      // directory depth limit relative to root, 0 = unlimited
}

// New creates a file store. fileCache may be nil to disable read-through
// caching.
func New(cfg *config.Config, fileCache *cache.Cache[string], logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Default()
	}
	return &Store{cfg: cfg, files: fileCache, logger: logger}
}

// Resolve validates path and resolves it to an absolute path under root.
// Relative paths are joined to root; absolute paths must already lie within
// it. Any parent-directory traversal segment is rejected.
func (s *Store) Resolve(root, path string) (string, error) {
	if path == "" {
		return "", cserr.Newf(cserr.ErrorTypePathValidation, "resolve", "empty path")
	}
	if containsTraversal(path) {
		return "", cserr.Newf(cserr.ErrorTypePathValidation, "resolve", "path %q contains a parent-directory segment", path).WithPath(path)
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", cserr.New(cserr.ErrorTypePathValidation, "resolve", err).WithPath(root)
	}

	var abs string
	if filepath.IsAbs(path) {
		abs = filepath.Clean(path)
	} else {
		abs = filepath.Join(absRoot, path)
	}

	if !s.ValidateBoundary(abs, absRoot) {
		return "", cserr.Newf(cserr.ErrorTypePathValidation, "resolve", "path %q escapes project root %q", path, absRoot).WithPath(path)
	}
	return abs, nil
}

// ValidateBoundary reports whether candidate resolves to root or somewhere
// nested under it.
func (s *Store) ValidateBoundary(candidate, root string) bool {
	absCandidate, err := filepath.Abs(candidate)
	if err != nil {
		return false
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(absRoot, absCandidate)
	if err != nil {
		return false
	}
	return rel == "." || (!strings.HasPrefix(rel, ".."+string(filepath.Separator)) && rel != "..")
}

// Read returns the UTF-8 content of the file at the absolute path. Files
// above the configured size limit are rejected before reading.
func (s *Store) Read(absPath string) (string, error) {
	info, err := os.Stat(absPath)
	if os.IsNotExist(err) {
		return "", cserr.New(cserr.ErrorTypeNotFound, "read", err).WithPath(absPath)
	}
	if err != nil {
		return "", cserr.New(cserr.ErrorTypeProcessing, "read", err).WithPath(absPath)
	}
	if info.Size() > s.cfg.Files.MaxFileSize {
		return "", cserr.Newf(cserr.ErrorTypeSizeLimit, "read", "file is %d bytes, limit is %d", info.Size(), s.cfg.Files.MaxFileSize).WithPath(absPath)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return "", cserr.New(cserr.ErrorTypeProcessing, "read", err).WithPath(absPath)
	}
	return string(data), nil
}

// ReadCached reads through the content cache when one is configured
func (s *Store) ReadCached(absPath string) (string, error) {
	if s.files != nil {
		if content, ok := s.files.Get(absPath); ok {
			return content, nil
		}
	}
	content, err := s.Read(absPath)
	if err != nil {
		return "", err
	}
	if s.files != nil {
		s.files.Set(absPath, content)
	}
	return content, nil
}

// Write replaces the file content at the absolute path. With opts.Backup,
// existing content is copied to a backup location first; a backup failure
// is logged and swallowed rather than blocking the write.
func (s *Store) Write(absPath, content string, opts WriteOptions) error {
	if int64(len(content)) > s.cfg.Files.MaxFileSize {
		return cserr.Newf(cserr.ErrorTypeSizeLimit, "write", "content is %d bytes, limit is %d", len(content), s.cfg.Files.MaxFileSize).WithPath(absPath)
	}

	if opts.EnsureDir {
		if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
			return cserr.New(cserr.ErrorTypeProcessing, "write", err).WithPath(absPath)
		}
	}

	if opts.Backup && s.Exists(absPath) {
		if backupPath, err := s.backup(absPath); err != nil {
			s.logger.Warn("backup before write failed, continuing", "path", absPath, "error", err)
		} else {
			s.logger.Debug("backed up file before write", "path", absPath, "backup", backupPath)
		}
	}

	if err := os.WriteFile(absPath, []byte(content), 0o644); err != nil {
		return cserr.New(cserr.ErrorTypeProcessing, "write", err).WithPath(absPath)
	}

	if s.files != nil {
		s.files.Set(absPath, content)
	}
	return nil
}

// Delete removes the file at the absolute path, backing it up first when
// requested. Deleting a missing file is a successful no-op.
func (s *Store) Delete(absPath string, backup bool) error {
	if !s.Exists(absPath) {
		return nil
	}

	if backup {
		if backupPath, err := s.backup(absPath); err != nil {
			s.logger.Warn("backup before delete failed, continuing", "path", absPath, "error", err)
		} else {
			s.logger.Debug("backed up file before delete", "path", absPath, "backup", backupPath)
		}
	}

	if err := os.Remove(absPath); err != nil {
		return cserr.New(cserr.ErrorTypeProcessing, "delete", err).WithPath(absPath)
	}

	if s.files != nil {
		s.files.Delete(absPath)
	}
	return nil
}

// Exists reports whether a file or directory exists at the absolute path
func (s *Store) Exists(absPath string) bool {
	_, err := os.Stat(absPath)
	return err == nil
}

// FindFiles expands the include globs under searchRoot, subtracts excludes
// and the standing ignore list, then drops directories, oversize files, and
// anything outside the include extension set. Result order follows glob
// expansion; callers needing determinism must sort.
func (s *Store) FindFiles(searchRoot string, opts FindOptions) ([]string, error) {
	absRoot, err := filepath.Abs(searchRoot)
	if err != nil {
		return nil, cserr.New(cserr.ErrorTypePathValidation, "find", err).WithPath(searchRoot)
	}
	if info, err := os.Stat(absRoot); err != nil || !info.IsDir() {
		return nil, cserr.Newf(cserr.ErrorTypeNotFound, "find", "search root %q is not a directory", absRoot).WithPath(absRoot)
	}

	includes := opts.Include
	if len(includes) == 0 {
		includes = s.cfg.Files.FilePatterns
	}
	excludes := append([]string{}, opts.Exclude...)
	excludes = append(excludes, s.cfg.Files.IgnorePatterns...)

	fsys := os.DirFS(absRoot)
	seen := make(map[string]bool)
	var results []string

	for _, pattern := range includes {
		matches, err := doublestar.Glob(fsys, pattern)
		if err != nil {
			s.logger.Warn("skipping invalid include pattern", "pattern", pattern, "error", err)
			continue
		}
	match:
		for _, rel := range matches {
			if seen[rel] {
				continue
			}
			seen[rel] = true

			if opts.MaxDepth > 0 && strings.Count(rel, "/")+1 > opts.MaxDepth {
				continue
			}
			for _, ex := range excludes {
				if doublestar.MatchUnvalidated(ex, rel) {
					continue match
				}
			}

			info, err := fs.Stat(fsys, rel)
			if err != nil || !info.Mode().IsRegular() {
				continue
			}
			if info.Size() > s.cfg.Files.MaxFileSize {
				s.logger.Debug("skipping oversize file", "path", rel, "size", info.Size())
				continue
			}
			results = append(results, filepath.Join(absRoot, filepath.FromSlash(rel)))
		}
	}
	return results, nil
}

// BackupDirName returns the configured backup directory name
func (s *Store) BackupDirName() string {
	return s.cfg.Files.BackupDirName
}

func containsTraversal(path string) bool {
	for _, segment := range strings.Split(filepath.ToSlash(path), "/") {
		if segment == ".." {
			return true
		}
	}
	return false
}
