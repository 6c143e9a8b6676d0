package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// backup copies the current content of absPath into the dated backup
// directory next to it:
//
//	<dir>/<backupDirName>/<YYYY-MM-DD>/<name>.<timestamp>.backup
//
// Backups are never overwritten and never pruned here; retention is an
// external concern. Returns the backup path on success.
func (s *Store) backup(absPath string) (string, error) {
	data, err := os.ReadFile(absPath)
	if err != nil {
		return "", fmt.Errorf("read for backup: %w", err)
	}

	now := time.Now()
	dir := filepath.Join(filepath.Dir(absPath), s.cfg.Files.BackupDirName, now.Format("2006-01-02"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create backup dir: %w", err)
	}

	// RFC3339 with colons replaced so the name is portable across filesystems
	stamp := strings.ReplaceAll(now.Format(time.RFC3339Nano), ":", "-")
	backupPath := filepath.Join(dir, fmt.Sprintf("%s.%s.backup", filepath.Base(absPath), stamp))

	if _, err := os.Stat(backupPath); err == nil {
		return "", fmt.Errorf("backup %q already exists", backupPath)
	}

	if err := os.WriteFile(backupPath, data, 0o644); err != nil {
		return "", fmt.Errorf("write backup: %w", err)
	}
	return backupPath, nil
}
