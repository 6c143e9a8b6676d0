package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, DefaultBatchSize, cfg.Analysis.BatchSize)
	assert.Equal(t, DefaultContextTTL, cfg.Cache.ContextTTL)
	assert.NotEmpty(t, cfg.Files.FilePatterns)
	assert.Contains(t, cfg.Files.IgnorePatterns, "**/node_modules/**")
	assert.True(t, filepath.IsAbs(cfg.Project.Root) || cfg.Project.Root == ".")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(c *Config) {}, true},
		{"empty root", func(c *Config) { c.Project.Root = "" }, false},
		{"zero cache entries", func(c *Config) { c.Cache.MaxEntries = 0 }, false},
		{"negative file size", func(c *Config) { c.Files.MaxFileSize = -1 }, false},
		{"zero batch size", func(c *Config) { c.Analysis.BatchSize = 0 }, false},
		{"threshold out of range", func(c *Config) { c.Search.FuzzyThreshold = 1.5 }, false},
		{"empty backup dir", func(c *Config) { c.Files.BackupDirName = "" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestLoad_NoConfigFile(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	require.NoError(t, err)

	resolved, _ := filepath.EvalSymlinks(dir)
	got, _ := filepath.EvalSymlinks(cfg.Project.Root)
	assert.Equal(t, resolved, got)
	assert.Equal(t, DefaultCacheMaxEntries, cfg.Cache.MaxEntries)
}

func TestLoad_KDL(t *testing.T) {
	dir := t.TempDir()
	content := `
project {
    name "demo"
}
cache {
    max_entries 64
    context_ttl_minutes 30
    cleanup_interval_ms 1000
}
files {
    max_file_size 2048
    backup_dir ".backups"
    ignore "**/generated/**"
}
analysis {
    batch_size 4
    watch true
    watch_debounce_ms 250
}
search {
    max_results 10
    context_lines 3
}
include "**/*.go" "**/*.md"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "demo", cfg.Project.Name)
	assert.Equal(t, 64, cfg.Cache.MaxEntries)
	assert.Equal(t, 30*time.Minute, cfg.Cache.ContextTTL)
	assert.Equal(t, time.Second, cfg.Cache.CleanupInterval)
	assert.Equal(t, int64(2048), cfg.Files.MaxFileSize)
	assert.Equal(t, ".backups", cfg.Files.BackupDirName)
	assert.Contains(t, cfg.Files.IgnorePatterns, "**/generated/**")
	assert.Equal(t, 4, cfg.Analysis.BatchSize)
	assert.True(t, cfg.Analysis.WatchMode)
	assert.Equal(t, 250*time.Millisecond, cfg.Analysis.WatchDebounce)
	assert.Equal(t, 10, cfg.Search.MaxResults)
	assert.Equal(t, 3, cfg.Search.ContextLines)
	assert.Equal(t, []string{"**/*.go", "**/*.md"}, cfg.Include)
}

func TestLoad_InvalidKDL(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(`cache { max_entries 0 }`), 0o644))

	_, err := Load(dir)
	assert.Error(t, err, "config failing validation should surface an error")
}
