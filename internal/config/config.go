package config

import (
	"fmt"
	"os"
	"time"
)

// Default limits and tuning constants
const (
	DefaultMaxFileSize      = 1 * 1024 * 1024 // 1MB per analyzed file
	DefaultMaxContentLength = 50_000          // chars kept per FileInfo
	DefaultBatchSize        = 10
	DefaultMaxDepth         = 0 // unlimited
	DefaultContextTTL       = 1 * time.Hour
	DefaultCleanupInterval  = 5 * time.Minute
	DefaultCacheMaxEntries  = 500
	DefaultBackupDirName    = ".codescope-backups"
	DefaultMaxResults       = 50
	DefaultMaxPerFile       = 20
	DefaultContextLines     = 2
	DefaultWatchDebounce    = 500 * time.Millisecond
	DefaultMaxSuggestions   = 5
	DefaultFuzzyThreshold   = 0.78
)

type Config struct {
	Version  int
	Project  Project
	Cache    Cache
	Files    Files
	Analysis Analysis
	Search   Search
	Include  []string
	Exclude  []string
}

type Project struct {
	Root string
	Name string
}

type Cache struct {
	MaxEntries      int           // per cache instance
	ContextTTL      time.Duration // project context lifetime
	CleanupInterval time.Duration // background sweep cadence
}

type Files struct {
	MaxFileSize      int64    // files above this are skipped/rejected
	MaxContentLength int      // FileInfo content truncation threshold
	BackupDirName    string   // directory backups are written under
	FilePatterns     []string // default include globs for analysis
	IgnorePatterns   []string // standing exclusions, always applied
}

type Analysis struct {
	BatchSize     int  // concurrent analyses per batch
	MaxDepth      int  // directory depth limit, 0 = unlimited
	WatchMode     bool // invalidate cached contexts on fs change
	WatchDebounce time.Duration
}

type Search struct {
	MaxResults        int // files with matches per search
	MaxMatchesPerFile int
	ContextLines      int // surrounding lines per match
	MaxSuggestions    int
	FuzzyThreshold    float64 // minimum similarity for suggestions
}

// DefaultFilePatterns returns the include globs used when a project config
// supplies none.
func DefaultFilePatterns() []string {
	return []string{
		"**/*.go", "**/*.js", "**/*.jsx", "**/*.ts", "**/*.tsx",
		"**/*.py", "**/*.java", "**/*.rs", "**/*.rb",
		"**/*.json", "**/*.yaml", "**/*.yml", "**/*.toml", "**/*.md",
	}
}

// DefaultIgnorePatterns returns the standing exclusion list: VCS metadata,
// dependency directories, and build output.
func DefaultIgnorePatterns() []string {
	return []string{
		"**/node_modules/**",
		"**/.git/**",
		"**/vendor/**",
		"**/dist/**",
		"**/build/**",
		"**/target/**",
		"**/__pycache__/**",
		"**/.next/**",
		"**/coverage/**",
		"**/.codescope-backups/**",
	}
}

// Default returns a configuration with all defaults applied and the project
// root set to the current working directory.
func Default() *Config {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	return &Config{
		Version: 1,
		Project: Project{Root: cwd},
		Cache: Cache{
			MaxEntries:      DefaultCacheMaxEntries,
			ContextTTL:      DefaultContextTTL,
			CleanupInterval: DefaultCleanupInterval,
		},
		Files: Files{
			MaxFileSize:      DefaultMaxFileSize,
			MaxContentLength: DefaultMaxContentLength,
			BackupDirName:    DefaultBackupDirName,
			FilePatterns:     DefaultFilePatterns(),
			IgnorePatterns:   DefaultIgnorePatterns(),
		},
		Analysis: Analysis{
			BatchSize:     DefaultBatchSize,
			MaxDepth:      DefaultMaxDepth,
			WatchDebounce: DefaultWatchDebounce,
		},
		Search: Search{
			MaxResults:        DefaultMaxResults,
			MaxMatchesPerFile: DefaultMaxPerFile,
			ContextLines:      DefaultContextLines,
			MaxSuggestions:    DefaultMaxSuggestions,
			FuzzyThreshold:    DefaultFuzzyThreshold,
		},
	}
}

// Validate checks that configuration values are within workable ranges
func (c *Config) Validate() error {
	if c.Project.Root == "" {
		return fmt.Errorf("project root must not be empty")
	}
	if c.Cache.MaxEntries <= 0 {
		return fmt.Errorf("cache max_entries must be positive, got %d", c.Cache.MaxEntries)
	}
	if c.Files.MaxFileSize <= 0 {
		return fmt.Errorf("files max_file_size must be positive, got %d", c.Files.MaxFileSize)
	}
	if c.Files.MaxContentLength < 0 {
		return fmt.Errorf("files max_content_length must not be negative, got %d", c.Files.MaxContentLength)
	}
	if c.Files.BackupDirName == "" {
		return fmt.Errorf("files backup_dir must not be empty")
	}
	if c.Analysis.BatchSize <= 0 {
		return fmt.Errorf("analysis batch_size must be positive, got %d", c.Analysis.BatchSize)
	}
	if c.Search.MaxResults <= 0 {
		return fmt.Errorf("search max_results must be positive, got %d", c.Search.MaxResults)
	}
	if c.Search.FuzzyThreshold < 0 || c.Search.FuzzyThreshold > 1 {
		return fmt.Errorf("search fuzzy_threshold must be between 0 and 1, got %v", c.Search.FuzzyThreshold)
	}
	return nil
}
