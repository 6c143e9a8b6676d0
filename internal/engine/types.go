package engine

import (
	"time"

	"github.com/codescope/codescope/internal/analyzer"
	"github.com/codescope/codescope/internal/cache"
)

// FileInfo is the per-file analysis result. Immutable once built;
// re-analysis replaces the whole value.
type FileInfo struct {
	RelativePath string             `json:"relativePath"`
	AbsolutePath string             `json:"absolutePath"`
	Language     string             `json:"language"`
	SizeBytes    int64              `json:"sizeBytes"`
	LineCount    int                `json:"lineCount"`
	ContentHash  string             `json:"contentHash"`
	LastModified time.Time          `json:"lastModified"`
	Dependencies []string           `json:"dependencies"`
	Structure    analyzer.Structure `json:"structure"`
	Content      string             `json:"content"` // truncated to the configured max length
}

// ProjectMetadata is the best-effort summary probed from manifest files
type ProjectMetadata struct {
	Name         string   `json:"name"`
	Dependencies []string `json:"dependencies"`
	Frameworks   []string `json:"frameworks"`
}

// AggregateStructure holds the reverse indexes built during aggregation
type AggregateStructure struct {
	TotalFiles    int                 `json:"totalFiles"`
	Languages     []string            `json:"languages"`
	Frameworks    []string            `json:"frameworks"`
	FunctionIndex map[string][]string `json:"functionIndex"` // name -> defining files
	ClassIndex    map[string][]string `json:"classIndex"`    // name -> defining files
}

// ProjectContext is the complete cached analysis result for one project
// root, keyed in the context cache by the resolved absolute path.
type ProjectContext struct {
	Root      string               `json:"root"`
	BuiltAt   time.Time            `json:"builtAt"`
	Files     map[string]*FileInfo `json:"files"` // keyed by relative path
	Aggregate AggregateStructure   `json:"aggregate"`
	Metadata  ProjectMetadata      `json:"metadata"`
}

// AnalyzeOptions adjusts a single Analyze call
type AnalyzeOptions struct {
	ForceRefresh bool
	Include      []string
	Exclude      []string
	MaxDepth     int
}

// ChangeAction enumerates the mutations EditMultipleFiles can apply
type ChangeAction string

const (
	ActionCreate ChangeAction = "create"
	ActionUpdate ChangeAction = "update"
	ActionDelete ChangeAction = "delete"
)

// FileChange is one requested mutation. Backup defaults to true when
// absent.
type FileChange struct {
	RelativePath string       `json:"relativePath"`
	Action       ChangeAction `json:"action"`
	Content      string       `json:"content,omitempty"`
	Backup       *bool        `json:"backup,omitempty"`
}

func (c FileChange) backupEnabled() bool {
	return c.Backup == nil || *c.Backup
}

// EditStatus is the per-change outcome of a multi-file edit
type EditStatus string

const (
	StatusCreated EditStatus = "created"
	StatusUpdated EditStatus = "updated"
	StatusDeleted EditStatus = "deleted"
	StatusError   EditStatus = "error"
)

// EditResult reports the outcome for one requested change
type EditResult struct {
	RelativePath string     `json:"relativePath"`
	Status       EditStatus `json:"status"`
	Error        string     `json:"error,omitempty"`
}

// SearchOptions adjusts a Search call
type SearchOptions struct {
	CaseSensitive    bool
	IncludeStructure bool
	FileGlobs        []string
	MaxResults       int
}

// LineMatch is a single content hit with surrounding context lines
type LineMatch struct {
	LineNumber int      `json:"lineNumber"`
	Line       string   `json:"line"`
	Context    []string `json:"context,omitempty"`
}

// StructureMatch is a hit against an extracted symbol name, tagged by
// kind instead of line number.
type StructureMatch struct {
	Kind string `json:"kind"` // function, class, export
	Name string `json:"name"`
}

// FileSearchResult groups the matches found in one file
type FileSearchResult struct {
	RelativePath     string           `json:"relativePath"`
	Matches          []LineMatch      `json:"matches,omitempty"`
	StructureMatches []StructureMatch `json:"structureMatches,omitempty"`
}

// SearchResult is the complete outcome of one project search
type SearchResult struct {
	Pattern      string             `json:"pattern"`
	Files        []FileSearchResult `json:"files"`
	TotalMatches int                `json:"totalMatches"`
	Truncated    bool               `json:"truncated"`
	Suggestions  []string           `json:"suggestions,omitempty"`
}

// Relationship reports a file's recorded dependencies and the files that
// depend on it. The dependents side is a heuristic match (relative import
// resolution plus bare-module containment), not exact resolution.
type Relationship struct {
	RelativePath string   `json:"relativePath"`
	Dependencies []string `json:"dependencies"`
	Dependents   []string `json:"dependents"`
}

// FileSizeEntry names one of the largest files in a project
type FileSizeEntry struct {
	RelativePath string `json:"relativePath"`
	SizeBytes    int64  `json:"sizeBytes"`
}

// CacheLayerStats groups the stats of the three cache instances
type CacheLayerStats struct {
	Files    cache.Stats `json:"files"`
	Infos    cache.Stats `json:"infos"`
	Contexts cache.Stats `json:"contexts"`
}

// ProjectStats is the aggregate report derived from a cached context
type ProjectStats struct {
	Root          string          `json:"root"`
	TotalFiles    int             `json:"totalFiles"`
	TotalLines    int             `json:"totalLines"`
	TotalBytes    int64           `json:"totalBytes"`
	Languages     map[string]int  `json:"languages"` // language -> file count
	Frameworks    []string        `json:"frameworks"`
	LargestFiles  []FileSizeEntry `json:"largestFiles"`
	OrphanedFiles []string        `json:"orphanedFiles"` // no dependencies and no dependents
	Caches        CacheLayerStats `json:"caches"`
}
