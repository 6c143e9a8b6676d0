package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"
)

// ConfigFileName is probed in the project root by Load
const ConfigFileName = ".codescope.kdl"

// Load reads <root>/.codescope.kdl when present, falling back to defaults.
// The returned config always has an absolute project root.
func Load(root string) (*Config, error) {
	cfg := Default()
	if root != "" {
		absRoot, err := filepath.Abs(root)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve root path %q: %w", root, err)
		}
		cfg.Project.Root = absRoot
	}

	kdlPath := filepath.Join(cfg.Project.Root, ConfigFileName)
	content, err := os.ReadFile(kdlPath)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", kdlPath, err)
	}

	if err := parseKDL(string(content), cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", kdlPath, err)
	}
	return cfg, nil
}

// parseKDL applies the settings in content on top of cfg
func parseKDL(content string, cfg *Config) error {
	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return fmt.Errorf("failed to parse KDL config: %w", err)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "project":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "name":
					if s, ok := firstStringArg(cn); ok {
						cfg.Project.Name = s
					}
				case "root":
					if s, ok := firstStringArg(cn); ok {
						if !filepath.IsAbs(s) {
							s = filepath.Join(cfg.Project.Root, s)
						}
						cfg.Project.Root = filepath.Clean(s)
					}
				}
			}
		case "cache":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "max_entries":
					if v, ok := firstIntArg(cn); ok {
						cfg.Cache.MaxEntries = v
					}
				case "context_ttl_minutes":
					if v, ok := firstIntArg(cn); ok {
						cfg.Cache.ContextTTL = time.Duration(v) * time.Minute
					}
				case "cleanup_interval_ms":
					if v, ok := firstIntArg(cn); ok {
						cfg.Cache.CleanupInterval = time.Duration(v) * time.Millisecond
					}
				}
			}
		case "files":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "max_file_size":
					if v, ok := firstIntArg(cn); ok {
						cfg.Files.MaxFileSize = int64(v)
					}
				case "max_content_length":
					if v, ok := firstIntArg(cn); ok {
						cfg.Files.MaxContentLength = v
					}
				case "backup_dir":
					if s, ok := firstStringArg(cn); ok {
						cfg.Files.BackupDirName = s
					}
				case "patterns":
					if args := collectStringArgs(cn); len(args) > 0 {
						cfg.Files.FilePatterns = args
					}
				case "ignore":
					if args := collectStringArgs(cn); len(args) > 0 {
						cfg.Files.IgnorePatterns = append(cfg.Files.IgnorePatterns, args...)
					}
				}
			}
		case "analysis":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "batch_size":
					if v, ok := firstIntArg(cn); ok {
						cfg.Analysis.BatchSize = v
					}
				case "max_depth":
					if v, ok := firstIntArg(cn); ok {
						cfg.Analysis.MaxDepth = v
					}
				case "watch":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Analysis.WatchMode = b
					}
				case "watch_debounce_ms":
					if v, ok := firstIntArg(cn); ok {
						cfg.Analysis.WatchDebounce = time.Duration(v) * time.Millisecond
					}
				}
			}
		case "search":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "max_results":
					if v, ok := firstIntArg(cn); ok {
						cfg.Search.MaxResults = v
					}
				case "max_per_file":
					if v, ok := firstIntArg(cn); ok {
						cfg.Search.MaxMatchesPerFile = v
					}
				case "context_lines":
					if v, ok := firstIntArg(cn); ok {
						cfg.Search.ContextLines = v
					}
				case "max_suggestions":
					if v, ok := firstIntArg(cn); ok {
						cfg.Search.MaxSuggestions = v
					}
				case "fuzzy_threshold":
					if f, ok := firstFloatArg(cn); ok {
						cfg.Search.FuzzyThreshold = f
					}
				}
			}
		case "include":
			cfg.Include = collectStringArgs(n)
		case "exclude":
			cfg.Exclude = append(cfg.Exclude, collectStringArgs(n)...)
		}
	}
	return nil
}

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	if b, ok := n.Arguments[0].Value.(bool); ok {
		return b, true
	}
	return false, false
}

func firstFloatArg(n *document.Node) (float64, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}
	// Child nodes also contribute, one pattern per line:
	//   include { "**/*.go"; "**/*.ts" }
	for _, cn := range n.Children {
		if name := nodeName(cn); name != "" {
			out = append(out, name)
		}
	}
	return out
}
