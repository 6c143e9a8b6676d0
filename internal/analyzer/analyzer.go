// Package analyzer extracts dependencies and structural summaries from
// source text using per-language regex patterns. This is deliberately not a
// parser: results are best-effort and the engine treats them as opaque.
package analyzer

import (
	"path/filepath"
	"regexp"
	"strings"
)

// Structure is the closed set of categories extracted from a file
type Structure struct {
	Functions []string `json:"functions"`
	Classes   []string `json:"classes"`
	Exports   []string `json:"exports"`
	Imports   []string `json:"imports"`
	Variables []string `json:"variables"`
	Comments  []string `json:"comments"`
}

// Analyzer is the language collaborator consumed by the engine. Unknown
// languages yield empty results, never errors.
type Analyzer interface {
	DetectLanguage(path string) string
	ExtractDependencies(content, language string) []string
	ExtractStructure(content, language string) Structure
}

// RegexAnalyzer implements Analyzer with compiled pattern tables
type RegexAnalyzer struct {
	languages map[string]*languagePatterns
}

// New creates an analyzer with the built-in language tables
func New() *RegexAnalyzer {
	return &RegexAnalyzer{languages: buildLanguageTables()}
}

var extensionLanguages = map[string]string{
	".go":   "go",
	".js":   "javascript",
	".jsx":  "javascript",
	".mjs":  "javascript",
	".ts":   "typescript",
	".tsx":  "typescript",
	".py":   "python",
	".java": "java",
	".rs":   "rust",
	".rb":   "ruby",
	".json": "json",
	".yaml": "yaml",
	".yml":  "yaml",
	".toml": "toml",
	".md":   "markdown",
}

// DetectLanguage maps a file path to a language tag by extension,
// returning "unknown" for anything unrecognized.
func (a *RegexAnalyzer) DetectLanguage(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if lang, ok := extensionLanguages[ext]; ok {
		return lang
	}
	return "unknown"
}

// ExtractDependencies returns the dependency identifiers referenced by
// content: import paths, require targets, module names.
func (a *RegexAnalyzer) ExtractDependencies(content, language string) []string {
	patterns, ok := a.languages[language]
	if !ok {
		return nil
	}

	seen := make(map[string]bool)
	var deps []string
	for _, re := range patterns.dependencies {
		for _, match := range re.FindAllStringSubmatch(content, -1) {
			dep := firstGroup(match)
			if dep != "" && !seen[dep] {
				seen[dep] = true
				deps = append(deps, dep)
			}
		}
	}
	return deps
}

// ExtractStructure returns the structural summary of content
func (a *RegexAnalyzer) ExtractStructure(content, language string) Structure {
	patterns, ok := a.languages[language]
	if !ok {
		return Structure{}
	}

	return Structure{
		Functions: collect(patterns.functions, content),
		Classes:   collect(patterns.classes, content),
		Exports:   collect(patterns.exports, content),
		Imports:   collect(patterns.imports, content),
		Variables: collect(patterns.variables, content),
		Comments:  collect(patterns.comments, content),
	}
}

func collect(res []*regexp.Regexp, content string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, re := range res {
		for _, match := range re.FindAllStringSubmatch(content, -1) {
			name := firstGroup(match)
			if name != "" && !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	return out
}

// firstGroup returns the first non-empty capture group of a match
func firstGroup(match []string) string {
	for _, group := range match[1:] {
		if group != "" {
			return strings.TrimSpace(group)
		}
	}
	return ""
}
