package engine

import (
	"regexp"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	cserr "github.com/codescope/codescope/internal/errors"
)

// Search scans a previously analyzed project for a regex pattern. It fails
// with not_analyzed when no cached context exists; it never triggers
// analysis implicitly.
func (e *Engine) Search(root, pattern string, opts SearchOptions) (*SearchResult, error) {
	pc, err := e.requireContext("search", root)
	if err != nil {
		return nil, err
	}

	expr := pattern
	if !opts.CaseSensitive {
		expr = "(?i)" + expr
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, cserr.Newf(cserr.ErrorTypeProcessing, "search", "invalid pattern %q: %v", pattern, err)
	}

	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = e.cfg.Search.MaxResults
	}
	maxPerFile := e.cfg.Search.MaxMatchesPerFile
	contextLines := e.cfg.Search.ContextLines

	// Deterministic file order regardless of map iteration.
	rels := make([]string, 0, len(pc.Files))
	for rel := range pc.Files {
		rels = append(rels, rel)
	}
	sort.Strings(rels)

	result := &SearchResult{Pattern: pattern}
	for _, rel := range rels {
		if len(result.Files) >= maxResults {
			result.Truncated = true
			break
		}
		if !matchesGlobs(rel, opts.FileGlobs) {
			continue
		}

		fi := pc.Files[rel]
		fileResult := FileSearchResult{RelativePath: rel}
		fileResult.Matches = scanLines(fi.Content, re, maxPerFile, contextLines)
		if opts.IncludeStructure {
			fileResult.StructureMatches = matchStructure(fi, re)
		}

		if len(fileResult.Matches) > 0 || len(fileResult.StructureMatches) > 0 {
			result.TotalMatches += len(fileResult.Matches) + len(fileResult.StructureMatches)
			result.Files = append(result.Files, fileResult)
		}
	}

	if opts.IncludeStructure && result.TotalMatches == 0 {
		result.Suggestions = e.suggestSymbols(pattern, pc)
	}
	return result, nil
}

func matchesGlobs(rel string, globs []string) bool {
	if len(globs) == 0 {
		return true
	}
	for _, glob := range globs {
		if doublestar.MatchUnvalidated(glob, rel) {
			return true
		}
	}
	return false
}

// scanLines collects line matches with surrounding context, capped at
// maxPerFile to bound response size.
func scanLines(content string, re *regexp.Regexp, maxPerFile, contextLines int) []LineMatch {
	lines := splitLines(content)
	var matches []LineMatch
	for i, line := range lines {
		if !re.MatchString(line) {
			continue
		}
		matches = append(matches, LineMatch{
			LineNumber: i + 1,
			Line:       line,
			Context:    surrounding(lines, i, contextLines),
		})
		if len(matches) >= maxPerFile {
			break
		}
	}
	return matches
}

func matchStructure(fi *FileInfo, re *regexp.Regexp) []StructureMatch {
	var matches []StructureMatch
	appendKind := func(kind string, names []string) {
		for _, name := range names {
			if re.MatchString(name) {
				matches = append(matches, StructureMatch{Kind: kind, Name: name})
			}
		}
	}
	appendKind("function", fi.Structure.Functions)
	appendKind("class", fi.Structure.Classes)
	appendKind("export", fi.Structure.Exports)
	return matches
}

func surrounding(lines []string, idx, n int) []string {
	if n <= 0 {
		return nil
	}
	start := idx - n
	if start < 0 {
		start = 0
	}
	end := idx + n + 1
	if end > len(lines) {
		end = len(lines)
	}
	out := make([]string, end-start)
	copy(out, lines[start:end])
	return out
}

func splitLines(content string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			lines = append(lines, content[start:i])
			start = i + 1
		}
	}
	lines = append(lines, content[start:])
	return lines
}
