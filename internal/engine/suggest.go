package engine

import (
	"regexp"
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"
	"github.com/surgebase/porter2"
)

var nonWord = regexp.MustCompile(`[^a-zA-Z0-9_]+`)

// suggestSymbols ranks near-miss symbol names for a structure search that
// produced no hits: the query is tokenized and stemmed, then compared
// against the context's function and class indexes by Jaro-Winkler
// similarity.
func (e *Engine) suggestSymbols(pattern string, pc *ProjectContext) []string {
	terms := queryTerms(pattern)
	if len(terms) == 0 {
		return nil
	}

	type scored struct {
		name  string
		score float32
	}
	var candidates []scored
	seen := make(map[string]bool)

	consider := func(name string) {
		if seen[name] {
			return
		}
		seen[name] = true
		lower := strings.ToLower(name)
		stemmedName := porter2.Stem(lower)
		var best float32
		for _, term := range terms {
			score := edlib.JaroWinklerSimilarity(term, lower)
			if s := edlib.JaroWinklerSimilarity(term, stemmedName); s > score {
				score = s
			}
			if score > best {
				best = score
			}
		}
		if best >= float32(e.cfg.Search.FuzzyThreshold) {
			candidates = append(candidates, scored{name: name, score: best})
		}
	}

	for name := range pc.Aggregate.FunctionIndex {
		consider(name)
	}
	for name := range pc.Aggregate.ClassIndex {
		consider(name)
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].name < candidates[j].name
	})

	max := e.cfg.Search.MaxSuggestions
	if max <= 0 || max > len(candidates) {
		max = len(candidates)
	}
	suggestions := make([]string, 0, max)
	for _, c := range candidates[:max] {
		suggestions = append(suggestions, c.name)
	}
	return suggestions
}

// queryTerms lowercases, strips regex punctuation, and stems the pattern
// into comparable terms.
func queryTerms(pattern string) []string {
	var terms []string
	for _, tok := range nonWord.Split(strings.ToLower(pattern), -1) {
		if tok == "" {
			continue
		}
		terms = append(terms, tok)
		if stemmed := porter2.Stem(tok); stemmed != tok {
			terms = append(terms, stemmed)
		}
	}
	return terms
}
