package engine

import (
	"path"
	"sort"
	"strings"

	cserr "github.com/codescope/codescope/internal/errors"
)

// FileRelationships returns the recorded dependencies of file (or of every
// file when file is empty) together with a computed reverse list of
// dependents. Dependents are matched by relative-import resolution plus a
// bare-module containment heuristic; this is an approximation, not exact
// module resolution.
func (e *Engine) FileRelationships(root, file string) ([]Relationship, error) {
	pc, err := e.requireContext("relationships", root)
	if err != nil {
		return nil, err
	}

	var targets []string
	if file != "" {
		rel := path.Clean(strings.ReplaceAll(file, "\\", "/"))
		if _, ok := pc.Files[rel]; !ok {
			return nil, cserr.Newf(cserr.ErrorTypeNotFound, "relationships", "file %q is not part of the analyzed project", file).WithPath(file)
		}
		targets = []string{rel}
	} else {
		for rel := range pc.Files {
			targets = append(targets, rel)
		}
		sort.Strings(targets)
	}

	relationships := make([]Relationship, 0, len(targets))
	for _, target := range targets {
		fi := pc.Files[target]
		relationships = append(relationships, Relationship{
			RelativePath: target,
			Dependencies: append([]string{}, fi.Dependencies...),
			Dependents:   dependentsOf(pc, target),
		})
	}
	return relationships, nil
}

// dependentsOf lists every file whose recorded dependencies resolve to
// target.
func dependentsOf(pc *ProjectContext, target string) []string {
	var dependents []string
	for rel, fi := range pc.Files {
		if rel == target {
			continue
		}
		for _, dep := range fi.Dependencies {
			if dependencyResolvesTo(rel, dep, target) {
				dependents = append(dependents, rel)
				break
			}
		}
	}
	sort.Strings(dependents)
	return dependents
}

// dependencyResolvesTo reports whether dep, recorded in source, points at
// target. Relative imports are resolved against the source's directory and
// compared extension-insensitively; bare module names match by path
// containment.
func dependencyResolvesTo(source, dep, target string) bool {
	if strings.HasPrefix(dep, ".") {
		resolved := path.Clean(path.Join(path.Dir(source), dep))
		return stripExt(resolved) == stripExt(target) ||
			strings.HasPrefix(target, resolved+"/")
	}

	// Bare module name: "utils/helpers" or "helpers" matching
	// "src/utils/helpers.ts".
	bare := stripExt(target)
	return bare == dep ||
		strings.HasSuffix(bare, "/"+dep) ||
		strings.Contains(bare, "/"+dep+"/")
}

func stripExt(p string) string {
	if ext := path.Ext(p); ext != "" {
		return strings.TrimSuffix(p, ext)
	}
	return p
}
