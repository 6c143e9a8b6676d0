package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cserr "github.com/codescope/codescope/internal/errors"
)

func relationshipProject(t *testing.T) (*Engine, string) {
	t.Helper()
	eng, root := newTestEngine(t)

	writeProjectFile(t, root, "src/app.js", `import { helper } from './util';
import axios from 'axios';

export function start() {}
`)
	writeProjectFile(t, root, "src/util.js", `export function helper() {}
`)
	writeProjectFile(t, root, "src/standalone.js", `export function alone() {}
`)

	_, err := eng.Analyze(context.Background(), root, AnalyzeOptions{})
	require.NoError(t, err)
	return eng, root
}

func TestFileRelationships_RequiresPriorAnalysis(t *testing.T) {
	eng, root := newTestEngine(t)
	seedProject(t, root)

	_, err := eng.FileRelationships(root, "")
	assert.True(t, cserr.IsNotAnalyzed(err))
}

func TestFileRelationships_SingleFile(t *testing.T) {
	eng, root := relationshipProject(t)

	rels, err := eng.FileRelationships(root, "src/util.js")
	require.NoError(t, err)
	require.Len(t, rels, 1)

	assert.Equal(t, "src/util.js", rels[0].RelativePath)
	assert.Empty(t, rels[0].Dependencies)
	assert.Equal(t, []string{"src/app.js"}, rels[0].Dependents,
		"relative import './util' should resolve to src/util.js")
}

func TestFileRelationships_AllFiles(t *testing.T) {
	eng, root := relationshipProject(t)

	rels, err := eng.FileRelationships(root, "")
	require.NoError(t, err)
	assert.Len(t, rels, 3)

	byPath := make(map[string]Relationship)
	for _, r := range rels {
		byPath[r.RelativePath] = r
	}
	assert.Contains(t, byPath["src/app.js"].Dependencies, "./util")
	assert.Contains(t, byPath["src/app.js"].Dependencies, "axios")
	assert.Empty(t, byPath["src/standalone.js"].Dependents)
}

func TestFileRelationships_UnknownFile(t *testing.T) {
	eng, root := relationshipProject(t)

	_, err := eng.FileRelationships(root, "src/nope.js")
	assert.True(t, cserr.IsNotFound(err))
}

func TestFileRelationships_BareModuleHeuristic(t *testing.T) {
	eng, root := newTestEngine(t)

	writeProjectFile(t, root, "main.py", "import helpers\n")
	writeProjectFile(t, root, "helpers.py", "def assist():\n    pass\n")

	_, err := eng.Analyze(context.Background(), root, AnalyzeOptions{})
	require.NoError(t, err)

	rels, err := eng.FileRelationships(root, "helpers.py")
	require.NoError(t, err)
	require.Len(t, rels, 1)
	assert.Equal(t, []string{"main.py"}, rels[0].Dependents,
		"bare module name should match by containment heuristic")
}
