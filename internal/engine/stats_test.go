package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cserr "github.com/codescope/codescope/internal/errors"
)

func TestProjectStats_RequiresPriorAnalysis(t *testing.T) {
	eng, root := newTestEngine(t)
	seedProject(t, root)

	_, err := eng.ProjectStatsFor(root)
	assert.True(t, cserr.IsNotAnalyzed(err))
}

func TestProjectStats(t *testing.T) {
	eng, root := analyzedEngine(t)

	stats, err := eng.ProjectStatsFor(root)
	require.NoError(t, err)

	assert.Equal(t, 4, stats.TotalFiles)
	assert.Greater(t, stats.TotalLines, 0)
	assert.Greater(t, stats.TotalBytes, int64(0))
	assert.Greater(t, stats.Languages["go"], 0)
	assert.Greater(t, stats.Languages["javascript"], 0)

	require.NotEmpty(t, stats.LargestFiles)
	for i := 1; i < len(stats.LargestFiles); i++ {
		assert.GreaterOrEqual(t, stats.LargestFiles[i-1].SizeBytes, stats.LargestFiles[i].SizeBytes,
			"largest files must be ordered by size")
	}

	assert.Greater(t, stats.Caches.Files.Size, 0)
	assert.Greater(t, stats.Caches.Contexts.Size, 0)
}

func TestProjectStats_Orphans(t *testing.T) {
	eng, root := newTestEngine(t)

	writeProjectFile(t, root, "app.py", "import util\n")
	writeProjectFile(t, root, "util.py", "def helper():\n    pass\n")
	writeProjectFile(t, root, "orphan.py", "def lonely():\n    pass\n")

	_, err := eng.Analyze(context.Background(), root, AnalyzeOptions{})
	require.NoError(t, err)

	stats, err := eng.ProjectStatsFor(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"orphan.py"}, stats.OrphanedFiles)
}
