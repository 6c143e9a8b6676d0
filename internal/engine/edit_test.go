package engine

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cserr "github.com/codescope/codescope/internal/errors"
)

func TestEditMultipleFiles_CreateUpdateDelete(t *testing.T) {
	eng, root := newTestEngine(t)
	writeProjectFile(t, root, "existing.go", "package old\n")

	results, err := eng.EditMultipleFiles(root, []FileChange{
		{RelativePath: "created.go", Action: ActionCreate, Content: "package new\n"},
		{RelativePath: "existing.go", Action: ActionUpdate, Content: "package updated\n"},
		{RelativePath: "existing.go", Action: ActionDelete},
	})
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, StatusCreated, results[0].Status)
	assert.Equal(t, StatusUpdated, results[1].Status)
	assert.Equal(t, StatusDeleted, results[2].Status)

	data, err := os.ReadFile(filepath.Join(root, "created.go"))
	require.NoError(t, err)
	assert.Equal(t, "package new\n", string(data))
	assert.NoFileExists(t, filepath.Join(root, "existing.go"))
}

func TestEditMultipleFiles_PartialFailure(t *testing.T) {
	eng, root := newTestEngine(t)

	results, err := eng.EditMultipleFiles(root, []FileChange{
		{RelativePath: "a.go", Action: ActionCreate, Content: "package a\n"},
		{RelativePath: "../outside.go", Action: ActionCreate, Content: "x"},
		{RelativePath: "c.go", Action: ActionCreate, Content: "package c\n"},
	})
	require.NoError(t, err, "per-change failures must not fail the call")
	require.Len(t, results, 3)

	assert.Equal(t, StatusCreated, results[0].Status)
	assert.Equal(t, StatusError, results[1].Status)
	assert.Contains(t, results[1].Error, "path_validation")
	assert.Equal(t, StatusCreated, results[2].Status)

	assert.FileExists(t, filepath.Join(root, "a.go"))
	assert.FileExists(t, filepath.Join(root, "c.go"))
	assert.NoFileExists(t, filepath.Join(filepath.Dir(root), "outside.go"))
}

func TestEditMultipleFiles_InvalidatesContext(t *testing.T) {
	eng, root := newTestEngine(t)
	seedProject(t, root)

	_, err := eng.Analyze(context.Background(), root, AnalyzeOptions{})
	require.NoError(t, err)

	// Even a batch containing a failure invalidates the context.
	_, err = eng.EditMultipleFiles(root, []FileChange{
		{RelativePath: "fresh.go", Action: ActionCreate, Content: "package main\n"},
		{RelativePath: "bad/../../nope.go", Action: ActionCreate, Content: "x"},
	})
	require.NoError(t, err)

	_, ok := eng.ProjectContext(root)
	assert.False(t, ok, "context must be invalidated after an edit")

	pc, err := eng.Analyze(context.Background(), root, AnalyzeOptions{})
	require.NoError(t, err)
	assert.Contains(t, pc.Files, "fresh.go", "next analysis must re-read the filesystem")
}

func TestEditMultipleFiles_BatchValidation(t *testing.T) {
	eng, root := newTestEngine(t)

	_, err := eng.EditMultipleFiles(root, []FileChange{
		{RelativePath: "ok.go", Action: ActionCreate, Content: "package ok\n"},
		{RelativePath: "weird.go", Action: ChangeAction("rename"), Content: "x"},
	})
	require.Error(t, err, "an invalid action fails the whole batch up front")
	assert.NoFileExists(t, filepath.Join(root, "ok.go"), "nothing may be applied when batch validation fails")

	_, err = eng.EditMultipleFiles(root, []FileChange{
		{RelativePath: filepath.Join(root, "abs.go"), Action: ActionCreate, Content: "x"},
	})
	assert.True(t, cserr.IsPathValidation(err), "absolute paths are rejected before applying")

	_, err = eng.EditMultipleFiles(root, nil)
	assert.Error(t, err)
}

func TestEditMultipleFiles_BackupDefault(t *testing.T) {
	eng, root := newTestEngine(t)
	writeProjectFile(t, root, "file.go", "package before\n")

	_, err := eng.EditMultipleFiles(root, []FileChange{
		{RelativePath: "file.go", Action: ActionUpdate, Content: "package after\n"},
	})
	require.NoError(t, err)

	backupRoot := filepath.Join(root, eng.cfg.Files.BackupDirName)
	var backups []string
	_ = filepath.Walk(backupRoot, func(path string, info os.FileInfo, err error) error {
		if err == nil && info != nil && !info.IsDir() && strings.HasSuffix(path, ".backup") {
			backups = append(backups, path)
		}
		return nil
	})
	require.Len(t, backups, 1)

	data, err := os.ReadFile(backups[0])
	require.NoError(t, err)
	assert.Equal(t, "package before\n", string(data))
}

func TestEditMultipleFiles_NoBackupOptOut(t *testing.T) {
	eng, root := newTestEngine(t)
	writeProjectFile(t, root, "file.go", "package before\n")

	noBackup := false
	_, err := eng.EditMultipleFiles(root, []FileChange{
		{RelativePath: "file.go", Action: ActionUpdate, Content: "package after\n", Backup: &noBackup},
	})
	require.NoError(t, err)
	assert.NoDirExists(t, filepath.Join(root, eng.cfg.Files.BackupDirName))
}

func TestEditMultipleFiles_DeleteMissingIsNoop(t *testing.T) {
	eng, root := newTestEngine(t)

	results, err := eng.EditMultipleFiles(root, []FileChange{
		{RelativePath: "ghost.go", Action: ActionDelete},
	})
	require.NoError(t, err)
	assert.Equal(t, StatusDeleted, results[0].Status)
}
