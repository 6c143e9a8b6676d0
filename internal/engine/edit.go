package engine

import (
	"path/filepath"

	cserr "github.com/codescope/codescope/internal/errors"
	"github.com/codescope/codescope/internal/store"
)

// maxEditBatchBytes bounds the aggregate content size of one edit request
const maxEditBatchBytes = 50 * 1024 * 1024

// EditMultipleFiles validates the whole change set up front, then applies
// changes sequentially in the caller-supplied order. Individual failures
// are reported per change and do not stop later changes; already-applied
// changes are never rolled back. The project's cached context is
// invalidated on completion regardless of per-change outcomes.
func (e *Engine) EditMultipleFiles(root string, changes []FileChange) ([]EditResult, error) {
	absRoot, err := e.resolveRoot(root)
	if err != nil {
		return nil, err
	}
	if err := e.validateChanges(absRoot, changes); err != nil {
		return nil, err
	}

	results := make([]EditResult, 0, len(changes))
	for _, change := range changes {
		results = append(results, e.applyChange(absRoot, change))
	}

	e.caches.Contexts.Delete(absRoot)
	e.logger.Info("applied multi-file edit", "root", absRoot, "changes", len(changes))
	return results, nil
}

// validateChanges checks the batch as a whole before anything is applied:
// path shape, action enum, and aggregate size bounds.
func (e *Engine) validateChanges(absRoot string, changes []FileChange) error {
	if len(changes) == 0 {
		return cserr.Newf(cserr.ErrorTypeProcessing, "edit", "no changes supplied")
	}

	var totalBytes int64
	for _, change := range changes {
		switch change.Action {
		case ActionCreate, ActionUpdate, ActionDelete:
		default:
			return cserr.Newf(cserr.ErrorTypeProcessing, "edit", "unknown action %q for %q", change.Action, change.RelativePath)
		}

		if change.RelativePath == "" {
			return cserr.Newf(cserr.ErrorTypePathValidation, "edit", "change has an empty path")
		}
		if filepath.IsAbs(change.RelativePath) {
			return cserr.Newf(cserr.ErrorTypePathValidation, "edit", "path %q must be relative to the project root", change.RelativePath).WithPath(change.RelativePath)
		}

		totalBytes += int64(len(change.Content))
	}
	if totalBytes > maxEditBatchBytes {
		return cserr.Newf(cserr.ErrorTypeSizeLimit, "edit", "change set is %d bytes, limit is %d", totalBytes, maxEditBatchBytes)
	}
	return nil
}

// applyChange applies one change, capturing any failure as a per-change
// error result.
func (e *Engine) applyChange(absRoot string, change FileChange) EditResult {
	result := EditResult{RelativePath: change.RelativePath}

	absPath, err := e.store.Resolve(absRoot, change.RelativePath)
	if err != nil {
		result.Status = StatusError
		result.Error = err.Error()
		return result
	}

	switch change.Action {
	case ActionCreate, ActionUpdate:
		opts := store.WriteOptions{Backup: change.backupEnabled(), EnsureDir: true}
		if err := e.store.Write(absPath, change.Content, opts); err != nil {
			result.Status = StatusError
			result.Error = err.Error()
			return result
		}
		if change.Action == ActionCreate {
			result.Status = StatusCreated
		} else {
			result.Status = StatusUpdated
		}
	case ActionDelete:
		if err := e.store.Delete(absPath, change.backupEnabled()); err != nil {
			result.Status = StatusError
			result.Error = err.Error()
			return result
		}
		result.Status = StatusDeleted
	}

	// Supersede any stale derived info for this path.
	e.caches.Infos.Delete(absPath)
	return result
}
