package sync

import (
	"github.com/peripherylabs/agentsync/pkg/diff"
)

// Update is the change that brings the agent's view of one file current.
// It's a closed set of variants:
//
//	WholeFile  -- deliver the full content (first sight, or binary change).
//	DiffUpdate -- deliver a patch against the content the agent already has.
//	Deleted    -- the file vanished from disk and is no longer tracked.
type Update interface {
	isUpdate()
}

// WholeFile delivers the file's full content.
type WholeFile struct {
	Content string
}

// DiffUpdate delivers a patch against the agent's current view.
type DiffUpdate struct {
	Patch diff.Patch
}

// Deleted reports that the file no longer exists on disk.
type Deleted struct{}

func (WholeFile) isUpdate()  {}
func (DiffUpdate) isUpdate() {}
func (Deleted) isUpdate()    {}

// Outcome is the per-file result of a reconciliation pass. Exactly one of
// the following holds:
//
//   - Update is non-nil: the file changed and Update brings the agent
//     current.
//   - Err is non-nil: the file failed to reconcile (conflict, I/O error,
//     extraction failure). It stays tracked and is retried next pass.
//   - Both are nil: the agent's view is already current.
type Outcome struct {
	Update Update
	Err    error
}

// Unchanged returns whether the agent's view was already current.
func (o Outcome) Unchanged() bool {
	return o.Update == nil && o.Err == nil
}
