package sync

import (
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/afero"

	"github.com/peripherylabs/agentsync/pkg/diff"
	"github.com/peripherylabs/agentsync/pkg/errors"
	"github.com/peripherylabs/agentsync/pkg/tracker"
)

// reconcile brings the agent's view of one file current. It mutates the
// registry entry for this path only: the view advances when an update is
// returned, the entry is removed when the file vanished, and nothing moves
// on error so the file is retried next pass.
func (e *Engine) reconcile(f tracker.TrackedFile) Outcome {
	exists, err := afero.Exists(e.fs, f.AbsolutePath)
	if err != nil {
		return Outcome{Err: errors.WithContext(err, "check existence")}
	}
	if !exists {
		e.registry.Remove(f.AbsolutePath)
		return Outcome{Update: Deleted{}}
	}

	switch f.Category {
	case tracker.Text:
		return e.reconcileText(f)
	case tracker.Image, tracker.Pdf:
		return e.reconcileBinary(f)
	}
	panic(fmt.Sprintf("reconcile %q: category %q should have been rejected at track time",
		f.AbsolutePath, f.Category))
}

// reconcileText resolves the authoritative text content and compares it to
// the agent's view. The open buffer wins over disk unless the disk copy
// changed underneath it; if both changed, the file is conflicted.
func (e *Engine) reconcileText(f tracker.TrackedFile) Outcome {
	info, buffered := e.buffers.SyncInfo(f.AbsolutePath)
	if !buffered {
		raw, err := afero.ReadFile(e.fs, f.AbsolutePath)
		if err != nil {
			// The file can vanish between the existence check and the
			// read. That's a deletion, not an error.
			if os.IsNotExist(errors.RootCause(err)) {
				e.registry.Remove(f.AbsolutePath)
				return Outcome{Update: Deleted{}}
			}
			return Outcome{Err: errors.WithContext(err, "read")}
		}
		return e.compareText(f, string(raw))
	}

	counter, err := e.buffers.ChangeCounter(info.BufferID)
	if err != nil {
		return Outcome{Err: errors.WithContext(err, "read buffer change counter")}
	}

	fi, err := e.fs.Stat(f.AbsolutePath)
	if err != nil {
		if os.IsNotExist(errors.RootCause(err)) {
			e.registry.Remove(f.AbsolutePath)
			return Outcome{Update: Deleted{}}
		}
		return Outcome{Err: errors.WithContext(err, "stat")}
	}

	bufferChanged := counter != info.LastChangeCounter
	diskChanged := fi.ModTime().After(info.LastSyncedAt)

	if bufferChanged && diskChanged {
		// Both copies moved since the last sync. Neither is
		// authoritative, so leave the view alone and surface the conflict.
		return Outcome{Err: errors.ConflictError{Path: f.AbsolutePath}}
	}

	if diskChanged {
		// The buffer is clean but stale. Disk is authoritative here, so
		// refresh the buffer before reading its lines.
		if err := e.buffers.ReloadFromDisk(info.BufferID); err != nil {
			return Outcome{Err: errors.WithContext(err, "reload buffer from disk")}
		}
		// Reloading edits the buffer, which bumps its counter.
		if counter, err = e.buffers.ChangeCounter(info.BufferID); err != nil {
			return Outcome{Err: errors.WithContext(err, "read buffer change counter")}
		}
	}

	lines, err := e.buffers.Lines(info.BufferID)
	if err != nil {
		return Outcome{Err: errors.WithContext(err, "read buffer lines")}
	}

	outcome := e.compareText(f, joinLines(lines))
	if outcome.Err == nil {
		e.buffers.RecordSynced(info.BufferID, counter, e.clock.Now())
	}
	return outcome
}

// compareText compares the authoritative content against the agent's view
// and advances the view if an update is warranted.
func (e *Engine) compareText(f tracker.TrackedFile, content string) Outcome {
	switch view := f.View.(type) {
	case tracker.NoView:
		e.registry.SetView(f.AbsolutePath, tracker.TextView{Content: content})
		return Outcome{Update: WholeFile{Content: content}}

	case tracker.TextView:
		if view.Content == content {
			return Outcome{}
		}

		// The patch is computed against the exact content the agent was
		// last shown, and the view advances in the same reconciliation.
		patch := diff.Diff(view.Content, content, f.RelativePath)
		if !patch.Changed() {
			// Only the final newline differs. Not worth an update.
			return Outcome{}
		}

		e.registry.SetView(f.AbsolutePath, tracker.TextView{Content: content})
		return Outcome{Update: DiffUpdate{Patch: patch}}
	}

	panic(fmt.Sprintf("text file %q has non-text remote view %#v", f.AbsolutePath, f.View))
}

// reconcileBinary compares the file's modification time against the one
// recorded in the agent's view, and redelivers the content when it moved.
// PDFs are delivered as extracted text, other binaries as encoded bytes.
func (e *Engine) reconcileBinary(f tracker.TrackedFile) Outcome {
	fi, err := e.fs.Stat(f.AbsolutePath)
	if err != nil {
		if os.IsNotExist(errors.RootCause(err)) {
			e.registry.Remove(f.AbsolutePath)
			return Outcome{Update: Deleted{}}
		}
		return Outcome{Err: errors.WithContext(err, "stat")}
	}
	mtime := fi.ModTime()

	switch view := f.View.(type) {
	case tracker.NoView:
	case tracker.BinaryView:
		if view.ModTime.Equal(mtime) {
			return Outcome{}
		}
	default:
		panic(fmt.Sprintf("binary file %q has text remote view", f.AbsolutePath))
	}

	var content string
	if f.Category == tracker.Pdf {
		text, err := e.extractor.ExtractText(f.AbsolutePath)
		if err != nil {
			// Leave the view untouched so the extraction is retried.
			return Outcome{Err: errors.ExtractionError{Path: f.AbsolutePath, Cause: err}}
		}
		content = text
	} else {
		raw, err := afero.ReadFile(e.fs, f.AbsolutePath)
		if err != nil {
			if os.IsNotExist(errors.RootCause(err)) {
				e.registry.Remove(f.AbsolutePath)
				return Outcome{Update: Deleted{}}
			}
			return Outcome{Err: errors.WithContext(err, "read")}
		}
		content = fmt.Sprintf("data:%s;base64,%s",
			f.MimeType, base64.StdEncoding.EncodeToString(raw))
	}

	e.registry.SetView(f.AbsolutePath, tracker.BinaryView{ModTime: mtime})
	return Outcome{Update: WholeFile{Content: content}}
}

// joinLines reassembles buffer lines into file content. Editor buffers
// report lines without newlines, and a file's last line conventionally
// ends with one.
func joinLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}
