package sync

import (
	"time"

	"github.com/peripherylabs/agentsync/pkg/tracker"
)

// SyncInfo describes the sync bookkeeping for an open editor buffer: which
// buffer holds the file, and the change counter and time recorded at the
// last successful sync.
type SyncInfo struct {
	BufferID          int
	LastChangeCounter int
	LastSyncedAt      time.Time
}

// BufferOracle exposes the live editor buffers to the engine. It's
// injected at construction; the engine never reaches for editor state
// through globals.
type BufferOracle interface {
	// SyncInfo reports whether an open buffer holds `path`, and its sync
	// bookkeeping if so.
	SyncInfo(path string) (SyncInfo, bool)

	// ChangeCounter returns the buffer's current change counter. The
	// counter increments on every buffer edit.
	ChangeCounter(bufferID int) (int, error)

	// Lines returns the buffer's content as ordered lines, without
	// trailing newlines.
	Lines(bufferID int) ([]string, error)

	// ReloadFromDisk discards the buffer's content in favor of the disk
	// copy. Called when the disk changed but the buffer didn't.
	ReloadFromDisk(bufferID int) error

	// RecordSynced advances the bookkeeping returned by SyncInfo after a
	// successful buffer-sourced reconciliation, closing the conflict
	// window.
	RecordSynced(bufferID, changeCounter int, at time.Time)
}

// NoBuffers is a BufferOracle for headless use: it reports that no file
// has an open buffer, so all text content is read from disk.
type NoBuffers struct{}

// SyncInfo implements BufferOracle.
func (NoBuffers) SyncInfo(string) (SyncInfo, bool) {
	return SyncInfo{}, false
}

// ChangeCounter implements BufferOracle.
func (NoBuffers) ChangeCounter(int) (int, error) {
	return 0, nil
}

// Lines implements BufferOracle.
func (NoBuffers) Lines(int) ([]string, error) {
	return nil, nil
}

// ReloadFromDisk implements BufferOracle.
func (NoBuffers) ReloadFromDisk(int) error {
	return nil
}

// RecordSynced implements BufferOracle.
func (NoBuffers) RecordSynced(int, int, time.Time) {}

// Classification is the content category and mime type detected for a
// path.
type Classification struct {
	Category tracker.Category
	MimeType string
}

// Classifier detects the content category of a file. The category is
// detected once at track time and immutable afterwards.
type Classifier interface {
	Classify(path string) Classification
}

// Extractor converts a binary file into text the agent can read. It's
// only consulted for the Pdf category.
type Extractor interface {
	ExtractText(path string) (string, error)
}
