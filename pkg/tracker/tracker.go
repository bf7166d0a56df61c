package tracker

import (
	"sync"
	"time"
)

// Category is the broad content type of a tracked file. It's detected once
// when the file is tracked and never changes afterwards.
type Category int

const (
	// Text files are delivered as their content, and incrementally as
	// diffs once the agent has seen them.
	Text Category = iota

	// Image files are delivered as base64-encoded bytes whenever their
	// modification time changes.
	Image

	// Pdf files are delivered as extracted text whenever their
	// modification time changes.
	Pdf

	// Unsupported files are rejected at track time and never reach
	// reconciliation.
	Unsupported
)

func (c Category) String() string {
	switch c {
	case Text:
		return "text"
	case Image:
		return "image"
	case Pdf:
		return "pdf"
	case Unsupported:
		return "unsupported"
	}
	return "unknown"
}

// RemoteView is the last content (or content marker) that was actually
// delivered to the agent for a file. It's a closed set of variants so that
// reconciliation can match exhaustively:
//
//	NoView     -- the agent has never seen the file.
//	TextView   -- the agent saw this exact text content.
//	BinaryView -- the agent saw the binary content that existed at ModTime.
//
// A text file never holds a BinaryView and vice versa. Hitting the wrong
// variant is a programming error and panics rather than being silently
// ignored.
type RemoteView interface {
	isRemoteView()
}

// NoView means the file has been tracked but no content has been delivered
// to the agent yet.
type NoView struct{}

// TextView records the exact text content the agent was last shown.
type TextView struct {
	Content string
}

// BinaryView records the modification time of the binary content the agent
// was last shown.
type BinaryView struct {
	ModTime time.Time
}

func (NoView) isRemoteView()     {}
func (TextView) isRemoteView()   {}
func (BinaryView) isRemoteView() {}

// TrackedFile is a file the engine is responsible for keeping the agent's
// view current for.
type TrackedFile struct {
	// AbsolutePath uniquely identifies the file. There is at most one
	// TrackedFile per absolute path.
	AbsolutePath string

	// RelativePath is the path shown to the agent (and used as the diff
	// label). It's relative to the workspace the file was tracked from.
	RelativePath string

	// Category is the content type detected at track time.
	Category Category

	// MimeType is the mime type reported by the classifier.
	MimeType string

	// View is the last content delivered to the agent.
	View RemoteView
}

// Registry owns the mapping from absolute path to tracked-file state.
// All methods are safe to call concurrently, so reconciliations for
// different paths can mutate their own entries within a single pass
// without additional locking.
type Registry struct {
	mu    sync.Mutex
	files map[string]TrackedFile
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{files: map[string]TrackedFile{}}
}

// Add starts tracking `f`. If the path is already tracked the existing
// entry is kept (re-tracking must not reset the agent's view) and Add
// returns false.
func (r *Registry) Add(f TrackedFile) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.files[f.AbsolutePath]; ok {
		return false
	}

	if f.View == nil {
		f.View = NoView{}
	}
	r.files[f.AbsolutePath] = f
	return true
}

// Remove stops tracking `path`. Removing an untracked path is a no-op.
func (r *Registry) Remove(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.files, path)
}

// Get returns the tracked file for `path`.
func (r *Registry) Get(path string) (TrackedFile, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.files[path]
	return f, ok
}

// All returns a snapshot of the tracked files. The returned slice is a
// copy, so it's unaffected by registry mutations made while a pass is
// iterating over it.
func (r *Registry) All() []TrackedFile {
	r.mu.Lock()
	defer r.mu.Unlock()

	files := make([]TrackedFile, 0, len(r.files))
	for _, f := range r.files {
		files = append(files, f)
	}
	return files
}

// SetView advances the remote view for `path`. It's a no-op if the path
// was untracked in the meantime (e.g. the file was deleted by a concurrent
// reconciliation of the same pass).
func (r *Registry) SetView(path string, view RemoteView) {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.files[path]
	if !ok {
		return
	}
	f.View = view
	r.files[path] = f
}

// IsEmpty returns whether any files are tracked.
func (r *Registry) IsEmpty() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.files) == 0
}
