package errors

import (
	"fmt"
)

// FileNotFound represents when we were unable to access a file
// because the path didn't exist.
type FileNotFound struct {
	Path string
}

func (err FileNotFound) Error() string {
	return fmt.Sprintf("%q does not exist", err.Path)
}

// ConflictError represents when both the editor buffer and the on-disk
// copy of a file changed since the last successful sync, so neither can
// be treated as authoritative. The file stays tracked and is retried on
// the next pass.
type ConflictError struct {
	Path string
}

func (err ConflictError) Error() string {
	return fmt.Sprintf("%q changed in both the buffer and on disk since the last sync", err.Path)
}

// ExtractionError represents a failure to extract text from a binary
// file (e.g. a malformed PDF). The remote view is left untouched so the
// extraction is retried on the next pass.
type ExtractionError struct {
	Path  string
	Cause error
}

func (err ExtractionError) Error() string {
	return fmt.Sprintf("extract text from %q: %s", err.Path, err.Cause)
}

// UnsupportedContent represents an attempt to track a file whose content
// type can't be delivered to the agent. It's returned synchronously at
// track time and never produces a tracked file.
type UnsupportedContent struct {
	Path     string
	MimeType string
}

func (err UnsupportedContent) Error() string {
	return fmt.Sprintf("%q has unsupported content type %q", err.Path, err.MimeType)
}
