package sync

import (
	"os"
	"path/filepath"
	goSync "sync"

	"github.com/jonboulle/clockwork"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/peripherylabs/agentsync/pkg/errors"
	"github.com/peripherylabs/agentsync/pkg/tracker"
)

// maxWorkers caps the number of files reconciled at once within a pass.
const maxWorkers = 8

// Engine reconciles the tracked files against the agent's view of them.
// All file and editor access goes through the injected oracles, so the
// engine itself performs no ambient I/O.
type Engine struct {
	registry   *tracker.Registry
	fs         afero.Fs
	buffers    BufferOracle
	classifier Classifier
	extractor  Extractor
	clock      clockwork.Clock

	// passMu serializes reconciliation passes. Concurrent SyncAll callers
	// block until the in-flight pass completes rather than interleaving
	// over the same registry entries.
	passMu goSync.Mutex
}

// New returns an Engine that tracks no files yet.
func New(fs afero.Fs, buffers BufferOracle, classifier Classifier,
	extractor Extractor, clock clockwork.Clock) *Engine {

	return &Engine{
		registry:   tracker.NewRegistry(),
		fs:         fs,
		buffers:    buffers,
		classifier: classifier,
		extractor:  extractor,
		clock:      clock,
	}
}

// Track starts keeping the agent's view of `path` current. Tracking an
// already-tracked path is a no-op. Files whose content type can't be
// delivered to the agent are rejected synchronously.
func (e *Engine) Track(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return errors.WithContext(err, "resolve path")
	}

	c := e.classifier.Classify(abs)
	if c.Category == tracker.Unsupported {
		return errors.UnsupportedContent{Path: abs, MimeType: c.MimeType}
	}

	rel := abs
	if wd, err := os.Getwd(); err == nil {
		if r, err := filepath.Rel(wd, abs); err == nil && !filepath.IsAbs(r) {
			rel = r
		}
	}

	added := e.registry.Add(tracker.TrackedFile{
		AbsolutePath: abs,
		RelativePath: rel,
		Category:     c.Category,
		MimeType:     c.MimeType,
		View:         tracker.NoView{},
	})
	if added {
		log.WithField("path", abs).Debugf("Tracking %s file", c.Category)
	}
	return nil
}

// Untrack stops tracking `path`. The agent's view of the file is
// discarded, so re-tracking it later delivers the whole content again.
func (e *Engine) Untrack(path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	e.registry.Remove(abs)
}

// IsEmpty returns whether any files are tracked.
func (e *Engine) IsEmpty() bool {
	return e.registry.IsEmpty()
}

type pathOutcome struct {
	path    string
	outcome Outcome
}

// SyncAll runs one reconciliation pass over every tracked file and returns
// the per-path outcomes. Files reconcile concurrently and independently;
// the pass completes only once every file has resolved. Overlapping calls
// are serialized.
func (e *Engine) SyncAll() map[string]Outcome {
	e.passMu.Lock()
	defer e.passMu.Unlock()

	files := e.registry.All()
	outcomes := make(map[string]Outcome, len(files))
	if len(files) == 0 {
		return outcomes
	}

	numWorkers := maxWorkers
	if len(files) < numWorkers {
		numWorkers = len(files)
	}

	toReconcile := make(chan tracker.TrackedFile, numWorkers*2)
	results := make(chan pathOutcome, numWorkers)

	var wg goSync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for f := range toReconcile {
				results <- pathOutcome{
					path:    f.AbsolutePath,
					outcome: e.reconcile(f),
				}
			}
		}()
	}

	go func() {
		for _, f := range files {
			toReconcile <- f
		}
		close(toReconcile)

		wg.Wait()
		close(results)
	}()

	for res := range results {
		if res.outcome.Err != nil {
			log.WithError(res.outcome.Err).WithField("path", res.path).
				Debug("File failed to reconcile")
		}
		outcomes[res.path] = res.outcome
	}
	return outcomes
}
