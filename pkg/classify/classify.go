// Package classify implements the default content classifier: it decides
// whether a path is text, an image, a PDF, or something agentsync can't
// deliver to the agent.
package classify

import (
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/peripherylabs/agentsync/pkg/sync"
	"github.com/peripherylabs/agentsync/pkg/tracker"
)

// sniffLen is how many leading bytes are read when the extension alone
// can't classify a file. http.DetectContentType never looks further.
const sniffLen = 512

// textExtensions are extensions that are always treated as text, even
// when their registered mime type isn't text/* (e.g. application/json).
var textExtensions = map[string]bool{
	".bash": true, ".c": true, ".cc": true, ".cfg": true, ".conf": true,
	".cpp": true, ".css": true, ".csv": true, ".go": true, ".h": true,
	".hpp": true, ".html": true, ".ini": true, ".java": true, ".js": true,
	".json": true, ".jsx": true, ".lua": true, ".md": true, ".mod": true,
	".proto": true, ".py": true, ".rb": true, ".rs": true, ".sh": true,
	".sql": true, ".sum": true, ".toml": true, ".ts": true, ".tsx": true,
	".txt": true, ".vim": true, ".xml": true, ".yaml": true, ".yml": true,
	".zsh": true,
}

// Sniffer classifies files by extension, falling back to sniffing the
// leading bytes of the content when the extension is unknown.
type Sniffer struct {
	fs afero.Fs
}

// New returns a Sniffer that reads through `fs`.
func New(fs afero.Fs) *Sniffer {
	return &Sniffer{fs: fs}
}

// Classify implements sync.Classifier.
func (s *Sniffer) Classify(path string) sync.Classification {
	ext := strings.ToLower(filepath.Ext(path))
	mimeType := mime.TypeByExtension(ext)

	switch {
	case ext == ".pdf":
		return sync.Classification{Category: tracker.Pdf, MimeType: "application/pdf"}
	case strings.HasPrefix(mimeType, "image/"):
		return sync.Classification{Category: tracker.Image, MimeType: mimeType}
	case textExtensions[ext] || strings.HasPrefix(mimeType, "text/"):
		if mimeType == "" {
			mimeType = "text/plain"
		}
		return sync.Classification{Category: tracker.Text, MimeType: mimeType}
	}

	return s.sniff(path)
}

// sniff classifies a file by its leading bytes when the extension is
// unknown.
func (s *Sniffer) sniff(path string) sync.Classification {
	f, err := s.fs.Open(path)
	if err != nil {
		log.WithError(err).WithField("path", path).Debug(
			"Failed to open file for content sniffing")
		return sync.Classification{
			Category: tracker.Unsupported,
			MimeType: "application/octet-stream",
		}
	}
	defer f.Close()

	head := make([]byte, sniffLen)
	n, _ := f.Read(head)
	mimeType := http.DetectContentType(head[:n])

	switch {
	case mimeType == "application/pdf":
		return sync.Classification{Category: tracker.Pdf, MimeType: mimeType}
	case strings.HasPrefix(mimeType, "image/"):
		return sync.Classification{Category: tracker.Image, MimeType: mimeType}
	case strings.HasPrefix(mimeType, "text/"):
		return sync.Classification{Category: tracker.Text, MimeType: mimeType}
	}

	return sync.Classification{Category: tracker.Unsupported, MimeType: mimeType}
}
