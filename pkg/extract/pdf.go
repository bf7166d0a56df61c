// Package extract converts binary documents into text the agent can read.
package extract

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"
	"github.com/spf13/afero"

	"github.com/peripherylabs/agentsync/pkg/errors"
)

// PDF extracts the plain text of PDF documents.
type PDF struct {
	fs afero.Fs
}

// NewPDF returns a PDF extractor that reads through `fs`.
func NewPDF(fs afero.Fs) *PDF {
	return &PDF{fs: fs}
}

// ExtractText implements sync.Extractor.
func (p *PDF) ExtractText(path string) (text string, err error) {
	// The pdf parser panics on some malformed inputs rather than
	// returning an error. A malformed document must surface as a per-file
	// extraction failure, not take down the whole pass.
	defer func() {
		if r := recover(); r != nil {
			err = errors.New(fmt.Sprintf("malformed pdf: %v", r))
		}
	}()

	raw, err := afero.ReadFile(p.fs, path)
	if err != nil {
		return "", errors.WithContext(err, "read")
	}

	reader, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", errors.WithContext(err, "parse pdf")
	}

	plainText, err := reader.GetPlainText()
	if err != nil {
		return "", errors.WithContext(err, "extract text")
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plainText); err != nil {
		return "", errors.WithContext(err, "read extracted text")
	}
	return buf.String(), nil
}
