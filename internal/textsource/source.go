// Package textsource supplies raw document text to the resolver. It is the
// boundary with the outside world: plain text files are read directly, PDFs
// go through the external pdftotext binary. Multi-page content is flattened
// into a single string before it reaches the resolver.
package textsource

import (
	"context"
	"time"
)

// Source turns a file path into flattened document text.
type Source interface {
	Extract(ctx context.Context, path string) (Document, error)
}

// Document is the flattened text of one input file.
type Document struct {
	Text       string
	Pages      int
	SourceType string // constants.PDF | constants.TXT
	Method     string // "pdf-text" | "plain-text"
	Duration   time.Duration
	Warnings   []string
}
