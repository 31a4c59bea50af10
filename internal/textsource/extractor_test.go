package textsource

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/docsift/docsift/constants"
)

// stubRunner returns canned output instead of invoking pdftotext.
type stubRunner struct {
	stdout []byte
	stderr []byte
	err    error

	gotName string
	gotArgs []string
}

func (s *stubRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	s.gotName = name
	s.gotArgs = args
	return s.stdout, s.stderr, s.err
}

func TestExtractPlainText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.txt")
	require.NoError(t, os.WriteFile(path, []byte("Total: 42\n"), 0o644))

	e := NewExtractor(Config{}, nil)
	doc, err := e.Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "Total: 42\n", doc.Text)
	assert.Equal(t, constants.TXT, doc.SourceType)
	assert.Equal(t, "plain-text", doc.Method)
	assert.Equal(t, 1, doc.Pages)
}

func TestExtractPlainTextMissingFile(t *testing.T) {
	e := NewExtractor(Config{}, nil)
	_, err := e.Extract(context.Background(), filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
}

func TestExtractPDFCountsPages(t *testing.T) {
	runner := &stubRunner{stdout: []byte("page one\fpage two\fpage three")}
	e := NewExtractor(Config{Pdftotext: "pdftotext"}, nil)
	e.runner = runner

	doc, err := e.Extract(context.Background(), "invoice.pdf")
	require.NoError(t, err)
	assert.Equal(t, 3, doc.Pages)
	assert.Equal(t, constants.PDF, doc.SourceType)
	assert.Equal(t, "pdf-text", doc.Method)

	assert.Equal(t, "pdftotext", runner.gotName)
	assert.Equal(t, []string{"-layout", "-enc", "UTF-8", "-eol", "unix", "invoice.pdf", "-"}, runner.gotArgs)
}

func TestExtractPDFFailureCarriesStderr(t *testing.T) {
	runner := &stubRunner{stderr: []byte("Syntax Error: broken xref"), err: errors.New("exit status 1")}
	e := NewExtractor(Config{}, nil)
	e.runner = runner

	doc, err := e.Extract(context.Background(), "broken.pdf")
	require.Error(t, err)
	require.Len(t, doc.Warnings, 1)
	assert.Contains(t, doc.Warnings[0], "broken xref")
}

func TestExtractUnsupportedFormat(t *testing.T) {
	e := NewExtractor(Config{}, nil)
	_, err := e.Extract(context.Background(), "photo.heic")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}
