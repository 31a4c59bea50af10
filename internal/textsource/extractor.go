package textsource

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/docsift/docsift/constants"
	"github.com/docsift/docsift/internal/common"
)

type Config struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
}

// Extractor picks a text-supply strategy based on file extension.
type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	return &Extractor{cfg: cfg, runner: execRunner{}, logger: logger}
}

func (e *Extractor) Extract(ctx context.Context, path string) (Document, error) {
	start := time.Now()
	ext := constants.NormalizeExt(filepath.Ext(path))
	e.logger.Debug("textsource.extract.start", "path", path, "ext", ext)

	var doc Document
	var err error
	switch constants.MapExtToFormat(ext) {
	case constants.PDF:
		doc, err = e.extractPDF(ctx, path)
	case constants.TXT:
		doc, err = e.extractPlainText(path)
	default:
		return Document{}, common.InvalidArgumentErrorf("unsupported format: %s", ext)
	}
	doc.Duration = time.Since(start)
	if err != nil {
		return doc, err
	}

	e.logger.Debug("textsource.extract.ok",
		"path", path,
		"method", doc.Method,
		"pages", doc.Pages,
		"bytes", len(doc.Text),
		"duration_ms", doc.Duration.Milliseconds(),
	)
	return doc, nil
}

func (e *Extractor) extractPDF(ctx context.Context, path string) (Document, error) {
	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, errb, err := e.runner.Run(ctx, e.cfg.Pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		return Document{SourceType: constants.PDF, Warnings: []string{string(errb)}},
			fmt.Errorf("pdftotext %s: %w", path, err)
	}
	text := string(out)
	// A form-feed \f is used as page separator by default.
	return Document{
		Text:       text,
		Pages:      1 + strings.Count(text, "\f"),
		SourceType: constants.PDF,
		Method:     "pdf-text",
	}, nil
}

func (e *Extractor) extractPlainText(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{SourceType: constants.TXT}, fmt.Errorf("read %s: %w", path, err)
	}
	return Document{
		Text:       string(data),
		Pages:      1,
		SourceType: constants.TXT,
		Method:     "plain-text",
	}, nil
}
