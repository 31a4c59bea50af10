// Package pipeline coordinates a batch run: supply text per document, resolve
// every configuration against it, and collect the rows for export. Documents
// are processed independently; one unreadable document never blocks the rest.
package pipeline

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/docsift/docsift/internal/config"
	"github.com/docsift/docsift/internal/resolver"
	"github.com/docsift/docsift/internal/textsource"
	"github.com/docsift/docsift/internal/worker"
)

type Pipeline struct {
	Source      textsource.Source
	Extractions []config.Extraction
	Workers     int
	Log         *slog.Logger
}

func NewPipeline(source textsource.Source, extractions []config.Extraction, workers int, log *slog.Logger) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	if workers <= 0 {
		workers = 1
	}
	return &Pipeline{Source: source, Extractions: extractions, Workers: workers, Log: log}
}

// Summary describes one completed batch run.
type Summary struct {
	RunID     uuid.UUID
	StartedAt time.Time
	Elapsed   time.Duration
	Documents int
	Succeeded int
	Failed    int
	Results   []resolver.Result
}

// Run resolves every configuration against every document and returns the
// collected rows, grouped by document (input order) then configuration
// (file order).
func (p *Pipeline) Run(ctx context.Context, paths []string) Summary {
	runID := uuid.New()
	start := time.Now()
	p.Log.Info("pipeline.run.start",
		"run_id", runID.String(),
		"documents", len(paths),
		"configurations", len(p.Extractions),
		"workers", p.Workers,
	)

	pool := worker.NewPool(ctx, p.Workers)
	pool.Start()
	// Submission runs alongside the Wait drain: with more documents than the
	// pool's buffers hold, an inline submit loop would block before Wait ever
	// started consuming rows.
	go func() {
		for _, path := range paths {
			pool.Submit(&docTask{p: p, path: path})
		}
		pool.Close()
	}()
	rows := pool.Wait()

	p.sortRows(rows, paths)

	summary := Summary{
		RunID:     runID,
		StartedAt: start,
		Elapsed:   time.Since(start),
		Documents: len(paths),
		Results:   rows,
	}
	for _, r := range rows {
		if r.Success {
			summary.Succeeded++
		} else {
			summary.Failed++
		}
	}

	p.Log.Info("pipeline.run.ok",
		"run_id", runID.String(),
		"rows", len(rows),
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"elapsed_ms", summary.Elapsed.Milliseconds(),
	)
	return summary
}

// docTask resolves every configuration against one document.
type docTask struct {
	p    *Pipeline
	path string
}

func (t *docTask) Execute(ctx context.Context) []resolver.Result {
	p := t.p
	// SourceID carries the full input path so documents sharing a basename in
	// different directories stay distinct; export renders the basename.
	sourceID := t.path
	rows := make([]resolver.Result, 0, len(p.Extractions))

	doc, err := p.Source.Extract(ctx, t.path)
	if err != nil {
		p.Log.Error("pipeline.doc.unreadable", "path", t.path, "error", err)
		for _, ext := range p.Extractions {
			row := resolver.ReadError(ext)
			row.SourceID = sourceID
			rows = append(rows, row)
		}
		return rows
	}

	for _, ext := range p.Extractions {
		row := resolver.Resolve(doc.Text, ext)
		row.SourceID = sourceID
		rows = append(rows, row)
	}

	p.Log.Info("pipeline.doc.ok",
		"path", t.path,
		"method", doc.Method,
		"pages", doc.Pages,
		"rows", len(rows),
	)
	return rows
}

// sortRows restores stable grouping: documents in input order, configurations
// in file order within each document.
func (p *Pipeline) sortRows(rows []resolver.Result, paths []string) {
	docOrder := make(map[string]int, len(paths))
	for i, path := range paths {
		if _, ok := docOrder[path]; !ok {
			docOrder[path] = i
		}
	}
	cfgOrder := make(map[string]int, len(p.Extractions))
	for i, ext := range p.Extractions {
		cfgOrder[ext.Name] = i
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if docOrder[rows[i].SourceID] != docOrder[rows[j].SourceID] {
			return docOrder[rows[i].SourceID] < docOrder[rows[j].SourceID]
		}
		return cfgOrder[rows[i].ConfigName] < cfgOrder[rows[j].ConfigName]
	})
}
