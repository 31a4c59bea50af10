package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/docsift/docsift/constants"
	"github.com/docsift/docsift/internal/common"
	"github.com/docsift/docsift/internal/config"
	"github.com/docsift/docsift/internal/export"
	"github.com/docsift/docsift/internal/pipeline"
	"github.com/docsift/docsift/internal/store"
	"github.com/docsift/docsift/internal/textsource"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		configPath = flag.String("config", "", "extraction configuration JSON file (required)")
		dir        = flag.String("dir", "", "directory with input files (non-recursive, optional)")
		out        = flag.String("out", "", "output XLSX file path (optional)")
		workers    = flag.Int("workers", 0, "concurrent documents (default: EXTRACT_WORKERS or CPU count)")
		dbPath     = flag.String("db", "", "sqlite history database path (optional, overrides HISTORY_DB)")
	)
	flag.Parse()

	if *configPath == "" {
		printError("Error: --config is required\n")
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: common.LogLevel(),
	}))
	slog.SetDefault(logger)

	ctx := context.Background()

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if *workers > 0 {
		cfg.Extract.Workers = *workers
	}
	if *dbPath != "" {
		cfg.History.DBPath = *dbPath
	}

	extractions, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load extraction configuration", "path", *configPath, "error", err)
		os.Exit(1)
	}
	logger.Info("loaded extraction configuration", "path", *configPath, "configurations", len(extractions))

	paths, err := gatherInputs(flag.Args(), *dir)
	if err != nil {
		logger.Error("failed to gather input files", "error", err)
		os.Exit(1)
	}
	if len(paths) == 0 {
		printError("Error: no input files; pass file arguments or --dir\n")
		os.Exit(1)
	}

	source := textsource.NewCached(
		textsource.NewExtractor(textsource.Config{Pdftotext: cfg.Text.Pdftotext}, logger),
		cfg.Text.CacheTTL,
		logger,
	)

	p := pipeline.NewPipeline(source, extractions, cfg.Extract.Workers, logger)
	summary := p.Run(ctx, paths)

	outPath := *out
	if outPath == "" {
		outPath = defaultOutputPath(cfg.Export, summary.StartedAt)
	}
	if err := export.NewService(logger).SaveFile(outPath, summary.Results); err != nil {
		logger.Error("export failed", "path", outPath, "error", err)
		os.Exit(1)
	}

	if cfg.History.DBPath != "" {
		if err := saveHistory(ctx, cfg.History.DBPath, summary, logger); err != nil {
			logger.Error("failed to save run history", "error", err)
			os.Exit(1)
		}
	}

	logger.Info("batch complete",
		"run_id", summary.RunID.String(),
		"documents", summary.Documents,
		"rows", len(summary.Results),
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"output", outPath,
	)
}

// gatherInputs combines explicit file arguments with a flat directory listing.
func gatherInputs(args []string, dir string) ([]string, error) {
	paths := append([]string(nil), args...)
	if dir != "" {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, common.WrapError(err, "read dir "+dir)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			ext := constants.NormalizeExt(filepath.Ext(entry.Name()))
			if _, ok := constants.AllowedExtensions[ext]; ok {
				paths = append(paths, filepath.Join(dir, entry.Name()))
			}
		}
	}
	return paths, nil
}

func defaultOutputPath(cfg common.ExportConfig, startedAt time.Time) string {
	name := cfg.FilenamePrefix
	if cfg.IncludeTimestamp {
		name = fmt.Sprintf("%s_%s", name, startedAt.Format("20060102_150405"))
	}
	return filepath.Join(cfg.OutputDir, name+".xlsx")
}

func saveHistory(ctx context.Context, path string, summary pipeline.Summary, logger *slog.Logger) error {
	st, err := store.Open(ctx, path, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.Error("failed to close history database", "error", err)
		}
	}()

	if err := st.HealthCheck(ctx, time.Second); err != nil {
		return common.WrapError(err, "history db health")
	}
	return st.SaveRun(ctx, store.RunRecord{
		ID:        summary.RunID,
		StartedAt: summary.StartedAt,
		Elapsed:   summary.Elapsed,
		Documents: summary.Documents,
		Succeeded: summary.Succeeded,
		Failed:    summary.Failed,
	}, summary.Results)
}
