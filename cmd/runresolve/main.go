// runresolve resolves one named configuration against one document and prints
// the outcome. Debug companion to extract-batch.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/docsift/docsift/internal/common"
	"github.com/docsift/docsift/internal/config"
	"github.com/docsift/docsift/internal/resolver"
	"github.com/docsift/docsift/internal/textsource"
)

func main() {
	var (
		configPath = flag.String("config", "", "extraction configuration JSON file (required)")
		name       = flag.String("name", "", "configuration name to run (default: all)")
	)
	flag.Parse()

	if *configPath == "" || flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: runresolve --config <config.json> [--name <configuration>] <file>")
		os.Exit(2)
	}
	path := flag.Arg(0)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: common.LogLevel(),
	}))
	slog.SetDefault(logger)

	extractions, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load extraction configuration", "error", err)
		os.Exit(1)
	}
	if *name != "" {
		extractions = filterByName(extractions, *name)
		if len(extractions) == 0 {
			logger.Error("configuration not found", "name", *name)
			os.Exit(1)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	cfg := common.LoadConfig()
	source := textsource.NewExtractor(textsource.Config{Pdftotext: cfg.Text.Pdftotext}, logger)
	doc, err := source.Extract(ctx, path)
	if err != nil {
		logger.Error("failed to read document", "path", path, "error", err)
		os.Exit(1)
	}
	logger.Info("document ready", "path", path, "method", doc.Method, "pages", doc.Pages, "bytes", len(doc.Text))

	for _, ext := range extractions {
		res := resolver.Resolve(doc.Text, ext)
		fmt.Printf("%-30s %-12s %q\n", ext.Name, res.Status, res.Value)
	}
}

func filterByName(extractions []config.Extraction, name string) []config.Extraction {
	for _, ext := range extractions {
		if ext.Name == name {
			return []config.Extraction{ext}
		}
	}
	return nil
}
