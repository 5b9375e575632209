package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/starford/ansuz/internal/index"
	"github.com/starford/ansuz/internal/lint"
	"github.com/starford/ansuz/internal/storage"
)

// RunCheck lints the whole corpus and prints issues to stdout, either in
// compiler format (path:line: [rule] message) or as one JSON report. The
// returned report lets the caller pick an exit code: warnings alone leave
// the corpus clean, errors do not.
func RunCheck(ctx context.Context, format string, opts ...Option) (*lint.Report, error) {
	switch format {
	case "", "text", "json":
	default:
		return nil, fmt.Errorf("unknown output format %q (want text or json)", format)
	}

	cfg, err := buildConfig(opts)
	if err != nil {
		return nil, err
	}

	// Logs go to stderr; stdout carries the issue list.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	store, err := storage.NewFS(cfg.Corpus.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	// A throwaway in-memory index keeps check runs self-contained and
	// always reflecting the files currently on disk.
	db, err := index.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("init index: %w", err)
	}
	defer db.Close()

	if err := index.Sync(db, store, logger); err != nil {
		return nil, fmt.Errorf("sync corpus: %w", err)
	}

	linter, err := lint.NewRunner(db, store, lint.Options{
		ExtraLanguages: cfg.Lint.Languages,
		SchemaPath:     cfg.Lint.SchemaPath,
	})
	if err != nil {
		return nil, fmt.Errorf("init lint: %w", err)
	}

	report, err := linter.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("lint corpus: %w", err)
	}

	if format == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return nil, fmt.Errorf("encode report: %w", err)
		}
		return report, nil
	}

	for _, issue := range report.Issues {
		fmt.Fprintln(os.Stdout, issue.String())
	}
	fmt.Fprintf(os.Stdout, "%d documents checked: %d errors, %d warnings\n",
		report.Docs, report.Errors, report.Warnings)

	return report, nil
}
