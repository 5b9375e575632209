package internal

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/starford/ansuz/internal/index"
	"github.com/starford/ansuz/internal/lint"
	"github.com/starford/ansuz/internal/mcpserver"
	"github.com/starford/ansuz/internal/storage"
)

// RunMCP starts the MCP server on stdin/stdout. The protocol owns
// stdout, so all logging goes to stderr.
func RunMCP(_ context.Context, opts ...Option) error {
	cfg, err := buildConfig(opts)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	if err := os.MkdirAll(cfg.Corpus.Path, 0o755); err != nil {
		return fmt.Errorf("create corpus dir: %w", err)
	}

	store, err := storage.NewFS(cfg.Corpus.Path)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init index: %w", err)
	}
	defer db.Close()

	if err := index.Sync(db, store, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	linter, err := lint.NewRunner(db, store, lint.Options{
		ExtraLanguages: cfg.Lint.Languages,
		SchemaPath:     cfg.Lint.SchemaPath,
	})
	if err != nil {
		return fmt.Errorf("init lint: %w", err)
	}

	logger.Info("MCP server starting on stdio",
		slog.String("corpus_path", cfg.Corpus.Path))

	srv := mcpserver.New(store, db, linter)
	if err := srv.ServeStdio(); err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}
