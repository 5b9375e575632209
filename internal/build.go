package internal

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/starford/ansuz/internal/site"
	"github.com/starford/ansuz/internal/storage"
)

// RunBuild renders the whole corpus into a static HTML site.
func RunBuild(ctx context.Context, opts ...Option) (*site.Summary, error) {
	cfg, err := buildConfig(opts)
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	store, err := storage.NewFS(cfg.Corpus.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	builder, err := site.NewBuilder(store, site.Config{
		OutputDir:  cfg.Site.OutputDir,
		Title:      cfg.Site.Title,
		UnsafeHTML: cfg.Site.UnsafeHTML,
	})
	if err != nil {
		return nil, fmt.Errorf("init site builder: %w", err)
	}

	summary, err := builder.Build(ctx)
	if err != nil {
		return nil, fmt.Errorf("build site: %w", err)
	}

	logger.Info("site built",
		slog.Int("pages", summary.Pages),
		slog.Int("assets", summary.Assets),
		slog.String("output_dir", cfg.Site.OutputDir))

	return summary, nil
}
