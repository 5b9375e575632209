package internal

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/parser"
	"github.com/starford/ansuz/internal/render"
	"github.com/starford/ansuz/internal/storage"
)

// RunPreview renders a single document as styled terminal output on
// stdout. Frontmatter is stripped; only the Markdown body is shown.
func RunPreview(_ context.Context, docPath, style string, width int, opts ...Option) error {
	cfg, err := buildConfig(opts)
	if err != nil {
		return err
	}

	store, err := storage.NewFS(cfg.Corpus.Path)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	data, err := store.Read(docPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("preview %s: %w", docPath, apperr.ErrNotFound)
		}
		return fmt.Errorf("read %s: %w", docPath, err)
	}

	res, err := parser.Parse(docPath, data)
	if err != nil {
		return fmt.Errorf("parse %s: %w", docPath, err)
	}

	out, err := render.Terminal([]byte(res.Body), style, width)
	if err != nil {
		return err
	}
	_, err = os.Stdout.WriteString(out)
	return err
}
