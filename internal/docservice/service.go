package docservice

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/checksum"
	"github.com/starford/ansuz/internal/history"
	"github.com/starford/ansuz/internal/index"
	"github.com/starford/ansuz/internal/lint"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/parser"
	"github.com/starford/ansuz/internal/render"
	"github.com/starford/ansuz/internal/storage"
)

// DocDetail is the full representation of a document.
type DocDetail struct {
	Path        string           `json:"path"`
	Title       string           `json:"title"`
	Content     string           `json:"content"`
	Checksum    string           `json:"checksum"`
	Tags        []string         `json:"tags"`
	Frontmatter map[string]any   `json:"frontmatter,omitempty"`
	Headings    []models.Heading `json:"headings"`
	Backlinks   []string         `json:"backlinks"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// DocListItem is a lightweight item in a list response.
type DocListItem struct {
	Path      string    `json:"path"`
	Title     string    `json:"title"`
	Checksum  string    `json:"checksum"`
	Tags      []string  `json:"tags"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Service coordinates storage, index, rendering, lint, and history.
type Service struct {
	store    storage.Provider
	db       *index.DB
	renderer *render.HTML
	linter   *lint.Runner
	hist     *history.Service
}

// NewService creates a document service. hist may be nil when the corpus
// is not inside a git repository; history queries then report that.
func NewService(store storage.Provider, db *index.DB, renderer *render.HTML, linter *lint.Runner, hist *history.Service) *Service {
	return &Service{store: store, db: db, renderer: renderer, linter: linter, hist: hist}
}

// GetDoc reads a document from storage, parses it, and enriches it with
// backlinks and index metadata.
func (s *Service) GetDoc(_ context.Context, path string) (*DocDetail, error) {
	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return s.buildDocDetail(path, data)
}

// CreateDoc writes a new document and indexes it.
func (s *Service) CreateDoc(_ context.Context, path string, content []byte) (*DocDetail, error) {
	if _, err := s.store.Read(path); err == nil {
		return nil, apperr.ErrAlreadyExists
	}
	if err := s.store.Write(path, content); err != nil {
		return nil, err
	}
	if err := index.IndexDoc(s.db, path, content); err != nil {
		return nil, err
	}
	return s.buildDocDetail(path, content)
}

// UpdateDoc writes updated content with optimistic concurrency.
func (s *Service) UpdateDoc(_ context.Context, path string, content []byte, ifMatch string) (*DocDetail, error) {
	existing, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	if ifMatch != "" && ifMatch != checksum.Sum(existing) {
		return nil, apperr.ErrConflict
	}
	if err := s.store.Write(path, content); err != nil {
		return nil, err
	}
	if err := index.IndexDoc(s.db, path, content); err != nil {
		return nil, err
	}
	return s.buildDocDetail(path, content)
}

// DeleteDoc removes a document from storage and index.
func (s *Service) DeleteDoc(_ context.Context, path string) error {
	if err := s.store.Delete(path); err != nil {
		return err
	}
	return s.db.DeleteDoc(path)
}

// ListDocs returns paginated documents with optional tag filter.
func (s *Service) ListDocs(_ context.Context, limit, offset int, tag, sort string) ([]DocListItem, int, error) {
	rows, total, err := s.db.ListDocs(limit, offset, tag, sort)
	if err != nil {
		return nil, 0, err
	}
	items := make([]DocListItem, len(rows))
	for i, r := range rows {
		items[i] = DocListItem{
			Path:      r.Path,
			Title:     r.Title,
			Checksum:  r.Checksum,
			Tags:      nonNilSlice(r.Tags),
			UpdatedAt: r.UpdatedAt,
		}
	}
	return items, total, nil
}

// Search delegates full-text search to the index.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	return s.db.Search(query, limit)
}

// Graph returns all nodes and resolved links for graph visualization.
func (s *Service) Graph(_ context.Context) ([]index.GraphNode, []index.GraphLink, error) {
	return s.db.Graph()
}

// Backlinks returns all document paths that link to the given target.
func (s *Service) Backlinks(_ context.Context, target string) ([]string, error) {
	return s.db.Backlinks(target)
}

// RenderDoc converts a document body to an HTML fragment. Relative .md
// links are left intact; when pages are served under a common prefix
// they resolve the same way the files do.
func (s *Service) RenderDoc(_ context.Context, path string) ([]byte, error) {
	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	res, err := parser.Parse(path, data)
	if err != nil {
		return nil, err
	}
	return s.renderer.Render([]byte(res.Body))
}

// Lint runs every lint rule against the indexed corpus.
func (s *Service) Lint(ctx context.Context) (*lint.Report, error) {
	return s.linter.Run(ctx)
}

// History returns the git log of one document, newest first.
func (s *Service) History(ctx context.Context, path string, limit int) ([]models.CommitInfo, error) {
	if s.hist == nil {
		return nil, fmt.Errorf("docservice: history: %w", apperr.ErrNoRepository)
	}
	exists, err := s.store.Exists(path)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperr.ErrNotFound
	}
	return s.hist.Log(ctx, path, limit)
}

// buildDocDetail constructs a DocDetail from raw data without re-reading
// the file. UpdatedAt comes from the index when the document is indexed.
func (s *Service) buildDocDetail(path string, data []byte) (*DocDetail, error) {
	res, err := parser.Parse(path, data)
	if err != nil {
		return nil, err
	}
	bl, err := s.db.Backlinks(path)
	if err != nil {
		return nil, err
	}
	updated := time.Now()
	if row, err := s.db.GetDoc(path); err == nil && row != nil {
		updated = row.UpdatedAt
	}
	return &DocDetail{
		Path:        path,
		Title:       res.Title,
		Content:     string(data),
		Checksum:    checksum.Sum(data),
		Tags:        nonNilSlice(res.Tags),
		Frontmatter: res.Frontmatter,
		Headings:    nonNilSlice(res.Headings),
		Backlinks:   nonNilSlice(bl),
		UpdatedAt:   updated,
	}, nil
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
