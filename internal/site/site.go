// Package site builds a static HTML rendition of the corpus: one page
// per document, a navigation tree, an index page, and copied assets.
package site

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/parser"
	"github.com/starford/ansuz/internal/render"
	"github.com/starford/ansuz/internal/storage"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Config controls the build output.
type Config struct {
	// OutputDir receives the generated site. It is created if missing.
	OutputDir string
	// Title is the site name shown in page headers.
	Title string
	// UnsafeHTML passes raw HTML in documents through to the pages.
	UnsafeHTML bool
}

// Summary reports what a build produced.
type Summary struct {
	Pages  int `json:"pages"`
	Assets int `json:"assets"`
}

// Builder renders the corpus into a directory of static pages. Links to
// sibling documents are rewritten from .md to .html so the tree browses
// the same way the corpus reads.
type Builder struct {
	store    storage.Provider
	renderer *render.HTML
	cfg      Config
	tmpl     *template.Template
}

// NewBuilder parses the embedded templates and prepares a Builder.
func NewBuilder(store storage.Provider, cfg Config) (*Builder, error) {
	if cfg.OutputDir == "" {
		return nil, fmt.Errorf("site: output dir not set")
	}
	if cfg.Title == "" {
		cfg.Title = "Ansuz"
	}
	tmpl, err := template.New("site").Funcs(template.FuncMap{
		"nav": func(root string, nodes []*NavNode) navView {
			return navView{Root: root, Nodes: nodes}
		},
	}).ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("site: parse templates: %w", err)
	}
	return &Builder{
		store: store,
		renderer: render.NewHTML(render.Options{
			RewriteMarkdownLinks: true,
			Unsafe:               cfg.UnsafeHTML,
		}),
		cfg:  cfg,
		tmpl: tmpl,
	}, nil
}

// NavNode is one entry in the navigation tree. Directories have an empty
// Href and carry children.
type NavNode struct {
	Name     string
	Href     string
	Children []*NavNode
}

type navView struct {
	Root  string
	Nodes []*NavNode
}

// page is the data handed to the page template.
type page struct {
	SiteTitle string
	Title     string
	Path      string
	Href      string
	Root      string
	Content   template.HTML
	Headings  []models.Heading
	Tags      []string
	Nav       []*NavNode
}

// indexPage is the data handed to the index template.
type indexPage struct {
	SiteTitle string
	Root      string
	Docs      int
	Nav       []*NavNode
}

// Build renders every document, writes the index page, and copies
// assets. Output paths mirror corpus paths with .md swapped for .html.
// A root index.md renders to index.html itself and suppresses the
// generated listing page.
func (b *Builder) Build(ctx context.Context) (*Summary, error) {
	metas, err := b.store.List("")
	if err != nil {
		return nil, err
	}
	sort.Slice(metas, func(i, j int) bool { return metas[i].Path < metas[j].Path })

	pages := make([]*page, 0, len(metas))
	for _, m := range metas {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p, err := b.renderPage(m.Path)
		if err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}

	nav := buildNav(pages)
	hasRootIndex := false
	for _, p := range pages {
		p.Nav = nav
		if err := b.writePage(p); err != nil {
			return nil, err
		}
		if p.Path == "index.md" {
			hasRootIndex = true
		}
	}

	// A hand-written root index.md owns index.html; only generate the
	// listing page when the corpus does not provide one.
	if !hasRootIndex {
		if err := b.writeIndex(&indexPage{
			SiteTitle: b.cfg.Title,
			Docs:      len(pages),
			Nav:       nav,
		}); err != nil {
			return nil, err
		}
	}

	assets, err := b.copyAssets(ctx)
	if err != nil {
		return nil, err
	}
	return &Summary{Pages: len(pages), Assets: assets}, nil
}

func (b *Builder) renderPage(docPath string) (*page, error) {
	data, err := b.store.Read(docPath)
	if err != nil {
		return nil, err
	}
	res, err := parser.Parse(docPath, data)
	if err != nil {
		return nil, err
	}
	content, err := b.renderer.Render([]byte(res.Body))
	if err != nil {
		return nil, fmt.Errorf("site: render %s: %w", docPath, err)
	}

	title := res.Title
	if title == "" {
		title = strings.TrimSuffix(path.Base(docPath), ".md")
	}
	var toc []models.Heading
	for _, h := range res.Headings {
		if h.Level >= 2 && h.Level <= 3 {
			toc = append(toc, h)
		}
	}
	return &page{
		SiteTitle: b.cfg.Title,
		Title:     title,
		Path:      docPath,
		Href:      strings.TrimSuffix(docPath, ".md") + ".html",
		Root:      strings.Repeat("../", strings.Count(docPath, "/")),
		Content:   template.HTML(content),
		Headings:  toc,
		Tags:      res.Tags,
	}, nil
}

func (b *Builder) writePage(p *page) error {
	var buf strings.Builder
	if err := b.tmpl.ExecuteTemplate(&buf, "page", p); err != nil {
		return fmt.Errorf("site: execute page %s: %w", p.Path, err)
	}
	return b.writeFile(p.Href, []byte(buf.String()))
}

func (b *Builder) writeIndex(idx *indexPage) error {
	var buf strings.Builder
	if err := b.tmpl.ExecuteTemplate(&buf, "index", idx); err != nil {
		return fmt.Errorf("site: execute index: %w", err)
	}
	return b.writeFile("index.html", []byte(buf.String()))
}

func (b *Builder) copyAssets(ctx context.Context) (int, error) {
	assets, err := b.store.ListAssets("")
	if err != nil {
		return 0, err
	}
	sort.Strings(assets)
	for _, a := range assets {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		data, err := b.store.Read(a)
		if err != nil {
			return 0, err
		}
		if err := b.writeFile(a, data); err != nil {
			return 0, err
		}
	}
	return len(assets), nil
}

func (b *Builder) writeFile(rel string, data []byte) error {
	out := filepath.Join(b.cfg.OutputDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return fmt.Errorf("site: mkdir: %w", err)
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("site: write %s: %w", rel, err)
	}
	return nil
}

// buildNav arranges pages into a directory tree. Directories sort before
// files, both alphabetically.
func buildNav(pages []*page) []*NavNode {
	root := &NavNode{}
	for _, p := range pages {
		parts := strings.Split(p.Path, "/")
		node := root
		for i, part := range parts {
			last := i == len(parts)-1
			if last {
				node.Children = append(node.Children, &NavNode{Name: p.Title, Href: p.Href})
				break
			}
			node = childDir(node, part)
		}
	}
	sortNav(root)
	return root.Children
}

func childDir(parent *NavNode, name string) *NavNode {
	for _, c := range parent.Children {
		if c.Href == "" && c.Name == name {
			return c
		}
	}
	c := &NavNode{Name: name}
	parent.Children = append(parent.Children, c)
	return c
}

func sortNav(n *NavNode) {
	sort.SliceStable(n.Children, func(i, j int) bool {
		a, b := n.Children[i], n.Children[j]
		aDir, bDir := a.Href == "", b.Href == ""
		if aDir != bDir {
			return aDir
		}
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	})
	for _, c := range n.Children {
		sortNav(c)
	}
}
