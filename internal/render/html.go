// Package render turns corpus Markdown into HTML and styled terminal
// output.
package render

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/yuin/goldmark"
	gast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	gparser "github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	ghtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/starford/ansuz/internal/parser"
)

// Options configures an HTML renderer.
type Options struct {
	// RewriteMarkdownLinks rewrites relative .md destinations to .html,
	// preserving fragments. Static site pages mirror the corpus tree so
	// relative links keep working after the rewrite.
	RewriteMarkdownLinks bool
	// Unsafe passes raw HTML in documents through to the output.
	Unsafe bool
}

// HTML renders Markdown bodies to HTML fragments. Heading ids come from
// the same generator the parser uses, so anchors in rendered pages match
// the anchors the index stores.
type HTML struct {
	md goldmark.Markdown
}

// NewHTML builds a renderer. The returned value is safe for concurrent
// use; per-document state lives in the parse context.
func NewHTML(opts Options) *HTML {
	parserOpts := []gparser.Option{gparser.WithAutoHeadingID()}
	if opts.RewriteMarkdownLinks {
		parserOpts = append(parserOpts,
			gparser.WithASTTransformers(util.Prioritized(&mdLinkRewriter{}, 900)))
	}
	var rendererOpts []renderer.Option
	if opts.Unsafe {
		rendererOpts = append(rendererOpts, ghtml.WithUnsafe())
	}
	return &HTML{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parserOpts...),
			goldmark.WithRendererOptions(rendererOpts...),
		),
	}
}

// Render converts a Markdown body (frontmatter already stripped) to an
// HTML fragment.
func (r *HTML) Render(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	pc := gparser.NewContext(gparser.WithIDs(parser.NewAnchorIDs()))
	if err := r.md.Convert(src, &buf, gparser.WithContext(pc)); err != nil {
		return nil, fmt.Errorf("render: convert: %w", err)
	}
	return buf.Bytes(), nil
}

// mdLinkRewriter rewrites relative Markdown destinations to their .html
// counterparts during parsing. External links, fragments, and asset
// links pass through untouched.
type mdLinkRewriter struct{}

func (mdLinkRewriter) Transform(doc *gast.Document, reader text.Reader, pc gparser.Context) {
	_ = gast.Walk(doc, func(n gast.Node, entering bool) (gast.WalkStatus, error) {
		if !entering {
			return gast.WalkContinue, nil
		}
		if link, ok := n.(*gast.Link); ok {
			link.Destination = rewriteDest(link.Destination)
		}
		return gast.WalkContinue, nil
	})
}

func rewriteDest(dest []byte) []byte {
	d := string(dest)
	if d == "" || strings.HasPrefix(d, "#") {
		return dest
	}
	if u, err := url.Parse(d); err != nil || u.Scheme != "" || strings.HasPrefix(d, "//") {
		return dest
	}
	p, frag, hasFrag := strings.Cut(d, "#")
	if !strings.HasSuffix(p, ".md") {
		return dest
	}
	p = strings.TrimSuffix(p, ".md") + ".html"
	if hasFrag {
		return []byte(p + "#" + frag)
	}
	return []byte(p)
}
