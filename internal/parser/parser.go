// Package parser extracts frontmatter, headings, links, and fenced code
// blocks from Markdown documents.
package parser

import (
	"bytes"
	"fmt"
	"net/url"
	"path"
	"sort"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	gparser "github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"github.com/starford/ansuz/internal/models"
)

// md is the shared engine for structure extraction. Rendering uses its
// own engine; both generate anchors through NewAnchorIDs.
var md = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithParserOptions(gparser.WithAutoHeadingID()),
)

// Result holds the output of parsing a Markdown file. All line numbers
// are 1-based positions in the original file, frontmatter included.
type Result struct {
	Frontmatter map[string]interface{}
	Body        string
	Title       string
	Tags        []string
	Headings    []models.Heading
	Links       []models.Link
	Fences      []models.Fence
}

// Parse extracts the structure of the document at path. The path is only
// used to resolve relative link destinations; no file system access
// happens here.
func Parse(docPath string, data []byte) (*Result, error) {
	fm, body, offset := splitFrontmatter(data)

	res := &Result{
		Frontmatter: fm,
		Body:        string(body),
		Tags:        extractTags(fm),
	}

	starts := lineStarts(body)
	pc := gparser.NewContext(gparser.WithIDs(NewAnchorIDs()))
	doc := md.Parser().Parse(text.NewReader(body), gparser.WithContext(pc))

	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := n.(type) {
		case *ast.Heading:
			res.Headings = append(res.Headings, models.Heading{
				Level:  v.Level,
				Text:   nodeText(v, body),
				Anchor: headingAnchor(v),
				Line:   offset + nodeLine(v, starts),
			})
		case *ast.Link:
			if l, ok := makeLink(docPath, string(v.Destination), models.LinkKindInline, offset+nodeLine(v, starts)); ok {
				res.Links = append(res.Links, l)
			}
		case *ast.Image:
			if l, ok := makeLink(docPath, string(v.Destination), models.LinkKindImage, offset+nodeLine(v, starts)); ok {
				res.Links = append(res.Links, l)
			}
		case *ast.FencedCodeBlock:
			res.Fences = append(res.Fences, models.Fence{
				Lang: string(v.Language(body)),
				Line: offset + fenceLine(v, starts),
			})
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parser: walk %s: %w", docPath, err)
	}

	res.Title = deriveTitle(fm, res.Headings)
	return res, nil
}

// splitFrontmatter separates YAML frontmatter from the Markdown body and
// returns the number of file lines the frontmatter block occupies. On
// malformed frontmatter the whole input is treated as body.
func splitFrontmatter(data []byte) (map[string]interface{}, []byte, int) {
	var fm map[string]interface{}
	body, err := frontmatter.Parse(bytes.NewReader(data), &fm)
	if err != nil || len(fm) == 0 {
		return nil, data, 0
	}
	consumed := data[:len(data)-len(body)]
	norm, _ := normalizeYAML(fm).(map[string]interface{})
	return norm, body, bytes.Count(consumed, []byte("\n"))
}

// normalizeYAML rewrites map[interface{}]interface{} values produced by
// the YAML decoder into map[string]interface{} so the result survives
// JSON marshalling and schema validation.
func normalizeYAML(v interface{}) interface{} {
	switch t := v.(type) {
	case map[interface{}]interface{}:
		m := make(map[string]interface{}, len(t))
		for k, val := range t {
			m[fmt.Sprint(k)] = normalizeYAML(val)
		}
		return m
	case map[string]interface{}:
		for k, val := range t {
			t[k] = normalizeYAML(val)
		}
		return t
	case []interface{}:
		for i := range t {
			t[i] = normalizeYAML(t[i])
		}
		return t
	default:
		return v
	}
}

// makeLink resolves a raw destination against the source document path.
// Destinations with a URL scheme are kept but flagged external; empty
// destinations are dropped.
func makeLink(source, dest, kind string, line int) (models.Link, bool) {
	if dest == "" {
		return models.Link{}, false
	}
	l := models.Link{Source: source, Dest: dest, Kind: kind, Line: line}

	if strings.HasPrefix(dest, "#") {
		l.Target = source
		l.Fragment = dest[1:]
		return l, true
	}
	if u, err := url.Parse(dest); err != nil || u.Scheme != "" || strings.HasPrefix(dest, "//") {
		l.External = true
		return l, true
	}

	rawPath, fragment, _ := strings.Cut(dest, "#")
	if unescaped, err := url.PathUnescape(rawPath); err == nil {
		rawPath = unescaped
	}
	if strings.HasPrefix(rawPath, "/") {
		// Leading slash means corpus-root relative.
		l.Target = path.Clean(strings.TrimPrefix(rawPath, "/"))
	} else {
		l.Target = path.Clean(path.Join(path.Dir(source), rawPath))
	}
	l.Fragment = fragment
	return l, true
}

// extractTags collects tags from the frontmatter "tags" field, which may
// be a list of strings or a single string.
func extractTags(fm map[string]interface{}) []string {
	if fm == nil {
		return nil
	}
	raw, ok := fm["tags"]
	if !ok {
		return nil
	}
	seen := make(map[string]struct{})
	var out []string
	add := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" {
			return
		}
		if _, dup := seen[s]; dup {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	switch v := raw.(type) {
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok {
				add(s)
			}
		}
	case string:
		add(v)
	}
	return out
}

// deriveTitle returns the frontmatter "title" if present, otherwise the
// first H1 heading, otherwise empty string.
func deriveTitle(fm map[string]interface{}, headings []models.Heading) string {
	if fm != nil {
		if t, ok := fm["title"]; ok {
			if s, ok := t.(string); ok && s != "" {
				return s
			}
		}
	}
	for _, h := range headings {
		if h.Level == 1 {
			return h.Text
		}
	}
	return ""
}

// headingAnchor reads the id attribute the auto-heading-ID pass stored
// on the node.
func headingAnchor(h *ast.Heading) string {
	v, ok := h.AttributeString("id")
	if !ok {
		return ""
	}
	switch id := v.(type) {
	case []byte:
		return string(id)
	case string:
		return id
	}
	return ""
}

// nodeText concatenates the text content of a node and its descendants.
func nodeText(n ast.Node, source []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(source))
		case *ast.String:
			b.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}

// lineStarts returns the byte offset of every line start in src.
func lineStarts(src []byte) []int {
	starts := []int{0}
	for i, c := range src {
		if c == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// lineFor converts a byte offset into a 1-based line number.
func lineFor(starts []int, pos int) int {
	return sort.Search(len(starts), func(i int) bool { return starts[i] > pos })
}

// nodeLine returns the 1-based body line of a node. Blocks report their
// first source segment; inline nodes fall back to their first text
// descendant, then to the enclosing block.
func nodeLine(n ast.Node, starts []int) int {
	if n.Type() == ast.TypeBlock {
		if lines := n.Lines(); lines.Len() > 0 {
			return lineFor(starts, lines.At(0).Start)
		}
	}
	pos := -1
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if t, ok := c.(*ast.Text); ok {
			pos = t.Segment.Start
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})
	if pos >= 0 {
		return lineFor(starts, pos)
	}
	for p := n.Parent(); p != nil; p = p.Parent() {
		if p.Type() != ast.TypeBlock {
			continue
		}
		if lines := p.Lines(); lines.Len() > 0 {
			return lineFor(starts, lines.At(0).Start)
		}
	}
	return 0
}

// fenceLine returns the body line of the opening fence. The info string
// sits on the fence line itself; without one the first content line is
// used and backed up by one.
func fenceLine(f *ast.FencedCodeBlock, starts []int) int {
	if f.Info != nil {
		return lineFor(starts, f.Info.Segment.Start)
	}
	if lines := f.Lines(); lines.Len() > 0 {
		if l := lineFor(starts, lines.At(0).Start); l > 1 {
			return l - 1
		}
	}
	return 0
}
