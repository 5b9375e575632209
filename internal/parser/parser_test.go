package parser

import (
	"testing"

	"github.com/starford/ansuz/internal/models"
)

func TestParse_FrontmatterAndBody(t *testing.T) {
	input := []byte("---\ntitle: Hello\ntags:\n  - go\n  - fastify\n---\n# Hello\nBody text.\n")
	r, err := Parse("guide.md", input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Title != "Hello" {
		t.Errorf("title = %q, want %q", r.Title, "Hello")
	}
	if len(r.Tags) != 2 || r.Tags[0] != "go" || r.Tags[1] != "fastify" {
		t.Errorf("tags = %v, want [go fastify]", r.Tags)
	}
	if r.Body != "# Hello\nBody text.\n" {
		t.Errorf("body = %q", r.Body)
	}
}

func TestParse_NoFrontmatter(t *testing.T) {
	input := []byte("# Just a heading\nSome text.\n")
	r, err := Parse("doc.md", input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Frontmatter != nil {
		t.Errorf("expected nil frontmatter, got %v", r.Frontmatter)
	}
	if r.Title != "Just a heading" {
		t.Errorf("title = %q, want %q", r.Title, "Just a heading")
	}
}

func TestParse_InvalidYAMLFallback(t *testing.T) {
	input := []byte("---\n: invalid: yaml: {{{\n---\nBody\n")
	r, err := Parse("doc.md", input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Invalid YAML falls back to treating everything as body.
	if r.Frontmatter != nil {
		t.Errorf("expected nil frontmatter on invalid YAML")
	}
	if r.Body != string(input) {
		t.Errorf("body = %q, want full input", r.Body)
	}
}

func TestParse_Headings(t *testing.T) {
	input := []byte("---\ntitle: T\n---\n# Intro\n\ntext\n\n## Error Handling\n\n## Error Handling\n")
	r, err := Parse("doc.md", input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(r.Headings) != 3 {
		t.Fatalf("len(headings) = %d, want 3", len(r.Headings))
	}
	h := r.Headings[0]
	if h.Level != 1 || h.Text != "Intro" || h.Anchor != "intro" || h.Line != 4 {
		t.Errorf("heading[0] = %+v", h)
	}
	if r.Headings[1].Anchor != "error-handling" {
		t.Errorf("anchor[1] = %q, want error-handling", r.Headings[1].Anchor)
	}
	// Repeated headings get a numeric suffix, matching rendered ids.
	if r.Headings[2].Anchor != "error-handling-1" {
		t.Errorf("anchor[2] = %q, want error-handling-1", r.Headings[2].Anchor)
	}
	if r.Headings[2].Line != 10 {
		t.Errorf("line[2] = %d, want 10", r.Headings[2].Line)
	}
}

func TestParse_Links(t *testing.T) {
	input := []byte("# T\n\nSee [sibling](./other.md) and [up](../react/hooks.md#rules).\n\nAlso [ext](https://example.com) and [self](#t).\n\n![diagram](img/flow.png)\n")
	r, err := Parse("guides/fastify/routes.md", input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(r.Links) != 5 {
		t.Fatalf("len(links) = %d: %+v", len(r.Links), r.Links)
	}

	byDest := map[string]models.Link{}
	for _, l := range r.Links {
		byDest[l.Dest] = l
	}

	if l := byDest["./other.md"]; l.Target != "guides/fastify/other.md" || l.External {
		t.Errorf("sibling link = %+v", l)
	}
	if l := byDest["../react/hooks.md#rules"]; l.Target != "guides/react/hooks.md" || l.Fragment != "rules" {
		t.Errorf("parent link = %+v", l)
	}
	if l := byDest["https://example.com"]; !l.External || l.Target != "" {
		t.Errorf("external link = %+v", l)
	}
	if l := byDest["#t"]; l.Target != "guides/fastify/routes.md" || l.Fragment != "t" {
		t.Errorf("self link = %+v", l)
	}
	if l := byDest["img/flow.png"]; l.Kind != models.LinkKindImage || l.Target != "guides/fastify/img/flow.png" {
		t.Errorf("image link = %+v", l)
	}
}

func TestParse_LinkLines(t *testing.T) {
	input := []byte("---\ntitle: T\n---\nintro\n\n[a](./a.md)\n\n[b](./b.md)\n")
	r, err := Parse("doc.md", input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(r.Links) != 2 {
		t.Fatalf("len(links) = %d", len(r.Links))
	}
	if r.Links[0].Line != 6 || r.Links[1].Line != 8 {
		t.Errorf("lines = %d, %d; want 6, 8", r.Links[0].Line, r.Links[1].Line)
	}
}

func TestParse_Fences(t *testing.T) {
	input := []byte("# T\n\n```typescript\nconst x = 1\n```\n\n```\nno lang\n```\n")
	r, err := Parse("doc.md", input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(r.Fences) != 2 {
		t.Fatalf("len(fences) = %d", len(r.Fences))
	}
	if r.Fences[0].Lang != "typescript" || r.Fences[0].Line != 3 {
		t.Errorf("fence[0] = %+v", r.Fences[0])
	}
	if r.Fences[1].Lang != "" || r.Fences[1].Line != 7 {
		t.Errorf("fence[1] = %+v", r.Fences[1])
	}
}

func TestParse_LinkOutsideCorpus(t *testing.T) {
	input := []byte("[out](../../secrets.md)\n")
	r, err := Parse("a/doc.md", input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(r.Links) != 1 {
		t.Fatalf("len(links) = %d", len(r.Links))
	}
	// Resolution is preserved so lint can flag the escape.
	if r.Links[0].Target != "../secrets.md" {
		t.Errorf("target = %q, want ../secrets.md", r.Links[0].Target)
	}
}

func TestParse_RootRelativeLink(t *testing.T) {
	input := []byte("![logo](/assets/logo.png)\n")
	r, err := Parse("deep/nested/doc.md", input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(r.Links) != 1 || r.Links[0].Target != "assets/logo.png" {
		t.Errorf("links = %+v, want target assets/logo.png", r.Links)
	}
}

func TestExtractTags_StringAndList(t *testing.T) {
	tags := extractTags(map[string]interface{}{"tags": []interface{}{"alpha", "beta", "alpha"}})
	if len(tags) != 2 || tags[0] != "alpha" || tags[1] != "beta" {
		t.Errorf("tags = %v, want [alpha beta]", tags)
	}
	tags = extractTags(map[string]interface{}{"tags": "solo"})
	if len(tags) != 1 || tags[0] != "solo" {
		t.Errorf("tags = %v, want [solo]", tags)
	}
}

func TestDeriveTitle_FrontmatterOverH1(t *testing.T) {
	fm := map[string]interface{}{"title": "FM Title"}
	headings := []models.Heading{{Level: 1, Text: "H1 Title"}}
	if title := deriveTitle(fm, headings); title != "FM Title" {
		t.Errorf("title = %q, want %q", title, "FM Title")
	}
}

func TestDeriveTitle_H1Fallback(t *testing.T) {
	headings := []models.Heading{{Level: 2, Text: "Sub"}, {Level: 1, Text: "My Heading"}}
	if title := deriveTitle(nil, headings); title != "My Heading" {
		t.Errorf("title = %q, want %q", title, "My Heading")
	}
}

func TestSlug(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Error Handling", "error-handling"},
		{"API & Routes", "api--routes"},
		{"  Trim Me  ", "trim-me"},
		{"camelCase IDs", "camelcase-ids"},
		{"C'est déjà ça", "cest-déjà-ça"},
		{"100% Coverage?", "100-coverage"},
	}
	for _, c := range cases {
		if got := Slug(c.in); got != c.want {
			t.Errorf("Slug(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
