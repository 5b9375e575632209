package render

import (
	"strings"
	"testing"

	"github.com/starford/ansuz/internal/parser"
)

func TestRender_HeadingIDs(t *testing.T) {
	r := NewHTML(Options{})
	out, err := r.Render([]byte("# Error Handling\n\n## Error Handling\n"))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	html := string(out)
	if !strings.Contains(html, `id="error-handling"`) {
		t.Errorf("missing first anchor: %s", html)
	}
	if !strings.Contains(html, `id="error-handling-1"`) {
		t.Errorf("missing deduplicated anchor: %s", html)
	}
}

// Anchors in rendered HTML must match the anchors the parser extracts,
// otherwise lint would validate fragments nobody can click.
func TestRender_AnchorsMatchParser(t *testing.T) {
	src := []byte("# Intro\n\n## API & Routes\n\n## API & Routes\n\n### C'est déjà ça\n")
	res, err := parser.Parse("doc.md", src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	out, err := NewHTML(Options{}).Render(src)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	html := string(out)
	for _, h := range res.Headings {
		if !strings.Contains(html, `id="`+h.Anchor+`"`) {
			t.Errorf("anchor %q extracted but not rendered", h.Anchor)
		}
	}
}

func TestRender_GFMTable(t *testing.T) {
	r := NewHTML(Options{})
	out, err := r.Render([]byte("| a | b |\n|---|---|\n| 1 | 2 |\n"))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(string(out), "<table>") {
		t.Errorf("GFM table not rendered: %s", out)
	}
}

func TestRender_RewriteMarkdownLinks(t *testing.T) {
	r := NewHTML(Options{RewriteMarkdownLinks: true})
	src := []byte("[sib](./other.md) [frag](../up/doc.md#sec) [ext](https://x.dev/a.md) [asset](img/pic.png) [self](#here)\n")
	out, err := r.Render(src)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	html := string(out)
	for _, want := range []string{
		`href="./other.html"`,
		`href="../up/doc.html#sec"`,
		`href="https://x.dev/a.md"`,
		`href="img/pic.png"`,
		`href="#here"`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("missing %s in %s", want, html)
		}
	}
}

func TestRender_NoRewriteByDefault(t *testing.T) {
	out, err := NewHTML(Options{}).Render([]byte("[sib](./other.md)\n"))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(string(out), `href="./other.md"`) {
		t.Errorf("relative .md link should be untouched: %s", out)
	}
}

func TestRender_UnsafeHTML(t *testing.T) {
	src := []byte("<div class=\"callout\">hi</div>\n")
	safe, _ := NewHTML(Options{}).Render(src)
	if strings.Contains(string(safe), "<div") {
		t.Errorf("raw HTML should be suppressed by default: %s", safe)
	}
	unsafe, _ := NewHTML(Options{Unsafe: true}).Render(src)
	if !strings.Contains(string(unsafe), "<div class=\"callout\">") {
		t.Errorf("raw HTML should pass through with Unsafe: %s", unsafe)
	}
}

func TestTerminal(t *testing.T) {
	out, err := Terminal([]byte("# Title\n\nSome *styled* text.\n"), "notty", 80)
	if err != nil {
		t.Fatalf("Terminal: %v", err)
	}
	if !strings.Contains(out, "Title") {
		t.Errorf("output missing heading text: %q", out)
	}
}
