package parser

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/yuin/goldmark/ast"
	gparser "github.com/yuin/goldmark/parser"
)

// Slug converts heading text to its GitHub-style anchor: lowercased,
// punctuation stripped, spaces collapsed to hyphens. Deduplication of
// repeated headings is handled by the slugger, not here.
func Slug(text string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(text)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r) || r == '_' || r == '-':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte('-')
		}
	}
	return b.String()
}

// slugger assigns document-unique anchors: the first occurrence of a
// heading gets the bare slug, repeats get a -1, -2, ... suffix.
type slugger struct {
	used map[string]int
}

func newSlugger() *slugger {
	return &slugger{used: make(map[string]int)}
}

func (s *slugger) anchor(text string) string {
	base := Slug(text)
	if base == "" {
		base = "heading"
	}
	n := s.used[base]
	s.used[base] = n + 1
	if n == 0 {
		return base
	}
	return fmt.Sprintf("%s-%d", base, n)
}

// anchorIDs adapts slugger to goldmark's parser.IDs so rendered heading
// ids always match the anchors extracted here.
type anchorIDs struct {
	s *slugger
}

// NewAnchorIDs returns a fresh goldmark ID generator for one document.
// Pass it via parser.WithContext so every parse or render of a document
// produces the same anchors.
func NewAnchorIDs() gparser.IDs {
	return &anchorIDs{s: newSlugger()}
}

func (a *anchorIDs) Generate(value []byte, kind ast.NodeKind) []byte {
	return []byte(a.s.anchor(string(value)))
}

func (a *anchorIDs) Put(value []byte) {}
