// Package models defines the domain types for Ansuz.
package models

import "time"

// DocMeta is a lightweight representation of a corpus document,
// returned by list operations and used for sync reconciliation.
type DocMeta struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Heading is a single Markdown heading inside a document. Anchor is the
// URL fragment the rendered page exposes for it.
type Heading struct {
	Level  int    `json:"level"`
	Text   string `json:"text"`
	Anchor string `json:"anchor"`
	Line   int    `json:"line"`
}

// Link kinds. Inline covers standard []() links, Image covers ![]().
const (
	LinkKindInline = "inline"
	LinkKindImage  = "image"
)

// Link is a directed reference from one document to another corpus file.
// Target is the corpus-relative resolution of the raw destination; for
// external links it is empty and External is set.
type Link struct {
	Source   string `json:"source"`
	Dest     string `json:"dest"`
	Target   string `json:"target"`
	Fragment string `json:"fragment,omitempty"`
	Kind     string `json:"kind"`
	External bool   `json:"external,omitempty"`
	Line     int    `json:"line"`
}

// Fence is a fenced code block with its declared language tag. Lang is
// empty when the fence carries no info string.
type Fence struct {
	Lang string `json:"lang"`
	Line int    `json:"line"`
}

// CommitInfo is a single entry in a document's git history.
type CommitInfo struct {
	Hash      string    `json:"hash"`
	ShortHash string    `json:"short_hash"`
	Author    string    `json:"author"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	When      time.Time `json:"when"`
}
