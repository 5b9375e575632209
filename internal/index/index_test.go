package index

import (
	"os"
	"testing"
	"time"

	"github.com/starford/ansuz/internal/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "ansuz-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func docLink(source, target string) models.Link {
	return models.Link{Source: source, Dest: "./" + target, Target: target, Kind: models.LinkKindInline, Line: 1}
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	for _, table := range []string{"docs", "links", "headings", "fences"} {
		if err := db.conn.QueryRow(`SELECT count(*) FROM ` + table).Scan(&count); err != nil {
			t.Fatalf("%s table missing: %v", table, err)
		}
	}
}

func TestUpsertAndGetChecksum(t *testing.T) {
	db := testDB(t)
	row := DocRow{
		Path:      "hello.md",
		Title:     "Hello World",
		Checksum:  "abc123",
		Tags:      []string{"go", "test"},
		UpdatedAt: time.Now(),
	}
	if err := db.UpsertDoc(row, "This is a hello world doc.", nil, []models.Link{docLink("hello.md", "other.md")}, nil); err != nil {
		t.Fatalf("UpsertDoc: %v", err)
	}
	cs, err := db.GetChecksum("hello.md")
	if err != nil {
		t.Fatalf("GetChecksum: %v", err)
	}
	if cs != "abc123" {
		t.Errorf("checksum = %q, want %q", cs, "abc123")
	}
}

func TestGetDoc(t *testing.T) {
	db := testDB(t)
	now := time.Now().UTC().Truncate(time.Second)
	row := DocRow{
		Path:        "get.md",
		Title:       "Get Me",
		Checksum:    "c1",
		Tags:        []string{"alpha"},
		Frontmatter: map[string]interface{}{"title": "Get Me", "owner": "platform"},
		UpdatedAt:   now,
	}
	if err := db.UpsertDoc(row, "body", nil, nil, nil); err != nil {
		t.Fatalf("UpsertDoc: %v", err)
	}

	got, err := db.GetDoc("get.md")
	if err != nil {
		t.Fatalf("GetDoc: %v", err)
	}
	if got == nil {
		t.Fatal("GetDoc returned nil for existing doc")
	}
	if got.Title != "Get Me" || got.Frontmatter["owner"] != "platform" {
		t.Errorf("row = %+v", got)
	}

	missing, err := db.GetDoc("nope.md")
	if err != nil {
		t.Fatalf("GetDoc(missing): %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for missing doc, got %+v", missing)
	}
}

func TestBacklinks(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertDoc(DocRow{Path: "a.md", Checksum: "1", UpdatedAt: time.Now()}, "body", nil, []models.Link{docLink("a.md", "b.md")}, nil)
	_ = db.UpsertDoc(DocRow{Path: "c.md", Checksum: "2", UpdatedAt: time.Now()}, "body", nil, []models.Link{docLink("c.md", "b.md")}, nil)

	bl, err := db.Backlinks("b.md")
	if err != nil {
		t.Fatalf("Backlinks: %v", err)
	}
	if len(bl) != 2 {
		t.Fatalf("expected 2 backlinks, got %d", len(bl))
	}
}

func TestDeleteDoc(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertDoc(DocRow{Path: "del.md", Checksum: "x", UpdatedAt: time.Now()}, "body",
		[]models.Heading{{Level: 1, Text: "T", Anchor: "t", Line: 1}},
		[]models.Link{docLink("del.md", "target.md")},
		[]models.Fence{{Lang: "go", Line: 3}})

	if err := db.DeleteDoc("del.md"); err != nil {
		t.Fatalf("DeleteDoc: %v", err)
	}
	cs, _ := db.GetChecksum("del.md")
	if cs != "" {
		t.Errorf("deleted doc still has checksum %q", cs)
	}
	bl, _ := db.Backlinks("target.md")
	if len(bl) != 0 {
		t.Errorf("expected 0 backlinks after delete, got %d", len(bl))
	}
	hs, _ := db.Headings("del.md")
	if len(hs) != 0 {
		t.Errorf("expected 0 headings after delete, got %d", len(hs))
	}
	fences, _ := db.AllFences()
	if len(fences["del.md"]) != 0 {
		t.Errorf("expected 0 fences after delete, got %d", len(fences["del.md"]))
	}
}

func TestUpsertUpdatesExisting(t *testing.T) {
	db := testDB(t)
	now := time.Now()
	_ = db.UpsertDoc(DocRow{Path: "up.md", Title: "Old", Checksum: "1", UpdatedAt: now}, "old body", nil, []models.Link{docLink("up.md", "x.md")}, nil)
	_ = db.UpsertDoc(DocRow{Path: "up.md", Title: "New", Checksum: "2", Tags: []string{"new"}, UpdatedAt: now}, "new body", nil, []models.Link{docLink("up.md", "y.md")}, nil)

	cs, _ := db.GetChecksum("up.md")
	if cs != "2" {
		t.Errorf("checksum = %q, want %q", cs, "2")
	}
	bl, _ := db.Backlinks("x.md")
	if len(bl) != 0 {
		t.Error("old link should be removed on upsert")
	}
	bl, _ = db.Backlinks("y.md")
	if len(bl) != 1 {
		t.Error("new link should exist")
	}
}

func TestExternalLinksNotStored(t *testing.T) {
	db := testDB(t)
	links := []models.Link{
		{Source: "e.md", Dest: "https://example.com", External: true, Kind: models.LinkKindInline, Line: 1},
		docLink("e.md", "in.md"),
	}
	_ = db.UpsertDoc(DocRow{Path: "e.md", Checksum: "1", UpdatedAt: time.Now()}, "body", nil, links, nil)

	all, err := db.AllLinks()
	if err != nil {
		t.Fatalf("AllLinks: %v", err)
	}
	if len(all) != 1 || all[0].Target != "in.md" {
		t.Errorf("links = %+v, want only the internal one", all)
	}
}

func TestGetChecksum_NotFound(t *testing.T) {
	db := testDB(t)
	cs, err := db.GetChecksum("nonexistent.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cs != "" {
		t.Errorf("expected empty checksum, got %q", cs)
	}
}

func TestListDocs_PagingAndTagFilter(t *testing.T) {
	db := testDB(t)
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	_ = db.UpsertDoc(DocRow{Path: "a.md", Title: "Alpha", Checksum: "1", Tags: []string{"go"}, UpdatedAt: base.Add(2 * time.Hour)}, "", nil, nil, nil)
	_ = db.UpsertDoc(DocRow{Path: "b.md", Title: "Beta", Checksum: "2", Tags: []string{"go", "react"}, UpdatedAt: base.Add(time.Hour)}, "", nil, nil, nil)
	_ = db.UpsertDoc(DocRow{Path: "c.md", Title: "Gamma", Checksum: "3", Tags: []string{"react"}, UpdatedAt: base}, "", nil, nil, nil)

	docs, total, err := db.ListDocs(2, 0, "", "")
	if err != nil {
		t.Fatalf("ListDocs: %v", err)
	}
	if total != 3 || len(docs) != 2 {
		t.Fatalf("total = %d, page = %d; want 3, 2", total, len(docs))
	}
	// Default sort is most recently updated first.
	if docs[0].Path != "a.md" {
		t.Errorf("first = %q, want a.md", docs[0].Path)
	}

	docs, total, err = db.ListDocs(10, 0, "react", "path")
	if err != nil {
		t.Fatalf("ListDocs(tag): %v", err)
	}
	if total != 2 || len(docs) != 2 || docs[0].Path != "b.md" || docs[1].Path != "c.md" {
		t.Errorf("tag filter results = %+v (total %d)", docs, total)
	}
}

func TestGraph(t *testing.T) {
	db := testDB(t)
	now := time.Now()
	_ = db.UpsertDoc(DocRow{Path: "a.md", Title: "A", Checksum: "1", UpdatedAt: now}, "", nil, []models.Link{docLink("a.md", "b.md"), docLink("a.md", "ghost.md")}, nil)
	_ = db.UpsertDoc(DocRow{Path: "b.md", Title: "B", Checksum: "2", UpdatedAt: now}, "", nil, nil, nil)

	nodes, links, err := db.Graph()
	if err != nil {
		t.Fatalf("Graph: %v", err)
	}
	if len(nodes) != 2 {
		t.Errorf("nodes = %d, want 2", len(nodes))
	}
	// Edge to ghost.md is dropped: the target is not indexed.
	if len(links) != 1 || links[0].Source != "a.md" || links[0].Target != "b.md" {
		t.Errorf("links = %+v, want single a.md->b.md", links)
	}
}

func TestHeadingsRoundTrip(t *testing.T) {
	db := testDB(t)
	hs := []models.Heading{
		{Level: 1, Text: "Title", Anchor: "title", Line: 1},
		{Level: 2, Text: "Usage", Anchor: "usage", Line: 5},
	}
	_ = db.UpsertDoc(DocRow{Path: "h.md", Checksum: "1", UpdatedAt: time.Now()}, "", hs, nil, nil)

	got, err := db.Headings("h.md")
	if err != nil {
		t.Fatalf("Headings: %v", err)
	}
	if len(got) != 2 || got[1].Anchor != "usage" || got[1].Line != 5 {
		t.Errorf("headings = %+v", got)
	}

	all, err := db.AllHeadings()
	if err != nil {
		t.Fatalf("AllHeadings: %v", err)
	}
	if len(all["h.md"]) != 2 {
		t.Errorf("AllHeadings[h.md] = %+v", all["h.md"])
	}
}

func TestAllFrontmatter(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertDoc(DocRow{
		Path: "fm.md", Checksum: "1", UpdatedAt: time.Now(),
		Frontmatter: map[string]interface{}{"title": "X", "tags": []interface{}{"a"}},
	}, "", nil, nil, nil)
	_ = db.UpsertDoc(DocRow{Path: "plain.md", Checksum: "2", UpdatedAt: time.Now()}, "", nil, nil, nil)

	all, err := db.AllFrontmatter()
	if err != nil {
		t.Fatalf("AllFrontmatter: %v", err)
	}
	if all["fm.md"]["title"] != "X" {
		t.Errorf("fm.md frontmatter = %+v", all["fm.md"])
	}
	if all["plain.md"] != nil {
		t.Errorf("plain.md frontmatter = %+v, want nil", all["plain.md"])
	}
}

func TestSearch_Basic(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertDoc(DocRow{Path: "s.md", Title: "Search Me", Checksum: "1", UpdatedAt: time.Now()}, "uniqueword appears here", nil, nil, nil)

	results, err := db.Search("uniqueword", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Path != "s.md" {
		t.Errorf("search results = %+v, want 1 hit for s.md", results)
	}
}
