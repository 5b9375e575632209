package lint

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/ansuz/internal/index"
	"github.com/starford/ansuz/internal/storage"
)

// lintEnv writes files into a temp corpus, syncs the index, and returns
// the pieces a Runner needs.
func lintEnv(t *testing.T, files map[string]string) (*index.DB, *storage.FS) {
	t.Helper()
	dir := t.TempDir()
	for path, content := range files {
		full := filepath.Join(dir, filepath.FromSlash(path))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}

	dbFile, err := os.CreateTemp("", "ansuz-lint-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })
	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	if err := index.Sync(db, store, logger); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	return db, store
}

func runLint(t *testing.T, db *index.DB, store *storage.FS, opts Options) *Report {
	t.Helper()
	r, err := NewRunner(db, store, opts)
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	report, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return report
}

func byRule(r *Report, rule string) []Issue {
	var out []Issue
	for _, i := range r.Issues {
		if i.Rule == rule {
			out = append(out, i)
		}
	}
	return out
}

func TestRun_CleanCorpus(t *testing.T) {
	db, store := lintEnv(t, map[string]string{
		"guides/a.md": "---\ntitle: A\n---\n# A\n\nSee [b](./b.md) and [intro](./b.md#b).\n\n```go\nfunc main() {}\n```\n",
		"guides/b.md": "---\ntitle: B\n---\n# B\n\nBack to [a](./a.md).\n",
	})
	report := runLint(t, db, store, Options{})
	if len(report.Issues) != 0 {
		t.Errorf("expected no issues, got %+v", report.Issues)
	}
	if !report.Clean() {
		t.Error("Clean() = false for clean corpus")
	}
	if report.Docs != 2 {
		t.Errorf("Docs = %d, want 2", report.Docs)
	}
}

func TestRun_BrokenLinks(t *testing.T) {
	db, store := lintEnv(t, map[string]string{
		"a.md": "# A\n\n[gone](./missing.md)\n\n[bad anchor](./b.md#nope)\n\n![img](./shot.png)\n\n[out](../escape.md)\n",
		"b.md": "# B\n",
	})
	report := runLint(t, db, store, Options{})

	broken := byRule(report, RuleBrokenLink)
	if len(broken) != 4 {
		t.Fatalf("broken-link issues = %d, want 4: %+v", len(broken), broken)
	}
	for _, i := range broken {
		if i.Severity != SeverityError {
			t.Errorf("severity = %q, want error", i.Severity)
		}
		if i.Path != "a.md" {
			t.Errorf("path = %q, want a.md", i.Path)
		}
	}
	if broken[0].Line != 3 || !strings.Contains(broken[0].Message, "missing.md") {
		t.Errorf("issue[0] = %+v", broken[0])
	}
	if !strings.Contains(broken[1].Message, "#nope") {
		t.Errorf("issue[1] = %+v", broken[1])
	}
	if !strings.Contains(broken[2].Message, "shot.png") {
		t.Errorf("issue[2] = %+v", broken[2])
	}
	if !strings.Contains(broken[3].Message, "outside the corpus") {
		t.Errorf("issue[3] = %+v", broken[3])
	}
	if report.Errors != 4 {
		t.Errorf("Errors = %d, want 4", report.Errors)
	}
}

func TestRun_AssetLinkResolves(t *testing.T) {
	db, store := lintEnv(t, map[string]string{
		"doc.md":          "# D\n\n![logo](assets/logo.png)\n",
		"assets/logo.png": "\x89PNG",
	})
	report := runLint(t, db, store, Options{})
	if len(byRule(report, RuleBrokenLink)) != 0 {
		t.Errorf("asset link should resolve: %+v", report.Issues)
	}
}

func TestRun_FenceLanguages(t *testing.T) {
	db, store := lintEnv(t, map[string]string{
		"f.md": "# F\n\n```\nbare\n```\n\n```klingon\nqapla\n```\n\n```TypeScript\nok\n```\n",
	})
	report := runLint(t, db, store, Options{})

	fences := byRule(report, RuleFenceLanguage)
	if len(fences) != 2 {
		t.Fatalf("fence-language issues = %d, want 2: %+v", len(fences), fences)
	}
	if !strings.Contains(fences[0].Message, "no language tag") {
		t.Errorf("issue[0] = %+v", fences[0])
	}
	if !strings.Contains(fences[1].Message, "klingon") {
		t.Errorf("issue[1] = %+v", fences[1])
	}
	for _, i := range fences {
		if i.Severity != SeverityWarning {
			t.Errorf("severity = %q, want warning", i.Severity)
		}
	}
}

func TestRun_ExtraLanguages(t *testing.T) {
	db, store := lintEnv(t, map[string]string{
		"f.md": "# F\n\n```klingon\nqapla\n```\n",
	})
	report := runLint(t, db, store, Options{ExtraLanguages: []string{"Klingon"}})
	if len(byRule(report, RuleFenceLanguage)) != 0 {
		t.Errorf("extra language should be recognized: %+v", report.Issues)
	}
}

func TestRun_DuplicateHeadings(t *testing.T) {
	db, store := lintEnv(t, map[string]string{
		"d.md": "# D\n\n## Setup\n\ntext\n\n## Setup\n\n## Teardown\n",
	})
	report := runLint(t, db, store, Options{})

	dups := byRule(report, RuleDuplicateHeading)
	if len(dups) != 1 {
		t.Fatalf("duplicate-heading issues = %d, want 1: %+v", len(dups), dups)
	}
	if dups[0].Line != 7 || !strings.Contains(dups[0].Message, "first at line 3") {
		t.Errorf("issue = %+v", dups[0])
	}
}

func TestRun_FrontmatterSchema(t *testing.T) {
	schema := `{
		"$schema": "https://json-schema.org/draft/2020-12/schema",
		"type": "object",
		"required": ["title"],
		"properties": {
			"title": {"type": "string"},
			"tags": {"type": "array", "items": {"type": "string"}}
		}
	}`
	schemaPath := filepath.Join(t.TempDir(), "frontmatter.schema.json")
	if err := os.WriteFile(schemaPath, []byte(schema), 0o644); err != nil {
		t.Fatal(err)
	}

	db, store := lintEnv(t, map[string]string{
		"ok.md":      "---\ntitle: Fine\ntags: [go]\n---\n# Fine\n",
		"notitle.md": "# No Frontmatter\n",
		"badtags.md": "---\ntitle: Bad\ntags: [1, 2]\n---\n# Bad\n",
	})
	report := runLint(t, db, store, Options{SchemaPath: schemaPath})

	schemaIssues := byRule(report, RuleFrontmatterSchema)
	if len(schemaIssues) < 2 {
		t.Fatalf("frontmatter-schema issues = %d, want >= 2: %+v", len(schemaIssues), schemaIssues)
	}
	var sawMissingTitle, sawBadTags bool
	for _, i := range schemaIssues {
		if i.Path == "ok.md" {
			t.Errorf("ok.md should pass schema: %+v", i)
		}
		if i.Path == "notitle.md" {
			sawMissingTitle = true
		}
		if i.Path == "badtags.md" {
			sawBadTags = true
		}
		if i.Severity != SeverityError {
			t.Errorf("severity = %q, want error", i.Severity)
		}
	}
	if !sawMissingTitle || !sawBadTags {
		t.Errorf("missing expected schema findings: %+v", schemaIssues)
	}
}

func TestRun_SchemaFileMissing(t *testing.T) {
	db, store := lintEnv(t, map[string]string{"a.md": "# A\n"})
	if _, err := NewRunner(db, store, Options{SchemaPath: "/nope/schema.json"}); err == nil {
		t.Error("expected error for missing schema file")
	}
}

func TestIssueString(t *testing.T) {
	i := Issue{Path: "a.md", Line: 12, Rule: RuleBrokenLink, Severity: SeverityError, Message: "link \"./x.md\" points to missing document x.md"}
	want := `a.md:12: [broken-link] link "./x.md" points to missing document x.md`
	if got := i.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
