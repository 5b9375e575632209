// Package lint checks corpus documents for broken cross-references,
// unrecognized code fence languages, duplicate headings, and frontmatter
// schema violations.
package lint

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/starford/ansuz/internal/index"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/parser"
	"github.com/starford/ansuz/internal/storage"
)

// Severity of a lint issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Rule names, used in issue output and for filtering.
const (
	RuleBrokenLink        = "broken-link"
	RuleFenceLanguage     = "fence-language"
	RuleDuplicateHeading  = "duplicate-heading"
	RuleFrontmatterSchema = "frontmatter-schema"
)

// Issue is a single finding in one document.
type Issue struct {
	Path     string   `json:"path"`
	Line     int      `json:"line"`
	Rule     string   `json:"rule"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// String formats the issue the way compilers do: path:line: message.
func (i Issue) String() string {
	return fmt.Sprintf("%s:%d: [%s] %s", i.Path, i.Line, i.Rule, i.Message)
}

// Report is the outcome of linting the whole corpus.
type Report struct {
	Issues   []Issue `json:"issues"`
	Errors   int     `json:"errors"`
	Warnings int     `json:"warnings"`
	Docs     int     `json:"docs"`
}

// Clean reports whether the corpus has no errors. Warnings do not fail a
// check run.
func (r *Report) Clean() bool {
	return r.Errors == 0
}

// Options configures a Runner.
type Options struct {
	// ExtraLanguages extends the recognized code fence language set.
	ExtraLanguages []string
	// SchemaPath points at a JSON Schema file for frontmatter validation.
	// Empty disables the frontmatter-schema rule.
	SchemaPath string
}

// Runner executes all lint rules against the index. Asset targets are
// checked against storage since only Markdown files are indexed.
type Runner struct {
	db     *index.DB
	store  storage.Provider
	langs  map[string]struct{}
	schema *frontmatterSchema
}

// NewRunner builds a Runner. The frontmatter schema (if configured) is
// compiled once here so Run can be called repeatedly.
func NewRunner(db *index.DB, store storage.Provider, opts Options) (*Runner, error) {
	langs := make(map[string]struct{}, len(defaultLanguages)+len(opts.ExtraLanguages))
	for _, l := range defaultLanguages {
		langs[l] = struct{}{}
	}
	for _, l := range opts.ExtraLanguages {
		langs[strings.ToLower(strings.TrimSpace(l))] = struct{}{}
	}

	r := &Runner{db: db, store: store, langs: langs}
	if opts.SchemaPath != "" {
		schema, err := loadFrontmatterSchema(opts.SchemaPath)
		if err != nil {
			return nil, fmt.Errorf("lint: load schema: %w", err)
		}
		r.schema = schema
	}
	return r, nil
}

// Run executes every rule and returns the aggregated report. Issues are
// sorted by path, then line.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	paths, err := r.db.AllPaths()
	if err != nil {
		return nil, err
	}
	headings, err := r.db.AllHeadings()
	if err != nil {
		return nil, err
	}
	links, err := r.db.AllLinks()
	if err != nil {
		return nil, err
	}
	fences, err := r.db.AllFences()
	if err != nil {
		return nil, err
	}

	report := &Report{Docs: len(paths)}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	report.Issues = append(report.Issues, r.checkLinks(paths, headings, links)...)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	report.Issues = append(report.Issues, r.checkFences(fences)...)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	report.Issues = append(report.Issues, r.checkDuplicateHeadings(headings)...)

	if r.schema != nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		frontmatter, err := r.db.AllFrontmatter()
		if err != nil {
			return nil, err
		}
		report.Issues = append(report.Issues, r.schema.check(frontmatter)...)
	}

	sort.Slice(report.Issues, func(i, j int) bool {
		a, b := report.Issues[i], report.Issues[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Rule < b.Rule
	})
	for _, is := range report.Issues {
		if is.Severity == SeverityError {
			report.Errors++
		} else {
			report.Warnings++
		}
	}
	return report, nil
}

// checkLinks validates every internal link: the target file must exist,
// and when a fragment is present the target must expose that anchor.
func (r *Runner) checkLinks(paths map[string]struct{}, headings map[string][]models.Heading, links []models.Link) []Issue {
	anchors := make(map[string]map[string]struct{}, len(headings))
	for p, hs := range headings {
		set := make(map[string]struct{}, len(hs))
		for _, h := range hs {
			set[h.Anchor] = struct{}{}
		}
		anchors[p] = set
	}

	var issues []Issue
	for _, l := range links {
		if l.External {
			continue
		}
		if l.Target == ".." || strings.HasPrefix(l.Target, "../") {
			issues = append(issues, Issue{
				Path: l.Source, Line: l.Line, Rule: RuleBrokenLink, Severity: SeverityError,
				Message: fmt.Sprintf("link %q resolves outside the corpus", l.Dest),
			})
			continue
		}

		if strings.HasSuffix(l.Target, ".md") {
			if _, ok := paths[l.Target]; !ok {
				issues = append(issues, Issue{
					Path: l.Source, Line: l.Line, Rule: RuleBrokenLink, Severity: SeverityError,
					Message: fmt.Sprintf("link %q points to missing document %s", l.Dest, l.Target),
				})
				continue
			}
			if l.Fragment != "" {
				if _, ok := anchors[l.Target][l.Fragment]; !ok {
					issues = append(issues, Issue{
						Path: l.Source, Line: l.Line, Rule: RuleBrokenLink, Severity: SeverityError,
						Message: fmt.Sprintf("anchor #%s not found in %s", l.Fragment, l.Target),
					})
				}
			}
			continue
		}

		// Asset target: not indexed, ask storage.
		exists, err := r.store.Exists(l.Target)
		if err != nil || !exists {
			issues = append(issues, Issue{
				Path: l.Source, Line: l.Line, Rule: RuleBrokenLink, Severity: SeverityError,
				Message: fmt.Sprintf("link %q points to missing file %s", l.Dest, l.Target),
			})
		}
	}
	return issues
}

// checkFences flags fences without a language tag and fences whose tag is
// not in the recognized set.
func (r *Runner) checkFences(fences map[string][]models.Fence) []Issue {
	var issues []Issue
	for path, fs := range fences {
		for _, f := range fs {
			lang := strings.ToLower(strings.TrimSpace(f.Lang))
			if lang == "" {
				issues = append(issues, Issue{
					Path: path, Line: f.Line, Rule: RuleFenceLanguage, Severity: SeverityWarning,
					Message: "fenced code block has no language tag",
				})
				continue
			}
			if _, ok := r.langs[lang]; !ok {
				issues = append(issues, Issue{
					Path: path, Line: f.Line, Rule: RuleFenceLanguage, Severity: SeverityWarning,
					Message: fmt.Sprintf("unrecognized code fence language %q", f.Lang),
				})
			}
		}
	}
	return issues
}

// checkDuplicateHeadings flags headings that collapse to the same anchor
// slug within one document. The second and later occurrences are
// reported; rendered anchors disambiguate them with numeric suffixes, but
// hand-written fragment links almost always intend the first.
func (r *Runner) checkDuplicateHeadings(headings map[string][]models.Heading) []Issue {
	var issues []Issue
	for path, hs := range headings {
		first := make(map[string]int, len(hs))
		for _, h := range hs {
			slug := parser.Slug(h.Text)
			if slug == "" {
				continue
			}
			if line, dup := first[slug]; dup {
				issues = append(issues, Issue{
					Path: path, Line: h.Line, Rule: RuleDuplicateHeading, Severity: SeverityWarning,
					Message: fmt.Sprintf("duplicate heading %q (first at line %d)", h.Text, line),
				})
				continue
			}
			first[slug] = h.Line
		}
	}
	return issues
}
