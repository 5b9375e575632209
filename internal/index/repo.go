package index

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/starford/ansuz/internal/models"
)

// DocRow represents a row in the docs table.
type DocRow struct {
	Path        string
	Title       string
	Checksum    string
	Tags        []string
	Frontmatter map[string]interface{}
	UpdatedAt   time.Time
}

// SearchResult represents one search hit.
type SearchResult struct {
	Path    string
	Title   string
	Snippet string
}

// GraphNode is a document in the corpus graph.
type GraphNode struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// GraphLink is a resolved edge between two indexed documents.
type GraphLink struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// UpsertDoc inserts or replaces a document, its FTS entry, and its
// extracted links, headings, and fences within a transaction. External
// links are not stored; lint and the graph only deal in corpus files.
func (db *DB) UpsertDoc(d DocRow, body string, headings []models.Heading, links []models.Link, fences []models.Fence) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	tagsJSON, _ := json.Marshal(d.Tags)
	fmJSON, err := json.Marshal(d.Frontmatter)
	if err != nil {
		fmJSON = []byte("{}")
	}

	// Upsert docs table (includes body for fallback search).
	_, err = tx.Exec(`
		INSERT INTO docs (path, title, checksum, tags, frontmatter, body, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			title       = excluded.title,
			checksum    = excluded.checksum,
			tags        = excluded.tags,
			frontmatter = excluded.frontmatter,
			body        = excluded.body,
			updated_at  = excluded.updated_at
	`, d.Path, d.Title, d.Checksum, string(tagsJSON), string(fmJSON), body, d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert doc: %w", err)
	}

	// FTS upsert (no-op when the FTS5 tag is absent).
	if err := ftsUpsert(tx, d.Path, d.Title, body, d.Tags); err != nil {
		return err
	}

	// Replace extracted structure: delete old rows then bulk insert.
	_, _ = tx.Exec(`DELETE FROM links WHERE source = ?`, d.Path)
	if len(links) > 0 {
		stmt, err := tx.Prepare(`INSERT INTO links (source, dest, target, fragment, kind, line) VALUES (?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare link insert: %w", err)
		}
		defer stmt.Close()
		for _, l := range links {
			if l.External {
				continue
			}
			if _, err := stmt.Exec(d.Path, l.Dest, l.Target, l.Fragment, l.Kind, l.Line); err != nil {
				return fmt.Errorf("index: insert link: %w", err)
			}
		}
	}

	_, _ = tx.Exec(`DELETE FROM headings WHERE path = ?`, d.Path)
	if len(headings) > 0 {
		stmt, err := tx.Prepare(`INSERT INTO headings (path, level, text, anchor, line) VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare heading insert: %w", err)
		}
		defer stmt.Close()
		for _, h := range headings {
			if _, err := stmt.Exec(d.Path, h.Level, h.Text, h.Anchor, h.Line); err != nil {
				return fmt.Errorf("index: insert heading: %w", err)
			}
		}
	}

	_, _ = tx.Exec(`DELETE FROM fences WHERE path = ?`, d.Path)
	if len(fences) > 0 {
		stmt, err := tx.Prepare(`INSERT INTO fences (path, lang, line) VALUES (?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare fence insert: %w", err)
		}
		defer stmt.Close()
		for _, f := range fences {
			if _, err := stmt.Exec(d.Path, f.Lang, f.Line); err != nil {
				return fmt.Errorf("index: insert fence: %w", err)
			}
		}
	}

	return tx.Commit()
}

// DeleteDoc removes a document, its FTS entry, and its extracted rows.
func (db *DB) DeleteDoc(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, path)
	_, _ = tx.Exec(`DELETE FROM links WHERE source = ?`, path)
	_, _ = tx.Exec(`DELETE FROM headings WHERE path = ?`, path)
	_, _ = tx.Exec(`DELETE FROM fences WHERE path = ?`, path)
	_, _ = tx.Exec(`DELETE FROM docs WHERE path = ?`, path)

	return tx.Commit()
}

// GetChecksum returns the stored checksum for a document, or empty string
// if not found.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM docs WHERE path = ?`, path).Scan(&cs)
	if err != nil {
		return "", nil // not found is fine
	}
	return cs, nil
}

// GetDoc returns the indexed row for path, or nil if the document is not
// indexed.
func (db *DB) GetDoc(path string) (*DocRow, error) {
	row := db.conn.QueryRow(`
		SELECT path, title, checksum, tags, frontmatter, updated_at
		FROM docs WHERE path = ?
	`, path)
	d, err := scanDocRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("index: get doc: %w", err)
	}
	return d, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDocRow(r rowScanner) (*DocRow, error) {
	var d DocRow
	var tagsJSON, fmJSON string
	if err := r.Scan(&d.Path, &d.Title, &d.Checksum, &tagsJSON, &fmJSON, &d.UpdatedAt); err != nil {
		return nil, err
	}
	_ = json.Unmarshal([]byte(tagsJSON), &d.Tags)
	_ = json.Unmarshal([]byte(fmJSON), &d.Frontmatter)
	return &d, nil
}

// ListDocs returns a page of documents plus the total count. Sort accepts
// "updated" (default, newest first), "title", or "path". A non-empty tag
// filters to documents carrying it.
func (db *DB) ListDocs(limit, offset int, tag, sort string) ([]DocRow, int, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	orderBy := "updated_at DESC"
	switch sort {
	case "title":
		orderBy = "title COLLATE NOCASE ASC"
	case "path":
		orderBy = "path ASC"
	}

	where := ""
	args := []interface{}{}
	if tag != "" {
		// Tags are stored as a JSON array of strings; match the quoted
		// element to avoid substring false positives.
		where = `WHERE tags LIKE ?`
		args = append(args, `%"`+tag+`"%`)
	}

	var total int
	if err := db.conn.QueryRow(`SELECT count(*) FROM docs `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count docs: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT path, title, checksum, tags, frontmatter, updated_at
		FROM docs %s ORDER BY %s LIMIT ? OFFSET ?
	`, where, orderBy)
	rows, err := db.conn.Query(query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list docs: %w", err)
	}
	defer rows.Close()

	var out []DocRow
	for rows.Next() {
		d, err := scanDocRow(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *d)
	}
	return out, total, rows.Err()
}

// Graph returns every indexed document and the distinct resolved edges
// between them. Edges to missing files and self references are excluded.
func (db *DB) Graph() ([]GraphNode, []GraphLink, error) {
	nodeRows, err := db.conn.Query(`SELECT path, title FROM docs ORDER BY path`)
	if err != nil {
		return nil, nil, fmt.Errorf("index: graph nodes: %w", err)
	}
	defer nodeRows.Close()

	var nodes []GraphNode
	for nodeRows.Next() {
		var n GraphNode
		if err := nodeRows.Scan(&n.ID, &n.Title); err != nil {
			return nil, nil, err
		}
		nodes = append(nodes, n)
	}
	if err := nodeRows.Err(); err != nil {
		return nil, nil, err
	}

	edgeRows, err := db.conn.Query(`
		SELECT DISTINCT l.source, l.target
		FROM links l
		JOIN docs d ON d.path = l.target
		WHERE l.kind = 'inline' AND l.source != l.target
	`)
	if err != nil {
		return nil, nil, fmt.Errorf("index: graph edges: %w", err)
	}
	defer edgeRows.Close()

	var links []GraphLink
	for edgeRows.Next() {
		var l GraphLink
		if err := edgeRows.Scan(&l.Source, &l.Target); err != nil {
			return nil, nil, err
		}
		links = append(links, l)
	}
	return nodes, links, edgeRows.Err()
}

// Backlinks returns the distinct document paths that link to the target.
func (db *DB) Backlinks(target string) ([]string, error) {
	rows, err := db.conn.Query(`SELECT DISTINCT source FROM links WHERE target = ? ORDER BY source`, target)
	if err != nil {
		return nil, fmt.Errorf("index: backlinks: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Headings returns the headings of one document in document order.
func (db *DB) Headings(path string) ([]models.Heading, error) {
	rows, err := db.conn.Query(`SELECT level, text, anchor, line FROM headings WHERE path = ? ORDER BY line`, path)
	if err != nil {
		return nil, fmt.Errorf("index: headings: %w", err)
	}
	defer rows.Close()

	var out []models.Heading
	for rows.Next() {
		var h models.Heading
		if err := rows.Scan(&h.Level, &h.Text, &h.Anchor, &h.Line); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// AllHeadings returns every heading in the corpus keyed by document path.
func (db *DB) AllHeadings() (map[string][]models.Heading, error) {
	rows, err := db.conn.Query(`SELECT path, level, text, anchor, line FROM headings ORDER BY path, line`)
	if err != nil {
		return nil, fmt.Errorf("index: all headings: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]models.Heading)
	for rows.Next() {
		var p string
		var h models.Heading
		if err := rows.Scan(&p, &h.Level, &h.Text, &h.Anchor, &h.Line); err != nil {
			return nil, err
		}
		out[p] = append(out[p], h)
	}
	return out, rows.Err()
}

// AllLinks returns every stored link in the corpus.
func (db *DB) AllLinks() ([]models.Link, error) {
	rows, err := db.conn.Query(`SELECT source, dest, target, fragment, kind, line FROM links ORDER BY source, line`)
	if err != nil {
		return nil, fmt.Errorf("index: all links: %w", err)
	}
	defer rows.Close()

	var out []models.Link
	for rows.Next() {
		var l models.Link
		if err := rows.Scan(&l.Source, &l.Dest, &l.Target, &l.Fragment, &l.Kind, &l.Line); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// AllFences returns every fenced code block keyed by document path.
func (db *DB) AllFences() (map[string][]models.Fence, error) {
	rows, err := db.conn.Query(`SELECT path, lang, line FROM fences ORDER BY path, line`)
	if err != nil {
		return nil, fmt.Errorf("index: all fences: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]models.Fence)
	for rows.Next() {
		var p string
		var f models.Fence
		if err := rows.Scan(&p, &f.Lang, &f.Line); err != nil {
			return nil, err
		}
		out[p] = append(out[p], f)
	}
	return out, rows.Err()
}

// AllFrontmatter returns the parsed frontmatter of every document keyed
// by path. Documents without frontmatter map to nil.
func (db *DB) AllFrontmatter() (map[string]map[string]interface{}, error) {
	rows, err := db.conn.Query(`SELECT path, frontmatter FROM docs ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("index: all frontmatter: %w", err)
	}
	defer rows.Close()

	out := make(map[string]map[string]interface{})
	for rows.Next() {
		var p, fmJSON string
		if err := rows.Scan(&p, &fmJSON); err != nil {
			return nil, err
		}
		var fm map[string]interface{}
		_ = json.Unmarshal([]byte(fmJSON), &fm)
		if len(fm) == 0 {
			fm = nil
		}
		out[p] = fm
	}
	return out, rows.Err()
}

// AllPaths returns every indexed document path.
func (db *DB) AllPaths() (map[string]struct{}, error) {
	rows, err := db.conn.Query(`SELECT path FROM docs`)
	if err != nil {
		return nil, fmt.Errorf("index: all paths: %w", err)
	}
	defer rows.Close()
	out := make(map[string]struct{})
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		out[p] = struct{}{}
	}
	return out, rows.Err()
}

// AllChecksums returns path→checksum for every indexed document.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM docs`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}
