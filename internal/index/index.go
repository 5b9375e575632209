package index

import "github.com/starford/ansuz/internal/models"

// DocIndex defines the interface for document indexing operations.
// Consumers should depend on this interface rather than the concrete *DB
// type to facilitate testing with mocks.
type DocIndex interface {
	UpsertDoc(d DocRow, body string, headings []models.Heading, links []models.Link, fences []models.Fence) error
	DeleteDoc(path string) error
	GetChecksum(path string) (string, error)
	GetDoc(path string) (*DocRow, error)
	ListDocs(limit, offset int, tag, sort string) ([]DocRow, int, error)
	Search(query string, limit int) ([]SearchResult, error)
	Graph() ([]GraphNode, []GraphLink, error)
	Backlinks(target string) ([]string, error)
	Headings(path string) ([]models.Heading, error)
	AllHeadings() (map[string][]models.Heading, error)
	AllLinks() ([]models.Link, error)
	AllFences() (map[string][]models.Fence, error)
	AllFrontmatter() (map[string]map[string]interface{}, error)
	AllPaths() (map[string]struct{}, error)
	AllChecksums() (map[string]string, error)
	Close() error
}

// Verify *DB satisfies DocIndex at compile time.
var _ DocIndex = (*DB)(nil)
