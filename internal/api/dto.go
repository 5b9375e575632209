package api

import (
	"time"

	"github.com/starford/ansuz/internal/docservice"
	"github.com/starford/ansuz/internal/lint"
	"github.com/starford/ansuz/internal/models"
)

// CreateDocRequest is the request body for creating a document.
type CreateDocRequest struct {
	Path    string `json:"path" example:"go/errors.md" validate:"required"`
	Content string `json:"content" example:"# Errors\nWrap with context." validate:"required"`
}

// UpdateDocRequest is the request body for updating a document.
type UpdateDocRequest struct {
	Content string `json:"content" example:"# Updated\nContent" validate:"required"`
}

// DocDetail is the full document response type (aliased from the domain layer).
type DocDetail = docservice.DocDetail

// DocListItem is a lightweight item in a list response (aliased from the domain layer).
type DocListItem = docservice.DocListItem

// DocListResponse wraps paginated document listings.
type DocListResponse struct {
	Docs  []DocListItem `json:"docs" validate:"required"`
	Total int           `json:"total" example:"42" validate:"required"`
}

// SearchResult is a single search hit in the API response.
type SearchResult struct {
	Path    string `json:"path" example:"go/errors.md" validate:"required"`
	Title   string `json:"title" example:"Errors" validate:"required"`
	Snippet string `json:"snippet" example:"...matched text..." validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []SearchResult `json:"results" validate:"required"`
}

// GraphNode is a node in the corpus graph.
type GraphNode struct {
	ID    string `json:"id" example:"go/errors.md" validate:"required"`
	Title string `json:"title,omitempty" example:"Errors"`
}

// GraphLink is an edge in the corpus graph.
type GraphLink struct {
	Source string `json:"source" example:"go/errors.md" validate:"required"`
	Target string `json:"target" example:"go/context.md" validate:"required"`
}

// GraphResponse wraps the corpus graph.
type GraphResponse struct {
	Nodes []GraphNode `json:"nodes" validate:"required"`
	Links []GraphLink `json:"links" validate:"required"`
}

// BacklinksResponse wraps the paths linking to a document.
type BacklinksResponse struct {
	Path      string   `json:"path" example:"go/errors.md" validate:"required"`
	Backlinks []string `json:"backlinks" validate:"required"`
}

// LintResponse is the outcome of a lint run (aliased from the lint layer).
type LintResponse = lint.Report

// HistoryResponse wraps commit history for a document.
type HistoryResponse struct {
	Path    string              `json:"path" example:"go/errors.md" validate:"required"`
	Commits []models.CommitInfo `json:"commits" validate:"required"`
}

// AssetUploadResponse is returned after a successful asset upload.
type AssetUploadResponse struct {
	Filename string `json:"filename" example:"diagram.png" validate:"required"`
	Path     string `json:"path" example:"assets/diagram.png" validate:"required"`
	Size     int64  `json:"size" example:"12345" validate:"required"`
	Checksum string `json:"checksum" example:"abc123..." validate:"required"`
	URL      string `json:"url" example:"/assets/diagram.png" validate:"required"`
}

// DocListItemDTO mirrors DocListItem for swag.
type DocListItemDTO struct {
	Path      string    `json:"path" example:"go/errors.md"`
	Title     string    `json:"title" example:"Errors"`
	Checksum  string    `json:"checksum" example:"abc123..."`
	Tags      []string  `json:"tags" example:"go,style"`
	UpdatedAt time.Time `json:"updated_at"`
}
