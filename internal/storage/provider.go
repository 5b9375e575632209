// Package storage defines the corpus file-system abstraction.
package storage

import "github.com/starford/ansuz/internal/models"

// Provider is the interface for corpus file operations. All paths are
// slash-separated and relative to the corpus root.
type Provider interface {
	// List returns metadata for every .md file under dir.
	List(dir string) ([]models.DocMeta, error)
	// ListAssets returns the paths of every non-Markdown regular file
	// under dir. Hidden directories are skipped.
	ListAssets(dir string) ([]string, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path.
	Write(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
	// Move renames oldPath to newPath.
	Move(oldPath, newPath string) error
	// Exists reports whether a regular file exists at path.
	Exists(path string) (bool, error)
}
