// Package history exposes the git log of corpus documents. The corpus
// may be the repository root or any directory inside a repository; paths
// are translated to repository-relative before querying.
package history

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/models"
)

// Service answers history queries against one repository.
type Service struct {
	repo   *git.Repository
	prefix string // corpus location relative to the worktree root
}

// Open locates the repository containing corpusRoot. A corpus outside
// any repository yields apperr.ErrNoRepository; callers usually treat
// that as "history unavailable" rather than a failure.
func Open(corpusRoot string) (*Service, error) {
	abs, err := filepath.Abs(corpusRoot)
	if err != nil {
		return nil, fmt.Errorf("history: resolve root: %w", err)
	}
	repo, err := git.PlainOpenWithOptions(abs, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("history: %s: %w", abs, apperr.ErrNoRepository)
		}
		return nil, fmt.Errorf("history: open repository: %w", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("history: worktree: %w", err)
	}
	rel, err := filepath.Rel(wt.Filesystem.Root(), abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return nil, fmt.Errorf("history: corpus is outside the worktree: %s", abs)
	}
	prefix := filepath.ToSlash(rel)
	if prefix == "." {
		prefix = ""
	}
	return &Service{repo: repo, prefix: prefix}, nil
}

// Log returns up to limit commits touching the document, newest first.
func (s *Service) Log(ctx context.Context, docPath string, limit int) ([]models.CommitInfo, error) {
	if limit <= 0 {
		limit = 20
	}
	target := docPath
	if s.prefix != "" {
		target = path.Join(s.prefix, docPath)
	}

	iter, err := s.repo.Log(&git.LogOptions{FileName: &target})
	if err != nil {
		return nil, fmt.Errorf("history: log %s: %w", docPath, err)
	}
	defer iter.Close()

	var out []models.CommitInfo
	err = iter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if len(out) >= limit {
			return storer.ErrStop
		}
		out = append(out, toCommitInfo(c))
		return nil
	})
	if err != nil && !errors.Is(err, storer.ErrStop) {
		return nil, fmt.Errorf("history: iterate %s: %w", docPath, err)
	}
	return out, nil
}

func toCommitInfo(c *object.Commit) models.CommitInfo {
	hash := c.Hash.String()
	return models.CommitInfo{
		Hash:      hash,
		ShortHash: hash[:7],
		Author:    c.Author.Name,
		Email:     c.Author.Email,
		Message:   strings.TrimSpace(c.Message),
		When:      c.Author.When,
	}
}
