// Package comver derives semantic versions from conventional commit history.
//
// Repository handling is adapted from vers (https://github.com/jaxxstorm/vers)
// and pulumictl (https://github.com/pulumi/pulumictl), licensed under the
// Apache License 2.0.
package comver

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// OpenRepository opens a Git repository at the specified path
func OpenRepository(path string) (*git.Repository, error) {
	return git.PlainOpenWithOptions(path, &git.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
}

// gitHistory yields commits reachable from a revision, oldest first. Only
// hashes are held up front; commit objects and their diffs are loaded on
// demand.
type gitHistory struct {
	repo   *git.Repository
	hashes []plumbing.Hash
	pos    int
}

// NewHistory returns the commits reachable from commitish, oldest first. A
// repository without commits yields an empty history when commitish is HEAD.
func NewHistory(repo *git.Repository, commitish plumbing.Revision) (CommitIter, error) {
	if commitish == "" {
		commitish = "HEAD"
	}

	if commitish == "HEAD" {
		if _, err := repo.Head(); errors.Is(err, plumbing.ErrReferenceNotFound) {
			return NewSliceCommitIter(nil), nil
		}
	}

	revision, err := repo.ResolveRevision(commitish)
	if err != nil {
		return nil, fmt.Errorf("resolving commitish: %w", err)
	}

	commits, err := repo.Log(&git.LogOptions{From: *revision})
	if err != nil {
		return nil, fmt.Errorf("reading log: %w", err)
	}
	defer commits.Close()

	var hashes []plumbing.Hash
	err = commits.ForEach(func(c *object.Commit) error {
		hashes = append(hashes, c.Hash)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking log: %w", err)
	}

	return &gitHistory{repo: repo, hashes: hashes, pos: len(hashes)}, nil
}

func (h *gitHistory) Next() (*CommitRecord, error) {
	if h.pos == 0 {
		return nil, io.EOF
	}
	h.pos--

	commit, err := h.repo.CommitObject(h.hashes[h.pos])
	if err != nil {
		return nil, fmt.Errorf("getting commit object: %w", err)
	}

	paths, err := changedPaths(commit)
	if err != nil {
		return nil, fmt.Errorf("diffing commit %s: %w", commit.Hash, err)
	}

	return &CommitRecord{
		Hash:        commit.Hash,
		Message:     commit.Message,
		AuthorName:  commit.Author.Name,
		AuthorEmail: commit.Author.Email,
		Paths:       paths,
	}, nil
}

func (h *gitHistory) Close() {
	h.pos = 0
	h.hashes = nil
}

// changedPaths lists the files touched by commit relative to its first
// parent, or to the empty tree for a root commit. Both sides of a rename are
// included.
func changedPaths(commit *object.Commit) ([]string, error) {
	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("getting tree: %w", err)
	}

	var parentTree *object.Tree
	if commit.NumParents() > 0 {
		parent, err := commit.Parent(0)
		if err != nil {
			return nil, fmt.Errorf("getting parent: %w", err)
		}
		parentTree, err = parent.Tree()
		if err != nil {
			return nil, fmt.Errorf("getting parent tree: %w", err)
		}
	}

	changes, err := object.DiffTree(parentTree, tree)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(changes))
	for _, change := range changes {
		for _, name := range []string{change.From.Name, change.To.Name} {
			if name != "" {
				seen[name] = struct{}{}
			}
		}
	}

	paths := make([]string, 0, len(seen))
	for name := range seen {
		paths = append(paths, name)
	}
	sort.Strings(paths)

	return paths, nil
}
