package comver

import (
	"fmt"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/memory"
)

var testSignature = &object.Signature{
	Name:  "test",
	Email: "test@example.com",
	When:  time.Now(),
}

// testRepoCreate creates a new in-memory git repository for testing
func testRepoCreate() (*git.Repository, error) {
	storage := memory.NewStorage()
	fs := memfs.New()
	return git.Init(storage, fs)
}

// testCommit describes one commit to create in a test repository
type testCommit struct {
	message string
	author  *object.Signature
	files   map[string]string
}

// testRepoCommit writes files, stages them and commits with the given message.
// A commit without files is created as an empty commit.
func testRepoCommit(repo *git.Repository, c testCommit) (plumbing.Hash, error) {
	workTree, err := repo.Worktree()
	if err != nil {
		return plumbing.ZeroHash, err
	}

	for name, content := range c.files {
		if err := writeFile(workTree.Filesystem, name, content); err != nil {
			return plumbing.ZeroHash, err
		}
		if _, err := workTree.Add(name); err != nil {
			return plumbing.ZeroHash, err
		}
	}

	author := c.author
	if author == nil {
		author = testSignature
	}

	return workTree.Commit(c.message, &git.CommitOptions{
		Author:            author,
		AllowEmptyCommits: len(c.files) == 0,
	})
}

// testRepoWithMessages creates one commit per message, each rewriting
// file.txt, and returns the hashes oldest first
func testRepoWithMessages(repo *git.Repository, messages []string) ([]plumbing.Hash, error) {
	hashes := make([]plumbing.Hash, 0, len(messages))
	for i, message := range messages {
		hash, err := testRepoCommit(repo, testCommit{
			message: message,
			files:   map[string]string{"file.txt": fmt.Sprintf("%d: %s", i, message)},
		})
		if err != nil {
			return nil, err
		}
		hashes = append(hashes, hash)
	}
	return hashes, nil
}

// writeFile writes content to a file in the given filesystem
func writeFile(fs billy.Filesystem, filename, content string) error {
	file, err := fs.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = file.Write([]byte(content))
	return err
}
