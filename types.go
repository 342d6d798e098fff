// Package comver derives semantic versions from conventional commit history.
package comver

import (
	"github.com/charmbracelet/log"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// CommitRecord is a read-only view of one commit as supplied by a history reader
type CommitRecord struct {
	Hash        plumbing.Hash
	Message     string
	AuthorName  string
	AuthorEmail string

	// Paths are the files changed relative to the first parent
	Paths []string
}

// VersionCommit pairs an accumulated version with the commit that produced it.
// Commit is the zero hash for the seed state.
type VersionCommit struct {
	Version Version
	Commit  plumbing.Hash
}

// HasCommit reports whether vc originates from a commit rather than the seed
func (vc VersionCommit) HasCommit() bool {
	return !vc.Commit.IsZero()
}

// CalculateOptions configures version calculation for a repository
type CalculateOptions struct {
	// Repository is the Git repository to analyze
	Repository *git.Repository

	// Commitish specifies which commit to analyze (default: "HEAD")
	Commitish plumbing.Revision

	// ConfigPath points at an explicit TOML configuration file. When empty
	// the repository root is searched.
	ConfigPath string

	// Options overrides file based configuration when non-nil
	Options *Options

	// Logger receives debug output; nil discards it
	Logger *log.Logger
}
