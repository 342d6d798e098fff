package comver

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/go-git/go-git/v5/plumbing/storer"
)

// CommitIter is an oldest-first, single pass source of commits. Next returns
// io.EOF once the history is exhausted.
type CommitIter interface {
	Next() (*CommitRecord, error)
	Close()
}

// SliceCommitIter serves commits from memory
type SliceCommitIter struct {
	commits []*CommitRecord
	pos     int
}

// NewSliceCommitIter returns a CommitIter over commits, which must be oldest first
func NewSliceCommitIter(commits []*CommitRecord) *SliceCommitIter {
	return &SliceCommitIter{commits: commits}
}

func (it *SliceCommitIter) Next() (*CommitRecord, error) {
	if it.pos >= len(it.commits) {
		return nil, io.EOF
	}
	c := it.commits[it.pos]
	it.pos++
	return c, nil
}

func (it *SliceCommitIter) Close() {
	it.pos = len(it.commits)
}

// VersionCommitIter is the lazy result of Walk. Only commits that pass the
// filter and classify to a real bump are emitted.
type VersionCommitIter struct {
	history    CommitIter
	filter     FilterConfig
	classifier ClassifierConfig
	logger     *log.Logger

	current VersionCommit
	done    bool
}

// Walk threads a single accumulating version through history. Nothing is read
// until Next is called.
func Walk(history CommitIter, filter FilterConfig, classifier ClassifierConfig) *VersionCommitIter {
	return &VersionCommitIter{
		history:    history,
		filter:     filter,
		classifier: classifier,
		logger:     discardLogger(),
	}
}

// WithLogger sets the logger used for per-commit debug output
func (it *VersionCommitIter) WithLogger(logger *log.Logger) *VersionCommitIter {
	if logger != nil {
		it.logger = logger
	}
	return it
}

// Current returns the most recently emitted state, or the seed before the first emission
func (it *VersionCommitIter) Current() VersionCommit {
	return it.current
}

// Next advances to the next commit that bumps the version. It returns io.EOF
// when the history is exhausted; any other error ends the iteration.
func (it *VersionCommitIter) Next() (VersionCommit, error) {
	if it.done {
		return VersionCommit{}, io.EOF
	}

	for {
		commit, err := it.history.Next()
		if err == io.EOF {
			it.finish()
			return VersionCommit{}, io.EOF
		}
		if err != nil {
			it.finish()
			return VersionCommit{}, fmt.Errorf("reading history: %w", err)
		}

		if !Passes(commit, it.filter) {
			it.logger.Debug("commit filtered out", "sha", commit.Hash.String())
			continue
		}

		level, err := Classify(commit.Message, it.classifier)
		if err != nil {
			it.finish()
			return VersionCommit{}, fmt.Errorf("classifying commit %s: %w", commit.Hash, err)
		}
		if level == BumpNone {
			it.logger.Debug("commit does not bump", "sha", commit.Hash.String())
			continue
		}

		it.current = VersionCommit{
			Version: it.current.Version.Bump(level),
			Commit:  commit.Hash,
		}
		it.logger.Debug("version bumped", "sha", commit.Hash.String(), "level", level, "version", it.current.Version)

		return it.current, nil
	}
}

// ForEach calls cb for every emitted state. Returning storer.ErrStop from cb
// ends the iteration without error.
func (it *VersionCommitIter) ForEach(cb func(VersionCommit) error) error {
	defer it.Close()

	for {
		vc, err := it.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		if err := cb(vc); err != nil {
			if errors.Is(err, storer.ErrStop) {
				return nil
			}
			return err
		}
	}
}

// Last drains the iterator and returns the final state. If no commit bumped
// the version the seed state is returned.
func (it *VersionCommitIter) Last() (VersionCommit, error) {
	err := it.ForEach(func(VersionCommit) error { return nil })
	if err != nil {
		return VersionCommit{}, err
	}
	return it.current, nil
}

// Collect drains the iterator and retains every emitted state
func (it *VersionCommitIter) Collect() ([]VersionCommit, error) {
	var out []VersionCommit
	err := it.ForEach(func(vc VersionCommit) error {
		out = append(out, vc)
		return nil
	})
	return out, err
}

// Close releases the underlying history. It is safe to call more than once.
func (it *VersionCommitIter) Close() {
	it.finish()
}

func (it *VersionCommitIter) finish() {
	if it.done {
		return
	}
	it.done = true
	it.history.Close()
}

func discardLogger() *log.Logger {
	return log.New(io.Discard)
}
