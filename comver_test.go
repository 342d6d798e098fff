package comver

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

func TestNewCalculator(t *testing.T) {
	t.Run("Repository is required", func(t *testing.T) {
		_, err := NewCalculator(CalculateOptions{})
		require.Error(t, err)
		require.Contains(t, err.Error(), "repository is required")
	})

	t.Run("Invalid pattern fails before the walk", func(t *testing.T) {
		repo, err := testRepoCreate()
		require.NoError(t, err)

		_, err = NewCalculator(CalculateOptions{
			Repository: repo,
			Options:    &Options{PathIncludes: []string{"(("}},
		})
		require.ErrorIs(t, err, ErrInvalidPattern)
		require.Contains(t, err.Error(), "path_includes")
	})

	t.Run("Configuration from the worktree", func(t *testing.T) {
		repo, err := testRepoCreate()
		require.NoError(t, err)
		workTree, err := repo.Worktree()
		require.NoError(t, err)
		require.NoError(t, writeFile(workTree.Filesystem, ".comver.toml", `minor_regexes = ["^feature"]`))

		calc, err := NewCalculator(CalculateOptions{Repository: repo})
		require.NoError(t, err)
		require.Equal(t, ".comver.toml", calc.ConfigFile())
		require.Equal(t, []string{"^feature"}, calc.Config().Classifier.Minor.Strings())
	})

	t.Run("Unknown key in the worktree configuration", func(t *testing.T) {
		repo, err := testRepoCreate()
		require.NoError(t, err)
		workTree, err := repo.Worktree()
		require.NoError(t, err)
		require.NoError(t, writeFile(workTree.Filesystem, "comver.toml", `minor_regex = ["^feature"]`))

		_, err = NewCalculator(CalculateOptions{Repository: repo})
		require.ErrorIs(t, err, ErrUnknownOption)
		require.Contains(t, err.Error(), "loading configuration")
	})

	t.Run("Explicit options override the worktree", func(t *testing.T) {
		repo, err := testRepoCreate()
		require.NoError(t, err)
		workTree, err := repo.Worktree()
		require.NoError(t, err)
		require.NoError(t, writeFile(workTree.Filesystem, ".comver.toml", `minor_regexes = ["^feature"]`))

		calc, err := NewCalculator(CalculateOptions{Repository: repo, Options: &Options{}})
		require.NoError(t, err)
		require.Empty(t, calc.ConfigFile())
		require.Equal(t, DefaultMinorRegexes, calc.Config().Classifier.Minor.Strings())
	})

	t.Run("Explicit configuration path", func(t *testing.T) {
		repo, err := testRepoCreate()
		require.NoError(t, err)

		dir := t.TempDir()
		path := filepath.Join(dir, "versioning.toml")
		require.NoError(t, os.WriteFile(path, []byte(`author_name_excludes = ["bot"]`), 0o644))

		calc, err := NewCalculator(CalculateOptions{Repository: repo, ConfigPath: path})
		require.NoError(t, err)
		require.Equal(t, "versioning.toml", calc.ConfigFile())
		require.Equal(t, []string{"bot"}, calc.Config().Filter.AuthorName.Excludes.Strings())
	})
}

func TestCalculate(t *testing.T) {
	t.Run("Empty repository is the seed", func(t *testing.T) {
		repo, err := testRepoCreate()
		require.NoError(t, err)

		current, err := Calculate(CalculateOptions{Repository: repo})
		require.NoError(t, err)
		require.Equal(t, Zero(), current.Version)
		require.False(t, current.HasCommit())
	})

	t.Run("Fixes bump the patch component", func(t *testing.T) {
		for _, n := range []int{1, 3, 7} {
			repo, err := testRepoCreate()
			require.NoError(t, err)

			messages := make([]string, n)
			for i := range messages {
				messages[i] = fmt.Sprintf("fix: change %d", i)
			}
			hashes, err := testRepoWithMessages(repo, messages)
			require.NoError(t, err)

			current, err := Calculate(CalculateOptions{Repository: repo})
			require.NoError(t, err)
			require.Equal(t, Version{Patch: uint64(n)}, current.Version)
			require.Equal(t, hashes[n-1], current.Commit)
		}
	})

	t.Run("Breaking fix is a major bump", func(t *testing.T) {
		repo, err := testRepoCreate()
		require.NoError(t, err)
		_, err = testRepoWithMessages(repo, []string{"fix!: drop support"})
		require.NoError(t, err)

		current, err := Calculate(CalculateOptions{Repository: repo})
		require.NoError(t, err)
		require.Equal(t, Version{Major: 1}, current.Version)
	})

	t.Run("Mixed history", func(t *testing.T) {
		repo, err := testRepoCreate()
		require.NoError(t, err)
		hashes, err := testRepoWithMessages(repo, []string{
			"feat: initial",
			"fix: typo",
			"docs: readme",
			"feat(api): endpoint",
			"chore: deps",
		})
		require.NoError(t, err)

		current, err := Calculate(CalculateOptions{Repository: repo})
		require.NoError(t, err)
		require.Equal(t, MustParseVersion("0.2.0"), current.Version)
		require.Equal(t, hashes[3], current.Commit)
	})

	t.Run("Commitish selects an earlier state", func(t *testing.T) {
		repo, err := testRepoCreate()
		require.NoError(t, err)
		hashes, err := testRepoWithMessages(repo, []string{"feat: a", "fix: b", "feat!: c"})
		require.NoError(t, err)

		current, err := Calculate(CalculateOptions{
			Repository: repo,
			Commitish:  plumbing.Revision(hashes[1].String()),
		})
		require.NoError(t, err)
		require.Equal(t, MustParseVersion("0.1.1"), current.Version)
	})

	t.Run("Excluding every author yields the seed", func(t *testing.T) {
		repo, err := testRepoCreate()
		require.NoError(t, err)

		for i, name := range []string{"Alice", "Bob", "Alice"} {
			_, err = testRepoCommit(repo, testCommit{
				message: "feat: by " + name,
				author:  &object.Signature{Name: name, Email: name + "@example.com", When: time.Now()},
				files:   map[string]string{"file.txt": fmt.Sprint(i)},
			})
			require.NoError(t, err)
		}

		current, err := Calculate(CalculateOptions{
			Repository: repo,
			Options:    &Options{AuthorNameExcludes: []string{"Alice", "Bob"}},
		})
		require.NoError(t, err)
		require.Equal(t, Zero(), current.Version)

		current, err = Calculate(CalculateOptions{
			Repository: repo,
			Options:    &Options{AuthorEmailExcludes: []string{"^Bob@"}},
		})
		require.NoError(t, err)
		require.Equal(t, MustParseVersion("0.2.0"), current.Version)
	})

	t.Run("Excluding every path yields the seed", func(t *testing.T) {
		repo, err := testRepoCreate()
		require.NoError(t, err)
		_, err = testRepoWithMessages(repo, []string{"feat: a", "fix: b", "feat!: c"})
		require.NoError(t, err)

		current, err := Calculate(CalculateOptions{
			Repository: repo,
			Options:    &Options{PathExcludes: []string{".*", "whatever"}},
		})
		require.NoError(t, err)
		require.Equal(t, Zero(), current.Version)
	})

	t.Run("Path includes restrict to a subtree", func(t *testing.T) {
		repo, err := testRepoCreate()
		require.NoError(t, err)

		_, err = testRepoCommit(repo, testCommit{message: "feat: lib", files: map[string]string{"src/lib.go": "a"}})
		require.NoError(t, err)
		_, err = testRepoCommit(repo, testCommit{message: "feat: docs", files: map[string]string{"docs/index.md": "b"}})
		require.NoError(t, err)
		_, err = testRepoCommit(repo, testCommit{message: "fix: lib", files: map[string]string{"src/lib.go": "c"}})
		require.NoError(t, err)

		current, err := Calculate(CalculateOptions{
			Repository: repo,
			Options:    &Options{PathIncludes: []string{"^src/"}},
		})
		require.NoError(t, err)
		require.Equal(t, MustParseVersion("0.1.1"), current.Version)
	})

	t.Run("Strict mode reports the offending commit", func(t *testing.T) {
		repo, err := testRepoCreate()
		require.NoError(t, err)
		hashes, err := testRepoWithMessages(repo, []string{"feat: a", "update stuff"})
		require.NoError(t, err)

		_, err = Calculate(CalculateOptions{
			Repository: repo,
			Options:    &Options{UnrecognizedMessage: UnrecognizedError},
		})
		require.ErrorIs(t, err, ErrMessageUnrecognized)
		require.Contains(t, err.Error(), hashes[1].String())
	})

	t.Run("Debug logging", func(t *testing.T) {
		repo, err := testRepoCreate()
		require.NoError(t, err)
		_, err = testRepoWithMessages(repo, []string{"feat: a"})
		require.NoError(t, err)

		var buf bytes.Buffer
		_, err = Calculate(CalculateOptions{
			Repository: repo,
			Logger:     log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel}),
		})
		require.NoError(t, err)
		require.Contains(t, buf.String(), "version bumped")
	})
}

func TestCalculatorVerify(t *testing.T) {
	repo, err := testRepoCreate()
	require.NoError(t, err)
	hashes, err := testRepoWithMessages(repo, []string{"fix: a", "feat: b", "chore: c"})
	require.NoError(t, err)

	calc, err := NewCalculator(CalculateOptions{Repository: repo})
	require.NoError(t, err)

	t.Run("Current state", func(t *testing.T) {
		current, err := calc.Current()
		require.NoError(t, err)
		require.NoError(t, calc.Verify(current.Version, current.Commit))
	})

	t.Run("Earlier state", func(t *testing.T) {
		require.NoError(t, calc.Verify(MustParseVersion("0.0.1"), hashes[0]))
	})

	t.Run("Version mismatch", func(t *testing.T) {
		err := calc.Verify(MustParseVersion("0.0.1"), hashes[1])

		var verifyErr *VerifyError
		require.ErrorAs(t, err, &verifyErr)
		require.Equal(t, VerifyVersionMismatch, verifyErr.Kind)
	})

	t.Run("Commit mismatch", func(t *testing.T) {
		err := calc.Verify(MustParseVersion("3.0.0"), hashes[1])

		var verifyErr *VerifyError
		require.ErrorAs(t, err, &verifyErr)
		require.Equal(t, VerifyCommitMismatch, verifyErr.Kind)
		require.Equal(t, MustParseVersion("0.1.0"), verifyErr.Found.Version)
	})

	t.Run("Not found", func(t *testing.T) {
		err := calc.Verify(MustParseVersion("3.0.0"), hashes[2])

		var verifyErr *VerifyError
		require.ErrorAs(t, err, &verifyErr)
		require.Equal(t, VerifyNotFound, verifyErr.Kind)
	})
}
