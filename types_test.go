package comver

import (
	"testing"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/stretchr/testify/require"
)

func TestVersionCommit(t *testing.T) {
	seed := VersionCommit{}
	require.False(t, seed.HasCommit())
	require.Equal(t, Zero(), seed.Version)

	hash := plumbing.NewHash("0123456789abcdef0123456789abcdef01234567")
	bumped := VersionCommit{Version: Version{Patch: 1}, Commit: hash}
	require.True(t, bumped.HasCommit())
	require.Equal(t, "0123456789abcdef0123456789abcdef01234567", bumped.Commit.String())
}

func TestCalculateOptions(t *testing.T) {
	repo, err := testRepoCreate()
	require.NoError(t, err)

	opts := CalculateOptions{
		Repository: repo,
		Commitish:  plumbing.Revision("main"),
		Options:    &Options{MessageExcludes: []string{"skip"}},
	}

	calc, err := NewCalculator(opts)
	require.NoError(t, err)
	require.Equal(t, plumbing.Revision("main"), calc.commitish)
	require.Equal(t, []string{"skip"}, calc.Config().Filter.Message.Excludes.Strings())

	calc, err = NewCalculator(CalculateOptions{Repository: repo})
	require.NoError(t, err)
	require.Equal(t, plumbing.Revision("HEAD"), calc.commitish)
	require.NotNil(t, calc.logger)
}
