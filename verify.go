package comver

import (
	"fmt"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/storer"
)

// VerifyKind distinguishes the ways a verification can fail
type VerifyKind int

const (
	// VerifyVersionMismatch: the version exists but was produced by another commit
	VerifyVersionMismatch VerifyKind = iota + 1
	// VerifyCommitMismatch: the commit exists but produced another version
	VerifyCommitMismatch
	// VerifyNotFound: neither the version nor the commit appear in the history
	VerifyNotFound
	// VerifyChecksumMismatch: the configuration checksum differs
	VerifyChecksumMismatch
)

// VerifyError reports why a (version, commit) pair did not verify
type VerifyError struct {
	Kind     VerifyKind
	Version  Version
	Commit   plumbing.Hash
	Found    VersionCommit
	Checksum string
	Expected string
}

func (e *VerifyError) Error() string {
	switch e.Kind {
	case VerifyVersionMismatch:
		return fmt.Sprintf("specified version %s has sha %s, while expected sha is %s",
			e.Version, shaString(e.Found.Commit), e.Commit)
	case VerifyCommitMismatch:
		return fmt.Sprintf("specified sha %s corresponds to version %s, while expected version is %s",
			e.Commit, e.Found.Version, e.Version)
	case VerifyChecksumMismatch:
		return fmt.Sprintf("specified checksum %s does not match configuration checksum %s",
			e.Checksum, e.Expected)
	default:
		return fmt.Sprintf("neither specified sha %s nor its corresponding version %s was found in the git history",
			e.Commit, e.Version)
	}
}

func (e *VerifyError) Unwrap() error { return ErrVerification }

func shaString(h plumbing.Hash) string {
	if h.IsZero() {
		return "none"
	}
	return h.String()
}

// Verify scans every emitted state for the given pair. It returns nil on an
// exact match and a *VerifyError otherwise. The iterator is consumed.
func Verify(it *VersionCommitIter, version Version, commit plumbing.Hash) error {
	var result error = &VerifyError{Kind: VerifyNotFound, Version: version, Commit: commit}

	err := it.ForEach(func(vc VersionCommit) error {
		switch {
		case vc.Version.Equal(version):
			if vc.Commit == commit {
				result = nil
			} else {
				result = &VerifyError{Kind: VerifyVersionMismatch, Version: version, Commit: commit, Found: vc}
			}
			return storer.ErrStop
		case vc.Commit == commit:
			result = &VerifyError{Kind: VerifyCommitMismatch, Version: version, Commit: commit, Found: vc}
			return storer.ErrStop
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("walking history: %w", err)
	}

	return result
}

// VerifyChecksum compares checksum with the checksum of cfg
func VerifyChecksum(cfg *Config, checksum string) error {
	expected := cfg.Checksum()
	if checksum == expected {
		return nil
	}
	return &VerifyError{Kind: VerifyChecksumMismatch, Checksum: checksum, Expected: expected}
}
