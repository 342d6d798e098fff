// Package comver derives semantic versions from conventional commit history.
//
// Version ordering and the blang/semver bridge follow the approach of vers
// (https://github.com/jaxxstorm/vers), itself adapted from pulumictl.
package comver

import (
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"

	"github.com/blang/semver"
)

// BumpLevel is the outcome of classifying a single commit message
type BumpLevel int

const (
	BumpNone BumpLevel = iota
	BumpPatch
	BumpMinor
	BumpMajor
)

func (l BumpLevel) String() string {
	switch l {
	case BumpMajor:
		return "major"
	case BumpMinor:
		return "minor"
	case BumpPatch:
		return "patch"
	default:
		return "none"
	}
}

// ParseBumpLevel converts "major", "minor", "patch" or "none" into a BumpLevel
func ParseBumpLevel(s string) (BumpLevel, error) {
	switch strings.ToLower(s) {
	case "major":
		return BumpMajor, nil
	case "minor":
		return BumpMinor, nil
	case "patch":
		return BumpPatch, nil
	case "none", "":
		return BumpNone, nil
	default:
		return BumpNone, fmt.Errorf("invalid bump level: %q", s)
	}
}

// Version is an immutable MAJOR.MINOR.PATCH triple
type Version struct {
	Major uint64
	Minor uint64
	Patch uint64
}

// Zero returns the seed version 0.0.0
func Zero() Version {
	return Version{}
}

// ParseVersion parses a string of the form "N.N.N"
func ParseVersion(s string) (Version, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return Version{}, &VersionError{Input: s, Err: ErrVersionFormat}
	}

	var nums [3]uint64
	for i, part := range parts {
		n, err := parseComponent(part)
		if err != nil {
			return Version{}, &VersionError{Input: s, Err: err}
		}
		nums[i] = n
	}

	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

// parseComponent accepts plain ASCII digits only.
func parseComponent(part string) (uint64, error) {
	if part == "" {
		return 0, fmt.Errorf("%w: empty component", ErrVersionNotNumeric)
	}
	for _, r := range part {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("%w: %q", ErrVersionNotNumeric, part)
		}
	}

	n, err := strconv.ParseUint(part, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q out of range", ErrVersionNotNumeric, part)
	}
	return n, nil
}

// MustParseVersion is like ParseVersion but panics on error
func MustParseVersion(s string) Version {
	v, err := ParseVersion(s)
	if err != nil {
		panic(err)
	}
	return v
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Compare returns -1, 0 or 1 depending on whether v sorts before, equal to or after other
func (v Version) Compare(other Version) int {
	return v.Semver().Compare(other.Semver())
}

func (v Version) Less(other Version) bool           { return v.Compare(other) < 0 }
func (v Version) LessOrEqual(other Version) bool    { return v.Compare(other) <= 0 }
func (v Version) Greater(other Version) bool        { return v.Compare(other) > 0 }
func (v Version) GreaterOrEqual(other Version) bool { return v.Compare(other) >= 0 }
func (v Version) Equal(other Version) bool          { return v.Compare(other) == 0 }
func (v Version) NotEqual(other Version) bool       { return v.Compare(other) != 0 }

// CompareTo compares v against a Version, a version string or a semver.Version.
// Strings that do not parse return the parse error; any other type returns
// ErrUnsupportedComparison.
func (v Version) CompareTo(other any) (int, error) {
	switch o := other.(type) {
	case Version:
		return v.Compare(o), nil
	case *Version:
		if o == nil {
			return 0, fmt.Errorf("%w: nil *Version", ErrUnsupportedComparison)
		}
		return v.Compare(*o), nil
	case string:
		parsed, err := ParseVersion(o)
		if err != nil {
			return 0, err
		}
		return v.Compare(parsed), nil
	case semver.Version:
		// A release sorts after its own pre-releases
		return v.Semver().Compare(o), nil
	default:
		return 0, fmt.Errorf("%w: version and %T", ErrUnsupportedComparison, other)
	}
}

// Hash is derived from the triple only, so equal versions hash equal
func (v Version) Hash() uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(v.String()))
	return h.Sum64()
}

// Bump returns a new version with the given level applied
func (v Version) Bump(level BumpLevel) Version {
	switch level {
	case BumpMajor:
		return Version{Major: v.Major + 1}
	case BumpMinor:
		return Version{Major: v.Major, Minor: v.Minor + 1}
	case BumpPatch:
		return Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch + 1}
	default:
		return v
	}
}

// Semver converts v into a blang/semver release version
func (v Version) Semver() semver.Version {
	return semver.Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch}
}

// FromSemver drops pre-release and build metadata from a semver.Version
func FromSemver(sv semver.Version) Version {
	return Version{Major: sv.Major, Minor: sv.Minor, Patch: sv.Patch}
}

// MarshalText implements encoding.TextMarshaler
func (v Version) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (v *Version) UnmarshalText(text []byte) error {
	parsed, err := ParseVersion(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
