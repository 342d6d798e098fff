package comver

import (
	"errors"
	"fmt"
)

var (
	// ErrVersionFormat is returned when a version string is not of the form N.N.N
	ErrVersionFormat = errors.New("version is not of the form MAJOR.MINOR.PATCH")

	// ErrVersionNotNumeric is returned when a version component is not a non-negative integer
	ErrVersionNotNumeric = errors.New("version component is not a non-negative integer")

	// ErrMessageUnrecognized is returned by strict classification when no pattern matches
	ErrMessageUnrecognized = errors.New("commit message not recognized")

	// ErrUnsupportedComparison is returned when comparing a Version against an incomparable value
	ErrUnsupportedComparison = errors.New("unsupported comparison")

	// ErrInvalidPattern is returned when a configured regular expression does not compile
	ErrInvalidPattern = errors.New("invalid pattern")

	// ErrUnknownOption is returned when a configuration mapping contains an unrecognized key
	ErrUnknownOption = errors.New("unknown option")

	// ErrInvalidOption is returned when configuration is malformed or an option has a bad value
	ErrInvalidOption = errors.New("invalid option")

	// ErrVerification is wrapped by every VerifyError
	ErrVerification = errors.New("verification failed")
)

// VersionError describes a version string that could not be parsed
type VersionError struct {
	Input string
	Err   error
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("parsing version %q: %v", e.Input, e.Err)
}

func (e *VersionError) Unwrap() error { return e.Err }

// PatternError names the option holding a pattern that failed to compile
type PatternError struct {
	Option  string
	Pattern string
	Err     error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("option %s: pattern %q: %v", e.Option, e.Pattern, e.Err)
}

// Unwrap exposes both the sentinel and the regexp error.
func (e *PatternError) Unwrap() []error { return []error{ErrInvalidPattern, e.Err} }
