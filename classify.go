package comver

import (
	"fmt"
	"io"
	"regexp"
)

// Default conventional commit patterns, evaluated in MAJOR, MINOR, PATCH order
var (
	DefaultMajorRegexes = []string{
		`^\w+(\([^)]*\))?!:`,
		`(?m)^BREAKING[ -]CHANGE:`,
	}
	DefaultMinorRegexes = []string{`^feat(\([^)]*\))?:`}
	DefaultPatchRegexes = []string{`^fix(\([^)]*\))?:`}
)

// PatternSet is an ordered list of compiled regular expressions
type PatternSet []*regexp.Regexp

// CompilePatterns compiles patterns, reporting the offending option on failure
func CompilePatterns(option string, patterns []string) (PatternSet, error) {
	if len(patterns) == 0 {
		return nil, nil
	}

	set := make(PatternSet, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, &PatternError{Option: option, Pattern: p, Err: err}
		}
		set = append(set, re)
	}
	return set, nil
}

// MustCompilePatterns is like CompilePatterns but panics on error
func MustCompilePatterns(patterns ...string) PatternSet {
	set, err := CompilePatterns("patterns", patterns)
	if err != nil {
		panic(err)
	}
	return set
}

// Match reports whether any pattern matches s
func (p PatternSet) Match(s string) bool {
	for _, re := range p {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

// MatchAny reports whether any pattern matches any of values
func (p PatternSet) MatchAny(values []string) bool {
	for _, v := range values {
		if p.Match(v) {
			return true
		}
	}
	return false
}

// Strings returns the source of each pattern
func (p PatternSet) Strings() []string {
	out := make([]string, len(p))
	for i, re := range p {
		out[i] = re.String()
	}
	return out
}

// ClassifierConfig holds the pattern sets used to classify commit messages
type ClassifierConfig struct {
	Major PatternSet
	Minor PatternSet
	Patch PatternSet

	// Strict makes unrecognized messages an error instead of BumpNone
	Strict bool
}

// DefaultClassifierConfig returns the conventional commit classifier
func DefaultClassifierConfig() ClassifierConfig {
	return ClassifierConfig{
		Major: MustCompilePatterns(DefaultMajorRegexes...),
		Minor: MustCompilePatterns(DefaultMinorRegexes...),
		Patch: MustCompilePatterns(DefaultPatchRegexes...),
	}
}

// Classify maps a commit message to a bump level. Pattern sets are tried in
// MAJOR, MINOR, PATCH order and the first set with a match wins.
func Classify(message string, cfg ClassifierConfig) (BumpLevel, error) {
	switch {
	case cfg.Major.Match(message):
		return BumpMajor, nil
	case cfg.Minor.Match(message):
		return BumpMinor, nil
	case cfg.Patch.Match(message):
		return BumpPatch, nil
	}

	if cfg.Strict {
		return BumpNone, fmt.Errorf("%w: %q", ErrMessageUnrecognized, message)
	}
	return BumpNone, nil
}

// VersionIter yields the accumulated version after each classified message
type VersionIter struct {
	messages []string
	cfg      ClassifierConfig
	current  Version
	pos      int
	done     bool
}

// ClassifySequence classifies messages in order starting from 0.0.0. The
// returned iterator is single pass; call ClassifySequence again to restart.
func ClassifySequence(messages []string, cfg ClassifierConfig) *VersionIter {
	return &VersionIter{messages: messages, cfg: cfg}
}

// Next returns the version after applying the next message, or io.EOF
func (it *VersionIter) Next() (Version, error) {
	if it.done || it.pos >= len(it.messages) {
		it.done = true
		return Version{}, io.EOF
	}

	message := it.messages[it.pos]
	it.pos++

	level, err := Classify(message, it.cfg)
	if err != nil {
		it.done = true
		return Version{}, err
	}

	it.current = it.current.Bump(level)
	return it.current, nil
}

// Last drains the iterator and returns the final version
func (it *VersionIter) Last() (Version, error) {
	for {
		_, err := it.Next()
		if err == io.EOF {
			return it.current, nil
		}
		if err != nil {
			return Version{}, err
		}
	}
}
