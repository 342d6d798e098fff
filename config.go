package comver

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/pelletier/go-toml/v2"
)

// Unrecognized message policies
const (
	UnrecognizedIgnore = "ignore"
	UnrecognizedError  = "error"
)

// ConfigFileNames are searched in order in the repository root
var ConfigFileNames = []string{".comver.toml", "comver.toml", "pyproject.toml"}

// Options is the flat configuration mapping understood by comver. A nil
// slice means the option is absent and its default applies.
type Options struct {
	MessageIncludes     []string `toml:"message_includes" json:"message_includes"`
	MessageExcludes     []string `toml:"message_excludes" json:"message_excludes"`
	PathIncludes        []string `toml:"path_includes" json:"path_includes"`
	PathExcludes        []string `toml:"path_excludes" json:"path_excludes"`
	AuthorNameIncludes  []string `toml:"author_name_includes" json:"author_name_includes"`
	AuthorNameExcludes  []string `toml:"author_name_excludes" json:"author_name_excludes"`
	AuthorEmailIncludes []string `toml:"author_email_includes" json:"author_email_includes"`
	AuthorEmailExcludes []string `toml:"author_email_excludes" json:"author_email_excludes"`

	MajorRegexes []string `toml:"major_regexes" json:"major_regexes"`
	MinorRegexes []string `toml:"minor_regexes" json:"minor_regexes"`
	PatchRegexes []string `toml:"patch_regexes" json:"patch_regexes"`

	// UnrecognizedMessage is either "ignore" (default) or "error"
	UnrecognizedMessage string `toml:"unrecognized_message" json:"unrecognized_message"`
}

// Config is a validated, compiled Options
type Config struct {
	Options    Options
	Filter     FilterConfig
	Classifier ClassifierConfig
}

// DefaultConfig compiles the zero Options
func DefaultConfig() *Config {
	cfg, err := Options{}.Compile()
	if err != nil {
		panic(err)
	}
	return cfg
}

// DecodeOptions strictly decodes TOML options; unknown keys are rejected
func DecodeOptions(r io.Reader) (Options, error) {
	var opts Options
	dec := toml.NewDecoder(r).DisallowUnknownFields()
	if err := dec.Decode(&opts); err != nil {
		var sme *toml.StrictMissingError
		if errors.As(err, &sme) {
			return Options{}, fmt.Errorf("%w: %s", ErrUnknownOption, strings.Join(missingKeys(sme), ", "))
		}
		return Options{}, fmt.Errorf("%w: decoding options: %w", ErrInvalidOption, err)
	}
	return opts, nil
}

func missingKeys(sme *toml.StrictMissingError) []string {
	keys := make([]string, 0, len(sme.Errors))
	for _, e := range sme.Errors {
		keys = append(keys, strings.Join(e.Key(), "."))
	}
	return keys
}

// OptionsFromMap builds Options from a flat mapping such as the one a build
// backend plugin passes through. Nil values are treated as absent.
func OptionsFromMap(m map[string]any) (Options, error) {
	clean := make(map[string]any, len(m))
	for k, v := range m {
		if v == nil {
			continue
		}
		clean[k] = v
	}

	data, err := toml.Marshal(clean)
	if err != nil {
		return Options{}, fmt.Errorf("%w: encoding options: %w", ErrInvalidOption, err)
	}
	return DecodeOptions(bytes.NewReader(data))
}

// LoadOptions reads options from path on fs. When path is empty the
// ConfigFileNames are tried in order and the first one present is used; for
// pyproject.toml only the [tool.comver] table is read. It returns the file
// that was used, or "" when none was found.
func LoadOptions(fs billy.Filesystem, path string) (Options, string, error) {
	if path != "" {
		opts, err := loadOptionsFile(fs, path)
		return opts, path, err
	}

	for _, name := range ConfigFileNames {
		if _, err := fs.Stat(name); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return Options{}, "", fmt.Errorf("checking %s: %w", name, err)
		}

		opts, found, err := loadFromCandidate(fs, name)
		if err != nil {
			return Options{}, name, err
		}
		if found {
			return opts, name, nil
		}
	}

	return Options{}, "", nil
}

func loadFromCandidate(fs billy.Filesystem, name string) (Options, bool, error) {
	if name != "pyproject.toml" {
		opts, err := loadOptionsFile(fs, name)
		return opts, err == nil, err
	}

	data, err := readFile(fs, name)
	if err != nil {
		return Options{}, false, err
	}

	var doc struct {
		Tool map[string]any `toml:"tool"`
	}
	if err := toml.Unmarshal(data, &doc); err != nil {
		return Options{}, false, fmt.Errorf("%w: parsing %s: %w", ErrInvalidOption, name, err)
	}

	table, ok := doc.Tool["comver"].(map[string]any)
	if !ok {
		return Options{}, false, nil
	}

	opts, err := OptionsFromMap(table)
	if err != nil {
		return Options{}, false, fmt.Errorf("reading [tool.comver] in %s: %w", name, err)
	}
	return opts, true, nil
}

func loadOptionsFile(fs billy.Filesystem, name string) (Options, error) {
	data, err := readFile(fs, name)
	if err != nil {
		return Options{}, err
	}

	opts, err := DecodeOptions(bytes.NewReader(data))
	if err != nil {
		return Options{}, fmt.Errorf("reading %s: %w", name, err)
	}
	return opts, nil
}

func readFile(fs billy.Filesystem, name string) ([]byte, error) {
	f, err := fs.Open(name)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", name, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	return data, nil
}

// Compile validates every pattern and fills in defaults. Invalid patterns
// are reported here, before any history is read.
func (o Options) Compile() (*Config, error) {
	eff := o.withDefaults()

	var err error
	compile := func(option string, patterns []string) PatternSet {
		if err != nil {
			return nil
		}
		var set PatternSet
		set, err = CompilePatterns(option, patterns)
		return set
	}

	cfg := &Config{Options: eff}
	cfg.Filter = FilterConfig{
		Message: AxisGate{
			Includes: compile("message_includes", eff.MessageIncludes),
			Excludes: compile("message_excludes", eff.MessageExcludes),
		},
		Path: AxisGate{
			Includes: compile("path_includes", eff.PathIncludes),
			Excludes: compile("path_excludes", eff.PathExcludes),
		},
		AuthorName: AxisGate{
			Includes: compile("author_name_includes", eff.AuthorNameIncludes),
			Excludes: compile("author_name_excludes", eff.AuthorNameExcludes),
		},
		AuthorEmail: AxisGate{
			Includes: compile("author_email_includes", eff.AuthorEmailIncludes),
			Excludes: compile("author_email_excludes", eff.AuthorEmailExcludes),
		},
	}
	cfg.Classifier = ClassifierConfig{
		Major: compile("major_regexes", eff.MajorRegexes),
		Minor: compile("minor_regexes", eff.MinorRegexes),
		Patch: compile("patch_regexes", eff.PatchRegexes),
	}
	if err != nil {
		return nil, err
	}

	switch eff.UnrecognizedMessage {
	case UnrecognizedIgnore:
	case UnrecognizedError:
		cfg.Classifier.Strict = true
	default:
		return nil, fmt.Errorf("%w: unrecognized_message: %q (want %q or %q)",
			ErrInvalidOption, eff.UnrecognizedMessage, UnrecognizedIgnore, UnrecognizedError)
	}

	return cfg, nil
}

func (o Options) withDefaults() Options {
	orEmpty := func(s []string) []string {
		if s == nil {
			return []string{}
		}
		return s
	}
	orDefault := func(s, def []string) []string {
		if s == nil {
			return append([]string(nil), def...)
		}
		return s
	}

	eff := Options{
		MessageIncludes:     orEmpty(o.MessageIncludes),
		MessageExcludes:     orEmpty(o.MessageExcludes),
		PathIncludes:        orEmpty(o.PathIncludes),
		PathExcludes:        orEmpty(o.PathExcludes),
		AuthorNameIncludes:  orEmpty(o.AuthorNameIncludes),
		AuthorNameExcludes:  orEmpty(o.AuthorNameExcludes),
		AuthorEmailIncludes: orEmpty(o.AuthorEmailIncludes),
		AuthorEmailExcludes: orEmpty(o.AuthorEmailExcludes),
		MajorRegexes:        orDefault(o.MajorRegexes, DefaultMajorRegexes),
		MinorRegexes:        orDefault(o.MinorRegexes, DefaultMinorRegexes),
		PatchRegexes:        orDefault(o.PatchRegexes, DefaultPatchRegexes),
		UnrecognizedMessage: o.UnrecognizedMessage,
	}
	if eff.UnrecognizedMessage == "" {
		eff.UnrecognizedMessage = UnrecognizedIgnore
	}
	return eff
}

// Checksum is the SHA-256 of the effective options. Two configurations that
// produce the same walk have the same checksum.
func (c *Config) Checksum() string {
	data, err := json.Marshal(c.Options)
	if err != nil {
		// Options only holds strings and string slices.
		panic(err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
