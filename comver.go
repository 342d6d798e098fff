package comver

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Calculator computes versions for one repository and configuration
type Calculator struct {
	repo       *git.Repository
	commitish  plumbing.Revision
	config     *Config
	configFile string
	logger     *log.Logger
}

// NewCalculator loads and compiles the configuration up front so that bad
// patterns fail before any history is read.
func NewCalculator(opts CalculateOptions) (*Calculator, error) {
	if opts.Repository == nil {
		return nil, fmt.Errorf("repository is required")
	}

	if opts.Commitish == "" {
		opts.Commitish = "HEAD"
	}

	logger := opts.Logger
	if logger == nil {
		logger = discardLogger()
	}

	options, configFile, err := resolveOptions(opts)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	config, err := options.Compile()
	if err != nil {
		return nil, fmt.Errorf("compiling configuration: %w", err)
	}

	if configFile != "" {
		logger.Debug("loaded configuration", "file", configFile)
	}

	return &Calculator{
		repo:       opts.Repository,
		commitish:  opts.Commitish,
		config:     config,
		configFile: configFile,
		logger:     logger,
	}, nil
}

func resolveOptions(opts CalculateOptions) (Options, string, error) {
	if opts.Options != nil {
		return *opts.Options, "", nil
	}

	if opts.ConfigPath != "" {
		abs, err := filepath.Abs(opts.ConfigPath)
		if err != nil {
			return Options{}, "", fmt.Errorf("resolving %s: %w", opts.ConfigPath, err)
		}
		return LoadOptions(osfs.New(filepath.Dir(abs)), filepath.Base(abs))
	}

	workTree, err := opts.Repository.Worktree()
	if errors.Is(err, git.ErrIsBareRepository) {
		return Options{}, "", nil
	}
	if err != nil {
		return Options{}, "", fmt.Errorf("getting worktree: %w", err)
	}

	return LoadOptions(workTree.Filesystem, "")
}

// Config returns the compiled configuration
func (c *Calculator) Config() *Config {
	return c.config
}

// ConfigFile returns the configuration file that was loaded, if any
func (c *Calculator) ConfigFile() string {
	return c.configFile
}

// Walk starts a fresh pass over the repository history
func (c *Calculator) Walk() (*VersionCommitIter, error) {
	history, err := NewHistory(c.repo, c.commitish)
	if err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}

	it := Walk(history, c.config.Filter, c.config.Classifier).WithLogger(c.logger)
	return it, nil
}

// Current returns the final version and the commit that produced it
func (c *Calculator) Current() (VersionCommit, error) {
	it, err := c.Walk()
	if err != nil {
		return VersionCommit{}, err
	}
	return it.Last()
}

// Verify checks that version was produced by commit somewhere in the history
func (c *Calculator) Verify(version Version, commit plumbing.Hash) error {
	it, err := c.Walk()
	if err != nil {
		return err
	}
	return Verify(it, version, commit)
}

// Calculate returns the current version of the repository in opts
func Calculate(opts CalculateOptions) (VersionCommit, error) {
	calc, err := NewCalculator(opts)
	if err != nil {
		return VersionCommit{}, err
	}

	current, err := calc.Current()
	if err != nil {
		return VersionCommit{}, fmt.Errorf("calculating version: %w", err)
	}
	return current, nil
}
