package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/jaxxstorm/comver"
	"gopkg.in/yaml.v3"
)

// Version will be set by build process
var Version = "dev"

// Globals are shared by every subcommand
type Globals struct {
	Repo    string `short:"r" help:"Repository path (default: current directory)"`
	Rev     string `default:"HEAD" help:"Revision whose history is walked"`
	Config  string `short:"c" help:"Configuration file (default: .comver.toml, comver.toml or pyproject.toml in the repository)"`
	Verbose bool   `short:"v" help:"Log each commit decision to stderr"`

	Stdout io.Writer `kong:"-"`
	Stderr io.Writer `kong:"-"`
}

type CLI struct {
	Globals

	Calculate CalculateCmd `cmd:"" help:"Print the current version derived from commit history"`
	Verify    VerifyCmd    `cmd:"" help:"Check that a version was produced by a given commit"`
	Version   VersionCmd   `cmd:"" help:"Show version information"`
}

func main() {
	cli := CLI{Globals: Globals{Stdout: os.Stdout, Stderr: os.Stderr}}

	ctx := kong.Parse(&cli,
		kong.Name("comver"),
		kong.Description("Calculate semantic versions from conventional commit history"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)

	err := ctx.Run(&cli.Globals)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCodeOf(err))
	}
}

func (g *Globals) logger() *log.Logger {
	level := log.InfoLevel
	if g.Verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(g.stderr(), log.Options{
		Prefix: "comver",
		Level:  level,
	})
}

func (g *Globals) stdout() io.Writer {
	if g.Stdout == nil {
		return os.Stdout
	}
	return g.Stdout
}

func (g *Globals) stderr() io.Writer {
	if g.Stderr == nil {
		return os.Stderr
	}
	return g.Stderr
}

func (g *Globals) calculator() (*comver.Calculator, error) {
	repoPath := g.Repo
	if repoPath == "" {
		var err error
		repoPath, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting current directory: %w", err)
		}
	}

	repo, err := comver.OpenRepository(repoPath)
	if err != nil {
		return nil, fmt.Errorf("opening repository %s: %w", repoPath, err)
	}

	rev := g.Rev
	if rev == "" {
		rev = "HEAD"
	}

	return comver.NewCalculator(comver.CalculateOptions{
		Repository: repo,
		Commitish:  plumbing.Revision(rev),
		ConfigPath: g.Config,
		Logger:     g.logger(),
	})
}

type CalculateCmd struct {
	Format   string `short:"f" default:"line" enum:"line,json,yaml" help:"Output format"`
	SHA      bool   `name:"sha" short:"s" help:"Include the sha of the commit that produced the version"`
	Checksum bool   `help:"Include the checksum of the effective configuration"`
}

type calculateOutput struct {
	Version  string `json:"version" yaml:"version"`
	SHA      string `json:"sha,omitempty" yaml:"sha,omitempty"`
	Checksum string `json:"checksum,omitempty" yaml:"checksum,omitempty"`
}

func (c *CalculateCmd) Run(g *Globals) error {
	calc, err := g.calculator()
	if err != nil {
		return err
	}

	current, err := calc.Current()
	if err != nil {
		return fmt.Errorf("calculating version: %w", err)
	}

	output := calculateOutput{Version: current.Version.String()}
	if c.SHA && current.HasCommit() {
		output.SHA = current.Commit.String()
	}
	if c.Checksum {
		output.Checksum = calc.Config().Checksum()
	}

	rendered, err := renderCalculate(output, c.Format)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(g.stdout(), rendered)
	return err
}

func renderCalculate(output calculateOutput, format string) (string, error) {
	switch format {
	case "json":
		data, err := json.MarshalIndent(output, "", "    ")
		if err != nil {
			return "", fmt.Errorf("encoding json: %w", err)
		}
		return string(data), nil
	case "yaml":
		data, err := yaml.Marshal(output)
		if err != nil {
			return "", fmt.Errorf("encoding yaml: %w", err)
		}
		return strings.TrimSuffix(string(data), "\n"), nil
	default:
		line := output.Version
		for _, field := range []string{output.SHA, output.Checksum} {
			if field != "" {
				line += " " + field
			}
		}
		return line, nil
	}
}

type VerifyCmd struct {
	Version  string `arg:"" help:"Version to verify, e.g. 1.2.3"`
	SHA      string `arg:"" name:"sha" help:"Commit sha the version should originate from"`
	Checksum string `arg:"" optional:"" help:"Expected configuration checksum"`
}

func (v *VerifyCmd) Run(g *Globals) error {
	version, err := comver.ParseVersion(v.Version)
	if err != nil {
		return err
	}

	if !plumbing.IsHash(v.SHA) {
		return errorf(exitFailure, "%w: %q is not a full commit sha", comver.ErrVerification, v.SHA)
	}

	calc, err := g.calculator()
	if err != nil {
		return err
	}

	if err := calc.Verify(version, plumbing.NewHash(v.SHA)); err != nil {
		return err
	}

	if v.Checksum != "" {
		if err := comver.VerifyChecksum(calc.Config(), v.Checksum); err != nil {
			return err
		}
	}

	return nil
}

type VersionCmd struct {
	JSON bool `short:"j" help:"Output as JSON"`
}

func (c *VersionCmd) Run(g *Globals) error {
	versionInfo := map[string]string{
		"version": Version,
		"name":    "comver",
	}

	if c.JSON {
		return json.NewEncoder(g.stdout()).Encode(versionInfo)
	}

	_, err := fmt.Fprintf(g.stdout(), "comver version %s\n", Version)
	return err
}
