package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/cruciblehq/cruxci/internal/buildconf"
	"github.com/cruciblehq/cruxci/internal/paths"
	"github.com/cruciblehq/cruxci/internal/toolchain"
)

// Pipeline file looked up in the working directory.
const pipelineFile = "cruxci.yaml"

// Represents the 'cruxci run' command.
type RunCmd struct {
	Config string `short:"c" help:"Pipeline file. Defaults to ./cruxci.yaml, then the user config directory." type:"existingfile" placeholder:"PATH"`

	BuildType       buildconf.BuildType `name:"build-type" help:"Build type (Debug, Release, RelWithDebInfo)."`
	Compiler        toolchain.Family    `help:"Compiler family." placeholder:"FAMILY"`
	CompilerVersion string              `name:"compiler-version" help:"Compiler version." placeholder:"VERSION"`
	CompilerPath    string              `name:"compiler-path" help:"Directory holding the compiler executables. Regenerates the profile." placeholder:"DIR"`
	GateFlags       `embed:""`

	Sources    []string `help:"Roots scanned by the format and tidy gates." placeholder:"DIR"`
	Workers    int      `short:"j" help:"Concurrent workers. Defaults to the number of CPUs."`
	BuildDir   string   `name:"build-dir" help:"Build tree root." placeholder:"DIR"`
	InstallDir string   `name:"install-dir" help:"Install prefix." placeholder:"DIR"`
	ResultsDir string   `name:"results-dir" help:"Report directory." placeholder:"DIR"`
}

// Executes the run command.
//
// The pipeline file is loaded first and flags are applied on top. The report
// is written to the results directory even when a stage fails; the returned
// error is the first stage failure.
func (c *RunCmd) Run(ctx context.Context) error {
	base, err := c.load()
	if err != nil {
		return err
	}

	cfg, err := buildconf.New(buildconf.Merge(base, c.overrides()))
	if err != nil {
		return err
	}

	if cfg.Compiler.Path != "" {
		if _, err := saveProfile(cfg.Compiler.Family, cfg.Compiler.Version, toolchain.HostOS(), cfg.Compiler.Path); err != nil {
			return err
		}
	}

	report, err := orchestrator(newRunner()).Run(ctx, cfg)
	if err != nil {
		return err
	}

	if err := report.Write(cfg.ReportPath()); err != nil {
		return err
	}

	slog.Info("report written", "path", cfg.ReportPath(), "outcome", report.Outcome)
	fmt.Fprintln(stdout, report.Outcome)

	return report.Err()
}

// Loads the pipeline file, or returns an empty configuration when none
// exists.
func (c *RunCmd) load() (buildconf.Configuration, error) {
	if c.Config != "" {
		cfg, err := buildconf.Load(c.Config)
		if err != nil {
			return buildconf.Configuration{}, err
		}
		return *cfg, nil
	}

	for _, path := range []string{pipelineFile, paths.ConfigFile()} {
		cfg, err := buildconf.Load(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return buildconf.Configuration{}, err
		}
		slog.Debug("pipeline file loaded", "path", path)
		return *cfg, nil
	}

	return buildconf.Configuration{}, nil
}

// Returns the configuration expressed by flags.
func (c *RunCmd) overrides() buildconf.Configuration {
	return buildconf.Configuration{
		BuildType: c.BuildType,
		Compiler: buildconf.Compiler{
			Family:  c.Compiler,
			Version: c.CompilerVersion,
			Path:    c.CompilerPath,
		},
		Gates:    c.gates(),
		Warnings: c.Warnings,
		Directories: buildconf.Directories{
			Build:   c.BuildDir,
			Install: c.InstallDir,
			Results: c.ResultsDir,
		},
		Sources: c.Sources,
		Workers: c.Workers,
	}
}
