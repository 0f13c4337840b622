package cli

import (
	"context"
	"io"
	"os"

	"github.com/cruciblehq/cruxci/internal/buildconf"
	"github.com/cruciblehq/cruxci/internal/paths"
	"github.com/cruciblehq/cruxci/internal/pipeline"
	"github.com/cruciblehq/cruxci/internal/process"
	"github.com/cruciblehq/cruxci/internal/toolchain"
)

var (

	// Destination of command output such as exported variables.
	stdout io.Writer = os.Stdout

	// Builds the runner used for every external command.
	newRunner = func() process.Runner {
		return process.NewExec(os.Stdout, os.Stderr)
	}
)

// Returns the resolved package manager home.
func home() string {
	return paths.Home(RootCmd.Home)
}

// Returns the profile store selected by --profile-store.
func store(runner process.Runner) toolchain.Store {
	if RootCmd.ProfileStore == "conan" {
		return toolchain.NewConanStore(runner, "", map[string]string{paths.HomeEnv: home()})
	}
	return toolchain.NewFileStore(paths.Profiles(RootCmd.Home))
}

// Creates an orchestrator wired to the CLI's runner and profile store.
func orchestrator(runner process.Runner) *pipeline.Orchestrator {
	return pipeline.New(pipeline.Options{
		Runner:   runner,
		Resolver: toolchain.NewResolver(store(runner)),
		Home:     home(),
		Profiles: paths.Profiles(RootCmd.Home),
	})
}

// Normalizes c and runs the given stages, returning the first stage failure.
func runStages(ctx context.Context, c buildconf.Configuration, stages ...pipeline.Stage) error {
	cfg, err := buildconf.New(c)
	if err != nil {
		return err
	}

	report, err := orchestrator(newRunner()).RunStages(ctx, cfg, stages)
	if err != nil {
		return err
	}
	return report.Err()
}

// Positional compiler arguments shared by several commands.
type CompilerArgs struct {
	Family  toolchain.Family `arg:"" help:"Compiler family (gcc, clang, apple-clang, visual_studio)."`
	Version string           `arg:"" help:"Compiler version."`
}

// Returns the compiler selected by the arguments.
func (a CompilerArgs) compiler() buildconf.Compiler {
	return buildconf.Compiler{Family: a.Family, Version: a.Version}
}

// Returns the profile name of the selected compiler.
//
// Known family aliases are canonicalized; other names are used verbatim so
// hand-written profiles remain addressable.
func (a CompilerArgs) profile() string {
	family := a.Family
	if f, err := toolchain.ParseFamily(string(a.Family)); err == nil {
		family = f
	}
	return toolchain.ProfileName(family, a.Version)
}

// Gate selection flags shared by configure and run.
type GateFlags struct {
	UnitTests        bool `name:"unit-tests" help:"Build and run unit tests."`
	Coverage         bool `help:"Collect test coverage. Implies --unit-tests."`
	Benchmarks       bool `help:"Build benchmarks."`
	Examples         bool `help:"Build examples."`
	Warnings         bool `help:"Treat compiler warnings as errors."`
	AddressSanitizer bool `name:"address-sanitizer" help:"Instrument with AddressSanitizer."`
	ThreadSanitizer  bool `name:"thread-sanitizer" help:"Instrument with ThreadSanitizer."`
	Format           bool `help:"Enable the source formatting target."`
	Tidy             bool `help:"Enable the static analysis target."`
	Cppcheck         bool `help:"Enable whole-project static analysis."`
	Docs             bool `help:"Build documentation."`
}

// Returns the gates selected by the flags.
func (f GateFlags) gates() buildconf.GateSet {
	var s buildconf.GateSet
	for g, on := range map[buildconf.Gate]bool{
		buildconf.UnitTests:        f.UnitTests,
		buildconf.Coverage:         f.Coverage,
		buildconf.Benchmarks:       f.Benchmarks,
		buildconf.Examples:         f.Examples,
		buildconf.AddressSanitizer: f.AddressSanitizer,
		buildconf.ThreadSanitizer:  f.ThreadSanitizer,
		buildconf.Format:           f.Format,
		buildconf.Tidy:             f.Tidy,
		buildconf.Cppcheck:         f.Cppcheck,
		buildconf.Docs:             f.Docs,
	} {
		if on {
			s = s.With(g)
		}
	}
	return s
}
