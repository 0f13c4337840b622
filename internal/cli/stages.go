package cli

import (
	"context"

	"github.com/cruciblehq/cruxci/internal/buildconf"
	"github.com/cruciblehq/cruxci/internal/fault"
	"github.com/cruciblehq/cruxci/internal/pipeline"
)

// Represents the 'cruxci install-deps' command.
type InstallDepsCmd struct {
	BuildType buildconf.BuildType `arg:"" name:"build-type" help:"Build type (Debug, Release, RelWithDebInfo)."`
	CompilerArgs `embed:""`

	Directories []string `help:"Recipe directories. Discovered below the project root when omitted." placeholder:"DIR"`
	BuildDir    string   `name:"build-dir" help:"Build tree root." placeholder:"DIR"`
}

// Executes the install-deps command.
func (c *InstallDepsCmd) Run(ctx context.Context) error {
	return runStages(ctx, buildconf.Configuration{
		BuildType:    c.BuildType,
		Compiler:     c.compiler(),
		Dependencies: c.Directories,
		Directories:  buildconf.Directories{Build: c.BuildDir},
	}, pipeline.InstallDeps())
}

// Represents the 'cruxci configure' command.
type ConfigureCmd struct {
	BuildType buildconf.BuildType `arg:"" name:"build-type" help:"Build type (Debug, Release, RelWithDebInfo)."`
	CompilerArgs `embed:""`
	GateFlags    `embed:""`

	BuildDir string `name:"build-dir" help:"Build tree root." placeholder:"DIR"`
}

// Executes the configure command.
func (c *ConfigureCmd) Run(ctx context.Context) error {
	return runStages(ctx, buildconf.Configuration{
		BuildType:   c.BuildType,
		Compiler:    c.compiler(),
		Gates:       c.gates(),
		Warnings:    c.Warnings,
		Directories: buildconf.Directories{Build: c.BuildDir},
	}, pipeline.Configure())
}

// Represents the 'cruxci build' command.
type BuildCmd struct {
	BuildType buildconf.BuildType `arg:"" name:"build-type" help:"Build type (Debug, Release, RelWithDebInfo)."`
	BuildDir  string              `name:"build-dir" help:"Build tree root." placeholder:"DIR"`
	Workers   int                 `short:"j" help:"Parallel build jobs. Defaults to the number of CPUs."`
}

// Executes the build command.
func (c *BuildCmd) Run(ctx context.Context) error {
	return runStages(ctx, buildconf.Configuration{
		BuildType:   c.BuildType,
		Directories: buildconf.Directories{Build: c.BuildDir},
		Workers:     c.Workers,
	}, pipeline.Build())
}

// Represents the 'cruxci install' command.
type InstallCmd struct {
	BuildType  buildconf.BuildType `arg:"" name:"build-type" help:"Build type (Debug, Release, RelWithDebInfo)."`
	BuildDir   string              `name:"build-dir" help:"Build tree root." placeholder:"DIR"`
	InstallDir string              `name:"install-dir" help:"Install prefix." placeholder:"DIR"`
}

// Executes the install command.
func (c *InstallCmd) Run(ctx context.Context) error {
	return runStages(ctx, buildconf.Configuration{
		BuildType:   c.BuildType,
		Directories: buildconf.Directories{Build: c.BuildDir, Install: c.InstallDir},
	}, pipeline.Install())
}

// Represents the 'cruxci test' command.
type TestCmd struct {
	BuildType      buildconf.BuildType `arg:"" name:"build-type" help:"Build type (Debug, Release, RelWithDebInfo)."`
	TestDir        string              `name:"test-dir" help:"Build tree root holding the tests." placeholder:"DIR"`
	XMLResultsPath string              `name:"xml-results-path" help:"JUnit XML output path." placeholder:"PATH"`
}

// Executes the test command.
func (c *TestCmd) Run(ctx context.Context) error {
	return runStages(ctx, buildconf.Configuration{
		BuildType:   c.BuildType,
		Gates:       buildconf.NewGateSet(buildconf.UnitTests),
		Directories: buildconf.Directories{Build: c.TestDir},
		Reports:     buildconf.Reports{UnitTests: c.XMLResultsPath},
	}, pipeline.UnitTests())
}

// Represents the 'cruxci coverage' command.
type CoverageCmd struct {
	CompilerArgs `embed:""`

	XMLCoveragePath  string `name:"xml-coverage-path" help:"Cobertura XML output path." placeholder:"PATH"`
	HTMLCoveragePath string `name:"html-coverage-path" help:"HTML report output path." placeholder:"PATH"`
}

// Executes the coverage command.
func (c *CoverageCmd) Run(ctx context.Context) error {
	return runStages(ctx, buildconf.Configuration{
		Compiler: c.compiler(),
		Gates:    buildconf.NewGateSet(buildconf.Coverage),
		Reports: buildconf.Reports{
			CoverageXML:  c.XMLCoveragePath,
			CoverageHTML: c.HTMLCoveragePath,
		},
	}, pipeline.Coverage())
}

// Represents the 'cruxci sanitize' command.
type SanitizeCmd struct {
	AddressSanitizer bool     `name:"address-sanitizer" help:"Check with AddressSanitizer." xor:"sanitizer"`
	ThreadSanitizer  bool     `name:"thread-sanitizer" help:"Check with ThreadSanitizer." xor:"sanitizer"`
	LogPath          string   `name:"log-path" help:"Sanitizer log path." placeholder:"PATH"`
	Program          string   `arg:"" help:"Instrumented program to run."`
	Args             []string `arg:"" optional:"" help:"Program arguments. Use -- before arguments starting with a dash."`
}

// Executes the sanitize command.
//
// The program's exit code is propagated, so a sanitizer finding exits with
// the sanitizer's own code.
func (c *SanitizeCmd) Run(ctx context.Context) error {
	var gate buildconf.Gate
	switch {
	case c.AddressSanitizer:
		gate = buildconf.AddressSanitizer
	case c.ThreadSanitizer:
		gate = buildconf.ThreadSanitizer
	default:
		return fault.Invalid("sanitize", "one of --address-sanitizer or --thread-sanitizer is required")
	}

	return runStages(ctx, buildconf.Configuration{
		Gates: buildconf.NewGateSet(gate),
		Sanitizer: buildconf.SanitizerOptions{
			Program: c.Program,
			Args:    c.Args,
			LogPath: c.LogPath,
		},
	}, pipeline.Sanitize())
}

// Per-file task flags shared by format and tidy.
type FileTaskFlags struct {
	Dir        string   `arg:"" help:"Directory to scan for source files." type:"existingdir"`
	Extensions []string `help:"File extensions to process." default:"c,h,cpp,hpp"`
	Executable string   `help:"Tool executable." placeholder:"PATH"`
	Workers    int      `short:"j" help:"Concurrent workers. Defaults to the number of CPUs."`
}

// Returns a configuration scanning the directory with gate enabled.
func (f FileTaskFlags) configuration(gate buildconf.Gate) buildconf.Configuration {
	return buildconf.Configuration{
		Gates:      buildconf.NewGateSet(gate),
		Sources:    []string{f.Dir},
		Extensions: f.Extensions,
		Workers:    f.Workers,
	}
}

// Represents the 'cruxci format' command.
type FormatCmd struct {
	FileTaskFlags `embed:""`
}

// Executes the format command.
func (c *FormatCmd) Run(ctx context.Context) error {
	cfg := c.configuration(buildconf.Format)
	cfg.Executables.Format = c.Executable
	return runStages(ctx, cfg, pipeline.Format())
}

// Represents the 'cruxci tidy' command.
type TidyCmd struct {
	FileTaskFlags `embed:""`
}

// Executes the tidy command.
func (c *TidyCmd) Run(ctx context.Context) error {
	cfg := c.configuration(buildconf.Tidy)
	cfg.Executables.Tidy = c.Executable
	return runStages(ctx, cfg, pipeline.Tidy())
}

// Represents the 'cruxci cppcheck' command.
type CppcheckCmd struct {
	BuildType buildconf.BuildType `arg:"" name:"build-type" help:"Build type (Debug, Release, RelWithDebInfo)."`
	BuildDir  string              `name:"build-dir" help:"Build tree root." placeholder:"DIR"`
}

// Executes the cppcheck command.
func (c *CppcheckCmd) Run(ctx context.Context) error {
	return runStages(ctx, buildconf.Configuration{
		BuildType:   c.BuildType,
		Gates:       buildconf.NewGateSet(buildconf.Cppcheck),
		Directories: buildconf.Directories{Build: c.BuildDir},
	}, pipeline.Cppcheck())
}

// Represents the 'cruxci benchmarks' command.
type BenchmarksCmd struct {
	Program    string `arg:"" help:"Benchmark program to run."`
	OutputPath string `name:"output-path" help:"JSON results path." placeholder:"PATH"`
}

// Executes the benchmarks command.
func (c *BenchmarksCmd) Run(ctx context.Context) error {
	return runStages(ctx, buildconf.Configuration{
		Gates: buildconf.NewGateSet(buildconf.Benchmarks),
		Benchmarks: buildconf.BenchmarkOptions{
			Program:    c.Program,
			OutputPath: c.OutputPath,
		},
	}, pipeline.Benchmarks())
}

// Represents the 'cruxci examples' command.
type ExamplesCmd struct {
	Dir string `arg:"" help:"Directory holding example programs."`
}

// Executes the examples command.
func (c *ExamplesCmd) Run(ctx context.Context) error {
	return runStages(ctx, buildconf.Configuration{
		Gates:       buildconf.NewGateSet(buildconf.Examples),
		ExamplesDir: c.Dir,
	}, pipeline.Examples())
}

// Represents the 'cruxci valgrind' command.
type ValgrindCmd struct {
	Memcheck     bool     `help:"Check memory errors." xor:"tool"`
	Callgrind    bool     `help:"Profile call costs." xor:"tool"`
	Suppressions string   `help:"Suppressions file." type:"existingfile" placeholder:"PATH"`
	Program      string   `arg:"" help:"Program to run."`
	Args         []string `arg:"" optional:"" help:"Program arguments. Use -- before arguments starting with a dash."`
}

// Executes the valgrind command.
func (c *ValgrindCmd) Run(ctx context.Context) error {
	tool := pipeline.Memcheck
	if c.Callgrind {
		tool = pipeline.Callgrind
	}

	return runStages(ctx, buildconf.Configuration{},
		pipeline.Valgrind(tool, c.Suppressions, c.Program, c.Args...))
}

// Represents the 'cruxci package' command.
type PackageCmd struct {
	BuildType buildconf.BuildType `arg:"" name:"build-type" help:"Build type (Debug, Release, RelWithDebInfo)."`
	CompilerArgs `embed:""`
}

// Executes the package command.
func (c *PackageCmd) Run(ctx context.Context) error {
	return runStages(ctx, buildconf.Configuration{
		BuildType: c.BuildType,
		Compiler:  c.compiler(),
		Package:   buildconf.PackageOptions{Create: true},
	}, pipeline.Package())
}

// Represents the 'cruxci upload' command.
type UploadCmd struct {
	Remote    string `arg:"" help:"Remote name."`
	Reference string `arg:"" name:"package" help:"Package reference, e.g. name/1.0@user/channel."`
	Force     bool   `help:"Overwrite existing recipes and binaries on the remote."`
}

// Executes the upload command.
func (c *UploadCmd) Run(ctx context.Context) error {
	return runStages(ctx, buildconf.Configuration{
		Package: buildconf.PackageOptions{
			Reference: c.Reference,
			Remote:    c.Remote,
			Force:     c.Force,
		},
	}, pipeline.Upload())
}
