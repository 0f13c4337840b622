package cli

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/cruciblehq/cruxci/internal"
	"github.com/cruciblehq/cruxci/internal/fault"
)

// Represents the root command for the cruxci tool.
var RootCmd struct {
	Quiet        bool   `short:"q" help:"Suppress informational output."`
	Verbose      bool   `short:"v" help:"Enable verbose output."`
	Debug        bool   `short:"d" help:"Enable debug output."`
	LogFormat    string `name:"log-format" enum:"text,json" default:"text" help:"Log output format (${enum})."`
	Home         string `help:"Override the package manager home directory." env:"CONAN_USER_HOME" placeholder:"DIR"`
	ProfileStore string `name:"profile-store" enum:"file,conan" default:"file" help:"Where toolchain profiles are read from (${enum})."`

	ResolveToolchain ResolveToolchainCmd `cmd:"" name:"resolve-toolchain" help:"Print the compiler environment of a toolchain profile."`
	Profile          ProfileCmd          `cmd:"" help:"Generate and store a toolchain profile."`
	InstallDeps      InstallDepsCmd      `cmd:"" name:"install-deps" help:"Install package dependencies."`
	Configure        ConfigureCmd        `cmd:"" help:"Configure the build tree."`
	Build            BuildCmd            `cmd:"" help:"Build the configured tree."`
	Install          InstallCmd          `cmd:"" help:"Install build artifacts."`
	Test             TestCmd             `cmd:"" help:"Run unit tests."`
	Coverage         CoverageCmd         `cmd:"" help:"Generate coverage reports."`
	Sanitize         SanitizeCmd         `cmd:"" help:"Run a program under a runtime sanitizer."`
	Format           FormatCmd           `cmd:"" help:"Format source files in place."`
	Tidy             TidyCmd             `cmd:"" help:"Run static analysis on source files."`
	Cppcheck         CppcheckCmd         `cmd:"" help:"Run whole-project static analysis."`
	Benchmarks       BenchmarksCmd       `cmd:"" help:"Run a benchmark program."`
	Examples         ExamplesCmd         `cmd:"" help:"Run every example program in a directory."`
	Valgrind         ValgrindCmd         `cmd:"" help:"Run a program under valgrind."`
	Package          PackageCmd          `cmd:"" help:"Create the project package."`
	Upload           UploadCmd           `cmd:"" help:"Upload a package to a remote."`
	Pipeline         RunCmd              `cmd:"" name:"run" help:"Run the full pipeline."`
	Version          VersionCmd          `cmd:"" help:"Show version information."`
}

// Parses arguments, configures logging, and runs the selected subcommand.
//
// Malformed arguments print usage and fail with [fault.ErrValidation].
func Execute(args []string) error {

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	parser, err := kong.New(&RootCmd,
		kong.Name(internal.Name),
		kong.Description("Build and verification orchestrator for C/C++ projects.\n\nDrives the package manager, build system and analysis tools as one pipeline."),
		kong.Vars{
			"version": internal.VersionString(),
		},
		kong.Writers(stdout, os.Stderr),
		kong.BindTo(ctx, (*context.Context)(nil)),
	)
	if err != nil {
		return err
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		var perr *kong.ParseError
		if errors.As(err, &perr) && perr.Context != nil {
			_ = perr.Context.PrintUsage(true)
		}
		return fault.Invalid("arguments", "%v", err)
	}

	configureLogger()

	return kongCtx.Run()
}

// Configures the global logger based on CLI flags.
func configureLogger() {
	internal.SetDebug(RootCmd.Debug || internal.IsDebug())
	internal.SetQuiet(RootCmd.Quiet || internal.IsQuiet())
	internal.SetVerbose(RootCmd.Verbose || internal.IsVerbose())

	slog.SetDefault(internal.NewLogger(os.Stderr, RootCmd.LogFormat))
}
