package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/cruciblehq/cruxci/internal/buildconf"
	"github.com/cruciblehq/cruxci/internal/fault"
	"github.com/cruciblehq/cruxci/internal/filetask"
	"github.com/cruciblehq/cruxci/internal/paths"
	"github.com/cruciblehq/cruxci/internal/process"
	"github.com/cruciblehq/cruxci/internal/tools"
)

// Recipe file names searched for by the install-deps stage.
var recipeFiles = []string{"conanfile.txt", "conanfile.py"}

// Installs package manager dependencies for every recipe directory.
//
// Directories come from the configuration or, when none are given, from the
// project's immediate subdirectories holding a recipe file. Package manager
// caches (.conan) are skipped.
func InstallDeps() Stage {
	return Stage{Name: StageInstallDeps, Policy: Abort, Toolchain: true, Action: installDeps}
}

func installDeps(ctx context.Context, run *Run) (*process.Result, error) {
	dirs := run.Config.Dependencies
	if len(dirs) == 0 {
		found, err := discoverRecipes(run.source)
		if err != nil {
			return nil, err
		}
		dirs = found
	}

	if len(dirs) == 0 {
		slog.Info("no dependency recipes found", "root", run.source)
		return &process.Result{}, nil
	}

	return sequence(ctx, dirs, func(dir string) (*process.Result, error) {
		slog.Info("installing dependencies", "directory", dir)
		argv := tools.ConanInstall(dir, run.Config.ModulesPath(), run.Config.BuildType, run.profile())
		return run.exec(ctx, argv, run.conanEnv())
	})
}

// Returns the subdirectories of root that hold a recipe file, relative to
// root and sorted.
func discoverRecipes(root string) ([]string, error) {
	var dirs []string
	for _, name := range recipeFiles {
		matches, err := filepath.Glob(filepath.Join(root, "*", name))
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			dir, err := filepath.Rel(root, filepath.Dir(m))
			if err != nil {
				return nil, err
			}
			if slices.Contains(strings.Split(filepath.ToSlash(dir), "/"), ".conan") {
				continue
			}
			dirs = append(dirs, dir)
		}
	}
	slices.Sort(dirs)
	return slices.Compact(dirs), nil
}

// Generates the build tree from the configuration's generator options.
//
// CC and CXX reach the generator only through the child environment.
func Configure() Stage {
	return Stage{Name: StageConfigure, Policy: Abort, Toolchain: true, Action: configure}
}

func configure(ctx context.Context, run *Run) (*process.Result, error) {
	argv := tools.Configure(".", run.Config.BuildPath(), buildconf.Options(run.Config))
	return run.exec(ctx, argv, run.compilerEnv())
}

// Compiles the build tree.
func Build() Stage {
	return Stage{Name: StageBuild, Policy: Abort, Action: build}
}

func build(ctx context.Context, run *Run) (*process.Result, error) {
	return run.exec(ctx, tools.Build(run.Config.BuildPath(), run.Config.Workers), nil)
}

// Installs the build tree into the install prefix.
func Install() Stage {
	return Stage{Name: StageInstall, Policy: Abort, Action: install}
}

func install(ctx context.Context, run *Run) (*process.Result, error) {
	return run.exec(ctx, tools.Install(run.Config.BuildPath(), run.Config.Directories.Install), nil)
}

// Runs the test suite and writes a JUnit report.
//
// A failing suite is recorded without stopping the run, so coverage and
// later gates still execute.
func UnitTests() Stage {
	return Stage{Name: StageUnitTests, Policy: Continue, Action: unitTests}
}

func unitTests(ctx context.Context, run *Run) (*process.Result, error) {
	if err := process.Check(ctx, run.runner, tools.CTest); err != nil {
		return nil, err
	}

	report, err := run.output(run.Config.UnitTestsReport())
	if err != nil {
		return nil, err
	}

	return run.exec(ctx, tools.Test(run.Config.BuildPath(), report), nil)
}

// Collects coverage from the instrumented test run.
func Coverage() Stage {
	return Stage{Name: StageCoverage, Policy: Abort, Toolchain: true, Action: coverage}
}

func coverage(ctx context.Context, run *Run) (*process.Result, error) {
	if err := process.Check(ctx, run.runner, tools.Gcovr); err != nil {
		return nil, err
	}

	gcov, err := tools.GcovExecutable(run.Config.Compiler.Family, run.Config.Compiler.Major())
	if err != nil {
		return nil, err
	}

	xml, err := run.output(run.Config.CoverageReport())
	if err != nil {
		return nil, err
	}
	html, err := run.output(run.Config.CoverageHTML())
	if err != nil {
		return nil, err
	}

	root, err := run.abs(".")
	if err != nil {
		return nil, err
	}

	argv := tools.Coverage(".", xml, html, filepath.Base(root), gcov)
	return run.exec(ctx, argv, run.compilerEnv())
}

// Runs the benchmark program and writes JSON results.
func Benchmarks() Stage {
	return Stage{Name: StageBenchmarks, Policy: Abort, Action: benchmarks}
}

func benchmarks(ctx context.Context, run *Run) (*process.Result, error) {
	if run.Config.Benchmarks.Program == "" {
		return nil, fault.Invalid("benchmarks", "program is required")
	}

	output, err := run.output(run.Config.Benchmarks.OutputPath)
	if err != nil {
		return nil, err
	}

	return run.exec(ctx, tools.Benchmark(run.Config.Benchmarks.Program, output), nil)
}

// Runs every program in the examples directory, in name order.
func Examples() Stage {
	return Stage{Name: StageExamples, Policy: Abort, Action: examples}
}

func examples(ctx context.Context, run *Run) (*process.Result, error) {
	if run.Config.ExamplesDir == "" {
		return nil, fault.Invalid("examples", "directory is required")
	}

	dir, err := run.abs(run.Config.ExamplesDir)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fault.Invalid("examples", "%s must be an existing directory: %v", run.Config.ExamplesDir, err)
	}

	var programs []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			programs = append(programs, filepath.Join(dir, e.Name()))
		}
	}

	return sequence(ctx, programs, func(program string) (*process.Result, error) {
		slog.Info("running example", "example", filepath.Base(program))
		return run.exec(ctx, []string{program}, nil)
	})
}

// Runs a program under the enabled sanitizer.
//
// Without a configured program the test suite runs instead. The sanitizer
// log is inspected separately, so a failure does not stop the run.
func Sanitize() Stage {
	return Stage{Name: StageSanitize, Policy: Continue, Action: sanitize}
}

func sanitize(ctx context.Context, run *Run) (*process.Result, error) {
	g, ok := run.Config.ActiveSanitizer()
	if !ok {
		return nil, &fault.ConfigurationError{Reason: "sanitize stage requires address or thread sanitizer"}
	}

	opts := run.Config.Sanitizer
	logPath := opts.LogPath
	if logPath == "" {
		logPath = buildconf.DefaultSanitizerLog(run.Config.Directories.Results, g)
	}
	logPath, err := run.output(logPath)
	if err != nil {
		return nil, err
	}

	argv := append([]string{opts.Program}, opts.Args...)
	if opts.Program == "" {
		argv = tools.Test(run.Config.BuildPath(), filepath.Join(filepath.Dir(logPath), "unit_tests.xml"))
	}

	slog.Info("running under sanitizer", "sanitizer", g, "log", logPath)
	return run.exec(ctx, argv, tools.SanitizerEnv(g, logPath))
}

// Formats every source file in place.
func Format() Stage {
	return Stage{Name: StageFormat, Policy: Abort, Action: format}
}

func format(ctx context.Context, run *Run) (*process.Result, error) {
	exe := run.Config.Executables.Format
	if exe == "" {
		exe = tools.ClangFormat
	}
	return run.fileTasks(ctx, exe, func(path string) []string {
		return tools.Format(exe, path)
	})
}

// Lints every source file.
func Tidy() Stage {
	return Stage{Name: StageTidy, Policy: Abort, Action: tidy}
}

func tidy(ctx context.Context, run *Run) (*process.Result, error) {
	exe := run.Config.Executables.Tidy
	if exe == "" {
		exe = tools.ClangTidy
	}
	return run.fileTasks(ctx, exe, func(path string) []string {
		return tools.Tidy(exe, path)
	})
}

// Runs static analysis over the build tree's compilation database.
func Cppcheck() Stage {
	return Stage{Name: StageCppcheck, Policy: Abort, Action: cppcheck}
}

func cppcheck(ctx context.Context, run *Run) (*process.Result, error) {
	if err := process.Check(ctx, run.runner, tools.Cppcheck); err != nil {
		return nil, err
	}

	buildPath, err := run.abs(run.Config.BuildPath())
	if err != nil {
		return nil, err
	}
	if err := paths.EnsureDir(tools.CppcheckCache(buildPath)); err != nil {
		return nil, err
	}

	return run.exec(ctx, tools.CppcheckProject(buildPath), nil)
}

// Builds the documentation target.
func Docs() Stage {
	return Stage{Name: StageDocs, Policy: Abort, Action: docs}
}

func docs(ctx context.Context, run *Run) (*process.Result, error) {
	return run.exec(ctx, tools.Docs(run.Config.BuildPath()), nil)
}

// Creates the package from the project recipe.
func Package() Stage {
	return Stage{Name: StagePackage, Policy: Abort, Toolchain: true, Action: createPackage}
}

func createPackage(ctx context.Context, run *Run) (*process.Result, error) {
	argv := tools.ConanCreate(".", run.Config.BuildType, run.profile())
	return run.exec(ctx, argv, run.conanEnv())
}

// Uploads the package to the configured remote.
func Upload() Stage {
	return Stage{Name: StageUpload, Policy: Abort, Action: upload}
}

func upload(ctx context.Context, run *Run) (*process.Result, error) {
	pkg := run.Config.Package
	if pkg.Remote == "" || pkg.Reference == "" {
		return nil, fault.Invalid("upload", "remote and package reference are required")
	}
	return run.exec(ctx, tools.ConanUpload(pkg.Remote, pkg.Reference, pkg.Force), run.conanEnv())
}

// Valgrind tool selection.
type ValgrindTool string

const (
	Memcheck  ValgrindTool = "memcheck"
	Callgrind ValgrindTool = "callgrind"
)

// Runs a program under valgrind, writing the tool's log and output below
// <results>/<tool>.
func Valgrind(tool ValgrindTool, suppressions, program string, args ...string) Stage {
	return Stage{
		Name:   StageValgrind,
		Policy: Abort,
		Action: func(ctx context.Context, run *Run) (*process.Result, error) {
			if err := process.Check(ctx, run.runner, tools.Valgrind); err != nil {
				return nil, err
			}

			dir := filepath.Join(run.Config.Directories.Results, string(tool))
			out := tools.ValgrindOutputs{Suppressions: suppressions}

			var argv []string
			var err error
			switch tool {
			case Memcheck:
				if out.Log, err = run.output(filepath.Join(dir, "memcheck.log")); err != nil {
					return nil, err
				}
				if out.Output, err = run.output(filepath.Join(dir, "memcheck.xml")); err != nil {
					return nil, err
				}
				argv = tools.Memcheck(out, program, args...)
			case Callgrind:
				if out.Log, err = run.output(filepath.Join(dir, "callgrind.log")); err != nil {
					return nil, err
				}
				if out.Output, err = run.output(filepath.Join(dir, "callgrind.out")); err != nil {
					return nil, err
				}
				argv = tools.Callgrind(out, program, args...)
			default:
				return nil, fault.Invalid("valgrind", "unknown tool %q", tool)
			}

			return run.exec(ctx, argv, nil)
		},
	}
}

// Runs one command per item in order, stopping at the first failure.
//
// Returns the failing result, or the last one when all succeed.
func sequence(ctx context.Context, items []string, run func(string) (*process.Result, error)) (*process.Result, error) {
	last := &process.Result{}
	for _, item := range items {
		result, err := run(item)
		if err != nil {
			return result, err
		}
		if result.Failed {
			return result, nil
		}
		last = result
	}
	return last, ctx.Err()
}

// Runs a per-file command over every source file of the configuration.
//
// Files reached from more than one source root run once.
func (r *Run) fileTasks(ctx context.Context, executable string, argv func(path string) []string) (*process.Result, error) {
	if err := process.Check(ctx, r.runner, executable); err != nil {
		return nil, err
	}

	var files []string
	for _, root := range r.Config.Sources {
		dir, err := r.abs(root)
		if err != nil {
			return nil, err
		}
		found, err := filetask.Discover(dir, r.Config.Extensions)
		if err != nil {
			return nil, fmt.Errorf("discovering sources in %s: %w", root, err)
		}
		files = append(files, found...)
	}
	slices.Sort(files)
	files = slices.Compact(files)

	slog.Info("running file tasks", "executable", executable, "files", len(files), "workers", r.Config.Workers)

	agg := r.files.Run(ctx, files, filetask.Command(r.runner, argv))
	if err := agg.Err(); err != nil {
		return &process.Result{ExitCode: agg.FirstFailure().ExitCode, Failed: true}, err
	}

	return &process.Result{}, nil
}

// Returns an absolute output path and creates its parent directory.
func (r *Run) output(path string) (string, error) {
	abs, err := r.abs(path)
	if err != nil {
		return "", err
	}
	if err := paths.EnsureParent(abs); err != nil {
		return "", err
	}
	return abs, nil
}
