package tools

import (
	"fmt"
	"path/filepath"

	"github.com/cruciblehq/cruxci/internal/buildconf"
	"github.com/cruciblehq/cruxci/internal/fault"
	"github.com/cruciblehq/cruxci/internal/toolchain"
)

const (
	ClangFormat = "clang-format"
	ClangTidy   = "clang-tidy"
	Cppcheck    = "cppcheck"
	Gcovr       = "gcovr"
	Valgrind    = "valgrind"

	// Checks enabled for clang-tidy runs.
	TidyChecks = "clang-analyzer-cplusplus.*"
)

// Macros predefined for cppcheck so test framework macros parse.
var cppcheckDefines = []string{"-DTEST", "-DTEST_F", "-DTEST_P", "-DTYPED_TEST"}

// Returns the in-place format invocation for one file.
func Format(executable, file string) []string {
	return []string{orDefault(executable, ClangFormat), "-i", file, "-style=file"}
}

// Returns the read-only lint invocation for one file.
func Tidy(executable, file string) []string {
	return []string{orDefault(executable, ClangTidy), file, "-checks=" + TidyChecks}
}

// Returns the cppcheck invocation for a build tree.
//
// Sources come from the tree's compilation database. Analysis results are
// cached in <build>/cppcheck.
func CppcheckProject(buildPath string) []string {
	args := []string{
		Cppcheck,
		"--error-exitcode=1",
		"--project=" + filepath.Join(buildPath, "compile_commands.json"),
		"--cppcheck-build-dir=" + CppcheckCache(buildPath),
	}
	return append(args, cppcheckDefines...)
}

// Returns the cppcheck cache directory of a build tree.
func CppcheckCache(buildPath string) string {
	return filepath.Join(buildPath, "cppcheck")
}

// Returns the gcov command matching a compiler.
//
// gcc uses gcov-N, clang uses "llvm-cov-N gcov". Visual Studio has no gcov
// equivalent and fails with a [*fault.ConfigurationError].
func GcovExecutable(family toolchain.Family, major string) (string, error) {
	switch family {
	case toolchain.GCC:
		return "gcov-" + major, nil
	case toolchain.Clang, toolchain.AppleClang:
		return fmt.Sprintf("llvm-cov-%s gcov", major), nil
	}
	return "", &fault.ConfigurationError{Reason: fmt.Sprintf("coverage is not supported for %s", family)}
}

// Returns the coverage report invocation.
//
// Both a Cobertura XML report and a detailed HTML report are written.
// Unreachable and throw branches are excluded.
func Coverage(root, xmlPath, htmlPath, title, gcov string) []string {
	return []string{
		Gcovr, "-r", root,
		"--xml", "--xml-pretty", "--output", xmlPath,
		"--html-title", title, "--html-details", htmlPath,
		"--gcov-executable", gcov,
		"--exclude-unreachable-branches",
		"--exclude-throw-branches",
	}
}

// Returns the environment overlay enabling a sanitizer's runtime options.
//
// Reports go to logPath and a detected error makes the program exit with
// code 2.
func SanitizerEnv(g buildconf.Gate, logPath string) map[string]string {
	name := "ASAN_OPTIONS"
	if g == buildconf.ThreadSanitizer {
		name = "TSAN_OPTIONS"
	}
	return map[string]string{name: "exitcode=2 verbosity=1 log_path=" + logPath}
}

// Returns the benchmark invocation, writing JSON results to output.
func Benchmark(program, output string) []string {
	return []string{
		program,
		"--benchmark_out=" + output,
		"--benchmark_out_format=json",
		"--benchmark_format=console",
		"--benchmark_time_unit=ms",
		"--benchmark_repetitions=3",
	}
}

// Outputs of a valgrind run.
type ValgrindOutputs struct {
	Log          string // Tool log.
	Output       string // memcheck XML report or callgrind profile.
	Suppressions string // memcheck suppression file. Optional.
}

// Returns the memcheck invocation for a program.
func Memcheck(out ValgrindOutputs, program string, args ...string) []string {
	argv := []string{
		Valgrind,
		"--tool=memcheck",
		"--verbose",
		"--leak-check=full",
		"--show-leak-kinds=all",
		"--track-origins=yes",
		"--error-exitcode=1",
		"--demangle=yes",
	}
	if out.Suppressions != "" {
		argv = append(argv, "--suppressions="+out.Suppressions)
	}
	argv = append(argv,
		"--xml=yes",
		"--xml-file="+out.Output,
		"--log-file="+out.Log,
		"--child-silent-after-fork=yes",
		program,
	)
	return append(argv, args...)
}

// Returns the callgrind invocation for a program.
func Callgrind(out ValgrindOutputs, program string, args ...string) []string {
	argv := []string{
		Valgrind,
		"--tool=callgrind",
		"--verbose",
		"--callgrind-out-file=" + out.Output,
		"--log-file=" + out.Log,
		"--error-exitcode=1",
		program,
	}
	return append(argv, args...)
}

func orDefault(executable, fallback string) string {
	if executable == "" {
		return fallback
	}
	return executable
}
