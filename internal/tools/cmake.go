package tools

import (
	"strconv"
	"time"

	"github.com/cruciblehq/cruxci/internal/buildconf"
)

const (
	CMake = "cmake"
	CTest = "ctest"

	// Generator used for every build tree.
	Generator = "Ninja"

	// Target building the documentation.
	DocsTarget = "docs"

	// Per-test wall clock limit enforced by the test runner.
	TestTimeout = 30 * time.Second
)

// Returns the configure invocation for a build tree.
//
// The tree is always regenerated from scratch (--fresh) so stale cache
// entries cannot leak between configurations.
func Configure(source, buildPath string, opts buildconf.OptionSet) []string {
	args := []string{CMake, "-G", Generator}
	args = append(args, opts.Args()...)
	return append(args, "-B", buildPath, "-S", source, "--fresh")
}

// Returns the build invocation for a build tree.
func Build(buildPath string, jobs int) []string {
	return []string{CMake, "--build", buildPath, "--parallel", strconv.Itoa(max(jobs, 1))}
}

// Returns the install invocation for a build tree.
func Install(buildPath, prefix string) []string {
	return []string{CMake, "--install", buildPath, "--prefix", prefix}
}

// Returns the invocation building the documentation target.
func Docs(buildPath string) []string {
	return []string{CMake, "--build", buildPath, "--target", DocsTarget}
}

// Returns the test runner invocation.
//
// Tests run one at a time in random order, each limited to [TestTimeout],
// with a JUnit report written to junitPath.
func Test(testDir, junitPath string) []string {
	return []string{
		CTest,
		"--parallel", "1",
		"--test-dir", testDir,
		"--output-junit", junitPath,
		"--timeout", strconv.Itoa(int(TestTimeout.Seconds())),
		"--output-on-failure",
		"--progress",
		"--schedule-random",
	}
}
