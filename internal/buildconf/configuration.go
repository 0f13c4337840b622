package buildconf

import (
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/cruciblehq/cruxci/internal/fault"
	"github.com/cruciblehq/cruxci/internal/paths"
	"github.com/cruciblehq/cruxci/internal/toolchain"
)

// File extensions checked by the format and tidy gates when none are given.
var DefaultExtensions = []string{"c", "h", "cpp", "hpp"}

// Compiler selection.
type Compiler struct {
	Family  toolchain.Family `yaml:"family" json:"family"`
	Version string           `yaml:"version" json:"version"`
	Path    string           `yaml:"path,omitempty" json:"path,omitempty"` // Directory holding the compiler executables.
}

// Returns the name of the toolchain profile for this compiler.
func (c Compiler) Profile() string {
	return toolchain.ProfileName(c.Family, c.Version)
}

// Returns the major version, e.g. "12" for "12.2.0".
func (c Compiler) Major() string {
	major, _, _ := strings.Cut(c.Version, ".")
	return major
}

// Output locations of a run, relative to the project root unless absolute.
type Directories struct {
	Build   string `yaml:"build" json:"build"`
	Install string `yaml:"install" json:"install"`
	Results string `yaml:"results" json:"results"`
}

// Report files written by the test and coverage gates.
type Reports struct {
	UnitTests    string `yaml:"unit_tests,omitempty" json:"unitTests,omitempty"`       // JUnit XML.
	CoverageXML  string `yaml:"coverage_xml,omitempty" json:"coverageXml,omitempty"`   // Cobertura XML.
	CoverageHTML string `yaml:"coverage_html,omitempty" json:"coverageHtml,omitempty"` // Detailed HTML.
}

// Parameters of the sanitizer gate.
type SanitizerOptions struct {
	Program string   `yaml:"program,omitempty" json:"program,omitempty"` // Instrumented program. When empty, the test suite runs under the sanitizer.
	Args    []string `yaml:"args,omitempty" json:"args,omitempty"`
	LogPath string   `yaml:"log_path,omitempty" json:"logPath,omitempty"`
}

// Parameters of the benchmarks gate.
type BenchmarkOptions struct {
	Program    string `yaml:"program,omitempty" json:"program,omitempty"`
	OutputPath string `yaml:"output_path,omitempty" json:"outputPath,omitempty"`
}

// Parameters of the package and upload stages.
type PackageOptions struct {
	Create    bool   `yaml:"create,omitempty" json:"create,omitempty"`       // Run the package stage.
	Reference string `yaml:"reference,omitempty" json:"reference,omitempty"` // Package reference to upload.
	Remote    string `yaml:"remote,omitempty" json:"remote,omitempty"`       // Upload remote. Upload is skipped when empty.
	Force     bool   `yaml:"force,omitempty" json:"force,omitempty"`
}

// Executables used by the file task gates. Empty fields use the tool's
// default name.
type Executables struct {
	Format string `yaml:"format,omitempty" json:"format,omitempty"`
	Tidy   string `yaml:"tidy,omitempty" json:"tidy,omitempty"`
}

// Everything a pipeline run needs to know.
//
// Build a value with [New]; it is not modified afterwards.
type Configuration struct {
	BuildType    BuildType        `yaml:"build_type" json:"buildType"`
	Compiler     Compiler         `yaml:"compiler" json:"compiler"`
	Gates        GateSet          `yaml:"gates" json:"gates"`
	Warnings     bool             `yaml:"warnings,omitempty" json:"warnings"` // Treat compiler warnings as errors.
	Directories  Directories      `yaml:"directories,omitempty" json:"directories"`
	Reports      Reports          `yaml:"reports,omitempty" json:"reports"`
	Dependencies []string         `yaml:"dependencies,omitempty" json:"dependencies,omitempty"` // Directories holding package manager recipes. Discovered when empty.
	Sources      []string         `yaml:"sources,omitempty" json:"sources,omitempty"`           // Roots scanned by the format and tidy gates.
	Extensions   []string         `yaml:"extensions,omitempty" json:"extensions,omitempty"`
	Workers      int              `yaml:"workers,omitempty" json:"workers,omitempty"`
	Executables  Executables      `yaml:"executables,omitempty" json:"executables,omitempty"`
	Sanitizer    SanitizerOptions `yaml:"sanitizer,omitempty" json:"sanitizer,omitempty"`
	Benchmarks   BenchmarkOptions `yaml:"benchmarks,omitempty" json:"benchmarks,omitempty"`
	ExamplesDir  string           `yaml:"examples_dir,omitempty" json:"examplesDir,omitempty"`
	Package      PackageOptions   `yaml:"package,omitempty" json:"package,omitempty"`
}

// Returns a normalized and validated copy of c.
//
// Defaults are filled for the build type (Debug), directories, extensions,
// workers and report paths. Report paths default to locations below the
// results directory. Enabling coverage enables unit tests, since coverage
// is collected from an instrumented test run. The original value is not
// modified.
func New(c Configuration) (*Configuration, error) {
	cfg := c.clone()
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Checks that the configuration can drive a run.
//
// The compiler may be left empty for runs whose stages do not compile, such
// as a standalone format pass; once any compiler field is set, family and
// version must both be valid.
//
// Malformed input fails with a [fault.ErrValidation] error. Gates that cannot
// be combined fail with a [*fault.ConfigurationError], checked before any
// field.
func (c *Configuration) Validate() error {
	if c.Gates.Has(AddressSanitizer) && c.Gates.Has(ThreadSanitizer) {
		return &fault.ConfigurationError{Reason: "address and thread sanitizers are mutually exclusive"}
	}

	if !c.BuildType.Valid() {
		return fault.Invalid("build type", "unknown build type %q, expected one of Debug, Release, RelWithDebInfo", c.BuildType)
	}

	if c.Compiler != (Compiler{}) {
		if _, err := toolchain.ParseFamily(string(c.Compiler.Family)); err != nil {
			return err
		}
		if err := validateVersion(c.Compiler.Version); err != nil {
			return err
		}
	}

	if c.Gates.Has(Coverage) && c.Compiler.Family == toolchain.VisualStudio {
		return &fault.ConfigurationError{
			Profile: c.Compiler.Profile(),
			Reason:  "coverage is not supported for visual_studio",
		}
	}

	if c.Workers < 0 {
		return fault.Invalid("workers", "must not be negative, got %d", c.Workers)
	}

	if c.Package.Remote != "" && c.Package.Reference == "" {
		return fault.Invalid("package", "upload to %q requires a package reference", c.Package.Remote)
	}

	return nil
}

// Validates a compiler version string.
func validateVersion(version string) error {
	if version == "" {
		return fault.Invalid("compiler version", "version is required")
	}
	if _, err := semver.NewVersion(version); err != nil {
		return fault.Invalid("compiler version", "%q is not a valid version: %v", version, err)
	}
	return nil
}

// Returns the enabled sanitizer gate, if any.
func (c *Configuration) ActiveSanitizer() (Gate, bool) {
	for _, g := range []Gate{AddressSanitizer, ThreadSanitizer} {
		if c.Gates.Has(g) {
			return g, true
		}
	}
	return 0, false
}

// Returns the build tree of the configured build type.
//
//	<build>/<build type>
func (c *Configuration) BuildPath() string {
	return filepath.Join(c.Directories.Build, string(c.BuildType))
}

// Directory where the package manager installs dependency modules.
//
//	<build>/modules
func (c *Configuration) ModulesPath() string {
	return filepath.Join(c.Directories.Build, "modules")
}

// Returns the JUnit report written by the unit test gate.
func (c *Configuration) UnitTestsReport() string {
	return c.Reports.UnitTests
}

// Returns the Cobertura report written by the coverage gate.
func (c *Configuration) CoverageReport() string {
	return c.Reports.CoverageXML
}

// Returns the HTML report written by the coverage gate.
func (c *Configuration) CoverageHTML() string {
	return c.Reports.CoverageHTML
}

// Returns the pipeline report path.
func (c *Configuration) ReportPath() string {
	return filepath.Join(c.Directories.Results, "pipeline.json")
}

// Returns the default sanitizer log for a sanitizer gate.
func DefaultSanitizerLog(results string, g Gate) string {
	if g == ThreadSanitizer {
		return filepath.Join(results, "sanitizers", "thread_sanitizer", "tsan.log")
	}
	return filepath.Join(results, "sanitizers", "address_sanitizer", "asan.log")
}

// Returns the default benchmark results path.
func DefaultBenchmarksOutput(results string) string {
	return filepath.Join(results, "benchmarks", "results.json")
}

// Fills defaults in place.
func (c *Configuration) normalize() {
	if f, err := toolchain.ParseFamily(string(c.Compiler.Family)); err == nil {
		c.Compiler.Family = f
	}
	c.Compiler.Version = strings.TrimSpace(c.Compiler.Version)

	if c.BuildType == "" {
		c.BuildType = Debug
	}

	if c.Gates.Has(Coverage) {
		c.Gates = c.Gates.With(UnitTests)
	}

	if c.Directories.Build == "" {
		c.Directories.Build = paths.DefaultBuildDir
	}
	if c.Directories.Install == "" {
		c.Directories.Install = paths.DefaultInstallDir
	}
	if c.Directories.Results == "" {
		c.Directories.Results = paths.DefaultResultsDir
	}

	if (c.Gates.Has(Format) || c.Gates.Has(Tidy)) && len(c.Sources) == 0 {
		c.Sources = []string{"."}
	}

	if len(c.Extensions) == 0 {
		c.Extensions = slices.Clone(DefaultExtensions)
	}
	for i, ext := range c.Extensions {
		c.Extensions[i] = strings.TrimPrefix(ext, ".")
	}

	if c.Workers == 0 {
		c.Workers = runtime.NumCPU()
	}

	if c.Reports.UnitTests == "" {
		c.Reports.UnitTests = filepath.Join(c.Directories.Results, "unit_tests", "unit_tests.xml")
	}
	if c.Reports.CoverageXML == "" {
		c.Reports.CoverageXML = filepath.Join(c.Directories.Results, "coverage", "cobertura.xml")
	}
	if c.Reports.CoverageHTML == "" {
		c.Reports.CoverageHTML = filepath.Join(c.Directories.Results, "coverage", "html", "coverage.html")
	}

	if g, ok := c.ActiveSanitizer(); ok && c.Sanitizer.LogPath == "" {
		c.Sanitizer.LogPath = DefaultSanitizerLog(c.Directories.Results, g)
	}
	if c.Benchmarks.OutputPath == "" {
		c.Benchmarks.OutputPath = DefaultBenchmarksOutput(c.Directories.Results)
	}
}

// Returns a deep copy.
func (c Configuration) clone() Configuration {
	c.Dependencies = slices.Clone(c.Dependencies)
	c.Sources = slices.Clone(c.Sources)
	c.Extensions = slices.Clone(c.Extensions)
	c.Sanitizer.Args = slices.Clone(c.Sanitizer.Args)
	return c
}
