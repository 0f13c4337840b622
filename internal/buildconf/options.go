package buildconf

import (
	"strings"

	"github.com/opencontainers/go-digest"
)

// Generator option names.
const (
	OptionBuildType = "CMAKE_BUILD_TYPE"
	OptionWarnings  = "TC_ENABLE_WARNINGS_ERROR"
)

// Generator option enabling each gate.
var gateOptions = [gateCount]string{
	UnitTests:        "TC_ENABLE_UNIT_TESTS",
	Coverage:         "TC_ENABLE_UNIT_TESTS_COVERAGE",
	Benchmarks:       "TC_ENABLE_BENCHMARKS",
	Examples:         "TC_ENABLE_EXAMPLES",
	AddressSanitizer: "TC_ENABLE_SANITIZER_ADDRESS",
	ThreadSanitizer:  "TC_ENABLE_SANITIZER_THREAD",
	Format:           "TC_ENABLE_CLANG_FORMAT",
	Tidy:             "TC_ENABLE_CLANG_TIDY",
	Cppcheck:         "TC_ENABLE_CPPCHECK",
	Docs:             "TC_ENABLE_DOCS",
}

// Returns the generator option enabling a gate.
func (g Gate) Option() string {
	if g >= gateCount {
		return ""
	}
	return gateOptions[g]
}

// A single generator option.
type Option struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Ordered generator options.
type OptionSet []Option

// Materializes a configuration into generator options.
//
// The result holds the build type, one boolean per gate in declaration
// order and the warnings-as-errors flag. Unit tests are enabled whenever
// coverage is, independent of normalization.
func Options(c *Configuration) OptionSet {
	opts := OptionSet{{Name: OptionBuildType, Value: string(c.BuildType)}}

	for _, g := range Gates() {
		enabled := c.Gates.Has(g)
		if g == UnitTests {
			enabled = enabled || c.Gates.Has(Coverage)
		}
		opts = append(opts, Option{Name: g.Option(), Value: boolValue(enabled)})
	}

	return append(opts, Option{Name: OptionWarnings, Value: boolValue(c.Warnings)})
}

// Returns the value of an option.
func (o OptionSet) Get(name string) (string, bool) {
	for _, opt := range o {
		if opt.Name == name {
			return opt.Value, true
		}
	}
	return "", false
}

// Returns true if the option holds a true boolean.
func (o OptionSet) Enabled(name string) bool {
	v, _ := o.Get(name)
	return v == boolValue(true)
}

// Returns the options as generator arguments ("-D", "NAME=VALUE", ...).
func (o OptionSet) Args() []string {
	args := make([]string, 0, 2*len(o))
	for _, opt := range o {
		args = append(args, "-D", opt.Name+"="+opt.Value)
	}
	return args
}

// Returns a content digest of the option set.
//
// Equal option sets have equal digests, so the digest recorded in a report
// identifies the exact generator configuration of a run.
func (o OptionSet) Digest() digest.Digest {
	var b strings.Builder
	for _, opt := range o {
		b.WriteString(opt.Name)
		b.WriteByte('=')
		b.WriteString(opt.Value)
		b.WriteByte('\n')
	}
	return digest.FromString(b.String())
}

// Formats a boolean the way the generator scripts expect.
func boolValue(v bool) string {
	if v {
		return "True"
	}
	return "False"
}
