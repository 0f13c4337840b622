package buildconf

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/cruciblehq/cruxci/internal/fault"
)

// Reads a pipeline file.
//
// Unknown keys are rejected. The returned configuration is not normalized;
// apply overrides with [Merge] and pass the result to [New]. A missing file
// is reported with an error matching [fs.ErrNotExist].
func Load(path string) (*Configuration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parses pipeline file contents.
func Parse(data []byte) (*Configuration, error) {
	var cfg Configuration

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fault.Invalid("pipeline file", "%v", err)
	}

	return &cfg, nil
}

// Returns base with every field set in override applied on top.
//
// Strings, numbers and lists replace the base value when set. Booleans and
// gates can only be switched on by an override.
func Merge(base, override Configuration) Configuration {
	out := base.clone()

	setString(&out.BuildType, override.BuildType)
	setString(&out.Compiler.Family, override.Compiler.Family)
	setString(&out.Compiler.Version, override.Compiler.Version)
	setString(&out.Compiler.Path, override.Compiler.Path)
	setString(&out.Directories.Build, override.Directories.Build)
	setString(&out.Directories.Install, override.Directories.Install)
	setString(&out.Directories.Results, override.Directories.Results)
	setString(&out.Reports.UnitTests, override.Reports.UnitTests)
	setString(&out.Reports.CoverageXML, override.Reports.CoverageXML)
	setString(&out.Reports.CoverageHTML, override.Reports.CoverageHTML)
	setString(&out.Executables.Format, override.Executables.Format)
	setString(&out.Executables.Tidy, override.Executables.Tidy)
	setString(&out.Sanitizer.Program, override.Sanitizer.Program)
	setString(&out.Sanitizer.LogPath, override.Sanitizer.LogPath)
	setString(&out.Benchmarks.Program, override.Benchmarks.Program)
	setString(&out.Benchmarks.OutputPath, override.Benchmarks.OutputPath)
	setString(&out.ExamplesDir, override.ExamplesDir)
	setString(&out.Package.Reference, override.Package.Reference)
	setString(&out.Package.Remote, override.Package.Remote)

	setSlice(&out.Dependencies, override.Dependencies)
	setSlice(&out.Sources, override.Sources)
	setSlice(&out.Extensions, override.Extensions)
	setSlice(&out.Sanitizer.Args, override.Sanitizer.Args)

	if override.Workers != 0 {
		out.Workers = override.Workers
	}

	out.Gates |= override.Gates
	out.Warnings = out.Warnings || override.Warnings
	out.Package.Create = out.Package.Create || override.Package.Create
	out.Package.Force = out.Package.Force || override.Package.Force

	return out
}

func setString[T ~string](dst *T, v T) {
	if v != "" {
		*dst = v
	}
}

func setSlice(dst *[]string, v []string) {
	if len(v) > 0 {
		*dst = slices.Clone(v)
	}
}
