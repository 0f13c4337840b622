package toolchain

import (
	"maps"
	"slices"
	"strings"
)

const (

	// Profile section holding package manager settings.
	sectionSettings = "settings"

	// Profile section holding environment variables for builds.
	sectionEnv = "env"

	// Profile section holding tool configuration.
	sectionConf = "conf"

	// Build system generator written into new profiles.
	generator = "Ninja"
)

// Keys queried by the resolver.
const (
	KeyCC  = sectionEnv + ".CC"
	KeyCXX = sectionEnv + ".CXX"
)

// A named toolchain profile.
//
// Keys are addressed as "<section>.<name>", e.g. "env.CC" or
// "settings.compiler.version".
type Profile struct {
	Name     string
	Settings map[string]string
	Env      map[string]string
	Conf     map[string]string
}

// Returns the canonical profile name for a family and version.
//
// The name is the family followed by the version with spaces removed, e.g.
// "gcc12" or "visual_studio17".
func ProfileName(family Family, version string) string {
	return strings.ReplaceAll(string(family)+version, " ", "")
}

// Derives a complete profile for a compiler.
//
// The executable names come from the per-OS table. When compilerDir is set,
// CC and CXX are rooted there. Fails with a [fault.ConfigurationError] when
// the family is not supported on the OS.
func NewProfile(family Family, version string, os OS, compilerDir string) (*Profile, error) {
	x, err := Lookup(family, os)
	if err != nil {
		return nil, err
	}

	env := x.Environment(version, compilerDir)

	p := &Profile{
		Name: ProfileName(family, version),
		Settings: map[string]string{
			"os":               os.settingName(),
			"compiler":         x.Compiler,
			"compiler.version": version,
		},
		Env: map[string]string{
			"CC":                    env.CC,
			"CXX":                   env.CXX,
			"CONAN_CMAKE_GENERATOR": generator,
		},
		Conf: map[string]string{
			"tools.cmake.cmaketoolchain:generator": generator,
			"tools.system.package_manager:mode":    "install",
			"tools.system.package_manager:sudo":    "True",
		},
	}
	if x.LibCXX != "" {
		p.Settings["compiler.libcxx"] = x.LibCXX
	}

	return p, nil
}

// Returns the value of a "<section>.<name>" key, or "" if absent.
func (p *Profile) Get(key string) string {
	section, name, ok := strings.Cut(key, ".")
	if !ok {
		return ""
	}
	return p.section(section)[name]
}

// Returns the compiler environment recorded in the profile.
func (p *Profile) Environment() Environment {
	return Environment{CC: p.Get(KeyCC), CXX: p.Get(KeyCXX)}
}

// Returns the entries of a section.
func (p *Profile) section(name string) map[string]string {
	switch name {
	case sectionSettings:
		return p.Settings
	case sectionEnv:
		return p.Env
	case sectionConf:
		return p.Conf
	}
	return nil
}

// Returns the keys of a section map in sorted order.
func sortedKeys(m map[string]string) []string {
	return slices.Sorted(maps.Keys(m))
}
