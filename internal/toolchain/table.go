package toolchain

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/cruciblehq/cruxci/internal/fault"
)

// Compiler family as selected by the user.
type Family string

const (
	GCC          Family = "gcc"
	Clang        Family = "clang"
	AppleClang   Family = "apple-clang"
	VisualStudio Family = "visual_studio"
)

// Every supported family, in presentation order.
var Families = []Family{GCC, Clang, AppleClang, VisualStudio}

// Parses a compiler family name.
//
// "Visual Studio" and "msvc" are accepted as aliases of [VisualStudio].
func ParseFamily(s string) (Family, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "gcc":
		return GCC, nil
	case "clang":
		return Clang, nil
	case "apple-clang":
		return AppleClang, nil
	case "visual_studio", "visual studio", "msvc":
		return VisualStudio, nil
	}
	return "", fault.Invalid("compiler family", "unknown family %q", s)
}

// Operating system a toolchain targets.
type OS string

const (
	Linux   OS = "linux"
	Darwin  OS = "darwin"
	Windows OS = "windows"
)

// Returns the operating system of the running binary.
func HostOS() OS {
	return OS(runtime.GOOS)
}

// Returns the OS name used in package manager settings.
func (o OS) settingName() string {
	switch o {
	case Linux:
		return "Linux"
	case Darwin:
		return "Macos"
	case Windows:
		return "Windows"
	}
	return string(o)
}

// Placeholder replaced by the compiler version in executable patterns.
const versionPlaceholder = "{version}"

// Executable naming for one family on one operating system.
type Executables struct {
	Compiler string // Compiler setting understood by the package manager.
	LibCXX   string // C++ standard library setting. Empty when not applicable.
	CC       string // C compiler executable pattern.
	CXX      string // C++ compiler executable pattern.
}

// Returns the environment for a compiler version, optionally rooted at dir.
func (x Executables) Environment(version, dir string) Environment {
	return Environment{
		CC:  expand(x.CC, version, dir),
		CXX: expand(x.CXX, version, dir),
	}
}

// Expands an executable pattern.
func expand(pattern, version, dir string) string {
	exe := strings.ReplaceAll(pattern, versionPlaceholder, version)
	if dir != "" {
		return filepath.Join(dir, exe)
	}
	return exe
}

// Key of the executable table.
type target struct {
	family Family
	os     OS
}

// Executable naming per family and operating system.
//
// Pairs that are absent are unsupported: Visual Studio exists only on
// Windows, and gcc is not offered as a Windows toolchain.
var executables = map[target]Executables{
	{GCC, Linux}:            {Compiler: "gcc", LibCXX: "libstdc++11", CC: "gcc-{version}", CXX: "g++-{version}"},
	{GCC, Darwin}:           {Compiler: "gcc", LibCXX: "libstdc++11", CC: "gcc", CXX: "g++"},
	{Clang, Linux}:          {Compiler: "clang", LibCXX: "libstdc++11", CC: "clang-{version}", CXX: "clang++-{version}"},
	{Clang, Darwin}:         {Compiler: "apple-clang", LibCXX: "libc++", CC: "clang", CXX: "clang++"},
	{Clang, Windows}:        {Compiler: "clang", CC: "clang-cl", CXX: "clang-cl"},
	{AppleClang, Darwin}:    {Compiler: "apple-clang", LibCXX: "libc++", CC: "clang", CXX: "clang++"},
	{VisualStudio, Windows}: {Compiler: "Visual Studio", CC: "cl", CXX: "cl"},
}

// Returns the executable naming for a family on an operating system.
//
// Fails with a [fault.ConfigurationError] when the pair is unsupported.
func Lookup(family Family, os OS) (Executables, error) {
	x, ok := executables[target{family, os}]
	if !ok {
		return Executables{}, &fault.ConfigurationError{
			Reason: fmt.Sprintf("compiler family %s is not supported on %s", family, os),
		}
	}
	return x, nil
}
