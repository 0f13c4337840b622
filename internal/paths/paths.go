package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const (

	// Name used for directory and file naming.
	appName = "cruxci"

	// Environment variable relocating the package manager home.
	HomeEnv = "CONAN_USER_HOME"

	// Default permission mode for directories.
	DefaultDirMode os.FileMode = 0755

	// Default permission mode for files.
	DefaultFileMode os.FileMode = 0644

	// Default root of generated reports, relative to the project root.
	DefaultResultsDir = "results"

	// Default build tree root, relative to the project root.
	DefaultBuildDir = "build"

	// Default install prefix, relative to the project root.
	DefaultInstallDir = "install"
)

// Package manager home directory.
//
// Returns override when non-empty, then $CONAN_USER_HOME, then the XDG data
// directory.
//
//	Linux:   ~/.local/share/cruxci
//	macOS:   ~/Library/Application Support/cruxci
func Home(override string) string {
	if override != "" {
		return override
	}
	if v := os.Getenv(HomeEnv); v != "" {
		return v
	}
	return filepath.Join(xdg.DataHome, appName)
}

// Directory holding toolchain profiles under the given home override.
//
//	<home>/.conan/profiles
func Profiles(home string) string {
	return filepath.Join(Home(home), ".conan", "profiles")
}

// Default path of the pipeline file.
//
//	Linux:   ~/.config/cruxci/cruxci.yaml
//	macOS:   ~/Library/Application Support/cruxci/cruxci.yaml
func ConfigFile() string {
	return filepath.Join(xdg.ConfigHome, appName, appName+".yaml")
}

// Creates a directory and its parents. Existing directories are not an error.
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, DefaultDirMode)
}

// Creates the parent directory of a file path.
func EnsureParent(file string) error {
	return EnsureDir(filepath.Dir(file))
}
