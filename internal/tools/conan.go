package tools

import "github.com/cruciblehq/cruxci/internal/buildconf"

const Conan = "conan"

// Returns the dependency install invocation for one recipe directory.
//
// The same profile is used for the build and host contexts and missing
// binaries are built from source.
func ConanInstall(recipeDir, installFolder string, buildType buildconf.BuildType, profile string) []string {
	return []string{
		Conan, "install", recipeDir,
		"--install-folder", installFolder,
		"--settings", "build_type=" + string(buildType),
		"--profile:build", profile,
		"--profile:host", profile,
		"--build", "missing",
	}
}

// Returns the package creation invocation for the recipe in dir.
func ConanCreate(dir string, buildType buildconf.BuildType, profile string) []string {
	return []string{
		Conan, "create", dir, "_/_",
		"--settings", "build_type=" + string(buildType),
		"--profile:build", profile,
		"--profile:host", profile,
		"--build", "missing",
	}
}

// Returns the package upload invocation.
func ConanUpload(remote, reference string, force bool) []string {
	args := []string{Conan, "upload", "--all", "--confirm", "--parallel", "--remote", remote, reference}
	if force {
		args = append(args, "--force")
	}
	return args
}
