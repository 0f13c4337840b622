package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cruciblehq/cruxci/internal/paths"
	"github.com/cruciblehq/cruxci/internal/toolchain"
)

// Represents the 'cruxci resolve-toolchain' command.
type ResolveToolchainCmd struct {
	CompilerArgs `embed:""`

	Path string `help:"Directory holding the compiler executables. Regenerates the profile before resolving." placeholder:"DIR"`
}

// Executes the resolve-toolchain command.
//
// Prints the compiler environment as shell export statements, so the output
// can be evaluated by a CI step.
func (c *ResolveToolchainCmd) Run(ctx context.Context) error {
	runner := newRunner()

	if c.Path != "" {
		if _, err := saveProfile(c.Family, c.Version, toolchain.HostOS(), c.Path); err != nil {
			return err
		}
	}

	env, err := toolchain.NewResolver(store(runner)).Resolve(ctx, c.profile())
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "export CC=%s\n", env.CC)
	fmt.Fprintf(stdout, "export CXX=%s\n", env.CXX)
	return nil
}

// Represents the 'cruxci profile' command.
type ProfileCmd struct {
	CompilerArgs `embed:""`

	Path string       `help:"Directory holding the compiler executables." placeholder:"DIR"`
	OS   toolchain.OS `name:"os" help:"Target operating system (linux, darwin, windows). Defaults to the host."`
}

// Executes the profile command.
func (c *ProfileCmd) Run(ctx context.Context) error {
	target := c.OS
	if target == "" {
		target = toolchain.HostOS()
	}

	path, err := saveProfile(c.Family, c.Version, target, c.Path)
	if err != nil {
		return err
	}

	fmt.Fprintln(stdout, path)
	return nil
}

// Derives a profile and writes it to the profile directory.
//
// Returns the path of the written profile.
func saveProfile(family toolchain.Family, version string, target toolchain.OS, dir string) (string, error) {
	family, err := toolchain.ParseFamily(string(family))
	if err != nil {
		return "", err
	}

	profile, err := toolchain.NewProfile(family, version, target, dir)
	if err != nil {
		return "", err
	}

	s := toolchain.NewFileStore(paths.Profiles(RootCmd.Home))
	if err := s.Save(profile); err != nil {
		return "", err
	}

	slog.Info("profile generated", "profile", profile.Name, "os", target)
	return s.Path(profile.Name), nil
}
