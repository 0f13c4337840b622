package main

import (
	"log/slog"
	"os"

	"github.com/cruciblehq/cruxci/internal"
	"github.com/cruciblehq/cruxci/internal/cli"
	"github.com/cruciblehq/cruxci/internal/fault"
)

// The entry point for the cruxci tool.
//
// Initializes logging, displays startup information, and executes the root
// command. The exit code is derived from the returned error, so a failing
// tool's own exit code reaches the caller.
func main() {
	slog.SetDefault(internal.NewLogger(os.Stderr, "text"))

	slog.Debug("build", "version", internal.VersionString())

	slog.Debug("cruxci is running",
		"pid", os.Getpid(),
		"cwd", cwd(),
		"args", os.Args,
	)

	if err := cli.Execute(os.Args[1:]); err != nil {
		slog.Error(err.Error())
		os.Exit(fault.ExitCode(err))
	}
}

// Returns the current working directory or "(unknown)".
func cwd() string {
	cwd, err := os.Getwd()
	if err != nil {
		return "(unknown)"
	}
	return cwd
}
