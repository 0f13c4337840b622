package process

import (
	"context"
	"io"
	"strings"
	"time"
)

// Describes a single external command invocation.
type Command struct {
	Args          []string          // Executable followed by its arguments.
	Env           map[string]string // Overlay applied on top of the inherited environment.
	Dir           string            // Working directory. Empty uses the current directory.
	FailOnNonZero bool              // Whether a non-zero exit marks the result as failed.
	Stdout        io.Writer         // Overrides the runner's stdout for this command.
	Stderr        io.Writer         // Overrides the runner's stderr for this command.
}

// Returns the command line as a single string, for logging.
func (c Command) String() string {
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		if a == "" || strings.ContainsAny(a, " \t\"'") {
			a = `"` + strings.ReplaceAll(a, `"`, `\"`) + `"`
		}
		parts[i] = a
	}
	return strings.Join(parts, " ")
}

// Outcome of a command that was launched and ran to completion.
type Result struct {
	ExitCode int           // Exit code of the process, -1 if killed by a signal.
	Failed   bool          // True when FailOnNonZero was set and ExitCode is non-zero.
	Duration time.Duration // Wall-clock time from launch to exit.
}

// Executes external commands.
//
// Run blocks until the process exits. It returns an error only when the
// process could not be launched or the context was cancelled; a non-zero exit
// is reported through [Result].
type Runner interface {
	Run(ctx context.Context, cmd Command) (*Result, error)
}
