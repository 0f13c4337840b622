package process

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"slices"
	"strings"
	"time"

	"github.com/cruciblehq/cruxci/internal/fault"
)

// Time to wait for the output pipes to drain after a cancelled process exits.
const waitDelay = 5 * time.Second

// Runs commands as host processes.
type Exec struct {
	stdout io.Writer
	stderr io.Writer
}

// Creates a new [Exec] streaming child output to the given writers.
//
// Nil writers discard the corresponding stream.
func NewExec(stdout, stderr io.Writer) *Exec {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}
	return &Exec{stdout: stdout, stderr: stderr}
}

// Runs a command and waits for it to exit.
//
// The child environment is the current environment with cmd.Env overlaid.
// Launch failures are wrapped with [fault.ErrToolNotFound]. A non-zero exit
// code is not an error; it is reported in the result and flagged as failed
// only when cmd.FailOnNonZero is set.
func (e *Exec) Run(ctx context.Context, cmd Command) (*Result, error) {
	if len(cmd.Args) == 0 {
		return nil, fault.Invalid("command", "empty argument vector")
	}

	c := exec.CommandContext(ctx, cmd.Args[0], cmd.Args[1:]...)
	c.Dir = cmd.Dir
	c.Env = mergeEnv(os.Environ(), cmd.Env)
	c.Stdout = firstWriter(cmd.Stdout, e.stdout)
	c.Stderr = firstWriter(cmd.Stderr, e.stderr)
	c.WaitDelay = waitDelay
	configureProcessGroup(c)

	slog.Debug("exec", "command", cmd.String(), "dir", cmd.Dir, "env", overlayKeys(cmd.Env))

	start := time.Now()
	if err := c.Start(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", fault.ErrToolNotFound, cmd.Args[0], err)
	}

	waitErr := c.Wait()
	duration := time.Since(start)

	if ctx.Err() != nil {
		return nil, fmt.Errorf("%s interrupted: %w", cmd.Args[0], ctx.Err())
	}

	code, err := exitCode(waitErr)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cmd.Args[0], err)
	}

	return &Result{
		ExitCode: code,
		Failed:   cmd.FailOnNonZero && code != 0,
		Duration: duration,
	}, nil
}

// Extracts the exit code from the error returned by [exec.Cmd.Wait].
//
// A nil error is exit code 0. An [exec.ExitError] carries the code (or -1 when
// the process was terminated by a signal). Any other error means the process
// state could not be determined and is returned as is.
func exitCode(err error) (int, error) {
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return 0, err
}

// Merges an overlay on top of a base environment.
//
// Base entries keep their order, with overridden values replaced in place.
// Overlay keys absent from base are appended in sorted order so the result is
// deterministic. Malformed base entries (no "=") are dropped.
func mergeEnv(base []string, overlay map[string]string) []string {
	merged := make([]string, 0, len(base)+len(overlay))
	seen := make(map[string]bool, len(overlay))

	for _, entry := range base {
		k, _, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		if v, override := overlay[k]; override {
			entry = k + "=" + v
			seen[k] = true
		}
		merged = append(merged, entry)
	}

	for _, k := range overlayKeys(overlay) {
		if !seen[k] {
			merged = append(merged, k+"="+overlay[k])
		}
	}

	return merged
}

// Returns the sorted keys of an environment overlay.
func overlayKeys(overlay map[string]string) []string {
	keys := make([]string, 0, len(overlay))
	for k := range overlay {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Returns w if non-nil, otherwise fallback.
func firstWriter(w, fallback io.Writer) io.Writer {
	if w != nil {
		return w
	}
	return fallback
}
