// Runs external tools on the host.
//
// A [Runner] executes one [Command]: an argument vector, an environment
// overlay, an optional working directory, and a policy saying whether a
// non-zero exit status should be treated as a failure. The child inherits the
// current environment with the overlay applied on top, so callers never touch
// the orchestrator's own environment to pass CC/CXX or sanitizer options.
//
// The runner reports the exit code and whether it was treated as a failure;
// it does not interpret output, which is streamed to the configured writers.
// A command that cannot be launched at all (missing executable, permission
// denied) fails with [fault.ErrToolNotFound], distinct from a non-zero exit.
//
// On unix the child runs in its own process group. Cancelling the context
// kills the whole group and waits for it, so no grandchild is orphaned.
//
// Example usage:
//
//	r := process.NewExec(os.Stdout, os.Stderr)
//	result, err := r.Run(ctx, process.Command{
//	    Args:          []string{"cmake", "--build", "build/Release"},
//	    Env:           map[string]string{"CC": "gcc-12", "CXX": "g++-12"},
//	    FailOnNonZero: true,
//	})
//	if err != nil {
//	    return err
//	}
//	if result.Failed {
//	    ...
//	}
package process
