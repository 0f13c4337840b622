package fault

import "errors"

const (

	// Exit code for success.
	ExitOK = 0

	// Exit code for any failure that carries no more specific code.
	ExitFailure = 1
)

// Returns the process exit code for err.
//
// A nil error maps to [ExitOK]. Process and aggregate failures propagate the
// failing tool's own exit code when it is positive, so a sanitizer configured
// with exitcode=2 surfaces as 2. Everything else maps to [ExitFailure].
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var perr *ProcessError
	if errors.As(err, &perr) && perr.ExitCode > 0 {
		return perr.ExitCode
	}

	var aerr *AggregateError
	if errors.As(err, &aerr) && aerr.ExitCode > 0 {
		return aerr.ExitCode
	}

	return ExitFailure
}
