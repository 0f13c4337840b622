// Defines the failure taxonomy shared by every pipeline component.
//
// Five conditions are distinguished:
//
//	ErrToolNotFound       an external executable could not be launched
//	ErrConfiguration      an incomplete toolchain profile or conflicting gates
//	ErrProcessFailed      a single-process stage exited non-zero
//	ErrAggregateFailure   the first failing file task of a format/tidy batch
//	ErrValidation         malformed user input (version strings, arguments)
//
// Components wrap these sentinels, either directly with fmt.Errorf or through
// the typed errors in this package, so callers classify failures with
// errors.Is and recover details with errors.As. [ExitCode] maps any error to
// the exit code the CLI reports.
package fault
