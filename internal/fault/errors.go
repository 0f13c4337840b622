package fault

import (
	"errors"
	"fmt"
)

var (
	ErrToolNotFound     = errors.New("tool not found")
	ErrConfiguration    = errors.New("configuration error")
	ErrProcessFailed    = errors.New("process failed")
	ErrAggregateFailure = errors.New("file task failed")
	ErrValidation       = errors.New("validation error")
)

// Reports a toolchain profile that cannot yield a complete compiler
// environment, or a build configuration whose gates conflict.
type ConfigurationError struct {
	Profile string // Profile name, empty for gate conflicts.
	Reason  string // Human readable cause.
	Err     error  // Underlying cause, if any.
}

func (e *ConfigurationError) Error() string {
	msg := e.Reason
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	if e.Profile == "" {
		return fmt.Sprintf("%s: %s", ErrConfiguration, msg)
	}
	return fmt.Sprintf("%s: profile %q: %s", ErrConfiguration, e.Profile, msg)
}

func (e *ConfigurationError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrConfiguration, e.Err}
	}
	return []error{ErrConfiguration}
}

// Reports a stage whose single external process exited non-zero.
type ProcessError struct {
	Stage    string
	ExitCode int
}

func (e *ProcessError) Error() string {
	return fmt.Sprintf("%s: stage %s exited with code %d", ErrProcessFailed, e.Stage, e.ExitCode)
}

func (e *ProcessError) Unwrap() error {
	return ErrProcessFailed
}

// Reports the first file task, in completion order, that failed.
type AggregateError struct {
	Path     string
	ExitCode int
	Err      error // Launch error, if the task never produced an exit code.
}

func (e *AggregateError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", ErrAggregateFailure, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %s exited with code %d", ErrAggregateFailure, e.Path, e.ExitCode)
}

func (e *AggregateError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrAggregateFailure, e.Err}
	}
	return []error{ErrAggregateFailure}
}

// Wraps a validation failure for the given subject.
func Invalid(subject string, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrValidation, subject, fmt.Sprintf(format, args...))
}
