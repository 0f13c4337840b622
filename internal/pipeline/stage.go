package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cruciblehq/cruxci/internal/fault"
	"github.com/cruciblehq/cruxci/internal/process"
)

// Stage names.
const (
	StageInstallDeps = "install-deps"
	StageConfigure   = "configure"
	StageBuild       = "build"
	StageInstall     = "install"
	StageUnitTests   = "unit-tests"
	StageCoverage    = "coverage"
	StageBenchmarks  = "benchmarks"
	StageExamples    = "examples"
	StageSanitize    = "sanitize"
	StageFormat      = "format"
	StageTidy        = "tidy"
	StageCppcheck    = "cppcheck"
	StageDocs        = "docs"
	StagePackage     = "package"
	StageUpload      = "upload"
	StageValgrind    = "valgrind"
)

// Work performed by a stage.
//
// An action returns the result of its external work. A returned error means
// the work could not be carried out or, for file task stages, carries the
// first failing file.
type Action func(ctx context.Context, run *Run) (*process.Result, error)

// A named, ordered unit of pipeline work.
type Stage struct {
	Name      string
	Policy    Policy
	Toolchain bool // Whether the stage needs the resolved compiler environment.
	Action    Action
}

// Outcome of one executed stage. Never modified once recorded.
type StageResult struct {
	Stage      string        `json:"stage"`
	Policy     Policy        `json:"policy"`
	ExitCode   int           `json:"exitCode"`
	Failed     bool          `json:"failed"`
	Duration   time.Duration `json:"-"`
	DurationMS int64         `json:"durationMs"`
	Error      string        `json:"error,omitempty"`

	err error
}

// Returns the error describing a failed stage, or nil.
//
// Stages that failed with an error return it. Stages that failed through a
// non-zero exit return a [*fault.ProcessError].
func (r *StageResult) Err() error {
	if !r.Failed {
		return nil
	}
	if r.err != nil {
		return r.err
	}
	return &fault.ProcessError{Stage: r.Stage, ExitCode: r.ExitCode}
}

// Returns true if the result stops the run.
//
// Failed Abort stages stop the run. So does any stage whose tool could not
// be launched or whose input was rejected, whatever its policy.
func (r *StageResult) halts() bool {
	if !r.Failed {
		return false
	}
	if r.Policy == Abort {
		return true
	}
	return r.err != nil && !errors.Is(r.err, fault.ErrAggregateFailure) && !errors.Is(r.err, fault.ErrProcessFailed)
}

// Executes a stage and records its result.
func (s Stage) execute(ctx context.Context, run *Run) StageResult {
	slog.Info("running stage", "stage", s.Name, "policy", s.Policy)

	start := time.Now()
	result, err := s.Action(ctx, run)
	elapsed := time.Since(start)

	r := StageResult{
		Stage:      s.Name,
		Policy:     s.Policy,
		Duration:   elapsed,
		DurationMS: elapsed.Milliseconds(),
		err:        err,
	}

	if result != nil {
		r.ExitCode = result.ExitCode
		r.Failed = result.Failed
	}
	if err != nil {
		if result == nil {
			r.ExitCode = -1
		}
		r.Failed = true
		r.Error = err.Error()
	}

	if r.Failed {
		slog.Error("stage failed", "stage", s.Name, "code", r.ExitCode, "duration", elapsed, "error", r.Error)
	} else {
		slog.Info("stage finished", "stage", s.Name, "code", r.ExitCode, "duration", elapsed)
	}

	return r
}
