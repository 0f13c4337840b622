package filetask

import (
	"context"
	"time"

	"github.com/cruciblehq/cruxci/internal/fault"
	"github.com/cruciblehq/cruxci/internal/process"
)

// Per-file work. Returns the exit code of the work, or an error when it
// could not run at all.
type Operation func(ctx context.Context, path string) (int, error)

// Creates an [Operation] that runs the command built by argv for each file.
func Command(runner process.Runner, argv func(path string) []string) Operation {
	return func(ctx context.Context, path string) (int, error) {
		result, err := runner.Run(ctx, process.Command{
			Args:          argv(path),
			FailOnNonZero: true,
		})
		if err != nil {
			return -1, err
		}
		return result.ExitCode, nil
	}
}

// Outcome of a single task.
type Outcome int

const (
	Ok Outcome = iota
	Failed
)

func (o Outcome) String() string {
	if o == Failed {
		return "failed"
	}
	return "ok"
}

// One unit of per-file work and, once executed, its outcome.
type Task struct {
	Path     string
	Outcome  Outcome
	ExitCode int   // Exit code of the operation, -1 if it could not run.
	Err      error // Reason the operation could not run.
	Duration time.Duration
}

// Executes op for the task's file and records the outcome.
func (t *Task) execute(ctx context.Context, op Operation) {
	start := time.Now()
	t.ExitCode, t.Err = op(ctx, t.Path)
	t.Duration = time.Since(start)

	if t.Err != nil || t.ExitCode != 0 {
		t.Outcome = Failed
	}
}

// Combined verdict of a batch of tasks.
type Aggregate struct {
	Discovered int    // Tasks submitted.
	Completed  int    // Tasks whose outcome was observed.
	Failures   int    // Completed tasks that failed.
	Tasks      []Task // Completed tasks, in completion order.

	first *Task // First failed task, in completion order.
}

// Returns true if every task succeeded.
func (a *Aggregate) Ok() bool {
	return a.first == nil
}

// Returns the first failed task in completion order, or nil.
func (a *Aggregate) FirstFailure() *Task {
	return a.first
}

// Returns a [*fault.AggregateError] naming the first failed task, or nil
// when every task succeeded.
func (a *Aggregate) Err() error {
	if a.first == nil {
		return nil
	}
	return &fault.AggregateError{
		Path:     a.first.Path,
		ExitCode: a.first.ExitCode,
		Err:      a.first.Err,
	}
}

// Folds a completed task into the aggregate.
func (a *Aggregate) add(t Task) {
	a.Completed++
	a.Tasks = append(a.Tasks, t)

	if t.Outcome != Failed {
		return
	}
	a.Failures++
	if a.first == nil {
		a.first = &t
	}
}
