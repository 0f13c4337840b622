package filetask

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// Dispatches per-file operations to a bounded worker pool.
type Runner struct {
	Workers int // Maximum concurrent tasks. Zero or less runs every task at once.
}

// Creates a new [Runner] with the given worker limit.
func NewRunner(workers int) *Runner {
	return &Runner{Workers: workers}
}

// Discovers files under root and runs op on each of them.
//
// Fails only when discovery fails. Task failures are reported through the
// returned [Aggregate].
func (r *Runner) RunAll(ctx context.Context, root string, extensions []string, op Operation) (*Aggregate, error) {
	files, err := Discover(root, extensions)
	if err != nil {
		return nil, err
	}

	slog.Debug("files discovered", "root", root, "extensions", extensions, "count", len(files))
	return r.Run(ctx, files, op), nil
}

// Runs op exactly once for each file.
//
// Completed tasks are consumed in completion order. The first failure is
// recorded as the aggregate verdict and later failures only increment the
// failure count. Run returns after every task has completed, failed or not.
func (r *Runner) Run(ctx context.Context, files []string, op Operation) *Aggregate {
	agg := &Aggregate{Discovered: len(files)}
	if len(files) == 0 {
		return agg
	}

	results := make(chan Task, len(files))

	var g errgroup.Group
	g.SetLimit(r.limit(len(files)))

	go func() {
		for _, path := range files {
			g.Go(func() error {
				t := Task{Path: path}
				t.execute(ctx, op)
				results <- t
				return nil
			})
		}
		g.Wait()
		close(results)
	}()

	for t := range results {
		if t.Outcome == Failed {
			logTaskFailure(t, agg.Ok())
		}
		agg.add(t)
	}

	return agg
}

// Returns the effective pool size for n tasks.
func (r *Runner) limit(n int) int {
	if r.Workers <= 0 || r.Workers > n {
		return n
	}
	return r.Workers
}

// Logs a failed task. The first failure is logged as an error, later ones
// as warnings.
func logTaskFailure(t Task, first bool) {
	attrs := []any{"path", t.Path, "code", t.ExitCode}
	if t.Err != nil {
		attrs = append(attrs, "error", t.Err)
	}
	if first {
		slog.Error("file task failed", attrs...)
		return
	}
	slog.Warn("file task failed", attrs...)
}
