// Runs one operation per source file through a bounded worker pool.
//
// [Discover] walks a directory tree and returns every file whose extension,
// compared case-sensitively and without the leading dot, is in a given set.
// [Runner] dispatches one task per file to at most Workers concurrent
// workers and folds the outcomes into an [Aggregate] as tasks complete.
//
// Results are consumed in completion order. The first task that fails
// determines the aggregate verdict, but the runner keeps consuming until
// every submitted task has finished, so no per-file process outlives the
// call. Processing order is not defined; only whether any file failed is
// significant.
//
// Example usage:
//
//	op := filetask.Command(runner, func(path string) []string {
//	    return tools.Format("", path)
//	})
//	agg, err := filetask.NewRunner(8).RunAll(ctx, "src", []string{"cpp", "hpp"}, op)
//	if err != nil {
//	    return err
//	}
//	if err := agg.Err(); err != nil {
//	    return err
//	}
package filetask
