// Package pipeline sequences the stages of a build-and-verification run.
//
// A run executes stages strictly one after another in a fixed order:
// install-deps, configure, build, install, then the enabled gates in
// declaration order (unit-tests, coverage, benchmarks, examples, sanitize,
// format, tidy, cppcheck, docs), then package and upload when requested.
// Each stage wraps either one external process or a batch of file tasks and
// declares a failure [Policy]: an [Abort] stage that fails stops the run, a
// [Continue] stage that fails is recorded and the run goes on. A stage that
// cannot launch its tool always stops the run.
//
// The compiler environment is resolved once, before the first stage that
// needs it, and is passed to stages by value. It only reaches child
// processes as an environment overlay; the orchestrator never modifies its
// own environment.
//
// Every run produces a [Report] holding the configuration, the generator
// options and their digest, one [StageResult] per executed stage and the
// overall outcome. [Report.Err] converts a failed outcome into an error
// carrying the failing tool's exit code.
//
// Example usage:
//
//	orch := pipeline.New(pipeline.Options{
//	    Runner:   process.NewExec(os.Stdout, os.Stderr),
//	    Resolver: toolchain.NewResolver(store),
//	    Profiles: paths.Profiles(""),
//	})
//	report, err := orch.Run(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	if err := report.Write(cfg.ReportPath()); err != nil {
//	    return err
//	}
//	return report.Err()
package pipeline
