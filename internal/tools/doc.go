// Builds argument vectors for the external tools a pipeline drives.
//
// Every function here is pure: it turns paths and options into the argv (and,
// for sanitizers, the environment overlay) of one invocation. Nothing is
// executed; stages hand the result to a [process.Runner].
//
// Example usage:
//
//	opts := buildconf.Options(cfg)
//	argv := tools.Configure(".", cfg.BuildPath(), opts)
//	result, err := runner.Run(ctx, process.Command{Args: argv, FailOnNonZero: true})
package tools
