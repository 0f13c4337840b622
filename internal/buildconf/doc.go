// Describes a single pipeline run: build type, compiler, enabled gates and
// the directories and per-gate parameters the stages read.
//
// A [Configuration] is assembled from CLI flags and, optionally, a pipeline
// file (see [Load]), then passed through [New] which fills defaults,
// normalizes implied gates and validates it. The result is treated as
// read-only for the rest of the run.
//
// [Options] materializes a configuration into the generator options passed
// to the configure step. It is a pure function of the configuration: calling
// it twice with equal configurations yields equal option sets with equal
// digests.
//
// Example usage:
//
//	cfg, err := buildconf.New(buildconf.Configuration{
//	    BuildType: buildconf.Release,
//	    Compiler:  buildconf.Compiler{Family: toolchain.GCC, Version: "12"},
//	    Gates:     buildconf.NewGateSet(buildconf.UnitTests),
//	})
//	if err != nil {
//	    return err
//	}
//	opts := buildconf.Options(cfg)
//	fmt.Println(opts.Digest())
package buildconf
