// Resolves compiler environments from named toolchain profiles.
//
// A profile is a named bundle describing a compiler family, a version and the
// derived compiler executables, stored in the package manager's profile
// directory. The [Resolver] queries a [Store] for the CC and CXX entries of a
// profile and either returns a complete [Environment] or fails with a
// [fault.ConfigurationError]; it never returns a partially populated
// environment and never retries, since a missing toolchain is a configuration
// defect rather than a transient condition.
//
// Mapping a compiler family to executable names differs per operating system
// (clang is "clang-15" on Linux, "clang" under apple-clang on macOS and
// "clang-cl" on Windows). The mapping is an explicit lookup table keyed by
// family and OS, see [Lookup], so it can be exercised without the target OS.
//
// Example usage:
//
//	store := toolchain.NewFileStore(paths.Profiles())
//	env, err := toolchain.NewResolver(store).Resolve(ctx, "gcc12")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(env.CC, env.CXX)
package toolchain
