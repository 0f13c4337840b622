// Parses flags and dispatches the cruxci subcommands.
//
// Every pipeline stage is exposed as its own subcommand, and run executes the
// whole pipeline from a cruxci.yaml file. The global flags are:
//
//	-q, --quiet          Suppress informational output.
//	-v, --verbose        Enable verbose output.
//	-d, --debug          Enable debug output.
//	--log-format         Log output format (text or json).
//	--home               Package manager home (also $CONAN_USER_HOME).
//	--profile-store      Read profiles from files or through the package manager.
//
// Flags override build-time defaults set via linker flags. After parsing, the
// global logger is reconfigured to reflect the final level and format before
// the subcommand runs.
//
// Example usage:
//
//	cruxci profile gcc 12
//	eval "$(cruxci resolve-toolchain gcc 12)"
//	cruxci configure Release gcc 12 --unit-tests --coverage
//	cruxci format src --workers 8
//	cruxci run --config cruxci.yaml
//
// Stage failures are returned from [Execute] unchanged, so the caller can map
// them to an exit code with [fault.ExitCode].
package cli
