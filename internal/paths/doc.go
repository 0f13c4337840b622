// Provides platform-appropriate paths for the orchestrator.
//
// Profile storage lives under the package manager home. The home defaults to
// an XDG data directory and is relocated by the CONAN_USER_HOME variable (or
// the --home flag, which reads the same variable). Default report locations
// are relative to the project root so CI systems can collect them.
//
// Stages create their own output directories through [EnsureDir] and
// [EnsureParent], which are idempotent and safe to call concurrently.
package paths
