//go:build !unix

package process

import "os/exec"

// Process groups are not used on this platform; cancellation kills the
// direct child only.
func configureProcessGroup(c *exec.Cmd) {}
