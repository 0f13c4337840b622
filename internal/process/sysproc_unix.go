//go:build unix

package process

import (
	"os/exec"
	"syscall"
)

// Starts the child in its own process group and makes cancellation kill the
// whole group rather than only the direct child.
func configureProcessGroup(c *exec.Cmd) {
	c.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	c.Cancel = func() error {
		if c.Process == nil {
			return nil
		}
		return syscall.Kill(-c.Process.Pid, syscall.SIGKILL)
	}
}
