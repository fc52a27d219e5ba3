//go:build unix

package renderer

import (
	"errors"
	"os"
	"os/exec"
	"syscall"
)

// killProcessGroup runs the renderer in its own process group. Cancellation
// kills the whole group, including the browser mmdc starts.
func killProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
		if errors.Is(err, syscall.ESRCH) {
			return os.ErrProcessDone
		}
		return err
	}
}
