//go:build unix

package sandbox

import (
	"os/exec"
	"syscall"
)

// unixController runs the child in its own process group so that
// terminate reaps grandchildren too ("go run" execs the built binary).
type unixController struct{}

func newProcessController() processController {
	return unixController{}
}

func (unixController) setup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

func (unixController) terminate(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	// Negative pid signals the whole process group.
	return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
}

func (unixController) isolated() bool {
	return true
}
