//go:build !unix

package sandbox

import "os/exec"

// fallbackController is used on platforms without process-group control
// (notably Windows). Only the direct child is killed on timeout; that
// reduced guarantee is surfaced to callers via isolated().
type fallbackController struct{}

func newProcessController() processController {
	return fallbackController{}
}

func (fallbackController) setup(cmd *exec.Cmd) {}

func (fallbackController) terminate(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	return cmd.Process.Kill()
}

func (fallbackController) isolated() bool {
	return false
}
