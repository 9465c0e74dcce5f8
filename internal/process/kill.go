package process

import (
	"errors"
	"os"
	"os/exec"
)

// KillTree returns a Cmd.Cancel function that kills cmd's whole process
// tree, then the process itself.
func KillTree(cmd *exec.Cmd) func() error {
	return func() error {
		if cmd.Process == nil {
			return nil
		}
		KillProcessGroup(cmd.Process.Pid)
		if err := cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
			return err
		}
		return nil
	}
}
