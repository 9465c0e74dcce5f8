//go:build !windows

package process

import (
	"os/exec"
	"syscall"
)

// Isolate starts cmd in its own process group so KillTree reaches its
// children. Call before Start.
func Isolate(cmd *exec.Cmd) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Setpgid = true
}

// KillProcessGroup sends SIGKILL to the process group led by pid
// (negative PID).
func KillProcessGroup(pid int) {
	// Best-effort; callers follow up with a direct kill.
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}
