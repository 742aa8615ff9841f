//go:build !windows

package runcmd

import (
	"os/exec"
	"syscall"
)

// setProcessGroup places the child in its own process group so the whole
// group can be signalled on cancellation.
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// killProcessGroup kills a process and all its children by sending SIGKILL
// to the process group (negative PID).
func killProcessGroup(pid int) {
	// Best-effort cleanup; cmd.Cancel falls back to Process.Kill
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}
