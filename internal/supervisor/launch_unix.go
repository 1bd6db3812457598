//go:build !windows

package supervisor

import (
	"os/exec"
	"syscall"
)

// launchDetached starts path with args in a new session (setsid) with no
// inherited standard handles, so the child is detached from the controlling
// terminal and survives this process's exit. The process handle is released
// immediately; ownership passes to the operating system.
func launchDetached(path string, args []string) error {
	cmd := exec.Command(path, args...)
	// nil std handles resolve to /dev/null on Start.
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := cmd.Start(); err != nil {
		return err
	}
	return cmd.Process.Release()
}
