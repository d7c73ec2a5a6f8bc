//go:build unix

package integration

import (
	"os/exec"
	"syscall"
)

// detach starts the script in a new session so it is not tied to the
// caller's terminal.
func detach(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
}
