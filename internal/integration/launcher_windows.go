//go:build windows

package integration

import (
	"os/exec"
	"syscall"
)

// createNewConsole is CREATE_NEW_CONSOLE from the Win32 process creation flags.
const createNewConsole = 0x00000010

// detach gives the script its own console window.
func detach(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{CreationFlags: createNewConsole}
}
