//go:build !windows

package bootstrap

import (
	"os/exec"
	"syscall"
)

// DefaultScriptName is the backend launch script shipped with the package.
const DefaultScriptName = "start_backend.sh"

func shellCommand(script string) *exec.Cmd {
	return exec.Command("/bin/sh", script)
}

// sysProcAttr puts the child in its own session so closing the host's
// terminal or process group does not take it down. There is no console to
// hide outside Windows, so showConsole has no effect.
func sysProcAttr(showConsole bool) *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setsid: true}
}
