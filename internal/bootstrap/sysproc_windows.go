//go:build windows

package bootstrap

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/windows"
)

// DefaultScriptName is the backend launch script shipped with the installer.
const DefaultScriptName = "start_backend.bat"

func shellCommand(script string) *exec.Cmd {
	return exec.Command("cmd", "/C", script)
}

// sysProcAttr detaches the child from the host's console and window. Without
// showConsole no console window is created at all.
func sysProcAttr(showConsole bool) *syscall.SysProcAttr {
	if showConsole {
		return &syscall.SysProcAttr{
			CreationFlags: windows.CREATE_NEW_PROCESS_GROUP | windows.CREATE_NEW_CONSOLE,
		}
	}
	return &syscall.SysProcAttr{
		HideWindow:    true,
		CreationFlags: windows.CREATE_NEW_PROCESS_GROUP | windows.CREATE_NO_WINDOW,
	}
}
