package bootstrap

import (
	"fmt"
	"os"
	"os/exec"
)

// SpawnRequest is everything needed to start the backend script.
type SpawnRequest struct {
	Script string
	Dir    string
	// Output receives both stdout and stderr. Nil means the child inherits
	// the host's streams.
	Output      *os.File
	ShowConsole bool
}

// Spawner starts a detached child and returns its PID. It must not wait for
// or keep the child.
type Spawner interface {
	Spawn(req SpawnRequest) (int, error)
}

// ExecSpawner runs the script through the platform shell.
type ExecSpawner struct{}

func (ExecSpawner) Spawn(req SpawnRequest) (int, error) {
	cmd := shellCommand(req.Script)
	cmd.Dir = req.Dir
	cmd.SysProcAttr = sysProcAttr(req.ShowConsole)

	if req.Output != nil {
		cmd.Stdout = req.Output
		cmd.Stderr = req.Output
	} else {
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
	}

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("start %s: %w", describe(cmd), err)
	}

	pid := cmd.Process.Pid
	// Nobody waits on the child; its lifetime belongs to the OS from here on.
	_ = cmd.Process.Release()
	return pid, nil
}

func describe(cmd *exec.Cmd) string {
	return fmt.Sprintf("%q", cmd.Args)
}
