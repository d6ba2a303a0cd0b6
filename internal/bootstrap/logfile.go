package bootstrap

import (
	"fmt"
	"os"
	"path/filepath"
)

// LogFileName is the file the backend's combined output is appended to.
const LogFileName = "backend.log"

// logFilePath picks the log location: the override, then the per-user
// config directory, then <exeDir>/logs.
func (b *Bootstrapper) logFilePath(exeDir string) string {
	if b.opts.LogDirectory != "" {
		return filepath.Join(b.opts.LogDirectory, LogFileName)
	}
	if b.UserConfigDir != nil {
		if dir, err := b.UserConfigDir(); err == nil && dir != "" {
			return filepath.Join(dir, b.opts.AppName, "logs", LogFileName)
		}
	}
	return filepath.Join(exeDir, "logs", LogFileName)
}

func (b *Bootstrapper) openLogFile(path string) (*os.File, error) {
	if err := b.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := b.OpenLog(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return f, nil
}

func openAppend(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
}
