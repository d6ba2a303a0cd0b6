//go:build !windows

package desktop

import (
	"context"
	"log"
)

// TrayManager stub for non-Windows platforms; status changes go to the log instead
type TrayManager struct {
	app *LauncherApp
}

// NewTrayManager creates a log-only tray manager
func NewTrayManager(ctx context.Context, app *LauncherApp) *TrayManager {
	return &TrayManager{app: app}
}

// Start registers for status changes and returns
func (t *TrayManager) Start() {
	if t.app != nil {
		t.app.onStatusChange(t.UpdateStatus)
	}
}

// UpdateStatus logs the current backend status
func (t *TrayManager) UpdateStatus() {
	if t.app == nil {
		return
	}
	log.Printf("[Tray] Backend: %s", statusLabel(t.app.BackendStatus()))
}
