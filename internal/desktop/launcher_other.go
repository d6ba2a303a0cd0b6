//go:build !windows

package desktop

import (
	"context"
	"log"
)

// BeforeClose 非 Windows: 允许正常退出；后端在独立会话中，不受影响
func (a *LauncherApp) BeforeClose(ctx context.Context) bool {
	log.Println("[Launcher] Window close requested")
	return false
}
