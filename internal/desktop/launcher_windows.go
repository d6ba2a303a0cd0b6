//go:build windows

package desktop

import (
	"context"
	"log"

	"github.com/wailsapp/wails/v2/pkg/runtime"
)

// BeforeClose Windows: 关闭窗口时隐藏到托盘，后端继续运行
// 通过托盘或前端主动退出时放行
func (a *LauncherApp) BeforeClose(ctx context.Context) bool {
	if a.quitting.Load() {
		return false
	}
	log.Println("[Launcher] Window close requested - hiding to tray, backend keeps running")
	runtime.WindowHide(ctx)
	return true
}
