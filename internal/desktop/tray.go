//go:build windows

package desktop

import (
	"context"
	_ "embed"
	"fmt"
	"log"

	"github.com/getlantern/systray"
	"github.com/wailsapp/wails/v2/pkg/runtime"
)

//go:embed icon.ico
var iconData []byte

// TrayManager 管理系统托盘
type TrayManager struct {
	ctx               context.Context
	app               *LauncherApp
	menuShow          *systray.MenuItem
	menuBackendStatus *systray.MenuItem
	menuBackendAddr   *systray.MenuItem
	menuOpenLogs      *systray.MenuItem
	menuQuit          *systray.MenuItem
}

// NewTrayManager 创建托盘管理器
func NewTrayManager(ctx context.Context, app *LauncherApp) *TrayManager {
	return &TrayManager{
		ctx: ctx,
		app: app,
	}
}

// Start 启动托盘
func (t *TrayManager) Start() {
	systray.Run(t.onReady, t.onExit)
}

// onReady 托盘就绪回调
func (t *TrayManager) onReady() {
	log.Println("[Tray] Initializing system tray...")

	systray.SetIcon(iconData)
	systray.SetTitle("CityNH")
	systray.SetTooltip("CityNH Hospital Management")

	t.menuShow = systray.AddMenuItem("显示窗口", "显示主窗口")
	systray.AddSeparator()

	// 后端状态（只读）
	t.menuBackendStatus = systray.AddMenuItem("后端状态: 启动中...", "后端服务启动结果")
	t.menuBackendStatus.Disable()

	t.menuBackendAddr = systray.AddMenuItem("后端地址: -", "后端服务地址")
	t.menuBackendAddr.Disable()

	systray.AddSeparator()

	t.menuOpenLogs = systray.AddMenuItem("打开后端日志", "打开 backend.log 所在目录")
	t.menuOpenLogs.Disable()

	systray.AddSeparator()

	t.menuQuit = systray.AddMenuItem("退出", "退出应用（后端继续运行）")

	t.UpdateStatus()
	t.app.onStatusChange(t.UpdateStatus)

	go t.handleMenuEvents()
}

// onExit 托盘退出回调
func (t *TrayManager) onExit() {
	log.Println("[Tray] System tray exited")
}

// handleMenuEvents 处理菜单事件
func (t *TrayManager) handleMenuEvents() {
	for {
		select {
		case <-t.menuShow.ClickedCh:
			log.Println("[Tray] Show window clicked")
			t.showWindow()

		case <-t.menuOpenLogs.ClickedCh:
			log.Println("[Tray] Open logs clicked")
			t.openLogs()

		case <-t.menuQuit.ClickedCh:
			log.Println("[Tray] Quit clicked")
			t.quit()
			return
		}
	}
}

// showWindow 显示窗口
func (t *TrayManager) showWindow() {
	runtime.WindowShow(t.ctx)
	runtime.WindowUnminimise(t.ctx)
}

// openLogs 用系统文件管理器打开日志目录
func (t *TrayManager) openLogs() {
	dir := t.app.LogDirectory()
	if dir == "" {
		return
	}
	runtime.BrowserOpenURL(t.ctx, "file:///"+dir)
}

// quit 退出应用
func (t *TrayManager) quit() {
	log.Println("[Tray] Quitting application...")
	t.app.Quit()
	systray.Quit()
}

// UpdateStatus 更新托盘菜单状态
func (t *TrayManager) UpdateStatus() {
	if t.app == nil || t.menuBackendStatus == nil {
		return
	}

	st := t.app.BackendStatus()
	t.menuBackendStatus.SetTitle("后端状态: " + statusLabel(st))

	if st.Address != "" {
		t.menuBackendAddr.SetTitle(fmt.Sprintf("后端地址: %s", st.Address))
	} else {
		t.menuBackendAddr.SetTitle("后端地址: -")
	}

	if st.LogPath != "" {
		t.menuOpenLogs.Enable()
	} else {
		t.menuOpenLogs.Disable()
	}
}
