package desktop

import (
	"context"
	"log"

	"github.com/citynh/desktop/internal/health"
)

// portInUse 后端端口是否已有进程在监听（上次启动的后端可能仍在运行）
func portInUse(port int) bool {
	if port <= 0 {
		return false
	}
	pid, err := CheckPortOccupied(port)
	if err != nil {
		log.Printf("[PortManager] %v", err)
		return false
	}
	if pid != -1 {
		log.Printf("[PortManager] 端口 %d 已被占用 (PID %d)", port, pid)
		return true
	}
	return false
}

// BackendRunning 判断上次启动的后端是否仍在运行
// 端口被占用只是前置条件，必须健康检查通过才算；端口被其他程序占用时照常启动
func BackendRunning(ctx context.Context, port int, checker *health.Checker) (health.Status, bool) {
	if !portInUse(port) {
		return health.Status{}, false
	}
	st := checker.Check(ctx)
	if !st.Ready {
		log.Printf("[PortManager] 端口 %d 上的进程不是后端 (%s)，继续启动", port, st.Error)
		return st, false
	}
	return st, true
}
