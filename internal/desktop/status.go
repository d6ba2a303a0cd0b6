package desktop

import (
	"fmt"

	"github.com/citynh/desktop/internal/bootstrap"
)

// statusLabel 托盘上显示的一行后端状态
func statusLabel(st BackendStatus) string {
	if !st.Attempted {
		return "启动中..."
	}
	switch bootstrap.Outcome(st.Outcome) {
	case bootstrap.OutcomeSpawned, bootstrap.OutcomeSpawnedUnlogged:
		if st.Health.Ready {
			return fmt.Sprintf("运行中 (PID %d)", st.PID)
		}
		return fmt.Sprintf("已启动，等待就绪 (PID %d)", st.PID)
	case bootstrap.OutcomeAlreadyRunning:
		return "运行中 (已有实例)"
	case bootstrap.OutcomeNotFound:
		return "未找到启动脚本"
	case bootstrap.OutcomeSpawnFailed:
		return "启动失败"
	case bootstrap.OutcomeNoExecutable:
		return "无法定位程序目录"
	}
	return st.Outcome
}
