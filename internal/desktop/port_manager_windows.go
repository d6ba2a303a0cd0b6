//go:build windows

package desktop

import (
	"bytes"
	"fmt"
	"os/exec"
	"syscall"
)

// CheckPortOccupied 检查端口是否被监听，返回监听进程的 PID
// 如果端口未被占用，返回 -1
func CheckPortOccupied(port int) (int, error) {
	pid, err := getPIDByPort(port)
	if err != nil {
		return -1, fmt.Errorf("检查端口失败: %w", err)
	}
	return pid, nil
}

// getPIDByPort 获取监听在指定端口上的进程 PID
// 如果端口未被占用，返回 -1
func getPIDByPort(port int) (int, error) {
	cmd := exec.Command("netstat", "-ano", "-p", "TCP")
	// 不弹出 netstat 的控制台窗口
	cmd.SysProcAttr = &syscall.SysProcAttr{HideWindow: true}
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		return -1, fmt.Errorf("执行 netstat 失败: %w", err)
	}
	return parseNetstat(out.String(), port), nil
}
