//go:build !windows

package desktop

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// CheckPortOccupied 非 Windows：尝试连接本机端口
// 能连上返回 0（无法得知 PID），否则返回 -1
func CheckPortOccupied(port int) (int, error) {
	if port <= 0 || port > 65535 {
		return -1, fmt.Errorf("invalid port %d", port)
	}
	conn, err := net.DialTimeout("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(port)), 300*time.Millisecond)
	if err != nil {
		return -1, nil
	}
	conn.Close()
	return 0, nil
}
