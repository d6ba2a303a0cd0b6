package desktop

import (
	"strconv"
	"strings"
)

// parseNetstat 从 netstat -ano 输出中找出监听 port 的 PID
func parseNetstat(output string, port int) int {
	want := strconv.Itoa(port)
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 5 || !strings.EqualFold(fields[0], "TCP") {
			continue
		}
		// 只看 LISTENING，TIME_WAIT 等残留连接不算占用
		if !strings.EqualFold(fields[3], "LISTENING") {
			continue
		}

		localAddr := fields[1]
		lastColonIdx := strings.LastIndex(localAddr, ":")
		if lastColonIdx == -1 || localAddr[lastColonIdx+1:] != want {
			continue
		}
		pid, err := strconv.Atoi(fields[len(fields)-1])
		if err != nil {
			continue
		}
		return pid
	}
	return -1
}
