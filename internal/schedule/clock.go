package schedule

import (
	"fmt"
	"strconv"
	"strings"
)

const MinutesPerDay = 24 * 60

// ParseClock 把 "HH:MM" 转成距午夜的分钟数
// 缺失或无法解析的部分按 0 处理，所以 "" 和 "abc" 都得到 0，"9" 得到 540
func ParseClock(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	parts := strings.SplitN(s, ":", 3)
	hours := atoiOrZero(parts[0])
	minutes := 0
	if len(parts) > 1 {
		minutes = atoiOrZero(parts[1])
	}
	return hours*60 + minutes
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

// FormatClock 把分钟数格式化为 "HH:MM"，超出一天的部分回绕
func FormatClock(minutes int) string {
	m := ((minutes % MinutesPerDay) + MinutesPerDay) % MinutesPerDay
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}
