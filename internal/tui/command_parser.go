package tui

import (
	"regexp"
	"strings"
	"time"
)

// CommandType 命令类型
type CommandType int

const (
	CommandTypeUnknown CommandType = iota
	CommandTypeClear
	CommandTypeNow
	CommandTypeDay
	CommandTypeHelp
	CommandTypeQuit
)

// Command 解析后的命令
type Command struct {
	Type CommandType
	Raw  string
	Day  time.Weekday
}

// CommandParser 解析聊天输入框里以 / 开头的命令，其余输入发送给助手
type CommandParser struct {
	clearPatterns []*regexp.Regexp
	nowPatterns   []*regexp.Regexp
	dayPatterns   []*regexp.Regexp
	helpPatterns  []*regexp.Regexp
	quitPatterns  []*regexp.Regexp
}

// NewCommandParser 创建新的命令解析器
func NewCommandParser() *CommandParser {
	parser := &CommandParser{}
	parser.initializePatterns()
	return parser
}

func (p *CommandParser) initializePatterns() {
	p.clearPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^/(clear|reset)$`),
	}
	p.nowPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^/(now|today)$`),
	}
	// /day monday 或 /day mon
	p.dayPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^/day\s+([a-z]+)$`),
	}
	p.helpPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^/(help|\?)$`),
	}
	p.quitPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^/(quit|exit|q)$`),
	}
}

// Parse 解析命令字符串，不是命令时返回 nil
func (p *CommandParser) Parse(input string) *Command {
	input = strings.TrimSpace(input)
	if !strings.HasPrefix(input, "/") {
		return nil
	}

	simple := []struct {
		patterns []*regexp.Regexp
		typ      CommandType
	}{
		{p.clearPatterns, CommandTypeClear},
		{p.nowPatterns, CommandTypeNow},
		{p.helpPatterns, CommandTypeHelp},
		{p.quitPatterns, CommandTypeQuit},
	}
	for _, s := range simple {
		for _, pattern := range s.patterns {
			if pattern.MatchString(input) {
				return &Command{Type: s.typ, Raw: input}
			}
		}
	}

	for _, pattern := range p.dayPatterns {
		if matches := pattern.FindStringSubmatch(input); matches != nil {
			if day, ok := parseWeekday(matches[1]); ok {
				return &Command{Type: CommandTypeDay, Raw: input, Day: day}
			}
		}
	}

	return &Command{Type: CommandTypeUnknown, Raw: input}
}

// parseWeekday 接受完整英文名或者前三个字母
func parseWeekday(s string) (time.Weekday, bool) {
	s = strings.ToLower(s)
	if len(s) < 3 {
		return 0, false
	}
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if s == name || s == name[:3] {
			return d, true
		}
	}
	return 0, false
}

// FormatCommandType 格式化命令类型为字符串
func FormatCommandType(cmdType CommandType) string {
	switch cmdType {
	case CommandTypeClear:
		return "CLEAR"
	case CommandTypeNow:
		return "NOW"
	case CommandTypeDay:
		return "DAY"
	case CommandTypeHelp:
		return "HELP"
	case CommandTypeQuit:
		return "QUIT"
	default:
		return "UNKNOWN"
	}
}

const commandHelp = "/clear reset the conversation · /now jump to now · /day <name> show another weekday · /quit exit"
