package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Zacy-Sokach/DayFlow/internal/markdown"
	"github.com/Zacy-Sokach/DayFlow/internal/schedule"
)

var (
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	userStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	botStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	nowStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	selectStyle  = lipgloss.NewStyle().Reverse(true)
	overlayStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("13")).Padding(0, 1)
	paneStyle    = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), true, false, false, false).BorderForeground(lipgloss.Color("8"))
)

// toneStyles 活动块按状态着色
var toneStyles = map[schedule.Tone]lipgloss.Style{
	schedule.ToneMuted:   lipgloss.NewStyle().Background(lipgloss.Color("238")).Foreground(lipgloss.Color("15")),
	schedule.ToneSuccess: lipgloss.NewStyle().Background(lipgloss.Color("22")).Foreground(lipgloss.Color("15")),
	schedule.ToneInfo:    lipgloss.NewStyle().Background(lipgloss.Color("24")).Foreground(lipgloss.Color("15")),
	schedule.ToneWarning: lipgloss.NewStyle().Background(lipgloss.Color("94")).Foreground(lipgloss.Color("15")),
	schedule.ToneError:   lipgloss.NewStyle().Background(lipgloss.Color("88")).Foreground(lipgloss.Color("15")),
}

func blockStyle(status schedule.Status) lipgloss.Style {
	return toneStyles[status.Tone()]
}

func render(s lipgloss.Style) func(string) string {
	return func(text string) string { return s.Render(text) }
}

// markdownStyles 聊天消息里 Markdown 的终端样式
var markdownStyles = markdown.Styles{
	Heading: render(lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13"))),
	Strong:  render(lipgloss.NewStyle().Bold(true)),
	Emph:    render(lipgloss.NewStyle().Italic(true)),
	Code:    render(lipgloss.NewStyle().Foreground(lipgloss.Color("11"))),
	Link:    render(lipgloss.NewStyle().Underline(true).Foreground(lipgloss.Color("12"))),
}
