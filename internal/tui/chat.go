package tui

import (
	"fmt"
	"strings"

	"github.com/Zacy-Sokach/DayFlow/internal/api"
	"github.com/Zacy-Sokach/DayFlow/internal/conversation"
	"github.com/Zacy-Sokach/DayFlow/internal/markdown"
	"github.com/Zacy-Sokach/DayFlow/internal/schedule"
)

// formatTranscript 渲染消息列表，typing 是等待回复时的占位内容
func formatTranscript(messages []conversation.Message, typing string) string {
	var sb strings.Builder
	for _, msg := range messages {
		switch {
		case msg.IsTyping:
			sb.WriteString(botStyle.Render("DayFlow: "))
			sb.WriteString(typing)
		case msg.IsUser:
			sb.WriteString(userStyle.Render("You: "))
			sb.WriteString(msg.Content)
		default:
			sb.WriteString(botStyle.Render("DayFlow: "))
			sb.WriteString(markdown.Render(msg.Content, markdownStyles))
		}
		sb.WriteString("\n\n")
	}
	return sb.String()
}

// proposalView 列出等待确认的活动和文档
func proposalView(p conversation.Proposal) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Proposed plan"))
	sb.WriteString("\n")
	for _, a := range p.Activities {
		line := fmt.Sprintf("  %s–%s  %s", a.StartTime, a.EndTime, a.Title)
		if days := schedule.DaysLabel(a.Days); days != "" {
			line += mutedStyle.Render("  (" + days + ")")
		}
		sb.WriteString(line + "\n")
	}
	for _, action := range p.Actions {
		sb.WriteString(fmt.Sprintf("  • %s: %s\n", action.Kind(), actionTitle(action)))
	}
	sb.WriteString(mutedStyle.Render("ctrl+y confirm · ctrl+n reject"))
	return sb.String()
}

func actionTitle(a api.Action) string {
	if a.Title == "" {
		return "untitled"
	}
	return a.Title
}

// chatContent 是聊天窗口的全部内容
func (m Model) chatContent() string {
	content := formatTranscript(m.conv.Transcript(), m.spinner.View()+" thinking...")
	switch m.conv.State().(type) {
	case conversation.ProposalPending:
		if p, ok := m.conv.Pending(); ok {
			content += proposalView(p)
		}
	case conversation.Committing:
		content += m.spinner.View() + " saving..."
	}
	if content == "" {
		content = mutedStyle.Render("Tell me what you want to get done and I'll fit it into your day.")
	}
	return strings.TrimRight(content, "\n")
}

func (m *Model) refreshChat() {
	m.chatView.SetContent(m.chatContent())
	m.chatView.GotoBottom()
}

// busy 表示正在等待助手回复或者正在提交方案
func (m Model) busy() bool {
	switch m.conv.State().(type) {
	case conversation.AwaitingReply, conversation.Committing:
		return true
	}
	return false
}

func (m Model) chatPaneView() string {
	return overlayStyle.Width(max(20, m.width-2)).Render(m.chatView.View() + "\n" + m.textarea.View())
}
