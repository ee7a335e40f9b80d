package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Zacy-Sokach/DayFlow/internal/conversation"
	"github.com/Zacy-Sokach/DayFlow/internal/log"
	"github.com/Zacy-Sokach/DayFlow/internal/schedule"
	"github.com/Zacy-Sokach/DayFlow/internal/schedule/firebase"
	"github.com/Zacy-Sokach/DayFlow/internal/timeline"
)

type mode int

const (
	modeTimeline mode = iota
	modeChat
	modeEdit
	modeConfirmDelete
)

// 时间轴上方的标题行和刻度行
const timelineTop = 2

type Model struct {
	conv   Conversation
	editor ActivityEditor
	bus    *EventBus
	logger log.Logger
	parser *CommandParser

	location    *time.Location
	clock       func() time.Time
	now         time.Time
	day         time.Weekday
	followToday bool

	activities []schedule.Activity
	layout     schedule.Layout
	stale      bool
	fetchedAt  time.Time

	zoom     *timeline.Zoom
	selected int

	mode     mode
	textarea textarea.Model
	chatView viewport.Model
	spinner  spinner.Model
	spinning bool
	form     editForm

	status string
	width  int
	height int
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.bus.Next(), clockTick(m.clock()))
}

// clockTick 在下一个整分钟触发
func clockTick(now time.Time) tea.Cmd {
	d := now.Truncate(time.Minute).Add(time.Minute).Sub(now)
	return tea.Tick(d, func(t time.Time) tea.Msg { return clockMsg{Time: t} })
}

func frameTick() tea.Cmd {
	return tea.Tick(timeline.FrameInterval, func(time.Time) tea.Msg { return frameMsg{} })
}

// startFrames 只有缩放请求开启了新动画时才开始驱动帧
func startFrames(started bool) tea.Cmd {
	if started {
		return frameTick()
	}
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case frameMsg:
		if m.zoom.Step() {
			return m, frameTick()
		}
		return m, nil

	case clockMsg:
		m.tick(msg.Time)
		return m, clockTick(msg.Time)

	case engineEventMsg:
		cmd := m.onEngineEvent(msg.Event)
		return m, tea.Batch(cmd, m.bus.Next())

	case feedMsg:
		m.onFeed(msg.Update)
		return m, m.bus.Next()

	case chatErrorMsg:
		switch {
		case errors.Is(msg.Err, conversation.ErrNoSession):
			m.logger.Debugf("没有用户会话，忽略对话请求")
		case errors.Is(msg.Err, conversation.ErrBusy):
			m.logger.Warningf("对话请求未受理: %s", msg.Err)
			m.status = "still working on the previous message"
		default:
			m.logger.Warningf("对话请求未受理: %s", msg.Err)
			m.status = "request failed"
		}
		return m, nil

	case savedMsg:
		m.form.saving = false
		if msg.Err != nil {
			m.logger.Errorf("保存活动失败: %s", msg.Err)
			m.form.err = msg.Err.Error()
			return m, nil
		}
		m.replaceActivity(msg.Activity)
		m.mode = modeTimeline
		m.status = "saved " + msg.Activity.Title
		return m, nil

	case deletedMsg:
		m.removeActivity(msg.ID)
		m.status = "deleted"
		return m, nil

	case spinner.TickMsg:
		if !m.busy() {
			m.spinning = false
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.refreshChat()
		return m, cmd

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	switch m.mode {
	case modeChat:
		m.textarea, cmd = m.textarea.Update(msg)
	case modeEdit:
		m.form, cmd = m.form.update(msg)
	}
	return m, cmd
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.zoom.SetViewport(float64(width))
	m.textarea.SetWidth(max(10, width-4))
	m.chatView.Width = max(10, width-4)
	m.chatView.Height = max(3, height-timelineTop-m.layout.TrackCount-8)
	m.refreshChat()
}

func (m *Model) tick(t time.Time) {
	m.now = t.In(m.location)
	if m.followToday && m.now.Weekday() != m.day {
		m.day = m.now.Weekday()
		m.relayout()
	}
}

func (m *Model) onEngineEvent(ev conversation.Event) tea.Cmd {
	if ev == conversation.EventReset && m.mode == modeChat {
		m.mode = modeTimeline
		m.textarea.Blur()
	}
	m.refreshChat()
	if m.busy() && !m.spinning {
		m.spinning = true
		return m.spinner.Tick
	}
	return nil
}

func (m *Model) onFeed(u firebase.Update) {
	if u.Err != nil {
		m.status = "sync failed: " + u.Err.Error()
		return
	}
	m.stale = u.Cached
	m.fetchedAt = u.FetchedAt
	if !u.Cached {
		m.status = ""
	}
	m.setActivities(u.Activities)
}

func (m *Model) setActivities(activities []schedule.Activity) {
	m.activities = activities
	m.relayout()
}

// relayout 重新分配轨道，尽量保持原来的选中项
func (m *Model) relayout() {
	var prev schedule.ID
	if m.selected >= 0 && m.selected < len(m.layout.Activities) {
		prev = m.layout.Activities[m.selected].ID
	}
	m.layout = schedule.Assign(m.activities, m.day)
	m.selected = -1
	if prev == "" {
		return
	}
	for i, a := range m.layout.Activities {
		if a.ID == prev {
			m.selected = i
			return
		}
	}
}

func (m *Model) replaceActivity(updated schedule.Activity) {
	next := make([]schedule.Activity, len(m.activities))
	copy(next, m.activities)
	for i, a := range next {
		if a.ID == updated.ID {
			next[i] = updated
		}
	}
	m.setActivities(next)
}

func (m *Model) removeActivity(id schedule.ID) {
	next := make([]schedule.Activity, 0, len(m.activities))
	for _, a := range m.activities {
		if a.ID != id {
			next = append(next, a)
		}
	}
	m.setActivities(next)
}

func (m Model) selectedActivity() (schedule.Activity, bool) {
	if m.selected < 0 || m.selected >= len(m.layout.Activities) {
		return schedule.Activity{}, false
	}
	return m.layout.Activities[m.selected], true
}

// selectStep 在按开始时间排好的活动中前后移动，并把选中的活动滚动到视口中间
func (m *Model) selectStep(delta int) {
	n := len(m.layout.Activities)
	if n == 0 {
		return
	}
	if m.selected < 0 {
		if delta > 0 {
			m.selected = 0
		} else {
			m.selected = n - 1
		}
	} else {
		m.selected = (m.selected + delta + n) % n
	}
	m.zoom.CenterOn(float64(m.layout.Activities[m.selected].Start()))
}

func (m *Model) showDay(day time.Weekday, follow bool) {
	m.day = day
	m.followToday = follow
	m.selected = -1
	m.relayout()
}

func (m *Model) jumpToNow() {
	m.showDay(m.now.Weekday(), true)
	m.zoom.CenterOn(float64(minuteOfDay(m.now)))
}

func (m Model) panStep() float64 {
	return max(1, m.zoom.Viewport()/8)
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.mode == modeChat {
		var cmd tea.Cmd
		m.chatView, cmd = m.chatView.Update(msg)
		return m, cmd
	}
	if msg.Action != tea.MouseActionPress {
		return m, nil
	}

	x := float64(msg.X)
	switch msg.Button {
	case tea.MouseButtonWheelUp, tea.MouseButtonWheelDown:
		up := msg.Button == tea.MouseButtonWheelUp
		if msg.Ctrl || msg.Alt {
			deltaY := 1.0
			if up {
				deltaY = -1
			}
			return m, startFrames(m.zoom.Wheel(deltaY, x))
		}
		if up {
			m.zoom.Pan(-m.panStep())
		} else {
			m.zoom.Pan(m.panStep())
		}
	case tea.MouseButtonWheelLeft:
		m.zoom.Pan(-m.panStep())
	case tea.MouseButtonWheelRight:
		m.zoom.Pan(m.panStep())
	case tea.MouseButtonLeft:
		if m.mode == modeTimeline {
			m.selected = hitTest(m.layout, msg.Y-timelineTop, msg.X, m.zoom)
		}
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	switch m.mode {
	case modeChat:
		return m.handleChatKey(msg)
	case modeEdit:
		return m.handleEditKey(msg)
	case modeConfirmDelete:
		return m.handleDeleteKey(msg)
	}
	return m.handleTimelineKey(msg)
}

func (m Model) handleTimelineKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	center := m.zoom.Viewport() / 2
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "c", "/", " ":
		return m.openChat()
	case "+", "=":
		return m, startFrames(m.zoom.ZoomBy(timeline.WheelInFactor, center))
	case "-", "_":
		return m, startFrames(m.zoom.ZoomBy(timeline.WheelOutFactor, center))
	case "0":
		return m, startFrames(m.zoom.ZoomBy(1/m.zoom.Target(), center))
	case "left", "h":
		m.zoom.Pan(-m.panStep())
	case "right", "l":
		m.zoom.Pan(m.panStep())
	case "n":
		m.jumpToNow()
	case "[":
		m.showDay((m.day+6)%7, false)
	case "]":
		m.showDay((m.day+1)%7, false)
	case "tab", "j", "down":
		m.selectStep(1)
	case "shift+tab", "k", "up":
		m.selectStep(-1)
	case "e", "enter":
		if a, ok := m.selectedActivity(); ok {
			m.form = newEditForm(a)
			m.mode = modeEdit
			return m, textinput.Blink
		}
	case "d", "delete":
		if _, ok := m.selectedActivity(); ok {
			m.mode = modeConfirmDelete
		}
	case "esc":
		m.selected = -1
		m.status = ""
	}
	return m, nil
}

func (m Model) openChat() (tea.Model, tea.Cmd) {
	m.mode = modeChat
	m.refreshChat()
	return m, m.textarea.Focus()
}

func (m Model) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ctx := context.Background()
	switch msg.String() {
	case "esc":
		m.mode = modeTimeline
		m.textarea.Blur()
		return m, nil
	case "ctrl+y":
		if _, ok := m.conv.Pending(); ok {
			conv := m.conv
			return m, func() tea.Msg {
				if err := conv.Confirm(ctx); err != nil {
					return chatErrorMsg{Err: err}
				}
				return nil
			}
		}
		return m, nil
	case "ctrl+n":
		if _, ok := m.conv.Pending(); ok {
			m.conv.Reject()
		}
		return m, nil
	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.chatView, cmd = m.chatView.Update(msg)
		return m, cmd
	case "enter":
		input := strings.TrimSpace(m.textarea.Value())
		if input == "" {
			return m, nil
		}
		if cmd := m.parser.Parse(input); cmd != nil {
			m.textarea.Reset()
			return m.handleCommand(cmd)
		}
		// 等待回复或提交期间保留输入，不发送
		if m.busy() {
			return m, nil
		}
		m.textarea.Reset()
		m.status = ""
		conv := m.conv
		return m, func() tea.Msg {
			if err := conv.Send(ctx, input); err != nil {
				return chatErrorMsg{Err: err}
			}
			return nil
		}
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

func (m Model) handleCommand(cmd *Command) (tea.Model, tea.Cmd) {
	switch cmd.Type {
	case CommandTypeClear:
		conv := m.conv
		m.status = ""
		return m, func() tea.Msg {
			conv.Clear(context.Background())
			return nil
		}
	case CommandTypeNow:
		m.jumpToNow()
	case CommandTypeDay:
		m.showDay(cmd.Day, cmd.Day == m.now.Weekday())
	case CommandTypeHelp:
		m.status = commandHelp
	case CommandTypeQuit:
		return m, tea.Quit
	default:
		m.status = fmt.Sprintf("unknown command %q", cmd.Raw)
	}
	return m, nil
}

func (m Model) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeTimeline
		return m, nil
	case "enter", "ctrl+s":
		if m.form.saving {
			return m, nil
		}
		m.form.saving = true
		m.form.err = ""
		a := m.form.activity()
		editor := m.editor
		return m, func() tea.Msg {
			err := editor.Update(context.Background(), a)
			return savedMsg{Activity: a, Err: err}
		}
	}
	var cmd tea.Cmd
	m.form, cmd = m.form.update(msg)
	return m, cmd
}

func (m Model) handleDeleteKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.mode = modeTimeline
	a, ok := m.selectedActivity()
	if !ok || msg.String() != "y" {
		return m, nil
	}
	editor := m.editor
	return m, func() tea.Msg {
		editor.Delete(context.Background(), a.ID)
		return deletedMsg{ID: a.ID}
	}
}

// nowMinute 只有在显示今天时才标出当前时间
func (m Model) nowMinute() int {
	if m.day != m.now.Weekday() {
		return -1
	}
	return minuteOfDay(m.now)
}

func (m Model) View() string {
	sections := []string{
		m.headerView(),
		renderTimeline(m.layout, m.zoom, m.nowMinute(), m.selected),
	}

	switch m.mode {
	case modeChat:
		sections = append(sections, m.chatPaneView())
	case modeEdit:
		sections = append(sections, paneStyle.Render(m.form.view()))
	case modeConfirmDelete:
		a, _ := m.selectedActivity()
		sections = append(sections, paneStyle.Render(errorStyle.Render(fmt.Sprintf("Delete %q? y to confirm", a.Title))))
	default:
		if a, ok := m.selectedActivity(); ok {
			sections = append(sections, paneStyle.Render(detailsView(a)))
		}
	}

	sections = append(sections, m.helpView())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) headerView() string {
	header := titleStyle.Render("DayFlow") + "  " +
		fmt.Sprintf("%s %s  zoom %.2fx", m.day, m.now.Format("15:04"), m.zoom.Target())
	if m.stale {
		header += mutedStyle.Render(fmt.Sprintf("  offline copy from %s", m.fetchedAt.In(m.location).Format("Jan 2 15:04")))
	}
	return header
}

func (m Model) helpView() string {
	var help string
	switch m.mode {
	case modeChat:
		help = "Enter: send • ctrl+y/ctrl+n: confirm/reject • /help: commands • Esc: close"
	case modeEdit:
		help = "Tab: next field • Enter: save • Esc: cancel"
	case modeConfirmDelete:
		help = "y: delete • any other key: cancel"
	default:
		help = "c: chat • +/-/0: zoom • ←/→: pan • j/k: select • e: edit • d: delete • [/]: day • n: now • q: quit"
	}
	if m.busy() {
		help = m.spinner.View() + " " + help
	}
	out := mutedStyle.Render(help)
	if m.status != "" {
		out = statusStyle.Render(m.status) + "\n" + out
	}
	return out
}
