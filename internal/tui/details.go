package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Zacy-Sokach/DayFlow/internal/markdown"
	"github.com/Zacy-Sokach/DayFlow/internal/schedule"
)

const (
	fieldTitle = iota
	fieldStart
	fieldEnd
	fieldDays
	fieldTags
	fieldLocation
	fieldDescription
	fieldStatus
)

var formLabels = []string{"Title", "Start", "End", "Days", "Tags", "Location", "Description", "Status"}

// editForm 是活动编辑表单，每个字段一个单行输入框
type editForm struct {
	original schedule.Activity
	fields   []textinput.Model
	focus    int
	saving   bool
	err      string
}

func newEditForm(a schedule.Activity) editForm {
	values := []string{
		a.Title,
		a.StartTime,
		a.EndTime,
		strings.Join(a.Days, ", "),
		strings.Join(a.Tags, ", "),
		a.Location,
		a.Description,
		string(a.Status),
	}
	fields := make([]textinput.Model, len(values))
	for i, v := range values {
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 512
		ti.SetValue(v)
		fields[i] = ti
	}
	fields[fieldTitle].Focus()
	return editForm{original: a, fields: fields}
}

// activity 用表单内容覆盖原活动，ID 和轨道不变
func (f editForm) activity() schedule.Activity {
	a := f.original
	a.Title = f.fields[fieldTitle].Value()
	a.StartTime = strings.TrimSpace(f.fields[fieldStart].Value())
	a.EndTime = strings.TrimSpace(f.fields[fieldEnd].Value())
	a.Days = schedule.SplitList(f.fields[fieldDays].Value())
	a.Tags = schedule.SplitList(f.fields[fieldTags].Value())
	a.Location = f.fields[fieldLocation].Value()
	a.Description = f.fields[fieldDescription].Value()
	a.Status = schedule.Status(strings.TrimSpace(f.fields[fieldStatus].Value()))
	return a
}

func (f editForm) moveFocus(delta int) editForm {
	f.fields[f.focus].Blur()
	f.focus = (f.focus + delta + len(f.fields)) % len(f.fields)
	f.fields[f.focus].Focus()
	return f
}

// update 处理表单内的按键，tab 切换字段，其余交给当前输入框
func (f editForm) update(msg tea.Msg) (editForm, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "tab", "down":
			return f.moveFocus(1), nil
		case "shift+tab", "up":
			return f.moveFocus(-1), nil
		}
	}
	var cmd tea.Cmd
	f.fields[f.focus], cmd = f.fields[f.focus].Update(msg)
	return f, cmd
}

func (f editForm) view() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Edit activity"))
	sb.WriteString("\n")
	for i, field := range f.fields {
		label := fmt.Sprintf("%-12s", formLabels[i])
		if i == f.focus {
			label = selectStyle.Render(label)
		} else {
			label = mutedStyle.Render(label)
		}
		sb.WriteString(label + " " + field.View() + "\n")
	}
	switch {
	case f.saving:
		sb.WriteString(mutedStyle.Render("saving..."))
	case f.err != "":
		sb.WriteString(errorStyle.Render(f.err))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// detailsView 显示选中活动的详情
func detailsView(a schedule.Activity) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(a.Title))
	sb.WriteString(mutedStyle.Render(fmt.Sprintf("  %s–%s", a.StartTime, a.EndTime)))
	if days := schedule.DaysLabel(a.Days); days != "" {
		sb.WriteString(mutedStyle.Render(" · " + days))
	}
	sb.WriteString(" · " + blockStyle(a.Status).Render(" "+string(a.Status.Display())+" "))

	var meta []string
	if a.Location != "" {
		meta = append(meta, "@ "+a.Location)
	}
	for _, t := range a.Tags {
		meta = append(meta, "#"+t)
	}
	if len(meta) > 0 {
		sb.WriteString("\n" + strings.Join(meta, "  "))
	}
	if a.Description != "" {
		sb.WriteString("\n\n" + markdown.Render(a.Description, markdownStyles))
	}
	return sb.String()
}
