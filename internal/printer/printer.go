// Package printer 为一次性命令输出表格。
package printer

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"github.com/Zacy-Sokach/DayFlow/internal/api"
	"github.com/Zacy-Sokach/DayFlow/internal/markdown"
	"github.com/Zacy-Sokach/DayFlow/internal/schedule"
)

var (
	titleColor = color.New(color.Bold, color.Underline)
	faintColor = color.New(color.Faint)
	nowColor   = color.New(color.FgHiYellow, color.Bold)
)

func toneColor(t schedule.Tone) *color.Color {
	switch t {
	case schedule.ToneSuccess:
		return color.New(color.FgGreen)
	case schedule.ToneInfo:
		return color.New(color.FgCyan)
	case schedule.ToneWarning:
		return color.New(color.FgYellow)
	case schedule.ToneError:
		return color.New(color.FgRed)
	}
	return faintColor
}

func styled(c *color.Color) func(string) string {
	return func(s string) string { return c.Sprint(s) }
}

// Layout 打印一天的轨道布局，nowMinute 所在的活动用 ▶ 标出
func Layout(w io.Writer, title string, layout schedule.Layout, nowMinute int) {
	_, _ = titleColor.Fprintln(w, title)

	if len(layout.Activities) == 0 {
		_, _ = faintColor.Fprint(w, " no activities\n\n")
		return
	}

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 48
	tbl.AddRow("", "TRACK", "TIME", "TITLE", "DAYS", "TAGS", "STATUS")

	for _, a := range layout.Activities {
		marker := ""
		if a.Start() <= nowMinute && nowMinute < a.End() {
			marker = nowColor.Sprint("▶")
		}
		status := a.Status.Display()
		tbl.AddRow(
			marker,
			strconv.Itoa(a.TrackIndex),
			a.StartTime+"–"+a.EndTime,
			a.Title,
			schedule.DaysLabel(a.Days),
			strings.Join(a.Tags, ", "),
			toneColor(status.Tone()).Sprint(string(status)),
		)
	}
	_, _ = fmt.Fprintln(w, tbl)
	_, _ = faintColor.Fprintf(w, "%d activities on %d tracks\n", len(layout.Activities), layout.TrackCount)
}

// Futures 打印未来情景预测
func Futures(w io.Writer, futures []api.Future) {
	if len(futures) == 0 {
		_, _ = faintColor.Fprintln(w, "no predictions available")
		return
	}

	styles := markdown.Styles{
		Heading: styled(color.New(color.Bold)),
		Strong:  styled(color.New(color.Bold)),
		Emph:    styled(color.New(color.Italic)),
		Code:    styled(color.New(color.FgCyan)),
	}

	for i, f := range futures {
		if i > 0 {
			_, _ = fmt.Fprintln(w)
		}
		_, _ = titleColor.Fprint(w, f.Title)
		if f.TimeHorizon != "" {
			_, _ = faintColor.Fprintf(w, " (%s)", f.TimeHorizon)
		}
		_, _ = fmt.Fprintln(w)

		tbl := uitable.New()
		tbl.Wrap = true
		tbl.MaxColWidth = 80
		for _, line := range f.Summary {
			tbl.AddRow(" •", line)
		}
		if len(f.Summary) > 0 {
			_, _ = fmt.Fprintln(w, tbl)
		}
		if details := markdown.Render(f.Details, styles); details != "" {
			_, _ = fmt.Fprintln(w, details)
		}
	}
}
