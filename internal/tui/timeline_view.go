package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/Zacy-Sokach/DayFlow/internal/schedule"
	"github.com/Zacy-Sokach/DayFlow/internal/timeline"
)

// rulerStep 根据每小时的列数决定每隔几小时标一次刻度
func rulerStep(columnsPerHour float64) int {
	switch {
	case columnsPerHour >= 6:
		return 1
	case columnsPerHour >= 3:
		return 2
	case columnsPerHour >= 1.5:
		return 4
	default:
		return 6
	}
}

// renderRuler 渲染小时刻度行，当前时间用 ▼ 标出
func renderRuler(z *timeline.Zoom, nowMinute int) string {
	width := int(z.Viewport())
	if width <= 0 {
		return ""
	}
	row := []rune(strings.Repeat(" ", width))
	step := rulerStep(z.PixelsPerMinute() * 60)
	for h := 0; h < 24; h += step {
		x := int(math.Round(z.XForMinute(float64(h * 60))))
		label := fmt.Sprintf("%02d", h)
		if x < 0 || x+len(label) > width {
			continue
		}
		copy(row[x:], []rune(label))
	}

	out := string(row)
	if nowMinute >= 0 {
		x := int(math.Round(z.XForMinute(float64(nowMinute))))
		if x >= 0 && x < width {
			out = string(row[:x]) + nowStyle.Render("▼") + string(row[x+1:])
		}
	}
	return out
}

type segment struct {
	// index 是活动在 Layout.Activities 中的下标
	index    int
	from, to int
}

// trackSegments 把第 track 条轨道上的活动映射到视口列区间，完全不可见的活动被跳过
func trackSegments(layout schedule.Layout, track int, z *timeline.Zoom) []segment {
	width := int(z.Viewport())
	cursor := 0
	var out []segment
	for i, a := range layout.Activities {
		if a.TrackIndex != track {
			continue
		}
		from := int(math.Round(z.XForMinute(float64(a.Start()))))
		to := int(math.Round(z.XForMinute(float64(a.End()))))
		if from >= width || to < 0 {
			continue
		}
		from = max(from, cursor)
		to = min(to, width)
		if to <= from {
			// 太短或时间写反的活动至少占一列
			if from >= width {
				continue
			}
			to = from + 1
		}
		out = append(out, segment{index: i, from: from, to: to})
		cursor = to
	}
	return out
}

// renderTrack 渲染一条轨道，下标为 selected 的活动反色显示
func renderTrack(layout schedule.Layout, track int, z *timeline.Zoom, selected int) string {
	width := int(z.Viewport())
	var sb strings.Builder
	cursor := 0
	for _, seg := range trackSegments(layout, track, z) {
		a := layout.Activities[seg.index]
		sb.WriteString(strings.Repeat(" ", seg.from-cursor))
		style := blockStyle(a.Status)
		if seg.index == selected {
			style = style.Reverse(true)
		}
		sb.WriteString(style.Render(fitCell(a.Title, seg.to-seg.from)))
		cursor = seg.to
	}
	if cursor < width {
		sb.WriteString(strings.Repeat(" ", width-cursor))
	}
	return sb.String()
}

// hitTest 返回第 track 条轨道上覆盖列 x 的活动下标，没有时返回 -1
func hitTest(layout schedule.Layout, track, x int, z *timeline.Zoom) int {
	if track < 0 || track >= layout.TrackCount {
		return -1
	}
	for _, seg := range trackSegments(layout, track, z) {
		if x >= seg.from && x < seg.to {
			return seg.index
		}
	}
	return -1
}

// fitCell 截断或补齐到 w 列
func fitCell(s string, w int) string {
	if w <= 0 {
		return ""
	}
	s = ansi.Truncate(s, w, "…")
	if pad := w - ansi.StringWidth(s); pad > 0 {
		s += strings.Repeat(" ", pad)
	}
	return s
}

// renderTimeline 渲染刻度行和全部轨道
func renderTimeline(layout schedule.Layout, z *timeline.Zoom, nowMinute, selected int) string {
	lines := []string{renderRuler(z, nowMinute)}
	if layout.TrackCount == 0 {
		lines = append(lines, mutedStyle.Render("nothing scheduled today"))
	}
	for i := 0; i < layout.TrackCount; i++ {
		lines = append(lines, renderTrack(layout, i, z, selected))
	}
	return strings.Join(lines, "\n")
}
