package schedule

import (
	"sort"
	"strings"
	"time"
)

// Layout 是一次轨道分配的结果
type Layout struct {
	// Activities 是当天出现的活动，按开始时间稳定排序，TrackIndex 已填好
	Activities []Activity
	TrackCount int
}

// Track 返回落在第 i 条轨道上的活动
func (l Layout) Track(i int) []Activity {
	var out []Activity
	for _, a := range l.Activities {
		if a.TrackIndex == i {
			out = append(out, a)
		}
	}
	return out
}

// DayName 返回 time.Weekday 对应的小写英文名，和活动 days 字段比较时使用
func DayName(d time.Weekday) string {
	return strings.ToLower(d.String())
}

// ForDay 过滤出在 day 出现的活动，保持原有顺序
func ForDay(activities []Activity, day time.Weekday) []Activity {
	name := DayName(day)
	out := make([]Activity, 0, len(activities))
	for _, a := range activities {
		if a.RecursOn(name) {
			out = append(out, a)
		}
	}
	return out
}

// Assign 对 day 当天的活动做贪心区间划分
//
// 活动按开始时间稳定排序后依次放入第一条“最后一个活动结束时间 <= 当前开始时间”的轨道，
// 找不到就新开一条。结果的轨道数等于重叠图的最小着色数。输入切片不会被修改。
func Assign(activities []Activity, day time.Weekday) Layout {
	sorted := ForDay(activities, day)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start() < sorted[j].Start()
	})

	// 每条轨道只需要记住最后一个活动的结束时间
	var trackEnds []int
	for i := range sorted {
		start := sorted[i].Start()
		placed := false
		for t, end := range trackEnds {
			if start >= end {
				trackEnds[t] = sorted[i].End()
				sorted[i].TrackIndex = t
				placed = true
				break
			}
		}
		if !placed {
			trackEnds = append(trackEnds, sorted[i].End())
			sorted[i].TrackIndex = len(trackEnds) - 1
		}
	}

	return Layout{Activities: sorted, TrackCount: len(trackEnds)}
}
