// Package schedule 描述一天的活动时间线：活动模型、时间换算和轨道分配。
package schedule

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Status 是活动状态
type Status string

const (
	StatusScheduled  Status = "Scheduled"
	StatusCompleted  Status = "Completed"
	StatusInProgress Status = "In Progress"
	StatusPending    Status = "Pending"
	StatusMissed     Status = "Missed"
)

// Display 返回展示用的状态，空状态按 Scheduled 处理
func (s Status) Display() Status {
	if s == "" {
		return StatusScheduled
	}
	return s
}

// Tone 是状态的展示语气，各个界面按它选颜色
type Tone int

const (
	ToneMuted Tone = iota
	ToneSuccess
	ToneInfo
	ToneWarning
	ToneError
)

// Tone 返回状态对应的展示语气
func (s Status) Tone() Tone {
	switch s {
	case StatusCompleted:
		return ToneSuccess
	case StatusInProgress:
		return ToneInfo
	case StatusPending:
		return ToneWarning
	case StatusMissed:
		return ToneError
	}
	return ToneMuted
}

// ID 是服务端分配的不透明标识，服务端有时下发字符串有时下发数字
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("无效的活动ID %s: %w", string(data), err)
	}
	*id = ID(n.String())
	return nil
}

// StringList 接受 JSON 数组或逗号分隔字符串（手动编辑时用户输入的是字符串）
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = SplitList(s)
		return nil
	}
	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	*l = items
	return nil
}

// SplitList 按逗号拆分，去掉空白和空项
func SplitList(s string) StringList {
	var out StringList
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Activity 是时间线上的一个活动
type Activity struct {
	ID          ID         `json:"id,omitempty"`
	Title       string     `json:"title"`
	StartTime   string     `json:"startTime"`
	EndTime     string     `json:"endTime"`
	Days        StringList `json:"days,omitempty"`
	Tags        StringList `json:"tags,omitempty"`
	Location    string     `json:"location,omitempty"`
	Description string     `json:"description,omitempty"`
	Status      Status     `json:"status,omitempty"`

	// TrackIndex 由轨道分配计算，不持久化
	TrackIndex int `json:"-"`
}

// Start 返回开始时间（距午夜分钟数）
func (a Activity) Start() int { return ParseClock(a.StartTime) }

// End 返回结束时间（距午夜分钟数）
func (a Activity) End() int { return ParseClock(a.EndTime) }

// RecursOn 判断活动是否在给定星期几出现；days 为空表示每天都有
func (a Activity) RecursOn(day string) bool {
	if len(a.Days) == 0 {
		return true
	}
	day = strings.ToLower(strings.TrimSpace(day))
	for _, d := range a.Days {
		if strings.ToLower(strings.TrimSpace(d)) == day {
			return true
		}
	}
	return false
}

var weekOrder = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// DaysLabel 返回重复日的简短描述：Every Day、Weekdays 或按周顺序的三字母缩写
func DaysLabel(days []string) string {
	if len(days) == 0 {
		return ""
	}

	set := make(map[string]bool, len(days))
	for _, d := range days {
		set[strings.ToLower(strings.TrimSpace(d))] = true
	}
	has := func(names ...string) bool {
		for _, n := range names {
			if !set[strings.ToLower(n)] {
				return false
			}
		}
		return true
	}

	if len(days) == 7 && has(weekOrder...) {
		return "Every Day"
	}
	if len(days) == 5 && has(weekOrder[:5]...) {
		return "Weekdays"
	}

	rank := func(d string) int {
		for i, w := range weekOrder {
			if strings.EqualFold(strings.TrimSpace(d), w) {
				return i
			}
		}
		return len(weekOrder)
	}
	sorted := append([]string(nil), days...)
	sort.SliceStable(sorted, func(i, j int) bool { return rank(sorted[i]) < rank(sorted[j]) })

	short := make([]string, 0, len(sorted))
	for _, d := range sorted {
		r := []rune(strings.TrimSpace(d))
		if len(r) > 3 {
			r = r[:3]
		}
		short = append(short, string(r))
	}
	return strings.Join(short, " ")
}
