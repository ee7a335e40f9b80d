package tui

import (
	"time"

	"github.com/Zacy-Sokach/DayFlow/internal/conversation"
	"github.com/Zacy-Sokach/DayFlow/internal/schedule"
	"github.com/Zacy-Sokach/DayFlow/internal/schedule/firebase"
)

// Message types for tea.Model

// engineEventMsg 对话引擎状态变化
type engineEventMsg struct {
	Event conversation.Event
}

// feedMsg 活动轮询结果
type feedMsg struct {
	Update firebase.Update
}

// frameMsg 缩放动画的一帧
type frameMsg struct{}

// clockMsg 每分钟刷新当前时间
type clockMsg struct {
	Time time.Time
}

// chatErrorMsg 发送或确认没有被引擎受理，例如引擎忙
type chatErrorMsg struct {
	Err error
}

// savedMsg 活动编辑保存的结果
type savedMsg struct {
	Activity schedule.Activity
	Err      error
}

// deletedMsg 活动已经提交删除
type deletedMsg struct {
	ID schedule.ID
}
