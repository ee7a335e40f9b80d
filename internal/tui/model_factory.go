package tui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"

	"github.com/Zacy-Sokach/DayFlow/internal/config"
	"github.com/Zacy-Sokach/DayFlow/internal/conversation"
	"github.com/Zacy-Sokach/DayFlow/internal/log"
	"github.com/Zacy-Sokach/DayFlow/internal/schedule"
	"github.com/Zacy-Sokach/DayFlow/internal/timeline"
)

// Version 是当前的 DayFlow 版本，由 main 包设置
var Version string

// Conversation 是界面用到的对话引擎能力
type Conversation interface {
	Subscribe(fn func(conversation.Event))
	State() conversation.State
	Pending() (conversation.Proposal, bool)
	Transcript() []conversation.Message
	Send(ctx context.Context, message string) error
	Confirm(ctx context.Context) error
	Reject()
	Clear(ctx context.Context)
}

// ActivityEditor 保存和删除单个活动
type ActivityEditor interface {
	Update(ctx context.Context, a schedule.Activity) error
	Delete(ctx context.Context, id schedule.ID)
}

// ModelConfig 是界面的依赖
type ModelConfig struct {
	Conversation Conversation
	Editor       ActivityEditor
	// Bus 为 nil 时创建一个新的，活动轮询结果需要调用方通过 Bus.Forward 接入
	Bus    *EventBus
	Logger log.Logger

	// Activities 是启动时已知的活动，通常来自本地快照
	Activities     []schedule.Activity
	Location       *time.Location
	ColumnsPerHour int
	// Now 默认为 time.Now
	Now func() time.Time
}

func (c *ModelConfig) defaults() error {
	if c.Conversation == nil {
		return errors.New("conversation is required")
	}
	if c.Editor == nil {
		return errors.New("activity editor is required")
	}
	if c.Bus == nil {
		c.Bus = NewEventBus(64)
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "tui.Model"})
	if c.Location == nil {
		c.Location = time.Local
	}
	if c.ColumnsPerHour <= 0 {
		c.ColumnsPerHour = config.DefaultColumnsPerHour
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return nil
}

// NewModel 创建界面模型并订阅对话引擎
func NewModel(cfg ModelConfig) (Model, error) {
	if err := cfg.defaults(); err != nil {
		return Model{}, err
	}

	ta := textarea.New()
	ta.Placeholder = "Ask DayFlow to plan something..."
	ta.CharLimit = 0
	ta.SetWidth(80)
	ta.SetHeight(2)
	ta.ShowLineNumbers = false
	ta.KeyMap.InsertNewline.SetEnabled(false)

	now := cfg.Now().In(cfg.Location)
	zoom := timeline.NewZoom(float64(cfg.ColumnsPerHour)/60, 80)
	zoom.CenterOn(float64(minuteOfDay(now)))

	m := Model{
		conv:        cfg.Conversation,
		editor:      cfg.Editor,
		bus:         cfg.Bus,
		logger:      cfg.Logger,
		parser:      NewCommandParser(),
		location:    cfg.Location,
		clock:       cfg.Now,
		now:         now,
		day:         now.Weekday(),
		followToday: true,
		zoom:        zoom,
		selected:    -1,
		textarea:    ta,
		chatView:    viewport.New(80, 10),
		spinner:     spinner.New(spinner.WithSpinner(spinner.Dot)),
		width:       80,
		height:      24,
	}
	m.setActivities(cfg.Activities)
	cfg.Conversation.Subscribe(cfg.Bus.PublishEngine)
	return m, nil
}

func minuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}
