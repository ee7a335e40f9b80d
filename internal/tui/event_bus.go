package tui

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Zacy-Sokach/DayFlow/internal/conversation"
	"github.com/Zacy-Sokach/DayFlow/internal/schedule/firebase"
)

// EventBus 把对话引擎的回调和活动轮询结果汇入界面循环
//
// 引擎回调可能在任意 goroutine 触发，这里只负责排队，
// 界面通过 Next 返回的 tea.Cmd 逐条取出。
type EventBus struct {
	ch     chan tea.Msg
	once   sync.Once
	closed chan struct{}
}

// NewEventBus 创建事件总线，size 是缓冲大小
func NewEventBus(size int) *EventBus {
	return &EventBus{
		ch:     make(chan tea.Msg, size),
		closed: make(chan struct{}),
	}
}

// PublishEngine 是 conversation.Engine 的订阅回调
//
// 队列满时丢弃 EventChanged，界面下次刷新会读取最新状态；EventReset 不能丢。
func (b *EventBus) PublishEngine(ev conversation.Event) {
	msg := engineEventMsg{Event: ev}
	select {
	case b.ch <- msg:
	case <-b.closed:
	default:
		if ev == conversation.EventReset {
			go b.publishBlocking(msg)
		}
	}
}

func (b *EventBus) publishBlocking(msg tea.Msg) {
	select {
	case b.ch <- msg:
	case <-b.closed:
	}
}

// Forward 把活动轮询结果转发到总线，直到 ctx 结束或 updates 关闭
func (b *EventBus) Forward(ctx context.Context, updates <-chan firebase.Update) {
	for {
		select {
		case <-ctx.Done():
			return
		case u, ok := <-updates:
			if !ok {
				return
			}
			select {
			case b.ch <- feedMsg{Update: u}:
			case <-ctx.Done():
				return
			case <-b.closed:
				return
			}
		}
	}
}

// Next 等待下一条消息
func (b *EventBus) Next() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-b.ch:
			return msg
		case <-b.closed:
			return nil
		}
	}
}

// Close 唤醒所有等待者，可以重复调用
func (b *EventBus) Close() {
	b.once.Do(func() { close(b.closed) })
}
