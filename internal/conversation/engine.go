// Package conversation 实现和助手对话的状态机：发送消息、接收方案、确认或拒绝。
package conversation

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/Zacy-Sokach/DayFlow/internal/api"
	"github.com/Zacy-Sokach/DayFlow/internal/log"
	"github.com/Zacy-Sokach/DayFlow/internal/schedule"
)

// 展示给用户的固定文案
const (
	MsgSendFailed    = "Sorry, I had trouble processing that. Please try again."
	MsgConfirmPrefix = "✅ "
	MsgPartialFailed = "Failed to execute some items. Please try again."
	MsgConfirmFailed = "Failed to confirm plan. Please try again."
	MsgRejected      = "No problem! Let me know if you'd like to adjust the plan."
)

// DefaultResetDelay 确认成功后保留提示的时间
const DefaultResetDelay = 2000 * time.Millisecond

var (
	// ErrBusy 表示上一条消息或上一次提交还没有结束
	ErrBusy = errors.New("会话正忙，请等待上一个请求完成")
	// ErrNoSession 表示当前没有登录的用户
	ErrNoSession = errors.New("没有用户会话")
)

// ChatService 是外部对话服务
type ChatService interface {
	Converse(ctx context.Context, req api.ConversationRequest) (*api.ConversationResponse, error)
	Confirm(ctx context.Context, req api.ConfirmRequest) (*api.ConfirmResponse, error)
	ClearConversation(ctx context.Context, userID string) error
}

// TokenSource 提供访问令牌，拿不到时 ok 为 false
type TokenSource interface {
	UsableToken(ctx context.Context) (token string, ok bool)
}

// Session 是当前登录用户
type Session struct {
	UserID   string
	TimeZone string
}

// Timer 是可以取消的延时任务
type Timer interface {
	Stop() bool
}

// Event 描述一次状态变化
type Event int

const (
	// EventChanged 消息列表或状态发生了变化
	EventChanged Event = iota
	// EventReset 确认成功后的延时重置已执行，界面应关闭对话层
	EventReset
)

// EngineConfig 是 Engine 的配置
type EngineConfig struct {
	Chat   ChatService
	Tokens TokenSource
	// Session 为 nil 表示未登录，可以之后通过 SetSession 设置
	Session    *Session
	Logger     log.Logger
	ResetDelay time.Duration
	// AfterFunc 默认为 time.AfterFunc
	AfterFunc func(d time.Duration, f func()) Timer
}

func (c *EngineConfig) defaults() error {
	if c.Chat == nil {
		return errors.New("chat service is required")
	}
	if c.Tokens == nil {
		return errors.New("token source is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "conversation.Engine"})
	if c.ResetDelay <= 0 {
		c.ResetDelay = DefaultResetDelay
	}
	if c.AfterFunc == nil {
		c.AfterFunc = func(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }
	}
	return nil
}

// Engine 是对话状态机
//
// 所有方法都可以在任意 goroutine 调用。网络请求期间不持有锁，
// 请求返回时如果会话已经被清空或关闭，结果直接丢弃。
type Engine struct {
	chat       ChatService
	tokens     TokenSource
	logger     log.Logger
	resetDelay time.Duration
	afterFunc  func(time.Duration, func()) Timer

	mu          sync.Mutex
	session     *Session
	state       State
	history     []Message
	epoch       uint64
	resetTimer  Timer
	resetGen    uint64
	closed      bool
	subscribers []func(Event)
}

// NewEngine 创建对话状态机，初始状态为 Idle
func NewEngine(cfg EngineConfig) (*Engine, error) {
	if err := cfg.defaults(); err != nil {
		return nil, err
	}
	return &Engine{
		chat:       cfg.Chat,
		tokens:     cfg.Tokens,
		logger:     cfg.Logger,
		resetDelay: cfg.ResetDelay,
		afterFunc:  cfg.AfterFunc,
		session:    cfg.Session,
		state:      Idle{},
	}, nil
}

// Subscribe 注册状态变化回调，回调在锁外执行
func (e *Engine) Subscribe(fn func(Event)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.subscribers = append(e.subscribers, fn)
}

// SetSession 设置或清除（nil）当前用户
func (e *Engine) SetSession(s *Session) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.session = s
}

// State 返回当前状态
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Pending 返回等待确认的方案
func (e *Engine) Pending() (Proposal, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if p, ok := e.state.(ProposalPending); ok {
		return p.Proposal, true
	}
	return Proposal{}, false
}

// Transcript 返回消息列表的副本，等待回复时末尾带一条 IsTyping 占位消息
func (e *Engine) Transcript() []Message {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Message, len(e.history), len(e.history)+1)
	copy(out, e.history)
	if _, ok := e.state.(AwaitingReply); ok {
		out = append(out, Message{IsTyping: true})
	}
	return out
}

// Send 发送一条消息
//
// 空白消息和未登录时什么都不做。等待回复或提交期间返回 ErrBusy。
// 网络错误不会返回，而是作为一条助手消息追加到列表。
func (e *Engine) Send(ctx context.Context, message string) error {
	if strings.TrimSpace(message) == "" {
		return nil
	}

	e.mu.Lock()
	if e.session == nil {
		e.mu.Unlock()
		return ErrNoSession
	}
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	switch e.state.(type) {
	case AwaitingReply, Committing:
		e.mu.Unlock()
		return ErrBusy
	}
	// 新消息开始后，上一次确认留下的延时重置不再执行
	e.cancelResetLocked()
	session := *e.session
	epoch := e.epoch
	e.history = append(e.history, Message{Content: message, IsUser: true})
	e.state = AwaitingReply{}
	e.mu.Unlock()
	e.notify(EventChanged)

	token, ok := e.tokens.UsableToken(ctx)
	resp, err := e.chat.Converse(ctx, api.ConversationRequest{
		Message: message,
		Session: api.Session{UserID: session.UserID, TimeZone: session.TimeZone}.WithToken(token, ok),
	})

	e.mu.Lock()
	if e.stale(epoch) {
		e.mu.Unlock()
		e.logger.Debugf("会话已重置，丢弃回复")
		return nil
	}
	switch {
	case err != nil:
		e.logger.Errorf("发送消息失败: %s", err)
		e.history = append(e.history, Message{Content: MsgSendFailed})
		e.state = Idle{}
	case resp.IsProposal():
		e.history = append(e.history, Message{Content: resp.Message})
		p := Proposal{Activities: resp.Activities, Actions: resp.Actions}
		if p.Actionable() {
			e.state = ProposalPending{Proposal: p}
		} else {
			e.state = Idle{}
		}
		e.logger.Infof("收到方案: %d 个活动, %d 个动作", len(p.Activities), len(p.Actions))
	default:
		// 不是方案的回复同样丢弃之前待确认的方案
		e.history = append(e.history, Message{Content: resp.Message})
		e.state = Idle{}
	}
	e.mu.Unlock()
	e.notify(EventChanged)
	return nil
}

// Confirm 提交等待确认的方案
//
// 没有方案或未登录时什么都不做。成功后立即清除方案，ResetDelay 后清空消息列表；
// 失败时追加失败提示并保留方案，可以再次确认。
func (e *Engine) Confirm(ctx context.Context) error {
	e.mu.Lock()
	if e.session == nil {
		e.mu.Unlock()
		return ErrNoSession
	}
	pending, ok := e.state.(ProposalPending)
	if !ok || e.closed {
		e.mu.Unlock()
		return nil
	}
	session := *e.session
	epoch := e.epoch
	e.state = Committing{Proposal: pending.Proposal}
	e.mu.Unlock()
	e.notify(EventChanged)

	activities := pending.Proposal.Activities
	if activities == nil {
		activities = []schedule.Activity{}
	}
	actions := pending.Proposal.Actions
	if actions == nil {
		actions = []api.Action{}
	}

	token, tokOK := e.tokens.UsableToken(ctx)
	resp, err := e.chat.Confirm(ctx, api.ConfirmRequest{
		Activities: activities,
		Actions:    actions,
		Session:    api.Session{UserID: session.UserID, TimeZone: session.TimeZone}.WithToken(token, tokOK),
	})

	e.mu.Lock()
	if e.stale(epoch) {
		e.mu.Unlock()
		e.logger.Debugf("会话已重置，丢弃提交结果")
		return nil
	}
	st, _ := e.state.(Committing)

	switch {
	case err != nil:
		e.logger.Errorf("提交方案失败: %s", err)
		e.history = append(e.history, Message{Content: MsgConfirmFailed})
		e.state = afterFailedCommit(st)
	case !resp.Success:
		e.logger.Warningf("方案部分执行失败: %s", resp.Message)
		e.history = append(e.history, Message{Content: MsgPartialFailed})
		e.state = afterFailedCommit(st)
	default:
		e.history = append(e.history, Message{Content: MsgConfirmPrefix + resp.Message})
		e.state = Idle{}
		e.scheduleReset()
		e.logger.Infof("方案已提交")
	}
	e.mu.Unlock()
	e.notify(EventChanged)
	return nil
}

// Reject 丢弃等待确认的方案并追加一条确认消息，不访问网络
func (e *Engine) Reject() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	switch st := e.state.(type) {
	case ProposalPending:
		e.state = Idle{}
	case Committing:
		st.Discarded = true
		e.state = st
	}
	e.history = append(e.history, Message{Content: MsgRejected})
	e.mu.Unlock()
	e.notify(EventChanged)
}

// Clear 重置会话：本地消息和方案无条件清空，服务端通知失败只记录日志
func (e *Engine) Clear(ctx context.Context) {
	e.mu.Lock()
	e.resetLocked()
	session := e.session
	e.mu.Unlock()
	e.notify(EventChanged)

	if session == nil {
		return
	}
	if err := e.chat.ClearConversation(ctx, session.UserID); err != nil {
		e.logger.Warningf("通知服务端清空会话失败: %s", err)
	}
}

// Close 停止延时任务，之后返回的请求结果都会被丢弃
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	e.cancelResetLocked()
}

func (e *Engine) scheduleReset() {
	e.cancelResetLocked()
	gen := e.resetGen
	e.resetTimer = e.afterFunc(e.resetDelay, func() {
		e.mu.Lock()
		if e.closed || e.resetGen != gen {
			e.mu.Unlock()
			return
		}
		e.history = nil
		e.resetTimer = nil
		e.mu.Unlock()
		e.notify(EventReset)
	})
}

// resetLocked 清空消息和状态，并让进行中的请求结果失效
func (e *Engine) resetLocked() {
	e.epoch++
	e.history = nil
	e.state = Idle{}
	e.cancelResetLocked()
}

// cancelResetLocked 停止延时重置，已经触发但还没拿到锁的回调也会失效
func (e *Engine) cancelResetLocked() {
	e.resetGen++
	if e.resetTimer != nil {
		e.resetTimer.Stop()
		e.resetTimer = nil
	}
}

func (e *Engine) stale(epoch uint64) bool {
	return e.closed || e.epoch != epoch
}

func (e *Engine) notify(ev Event) {
	e.mu.Lock()
	subs := append([]func(Event){}, e.subscribers...)
	closed := e.closed
	e.mu.Unlock()
	if closed {
		return
	}
	for _, fn := range subs {
		fn(ev)
	}
}

func afterFailedCommit(st Committing) State {
	if st.Discarded {
		return Idle{}
	}
	return ProposalPending{Proposal: st.Proposal}
}
