package conversation

import (
	"github.com/Zacy-Sokach/DayFlow/internal/api"
	"github.com/Zacy-Sokach/DayFlow/internal/schedule"
)

// Message 是会话中的一条消息
type Message struct {
	Content  string
	IsUser   bool
	IsTyping bool
}

// Proposal 是助手给出、等待用户确认的一批活动和动作
type Proposal struct {
	Activities []schedule.Activity
	Actions    []api.Action
}

// Actionable 至少有一项活动或动作时方案才可以确认
func (p Proposal) Actionable() bool {
	return len(p.Activities) > 0 || len(p.Actions) > 0
}

// State 是会话状态机的状态，取值只有下面四种
type State interface {
	isState()
	String() string
}

// Idle 没有进行中的请求，也没有待确认的方案
type Idle struct{}

// AwaitingReply 正在等待助手回复
type AwaitingReply struct{}

// ProposalPending 有一个方案等待确认或拒绝
type ProposalPending struct {
	Proposal Proposal
}

// Committing 正在提交方案
// Discarded 表示提交期间用户拒绝了方案，提交失败时不再恢复
type Committing struct {
	Proposal  Proposal
	Discarded bool
}

func (Idle) isState()            {}
func (AwaitingReply) isState()   {}
func (ProposalPending) isState() {}
func (Committing) isState()      {}

func (Idle) String() string            { return "idle" }
func (AwaitingReply) String() string   { return "awaiting-reply" }
func (ProposalPending) String() string { return "proposal-pending" }
func (Committing) String() string      { return "committing" }
