package api

import (
	"encoding/json"

	"github.com/Zacy-Sokach/DayFlow/internal/schedule"
)

// Session 是每个请求都携带的身份信息
// AccessToken 为 nil 时序列化为 null，由服务端决定是否拒绝
type Session struct {
	UserID      string  `json:"userId"`
	AccessToken *string `json:"accessToken"`
	TimeZone    string  `json:"timeZone"`
}

// WithToken 返回带上令牌的副本；ok 为 false 时令牌为 null
func (s Session) WithToken(token string, ok bool) Session {
	if ok && token != "" {
		s.AccessToken = &token
	} else {
		s.AccessToken = nil
	}
	return s
}

const ResponseTypeProposal = "proposal"

type ConversationRequest struct {
	Message string `json:"message"`
	Session
}

type ConversationResponse struct {
	Message    string              `json:"message"`
	Type       string              `json:"type"`
	Activities []schedule.Activity `json:"activities,omitempty"`
	Actions    []Action            `json:"actions,omitempty"`
}

// IsProposal 判断回复是否携带待确认的方案
func (r *ConversationResponse) IsProposal() bool {
	return r.Type == ResponseTypeProposal
}

type ConfirmRequest struct {
	Activities []schedule.Activity `json:"activities"`
	Actions    []Action            `json:"actions"`
	Session
}

type ConfirmResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type clearRequest struct {
	UserID string `json:"userId"`
}

type UpdateActivityRequest struct {
	ID      schedule.ID       `json:"id"`
	Updates schedule.Activity `json:"updates"`
	Session
}

type DeleteActivityRequest struct {
	ID schedule.ID `json:"id"`
	Session
}

type futuresRequest struct {
	Session
}

type futuresResponse struct {
	Futures []Future `json:"futures"`
}

// Future 是一条未来情景预测
type Future struct {
	Title       string   `json:"title"`
	TimeHorizon string   `json:"timeHorizon"`
	Summary     []string `json:"summary"`
	Details     string   `json:"details"`
}

// Action 是方案中的副作用请求（例如创建文档）
// 确认时原样回传，未知字段不会丢失
type Action struct {
	Type  string `json:"type"`
	Title string `json:"title"`

	raw json.RawMessage
}

const ActionCreateSheet = "createSheet"

type actionFields struct {
	Type  string `json:"type"`
	Title string `json:"title"`
}

func (a *Action) UnmarshalJSON(data []byte) error {
	var f actionFields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	a.Type = f.Type
	a.Title = f.Title
	a.raw = append(json.RawMessage(nil), data...)
	return nil
}

func (a Action) MarshalJSON() ([]byte, error) {
	if a.raw != nil {
		return a.raw, nil
	}
	return json.Marshal(actionFields{Type: a.Type, Title: a.Title})
}

// Kind 返回动作的展示名称
func (a Action) Kind() string {
	if a.Type == ActionCreateSheet {
		return "Google Sheet"
	}
	return "Google Doc"
}
