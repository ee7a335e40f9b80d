// Package activities 处理用户对单个活动的手动编辑和删除。
package activities

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Zacy-Sokach/DayFlow/internal/api"
	"github.com/Zacy-Sokach/DayFlow/internal/log"
	"github.com/Zacy-Sokach/DayFlow/internal/schedule"
)

// ErrInvalid 表示活动缺少必填字段
var ErrInvalid = errors.New("活动无效")

// Backend 是活动编辑接口
type Backend interface {
	UpdateActivity(ctx context.Context, req api.UpdateActivityRequest) error
	DeleteActivity(ctx context.Context, req api.DeleteActivityRequest) (map[string]any, error)
}

// TokenSource 提供访问令牌
type TokenSource interface {
	UsableToken(ctx context.Context) (string, bool)
}

// ServiceConfig 是 Service 的配置
type ServiceConfig struct {
	Backend  Backend
	Tokens   TokenSource
	UserID   string
	TimeZone string
	Logger   log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Backend == nil {
		return errors.New("backend is required")
	}
	if c.Tokens == nil {
		return errors.New("token source is required")
	}
	if c.UserID == "" {
		return errors.New("user id is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "activities.Service"})
	return nil
}

// Service 把编辑请求连同身份信息发给服务端
type Service struct {
	backend Backend
	tokens  TokenSource
	session api.Session
	logger  log.Logger
}

// NewService 创建活动编辑服务
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("无效的配置: %w", err)
	}
	return &Service{
		backend: cfg.Backend,
		tokens:  cfg.Tokens,
		session: api.Session{UserID: cfg.UserID, TimeZone: cfg.TimeZone},
		logger:  cfg.Logger,
	}, nil
}

// Update 保存编辑后的活动，服务端拒绝时返回它给出的错误信息
func (s *Service) Update(ctx context.Context, a schedule.Activity) error {
	a = Normalize(a)
	if a.ID == "" {
		return fmt.Errorf("缺少活动ID: %w", ErrInvalid)
	}
	if a.Title == "" {
		return fmt.Errorf("缺少标题: %w", ErrInvalid)
	}

	token, ok := s.tokens.UsableToken(ctx)
	err := s.backend.UpdateActivity(ctx, api.UpdateActivityRequest{
		ID:      a.ID,
		Updates: a,
		Session: s.session.WithToken(token, ok),
	})
	if err != nil {
		var apiErr *api.APIError
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			return fmt.Errorf("保存活动失败: %s", apiErr.Message)
		}
		return fmt.Errorf("保存活动失败: %w", err)
	}

	s.logger.Infof("活动 %s 已保存", a.ID)
	return nil
}

// Delete 删除活动，结果只记录日志
func (s *Service) Delete(ctx context.Context, id schedule.ID) {
	token, ok := s.tokens.UsableToken(ctx)
	result, err := s.backend.DeleteActivity(ctx, api.DeleteActivityRequest{
		ID:      id,
		Session: s.session.WithToken(token, ok),
	})
	if err != nil {
		s.logger.Errorf("删除活动 %s 失败: %s", id, err)
		return
	}
	s.logger.Infof("删除活动 %s: %v", id, result)
}

// Normalize 去掉字段两端的空白以及标签和重复日中的空项
func Normalize(a schedule.Activity) schedule.Activity {
	a.Title = strings.TrimSpace(a.Title)
	a.StartTime = strings.TrimSpace(a.StartTime)
	a.EndTime = strings.TrimSpace(a.EndTime)
	a.Location = strings.TrimSpace(a.Location)
	a.Description = strings.TrimSpace(a.Description)
	a.Days = schedule.SplitList(strings.Join(a.Days, ","))
	a.Tags = schedule.SplitList(strings.Join(a.Tags, ","))
	return a
}
