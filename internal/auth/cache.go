// Package auth 缓存外部签发的访问令牌，过期前自动重新认证。
package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Zacy-Sokach/DayFlow/internal/log"
)

const (
	// ExpiryBuffer 令牌剩余有效期不足该值时视为过期
	ExpiryBuffer = 5 * time.Minute
	// TokenLifetime 新令牌的软过期时间，比身份提供方的一小时略短
	TokenLifetime = 55 * time.Minute
)

// ErrNoToken 表示重新认证没有拿到可用的令牌
var ErrNoToken = errors.New("没有可用的访问令牌")

// Record 是持久化的令牌和它的过期时间
type Record struct {
	Token     string
	ExpiresAt time.Time
}

// Store 持久化令牌记录，令牌和过期时间总是一起写入、一起删除
type Store interface {
	// Load 返回已保存的记录，没有记录时 ok 为 false
	Load() (rec Record, ok bool, err error)
	Save(rec Record) error
	Delete() error
}

// Authenticator 向身份提供方获取新的 bearer 令牌
type Authenticator interface {
	Authenticate(ctx context.Context) (string, error)
}

// AuthenticatorFunc 让普通函数实现 Authenticator
type AuthenticatorFunc func(ctx context.Context) (string, error)

func (f AuthenticatorFunc) Authenticate(ctx context.Context) (string, error) { return f(ctx) }

// CacheConfig 是 Cache 的配置
type CacheConfig struct {
	Store         Store
	Authenticator Authenticator
	Logger        log.Logger
	// Now 默认为 time.Now
	Now func() time.Time
}

func (c *CacheConfig) defaults() error {
	if c.Store == nil {
		c.Store = NewMemoryStore()
	}
	if c.Authenticator == nil {
		return errors.New("authenticator is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "auth.Cache"})
	if c.Now == nil {
		c.Now = time.Now
	}
	return nil
}

// Cache 是进程内共享的令牌缓存
//
// 多个调用方同时发现令牌过期时各自重新认证，不做合并。
type Cache struct {
	mu     sync.Mutex
	store  Store
	authn  Authenticator
	logger log.Logger
	now    func() time.Time
}

// NewCache 创建令牌缓存
func NewCache(cfg CacheConfig) (*Cache, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("无效的配置: %w", err)
	}
	return &Cache{
		store:  cfg.Store,
		authn:  cfg.Authenticator,
		logger: cfg.Logger,
		now:    cfg.Now,
	}, nil
}

// UsableToken 返回至少还能用 ExpiryBuffer 的令牌
// 缓存命中时不访问网络；否则重新认证一次并保存结果。拿不到令牌时 ok 为 false。
func (c *Cache) UsableToken(ctx context.Context) (string, bool) {
	c.mu.Lock()
	rec, found, err := c.store.Load()
	c.mu.Unlock()
	if err != nil {
		c.logger.Warningf("读取令牌缓存失败: %s", err)
	}

	if found && rec.Token != "" && rec.ExpiresAt.After(c.now().Add(ExpiryBuffer)) {
		return rec.Token, true
	}

	return c.reauthenticate(ctx)
}

// SignIn 主动认证一次，开始令牌的生命周期
func (c *Cache) SignIn(ctx context.Context) error {
	if _, ok := c.reauthenticate(ctx); !ok {
		return ErrNoToken
	}
	return nil
}

// SignOut 立即删除保存的令牌和过期时间
func (c *Cache) SignOut() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.store.Delete(); err != nil {
		return fmt.Errorf("删除令牌失败: %w", err)
	}
	c.logger.Infof("已退出登录")
	return nil
}

func (c *Cache) reauthenticate(ctx context.Context) (string, bool) {
	token, err := c.authn.Authenticate(ctx)
	if err != nil {
		c.logger.Errorf("重新认证失败: %s", err)
		return "", false
	}
	if token == "" {
		c.logger.Warningf("重新认证没有返回令牌")
		return "", false
	}

	rec := Record{Token: token, ExpiresAt: c.now().Add(TokenLifetime)}
	c.mu.Lock()
	err = c.store.Save(rec)
	c.mu.Unlock()
	if err != nil {
		// 令牌本身可用，只是下次启动需要重新认证
		c.logger.Warningf("保存令牌失败: %s", err)
	}

	c.logger.Debugf("令牌已刷新，过期时间 %s", rec.ExpiresAt.Format(time.RFC3339))
	return token, true
}
