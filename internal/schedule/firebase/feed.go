// Package firebase 通过 Realtime Database 的 REST 接口轮询用户的活动列表。
package firebase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/Zacy-Sokach/DayFlow/internal/log"
	"github.com/Zacy-Sokach/DayFlow/internal/schedule"
	"github.com/Zacy-Sokach/DayFlow/internal/storage"
	"github.com/Zacy-Sokach/DayFlow/internal/utils"
)

// DefaultPollInterval 是默认的轮询间隔
const DefaultPollInterval = 30 * time.Second

// TokenSource 提供访问令牌
type TokenSource interface {
	UsableToken(ctx context.Context) (string, bool)
}

// FeedConfig 是 Feed 的配置
type FeedConfig struct {
	// DatabaseURL 形如 https://<project>.firebaseio.com
	DatabaseURL string
	// SchedulePath 是活动列表所在路径，{uid} 会替换为 UserID
	SchedulePath string
	UserID       string
	Tokens       TokenSource
	HTTPClient   utils.Doer
	PollInterval time.Duration
	// Snapshots 可选，每次拉取成功都会写入，启动时先读出上次的结果
	Snapshots storage.SnapshotRepository
	Logger    log.Logger
	Now       func() time.Time
}

func (c *FeedConfig) defaults() error {
	if c.DatabaseURL == "" {
		return errors.New("database url is required")
	}
	if c.UserID == "" {
		return errors.New("user id is required")
	}
	if c.SchedulePath == "" {
		c.SchedulePath = "users/{uid}/schedule"
	}
	if c.HTTPClient == nil {
		c.HTTPClient = http.DefaultClient
	}
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "firebase.Feed", "uid": c.UserID})
	if c.Now == nil {
		c.Now = time.Now
	}
	return nil
}

// Update 是 Watch 推送的一次结果
type Update struct {
	Activities []schedule.Activity
	// Cached 表示结果来自本地快照而不是服务端
	Cached    bool
	FetchedAt time.Time
	Err       error
}

// Feed 是活动列表的只读视图
type Feed struct {
	endpoint  string
	userID    string
	tokens    TokenSource
	client    utils.Doer
	interval  time.Duration
	snapshots storage.SnapshotRepository
	logger    log.Logger
	now       func() time.Time
}

// NewFeed 创建活动列表轮询器
func NewFeed(cfg FeedConfig) (*Feed, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("无效的配置: %w", err)
	}

	path := strings.ReplaceAll(cfg.SchedulePath, "{uid}", url.PathEscape(cfg.UserID))
	endpoint := strings.TrimRight(cfg.DatabaseURL, "/") + "/" + strings.Trim(path, "/") + ".json"

	return &Feed{
		endpoint:  endpoint,
		userID:    cfg.UserID,
		tokens:    cfg.Tokens,
		client:    cfg.HTTPClient,
		interval:  cfg.PollInterval,
		snapshots: cfg.Snapshots,
		logger:    cfg.Logger,
		now:       cfg.Now,
	}, nil
}

// Fetch 拉取一次完整的活动列表
func (f *Feed) Fetch(ctx context.Context) ([]schedule.Activity, error) {
	u, err := url.Parse(f.endpoint)
	if err != nil {
		return nil, fmt.Errorf("无效的数据库地址: %w", err)
	}
	if f.tokens != nil {
		if token, ok := f.tokens.UsableToken(ctx); ok {
			q := u.Query()
			q.Set("access_token", token)
			u.RawQuery = q.Encode()
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("请求失败: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应失败: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("数据库返回状态码 %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	activities, err := decodeActivities(body)
	if err != nil {
		return nil, fmt.Errorf("解析活动列表失败: %w", err)
	}
	return activities, nil
}

// Cached 返回本地快照，没有快照时返回 storage.ErrNotFound
func (f *Feed) Cached(ctx context.Context) (*storage.Snapshot, error) {
	if f.snapshots == nil {
		return nil, storage.ErrNotFound
	}
	return f.snapshots.GetSnapshot(ctx, f.userID)
}

// Watch 先推送本地快照（如果有），然后立即拉取一次，之后按间隔轮询
// 只有列表发生变化或出错时才推送。ctx 结束后通道关闭。
func (f *Feed) Watch(ctx context.Context) <-chan Update {
	updates := make(chan Update, 1)

	go func() {
		defer close(updates)

		send := func(u Update) bool {
			select {
			case updates <- u:
				return true
			case <-ctx.Done():
				return false
			}
		}

		var last []schedule.Activity
		live := false
		if snap, err := f.Cached(ctx); err == nil {
			last = snap.Activities
			if !send(Update{Activities: snap.Activities, Cached: true, FetchedAt: snap.FetchedAt}) {
				return
			}
		} else if !errors.Is(err, storage.ErrNotFound) {
			f.logger.Warningf("读取本地快照失败: %s", err)
		}

		ticker := time.NewTicker(f.interval)
		defer ticker.Stop()

		for {
			activities, err := f.Fetch(ctx)
			switch {
			case ctx.Err() != nil:
				return
			case err != nil:
				f.logger.Warningf("拉取活动列表失败: %s", err)
				if !send(Update{Err: err}) {
					return
				}
			case !live || !reflect.DeepEqual(last, activities):
				last = activities
				live = true
				fetchedAt := f.now()
				f.saveSnapshot(ctx, activities, fetchedAt)
				if !send(Update{Activities: activities, FetchedAt: fetchedAt}) {
					return
				}
			}

			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	return updates
}

func (f *Feed) saveSnapshot(ctx context.Context, activities []schedule.Activity, at time.Time) {
	if f.snapshots == nil {
		return
	}
	err := f.snapshots.SaveSnapshot(ctx, storage.Snapshot{UserID: f.userID, Activities: activities, FetchedAt: at})
	if err != nil {
		f.logger.Warningf("保存本地快照失败: %s", err)
	}
}

// decodeActivities 接受 null、数组（可能含 null）或以 id 为键的对象
func decodeActivities(body []byte) ([]schedule.Activity, error) {
	body = bytes.TrimSpace(body)
	activities := []schedule.Activity{}
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return activities, nil
	}

	switch body[0] {
	case '[':
		var items []*schedule.Activity
		if err := json.Unmarshal(body, &items); err != nil {
			return nil, err
		}
		for _, a := range items {
			if a != nil {
				activities = append(activities, *a)
			}
		}
	case '{':
		var items map[string]*schedule.Activity
		if err := json.Unmarshal(body, &items); err != nil {
			return nil, err
		}
		keys := make([]string, 0, len(items))
		for k := range items {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			a := items[k]
			if a == nil {
				continue
			}
			if a.ID == "" {
				a.ID = schedule.ID(k)
			}
			activities = append(activities, *a)
		}
	default:
		return nil, fmt.Errorf("unexpected payload %.20q", body)
	}
	return activities, nil
}
