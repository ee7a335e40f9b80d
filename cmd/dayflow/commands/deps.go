package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/Zacy-Sokach/DayFlow/internal/api"
	"github.com/Zacy-Sokach/DayFlow/internal/auth"
	"github.com/Zacy-Sokach/DayFlow/internal/config"
	"github.com/Zacy-Sokach/DayFlow/internal/log"
	"github.com/Zacy-Sokach/DayFlow/internal/schedule/firebase"
	"github.com/Zacy-Sokach/DayFlow/internal/storage/sqlite"
	"github.com/Zacy-Sokach/DayFlow/internal/utils"
)

const (
	credentialsDir = "credentials"
	snapshotDB     = "snapshot.db"
)

// newTokenCache 创建令牌缓存，令牌保存在配置目录的 credentials 下
func newTokenCache(cfg *config.Config, logger log.Logger) (*auth.Cache, error) {
	dir, err := utils.ConfigFile(credentialsDir)
	if err != nil {
		return nil, fmt.Errorf("获取凭据目录失败: %w", err)
	}

	var authenticator auth.Authenticator = auth.CommandAuthenticator{Command: cfg.Auth.TokenCommand}
	if len(cfg.Auth.TokenCommand) == 0 {
		authenticator = auth.AuthenticatorFunc(func(context.Context) (string, error) {
			return "", errors.New("未配置 auth.token_command")
		})
	}

	cache, err := auth.NewCache(auth.CacheConfig{
		Store:         auth.NewDiskvStore(dir),
		Authenticator: authenticator,
		Logger:        logger,
	})
	if err != nil {
		return nil, fmt.Errorf("创建令牌缓存失败: %w", err)
	}
	return cache, nil
}

func newAPIClient(cfg *config.Config) *api.Client {
	return api.NewClient(cfg.APIBaseURL)
}

// newSnapshotRepository 打开本地快照数据库
func newSnapshotRepository(ctx context.Context, logger log.Logger) (*sqlite.Repository, error) {
	dir, err := utils.GetConfigDir()
	if err != nil {
		return nil, fmt.Errorf("获取配置目录失败: %w", err)
	}
	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
		DBPath: filepath.Join(dir, snapshotDB),
		Logger: logger,
	})
	if err != nil {
		return nil, fmt.Errorf("打开快照数据库失败: %w", err)
	}
	return repo, nil
}

// newFeed 创建活动列表轮询器，未配置数据库地址时返回 nil
func newFeed(cfg *config.Config, tokens firebase.TokenSource, repo *sqlite.Repository, logger log.Logger) (*firebase.Feed, error) {
	if cfg.Firebase.DatabaseURL == "" {
		logger.Warningf("未配置 firebase.database_url，活动列表不可用")
		return nil, nil
	}
	feed, err := firebase.NewFeed(firebase.FeedConfig{
		DatabaseURL:  cfg.Firebase.DatabaseURL,
		SchedulePath: cfg.Firebase.SchedulePath,
		UserID:       cfg.UserID,
		Tokens:       tokens,
		HTTPClient:   utils.NewRetryableHTTPClient(&http.Client{Timeout: 15 * time.Second}, nil),
		PollInterval: cfg.Firebase.PollInterval(),
		Snapshots:    repo,
		Logger:       logger,
	})
	if err != nil {
		return nil, fmt.Errorf("创建活动轮询失败: %w", err)
	}
	return feed, nil
}

// today 返回配置时区下的当前时间
func today(cfg *config.Config) time.Time {
	return time.Now().In(cfg.Location())
}
