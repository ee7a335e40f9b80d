// Package sqlite 把最近一次拉取的活动列表保存到本地 SQLite，离线启动时先展示它。
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Zacy-Sokach/DayFlow/internal/log"
	"github.com/Zacy-Sokach/DayFlow/internal/schedule"
	"github.com/Zacy-Sokach/DayFlow/internal/storage"
	"github.com/Zacy-Sokach/DayFlow/internal/storage/sqlite/migrations"
)

// RepositoryConfig 是 SQLite 快照仓库的配置
type RepositoryConfig struct {
	DBPath string
	Logger log.Logger
}

func (c *RepositoryConfig) defaults() error {
	if c.DBPath == "" {
		return fmt.Errorf("db path is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.SQLite"})
	return nil
}

// Repository 是 storage.SnapshotRepository 的 SQLite 实现
type Repository struct {
	db     *sql.DB
	logger log.Logger
}

var _ storage.SnapshotRepository = (*Repository)(nil)

// NewRepository 打开数据库并执行迁移
func NewRepository(ctx context.Context, cfg RepositoryConfig) (*Repository, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("无效的配置: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return nil, fmt.Errorf("创建数据库目录失败: %w", err)
	}

	dsn := fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)", cfg.DBPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("打开数据库失败: %w", err)
	}

	if _, err := migrations.Apply(ctx, db, cfg.Logger); err != nil {
		db.Close()
		return nil, err
	}

	cfg.Logger.Debugf("快照数据库位于 %s", cfg.DBPath)

	return &Repository{db: db, logger: cfg.Logger}, nil
}

// Close 关闭数据库连接
func (r *Repository) Close() error { return r.db.Close() }

// SaveSnapshot 用新的列表整体替换该用户的快照
func (r *Repository) SaveSnapshot(ctx context.Context, s storage.Snapshot) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("开启事务失败: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO snapshots (user_id, fetched_at) VALUES (?, ?)
		ON CONFLICT(user_id) DO UPDATE SET fetched_at = excluded.fetched_at
	`, s.UserID, s.FetchedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("写入快照失败: %w", err)
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM activities WHERE user_id = ?`, s.UserID); err != nil {
		return fmt.Errorf("清除旧活动失败: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO activities (
			user_id, position, id, title, start_time, end_time,
			days, tags, location, description, status
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("准备语句失败: %w", err)
	}
	defer stmt.Close()

	for i, a := range s.Activities {
		days, err := encodeList(a.Days)
		if err != nil {
			return err
		}
		tags, err := encodeList(a.Tags)
		if err != nil {
			return err
		}
		_, err = stmt.ExecContext(ctx,
			s.UserID, i, string(a.ID), a.Title, a.StartTime, a.EndTime,
			days, tags, a.Location, a.Description, string(a.Status),
		)
		if err != nil {
			return fmt.Errorf("写入活动 %q 失败: %w", a.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("提交事务失败: %w", err)
	}

	r.logger.Debugf("已保存 %d 个活动的快照", len(s.Activities))
	return nil
}

// GetSnapshot 读取快照，活动按保存时的顺序返回
func (r *Repository) GetSnapshot(ctx context.Context, userID string) (*storage.Snapshot, error) {
	var fetchedAt int64
	err := r.db.QueryRowContext(ctx, `SELECT fetched_at FROM snapshots WHERE user_id = ?`, userID).Scan(&fetchedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("snapshot for %s: %w", userID, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("查询快照失败: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, start_time, end_time, days, tags, location, description, status
		FROM activities
		WHERE user_id = ?
		ORDER BY position
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("查询活动失败: %w", err)
	}
	defer rows.Close()

	activities := []schedule.Activity{}
	for rows.Next() {
		var a schedule.Activity
		var id, status, days, tags string
		if err := rows.Scan(&id, &a.Title, &a.StartTime, &a.EndTime, &days, &tags, &a.Location, &a.Description, &status); err != nil {
			return nil, fmt.Errorf("读取活动失败: %w", err)
		}
		a.ID = schedule.ID(id)
		a.Status = schedule.Status(status)
		if a.Days, err = decodeList(days); err != nil {
			return nil, err
		}
		if a.Tags, err = decodeList(tags); err != nil {
			return nil, err
		}
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("遍历活动失败: %w", err)
	}

	return &storage.Snapshot{
		UserID:     userID,
		Activities: activities,
		FetchedAt:  time.UnixMilli(fetchedAt).UTC(),
	}, nil
}

func encodeList(l schedule.StringList) (string, error) {
	if l == nil {
		l = schedule.StringList{}
	}
	b, err := json.Marshal(l)
	if err != nil {
		return "", fmt.Errorf("序列化列表失败: %w", err)
	}
	return string(b), nil
}

func decodeList(s string) (schedule.StringList, error) {
	var l schedule.StringList
	if err := json.Unmarshal([]byte(s), &l); err != nil {
		return nil, fmt.Errorf("解析列表失败: %w", err)
	}
	if len(l) == 0 {
		return nil, nil
	}
	return l, nil
}
