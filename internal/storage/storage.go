// Package storage 定义活动快照的持久化接口。
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/Zacy-Sokach/DayFlow/internal/schedule"
)

// ErrNotFound 表示还没有保存过快照
var ErrNotFound = errors.New("not found")

// Snapshot 是某个用户最近一次拉取到的完整活动列表
type Snapshot struct {
	UserID     string
	Activities []schedule.Activity
	FetchedAt  time.Time
}

// SnapshotRepository 保存和读取活动快照
type SnapshotRepository interface {
	SaveSnapshot(ctx context.Context, s Snapshot) error
	GetSnapshot(ctx context.Context, userID string) (*Snapshot, error)
}
