// Package migrations 保存快照数据库的表结构，启动时由 golang-migrate 升级到最新版本。
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/Zacy-Sokach/DayFlow/internal/log"
)

//go:embed sql/*.sql
var migrationFiles embed.FS

// ErrDirty 表示上一次迁移中途失败，需要人工处理数据库文件
var ErrDirty = errors.New("快照数据库处于未完成的迁移状态")

// Apply 把 db 升级到最新的表结构并返回当前版本
//
// 已经是最新版本时什么都不做。db 的所有权仍归调用方，这里不会关闭它。
func Apply(ctx context.Context, db *sql.DB, logger log.Logger) (uint, error) {
	if db == nil {
		return 0, fmt.Errorf("db is required")
	}
	if logger == nil {
		logger = log.Noop
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return 0, fmt.Errorf("创建迁移驱动失败: %w", err)
	}
	src, err := iofs.New(migrationFiles, "sql")
	if err != nil {
		return 0, fmt.Errorf("读取迁移文件失败: %w", err)
	}
	defer func() {
		if err := src.Close(); err != nil {
			logger.Errorf("关闭迁移文件失败: %s", err)
		}
	}()

	// 不调用 m.Close()，它会连同 db 一起关闭
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return 0, fmt.Errorf("创建迁移实例失败: %w", err)
	}

	if _, dirty, err := m.Version(); err == nil && dirty {
		return 0, ErrDirty
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("执行迁移失败: %w", err)
	}

	version, _, err := m.Version()
	if err != nil {
		return 0, fmt.Errorf("读取表结构版本失败: %w", err)
	}
	logger.Debugf("快照数据库表结构版本 %d", version)
	return version, nil
}
