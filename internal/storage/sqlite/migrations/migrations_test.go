package migrations_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/Zacy-Sokach/DayFlow/internal/log"
	"github.com/Zacy-Sokach/DayFlow/internal/storage/sqlite/migrations"
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "snapshot.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestApply(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)

	version, err := migrations.Apply(ctx, db, log.Noop)
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)

	var tables int
	err = db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('snapshots', 'activities')`).Scan(&tables)
	require.NoError(t, err)
	assert.Equal(t, 2, tables)

	// 再次执行不做任何修改，db 仍然可用
	version, err = migrations.Apply(ctx, db, nil)
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	require.NoError(t, db.PingContext(ctx))
}

func TestApplyRefusesDirtyDatabase(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	_, err := migrations.Apply(ctx, db, log.Noop)
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, `UPDATE schema_migrations SET dirty = 1`)
	require.NoError(t, err)

	_, err = migrations.Apply(ctx, db, log.Noop)
	assert.ErrorIs(t, err, migrations.ErrDirty)
}

func TestApplyValidation(t *testing.T) {
	_, err := migrations.Apply(context.Background(), nil, log.Noop)
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = migrations.Apply(ctx, openDB(t), log.Noop)
	assert.ErrorIs(t, err, context.Canceled)
}
