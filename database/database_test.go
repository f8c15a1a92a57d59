package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestOpen_AppliesMigrations(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.db")

	db, err := Open(ctx, path, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, Ping(ctx, db))

	assert.True(t, db.Migrator().HasTable("users"))
	assert.True(t, db.Migrator().HasTable("tasks"))
	require.NoError(t, Close(db))

	// Reopening an up-to-date database is a no-op.
	db, err = Open(ctx, path, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })
}

func TestOpen_UniqueEmail(t *testing.T) {
	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "test.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	insert := func(id string) error {
		now := time.Now()
		return db.Exec(
			"INSERT INTO users (id, email, password_hash, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
			id, "dup@example.com", "hash", now, now,
		).Error
	}
	require.NoError(t, insert("u1"))
	assert.ErrorIs(t, insert("u2"), gorm.ErrDuplicatedKey)
}

func TestOpen_TaskRequiresOwner(t *testing.T) {
	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "test.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	now := time.Now()
	err = db.Exec(
		"INSERT INTO tasks (id, title, status, user_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
		"t1", "orphan", "pending", "missing-user", now, now,
	).Error
	assert.Error(t, err)
}

func TestSources(t *testing.T) {
	migrations, err := Sources()
	require.NoError(t, err)
	require.Len(t, migrations, 2)
	assert.Equal(t, "00001_create_users.sql", migrations[0].Name)
	assert.Equal(t, "00002_create_tasks.sql", migrations[1].Name)
	assert.Contains(t, migrations[0].SQL, "+goose Up")
}

func TestPing_NilDB(t *testing.T) {
	assert.Error(t, Ping(context.Background(), nil))
	assert.NoError(t, Close(nil))
}
