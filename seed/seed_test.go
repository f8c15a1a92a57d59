package seed

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/taskmanager/database"
	domaintask "github.com/example/taskmanager/domain/task"
	domainuser "github.com/example/taskmanager/domain/user"
	"github.com/example/taskmanager/logutil"
	"github.com/example/taskmanager/modules/auth"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestRun(t *testing.T) {
	ctx := logutil.WithLogger(context.Background(), zerolog.Nop())
	db, err := database.Open(ctx, filepath.Join(t.TempDir(), "seed.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	hasher := auth.NewPasswordHasherWithCost(bcrypt.MinCost)

	// Running twice must not duplicate anything.
	require.NoError(t, Run(ctx, db, hasher))
	require.NoError(t, Run(ctx, db, hasher))

	var users []domainuser.User
	require.NoError(t, db.Order("email").Find(&users).Error)
	require.Len(t, users, 2)
	assert.Equal(t, "jane@example.com", users[0].Email)
	assert.Equal(t, "john@example.com", users[1].Email)
	for _, u := range users {
		assert.True(t, hasher.Verify(Password, u.PasswordHash), u.Email)
	}

	var count int64
	require.NoError(t, db.Model(&domaintask.Task{}).Where("user_id = ?", users[1].ID).Count(&count).Error)
	assert.Equal(t, int64(3), count)
	require.NoError(t, db.Model(&domaintask.Task{}).Where("user_id = ?", users[0].ID).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}
