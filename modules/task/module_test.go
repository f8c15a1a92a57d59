package task

import (
	"context"
	"testing"

	"github.com/example/taskmanager/apperr"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskModule_Lifecycle(t *testing.T) {
	ctx := context.Background()
	m := NewModule(newTestDB(t), zerolog.Nop())

	assert.Equal(t, "task", m.Name())
	assert.Len(t, m.EmitEvents(), 3)
	require.NoError(t, m.Start(ctx))
	assert.True(t, m.Health(ctx).Healthy)
	require.NoError(t, m.Stop(ctx))
}

func TestTaskModule_Handlers(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	createUser(t, db, "alice")
	m := NewModule(db, zerolog.Nop())

	created, err := m.createTask(ctx, CreateTaskRequest{UserID: "alice", Title: "Task"}, nil)
	require.NoError(t, err)
	require.Nil(t, created.Failure)
	require.NotNil(t, created.Task)

	invalid, err := m.createTask(ctx, CreateTaskRequest{UserID: "alice"}, nil)
	require.NoError(t, err)
	require.NotNil(t, invalid.Failure)
	assert.Equal(t, apperr.KindValidation, invalid.Failure.Kind)

	list, err := m.listTasks(ctx, ListTasksRequest{UserID: "alice"}, nil)
	require.NoError(t, err)
	assert.Nil(t, list.Failure)
	assert.Len(t, list.Tasks, 1)

	foreign, err := m.updateTask(ctx, UpdateTaskRequest{UserID: "mallory", TaskID: created.Task.ID, Title: strPtr("x")}, nil)
	require.NoError(t, err)
	require.NotNil(t, foreign.Failure)
	assert.Equal(t, apperr.KindNotFoundOrForbidden, foreign.Failure.Kind)

	deleted, err := m.deleteTask(ctx, DeleteTaskRequest{UserID: "alice", TaskID: created.Task.ID}, nil)
	require.NoError(t, err)
	assert.Nil(t, deleted.Failure)

	again, err := m.deleteTask(ctx, DeleteTaskRequest{UserID: "alice", TaskID: created.Task.ID}, nil)
	require.NoError(t, err)
	require.NotNil(t, again.Failure)
	assert.Equal(t, apperr.KindNotFoundOrForbidden, again.Failure.Kind)
}
