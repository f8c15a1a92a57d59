package activity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/example/taskmanager/events"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivityModule_RecordsEvents(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	m := NewModule(zerolog.New(&buf))
	now := time.Now().UTC()

	require.NoError(t, m.handleTaskCreated(ctx, events.TaskCreatedEvent{
		TaskID: "t1", Title: "Write report", Status: "pending", UserID: "u1", CreatedAt: now,
	}, nil))
	require.NoError(t, m.handleTaskUpdated(ctx, events.TaskUpdatedEvent{
		TaskID: "t1", UserID: "u1", Fields: []string{"status"}, Status: "completed", UpdatedAt: now,
	}, nil))
	require.NoError(t, m.handleTaskDeleted(ctx, events.TaskDeletedEvent{
		TaskID: "t1", UserID: "u1", DeletedAt: now,
	}, nil))

	entries, err := m.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "task_deleted", entries[0].Action)
	assert.Equal(t, "task_updated", entries[1].Action)
	assert.Equal(t, "changed status, status completed", entries[1].Detail)
	assert.Equal(t, "task_created", entries[2].Action)
	assert.Equal(t, `created "Write report" as pending`, entries[2].Detail)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 3)
	var line map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &line))
	assert.Equal(t, "activity", line["module"])
	assert.Equal(t, "task_created", line["action"])
	assert.Equal(t, "t1", line["task_id"])
}

func TestActivityModule_BoundedJournal(t *testing.T) {
	m := NewModule(zerolog.Nop())
	m.capacity = 3

	for i := 0; i < 5; i++ {
		require.NoError(t, m.handleTaskDeleted(context.Background(), events.TaskDeletedEvent{
			TaskID: fmt.Sprintf("t%d", i),
			UserID: "u1",
		}, nil))
	}

	entries, err := m.List(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "t4", entries[0].TaskID)
	assert.Equal(t, "t2", entries[2].TaskID)
}

func TestActivityModule_ListIsScopedToUser(t *testing.T) {
	ctx := context.Background()
	m := NewModule(zerolog.Nop())

	require.NoError(t, m.handleTaskDeleted(ctx, events.TaskDeletedEvent{TaskID: "a", UserID: "alice"}, nil))
	require.NoError(t, m.handleTaskDeleted(ctx, events.TaskDeletedEvent{TaskID: "b", UserID: "bob"}, nil))

	entries, err := m.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a", entries[0].TaskID)

	resp, err := m.listActivity(ctx, ListActivityRequest{UserID: "carol"}, nil)
	require.NoError(t, err)
	assert.NotNil(t, resp.Entries)
	assert.Empty(t, resp.Entries)
}
