// Package activity keeps a journal of task changes. It consumes the task
// events, writes one structured log line per event and serves each user the
// recent changes to their own tasks.
package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/example/taskmanager/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/rs/zerolog"
)

// DefaultCapacity is how many entries the journal keeps across all users.
const DefaultCapacity = 100

// Entry is one journaled task change.
type Entry struct {
	Action    string    `json:"action"`
	TaskID    string    `json:"task_id"`
	UserID    string    `json:"user_id"`
	Detail    string    `json:"detail"`
	Timestamp time.Time `json:"timestamp"`
}

// ActivityModule consumes task events.
type ActivityModule struct {
	log      zerolog.Logger
	capacity int

	mu      sync.RWMutex
	entries []Entry
}

var _ mono.Module = (*ActivityModule)(nil)
var _ mono.EventConsumerModule = (*ActivityModule)(nil)
var _ mono.ServiceProviderModule = (*ActivityModule)(nil)

func NewModule(log zerolog.Logger) *ActivityModule {
	return &ActivityModule{
		log:      log.With().Str("module", "activity").Logger(),
		capacity: DefaultCapacity,
		entries:  make([]Entry, 0, DefaultCapacity),
	}
}

func (m *ActivityModule) Name() string {
	return "activity"
}

func (m *ActivityModule) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskCreatedV1, m.handleTaskCreated, m); err != nil {
		return fmt.Errorf("failed to register TaskCreated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskUpdatedV1, m.handleTaskUpdated, m); err != nil {
		return fmt.Errorf("failed to register TaskUpdated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskDeletedV1, m.handleTaskDeleted, m); err != nil {
		return fmt.Errorf("failed to register TaskDeleted consumer: %w", err)
	}

	m.log.Debug().Msg("Registered event consumers: TaskCreated, TaskUpdated, TaskDeleted")
	return nil
}

func (m *ActivityModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceListActivity, json.Unmarshal, json.Marshal, m.listActivity,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceListActivity, err)
	}
	return nil
}

func (m *ActivityModule) listActivity(ctx context.Context, req ListActivityRequest, _ *mono.Msg) (ListActivityResponse, error) {
	entries, err := m.List(ctx, req.UserID)
	if err != nil {
		return ListActivityResponse{Entries: []Entry{}}, err
	}
	return ListActivityResponse{Entries: entries}, nil
}

func (m *ActivityModule) handleTaskCreated(_ context.Context, event events.TaskCreatedEvent, _ *mono.Msg) error {
	m.record(Entry{
		Action:    "task_created",
		TaskID:    event.TaskID,
		UserID:    event.UserID,
		Detail:    fmt.Sprintf("created %q as %s", event.Title, event.Status),
		Timestamp: event.CreatedAt,
	})
	return nil
}

func (m *ActivityModule) handleTaskUpdated(_ context.Context, event events.TaskUpdatedEvent, _ *mono.Msg) error {
	fields := "nothing"
	if len(event.Fields) > 0 {
		fields = strings.Join(event.Fields, ", ")
	}
	m.record(Entry{
		Action:    "task_updated",
		TaskID:    event.TaskID,
		UserID:    event.UserID,
		Detail:    fmt.Sprintf("changed %s, status %s", fields, event.Status),
		Timestamp: event.UpdatedAt,
	})
	return nil
}

func (m *ActivityModule) handleTaskDeleted(_ context.Context, event events.TaskDeletedEvent, _ *mono.Msg) error {
	m.record(Entry{
		Action:    "task_deleted",
		TaskID:    event.TaskID,
		UserID:    event.UserID,
		Detail:    "deleted",
		Timestamp: event.DeletedAt,
	})
	return nil
}

func (m *ActivityModule) record(e Entry) {
	m.log.Info().
		Str("action", e.Action).
		Str("task_id", e.TaskID).
		Str("user_id", e.UserID).
		Time("at", e.Timestamp).
		Msg(e.Detail)

	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.entries) == m.capacity {
		copy(m.entries, m.entries[1:])
		m.entries = m.entries[:len(m.entries)-1]
	}
	m.entries = append(m.entries, e)
}

// List returns the journaled changes to userID's tasks, newest first.
func (m *ActivityModule) List(_ context.Context, userID string) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]Entry, 0)
	for i := len(m.entries) - 1; i >= 0; i-- {
		if m.entries[i].UserID == userID {
			result = append(result, m.entries[i])
		}
	}
	return result, nil
}

func (m *ActivityModule) Start(_ context.Context) error {
	m.log.Info().Msg("Module started - listening for task events")
	return nil
}

func (m *ActivityModule) Stop(_ context.Context) error {
	m.log.Info().Msg("Module stopped")
	return nil
}
