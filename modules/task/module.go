package task

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/taskmanager/apperr"
	"github.com/example/taskmanager/database"
	domain "github.com/example/taskmanager/domain/task"
	"github.com/example/taskmanager/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// TaskModule provides task management services.
type TaskModule struct {
	db      *gorm.DB
	log     zerolog.Logger
	service *TaskService
}

var _ mono.Module = (*TaskModule)(nil)
var _ mono.ServiceProviderModule = (*TaskModule)(nil)
var _ mono.EventEmitterModule = (*TaskModule)(nil)
var _ mono.HealthCheckableModule = (*TaskModule)(nil)

// NewModule creates a new TaskModule on a migrated database.
func NewModule(db *gorm.DB, log zerolog.Logger) *TaskModule {
	logger := log.With().Str("module", "task").Logger()
	return &TaskModule{
		db:      db,
		log:     logger,
		service: NewTaskService(NewTaskRepository(db), nil, logger),
	}
}

func (m *TaskModule) Name() string {
	return "task"
}

func (m *TaskModule) SetEventBus(bus mono.EventBus) {
	m.service.bus = bus
}

func (m *TaskModule) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.TaskCreatedV1.ToBase(),
		events.TaskUpdatedV1.ToBase(),
		events.TaskDeletedV1.ToBase(),
	}
}

func (m *TaskModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceListTasks, json.Unmarshal, json.Marshal, m.listTasks,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceListTasks, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceCreateTask, json.Unmarshal, json.Marshal, m.createTask,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceCreateTask, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceUpdateTask, json.Unmarshal, json.Marshal, m.updateTask,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceUpdateTask, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceDeleteTask, json.Unmarshal, json.Marshal, m.deleteTask,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceDeleteTask, err)
	}

	m.log.Debug().Msg("Registered services: list-tasks, create-task, update-task, delete-task")
	return nil
}

func (m *TaskModule) Start(_ context.Context) error {
	if m.db == nil {
		return fmt.Errorf("database not set")
	}
	if m.service.bus == nil {
		m.log.Warn().Msg("Event bus not set, task events will not be published")
	}
	m.log.Info().Msg("Module started")
	return nil
}

func (m *TaskModule) Stop(_ context.Context) error {
	m.log.Info().Msg("Module stopped")
	return nil
}

func (m *TaskModule) Health(ctx context.Context) mono.HealthStatus {
	if err := database.Ping(ctx, m.db); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("database ping failed: %v", err),
		}
	}
	return mono.HealthStatus{Healthy: true, Message: "operational"}
}

func (m *TaskModule) listTasks(ctx context.Context, req ListTasksRequest, _ *mono.Msg) (ListTasksResponse, error) {
	tasks, err := m.service.List(ctx, req)
	if err != nil {
		return ListTasksResponse{Tasks: []domain.Task{}, Failure: m.failure(ServiceListTasks, err)}, nil
	}
	return ListTasksResponse{Tasks: tasks}, nil
}

func (m *TaskModule) createTask(ctx context.Context, req CreateTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	task, err := m.service.Create(ctx, req)
	if err != nil {
		return TaskResponse{Failure: m.failure(ServiceCreateTask, err)}, nil
	}
	return TaskResponse{Task: task}, nil
}

func (m *TaskModule) updateTask(ctx context.Context, req UpdateTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	task, err := m.service.Update(ctx, req)
	if err != nil {
		return TaskResponse{Failure: m.failure(ServiceUpdateTask, err)}, nil
	}
	return TaskResponse{Task: task}, nil
}

func (m *TaskModule) deleteTask(ctx context.Context, req DeleteTaskRequest, _ *mono.Msg) (DeleteTaskResponse, error) {
	if err := m.service.Delete(ctx, req); err != nil {
		return DeleteTaskResponse{Failure: m.failure(ServiceDeleteTask, err)}, nil
	}
	return DeleteTaskResponse{}, nil
}

func (m *TaskModule) failure(service string, err error) *apperr.Error {
	appErr := apperr.From(err)
	if appErr.Kind == apperr.KindInternal {
		m.log.Error().Err(err).Str("service", service).Msg("Service failed")
	}
	return appErr
}
