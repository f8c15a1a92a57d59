package task

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/taskmanager/apperr"
	domain "github.com/example/taskmanager/domain/task"
	"github.com/example/taskmanager/events"
	"github.com/example/taskmanager/validation"
	"github.com/go-monolith/mono"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const msgTaskNotFound = "Task not found"

// TaskService implements ownership-scoped task operations. Every method takes
// the owner id explicitly.
type TaskService struct {
	repo *TaskRepository
	bus  mono.EventBus
	log  zerolog.Logger
}

// NewTaskService creates a new TaskService. bus may be nil, in which case no
// events are published.
func NewTaskService(repo *TaskRepository, bus mono.EventBus, log zerolog.Logger) *TaskService {
	return &TaskService{
		repo: repo,
		bus:  bus,
		log:  log,
	}
}

// List returns the caller's tasks, newest first.
func (s *TaskService) List(ctx context.Context, req ListTasksRequest) ([]domain.Task, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	tasks, err := s.repo.ListByOwner(ctx, req.UserID)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("failed to list tasks: %w", err))
	}
	return tasks, nil
}

// Create stores a new task owned by the caller. Status defaults to pending.
func (s *TaskService) Create(ctx context.Context, req CreateTaskRequest) (*domain.Task, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	status := domain.StatusPending
	if req.Status != nil {
		status = *req.Status
	}

	now := time.Now().UTC()
	task := &domain.Task{
		ID:          uuid.New().String(),
		Title:       req.Title,
		Description: req.Description,
		Status:      status,
		UserID:      req.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, task); err != nil {
		return nil, apperr.Internal(fmt.Errorf("failed to save task: %w", err))
	}

	s.publish(task.ID, func(bus mono.EventBus) error {
		return events.TaskCreatedV1.Publish(bus, events.TaskCreatedEvent{
			TaskID:    task.ID,
			Title:     task.Title,
			Status:    string(task.Status),
			UserID:    task.UserID,
			CreatedAt: task.CreatedAt,
		}, nil)
	})

	return task, nil
}

// Update applies the provided fields to a task owned by the caller.
func (s *TaskService) Update(ctx context.Context, req UpdateTaskRequest) (*domain.Task, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	updates := map[string]any{"updated_at": time.Now().UTC()}
	var fields []string
	if req.Title != nil {
		updates["title"] = *req.Title
		fields = append(fields, "title")
	}
	if req.Description != nil {
		updates["description"] = *req.Description
		fields = append(fields, "description")
	}
	if req.Status != nil {
		updates["status"] = string(*req.Status)
		fields = append(fields, "status")
	}

	task, err := s.repo.UpdateOwned(ctx, req.UserID, req.TaskID, updates)
	if err != nil {
		if errors.Is(err, ErrTaskNotFound) {
			return nil, apperr.NotFoundOrForbidden(msgTaskNotFound)
		}
		return nil, apperr.Internal(fmt.Errorf("failed to update task: %w", err))
	}

	s.publish(task.ID, func(bus mono.EventBus) error {
		return events.TaskUpdatedV1.Publish(bus, events.TaskUpdatedEvent{
			TaskID:    task.ID,
			UserID:    task.UserID,
			Fields:    fields,
			Status:    string(task.Status),
			UpdatedAt: task.UpdatedAt,
		}, nil)
	})

	return task, nil
}

// Delete removes a task owned by the caller. Deleting a missing or foreign
// task fails.
func (s *TaskService) Delete(ctx context.Context, req DeleteTaskRequest) error {
	if err := validation.Struct(req); err != nil {
		return err
	}

	if err := s.repo.DeleteOwned(ctx, req.UserID, req.TaskID); err != nil {
		if errors.Is(err, ErrTaskNotFound) {
			return apperr.NotFoundOrForbidden(msgTaskNotFound)
		}
		return apperr.Internal(fmt.Errorf("failed to delete task: %w", err))
	}

	s.publish(req.TaskID, func(bus mono.EventBus) error {
		return events.TaskDeletedV1.Publish(bus, events.TaskDeletedEvent{
			TaskID:    req.TaskID,
			UserID:    req.UserID,
			DeletedAt: time.Now().UTC(),
		}, nil)
	})

	return nil
}

// publish is best-effort; a failure is logged and never fails the operation.
func (s *TaskService) publish(taskID string, fn func(mono.EventBus) error) {
	if s.bus == nil {
		return
	}
	if err := fn(s.bus); err != nil {
		s.log.Warn().Err(err).Str("task_id", taskID).Msg("Failed to publish task event")
	}
}
