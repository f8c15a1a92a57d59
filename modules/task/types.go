package task

import (
	"github.com/example/taskmanager/apperr"
	domain "github.com/example/taskmanager/domain/task"
)

// Request-reply service names registered by TaskModule.
const (
	ServiceListTasks  = "list-tasks"
	ServiceCreateTask = "create-task"
	ServiceUpdateTask = "update-task"
	ServiceDeleteTask = "delete-task"
)

// ListTasksRequest lists the tasks of one owner.
type ListTasksRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

// ListTasksResponse carries the owner's tasks, newest first.
type ListTasksResponse struct {
	Tasks   []domain.Task `json:"tasks"`
	Failure *apperr.Error `json:"failure,omitempty"`
}

// CreateTaskRequest creates a task owned by UserID.
type CreateTaskRequest struct {
	UserID      string         `json:"user_id" validate:"required"`
	Title       string         `json:"title" validate:"required"`
	Description *string        `json:"description,omitempty"`
	Status      *domain.Status `json:"status,omitempty" validate:"omitempty,oneof=pending in-progress completed"`
}

// UpdateTaskRequest changes the provided fields of a task owned by UserID.
type UpdateTaskRequest struct {
	UserID      string         `json:"user_id" validate:"required"`
	TaskID      string         `json:"task_id" validate:"required"`
	Title       *string        `json:"title,omitempty" validate:"omitempty,min=1"`
	Description *string        `json:"description,omitempty"`
	Status      *domain.Status `json:"status,omitempty" validate:"omitempty,oneof=pending in-progress completed"`
}

// TaskResponse carries one task or a failure.
type TaskResponse struct {
	Task    *domain.Task  `json:"task,omitempty"`
	Failure *apperr.Error `json:"failure,omitempty"`
}

// DeleteTaskRequest deletes a task owned by UserID.
type DeleteTaskRequest struct {
	UserID string `json:"user_id" validate:"required"`
	TaskID string `json:"task_id" validate:"required"`
}

// DeleteTaskResponse represents a delete response.
type DeleteTaskResponse struct {
	Failure *apperr.Error `json:"failure,omitempty"`
}
