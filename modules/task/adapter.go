package task

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/taskmanager/apperr"
	domain "github.com/example/taskmanager/domain/task"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// TaskPort is how other modules reach the task service. Every error returned
// is an *apperr.Error.
type TaskPort interface {
	List(ctx context.Context, req ListTasksRequest) ([]domain.Task, error)
	Create(ctx context.Context, req CreateTaskRequest) (*domain.Task, error)
	Update(ctx context.Context, req UpdateTaskRequest) (*domain.Task, error)
	Delete(ctx context.Context, req DeleteTaskRequest) error
}

var (
	_ TaskPort = (*TaskAdapter)(nil)
	_ TaskPort = (*TaskService)(nil)
)

// TaskAdapter implements TaskPort using the service container.
type TaskAdapter struct {
	container mono.ServiceContainer
}

// NewTaskAdapter creates a new TaskAdapter.
func NewTaskAdapter(container mono.ServiceContainer) *TaskAdapter {
	return &TaskAdapter{container: container}
}

func (a *TaskAdapter) List(ctx context.Context, req ListTasksRequest) ([]domain.Task, error) {
	var resp ListTasksResponse
	if err := call(ctx, a.container, ServiceListTasks, &req, &resp); err != nil {
		return nil, err
	}
	if resp.Failure != nil {
		return nil, resp.Failure
	}
	if resp.Tasks == nil {
		return []domain.Task{}, nil
	}
	return resp.Tasks, nil
}

func (a *TaskAdapter) Create(ctx context.Context, req CreateTaskRequest) (*domain.Task, error) {
	var resp TaskResponse
	if err := call(ctx, a.container, ServiceCreateTask, &req, &resp); err != nil {
		return nil, err
	}
	if resp.Failure != nil {
		return nil, resp.Failure
	}
	return resp.Task, nil
}

func (a *TaskAdapter) Update(ctx context.Context, req UpdateTaskRequest) (*domain.Task, error) {
	var resp TaskResponse
	if err := call(ctx, a.container, ServiceUpdateTask, &req, &resp); err != nil {
		return nil, err
	}
	if resp.Failure != nil {
		return nil, resp.Failure
	}
	return resp.Task, nil
}

func (a *TaskAdapter) Delete(ctx context.Context, req DeleteTaskRequest) error {
	var resp DeleteTaskResponse
	if err := call(ctx, a.container, ServiceDeleteTask, &req, &resp); err != nil {
		return err
	}
	if resp.Failure != nil {
		return resp.Failure
	}
	return nil
}

// call sends req to service and decodes the reply into resp. Transport
// failures are reported as internal errors.
func call[Req, Resp any](ctx context.Context, container mono.ServiceContainer, service string, req *Req, resp *Resp) error {
	if err := helper.CallRequestReplyService(
		ctx,
		container,
		service,
		json.Marshal,
		json.Unmarshal,
		req,
		resp,
	); err != nil {
		return apperr.Internal(fmt.Errorf("%s request failed: %w", service, err))
	}
	return nil
}
