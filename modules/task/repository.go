package task

import (
	"context"
	"errors"
	"fmt"

	domain "github.com/example/taskmanager/domain/task"
	"gorm.io/gorm"
)

// ErrTaskNotFound is returned when no task with the id is owned by the caller.
// A task owned by someone else is reported the same way.
var ErrTaskNotFound = errors.New("task not found")

// TaskRepository handles task persistence using GORM. Every query that
// touches a single task is keyed on both the task id and the owner id.
type TaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create inserts a new task.
func (r *TaskRepository) Create(ctx context.Context, task *domain.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

// ListByOwner returns the tasks of owner, newest first.
func (r *TaskRepository) ListByOwner(ctx context.Context, owner string) ([]domain.Task, error) {
	tasks := make([]domain.Task, 0)
	result := r.db.WithContext(ctx).
		Where("user_id = ?", owner).
		Order("created_at DESC").
		Order("rowid DESC").
		Find(&tasks)
	if result.Error != nil {
		return nil, result.Error
	}
	return tasks, nil
}

// UpdateOwned applies updates to the task with id in a single conditional
// UPDATE and returns the stored row. A zero row count means the task does not
// exist or belongs to another owner.
func (r *TaskRepository) UpdateOwned(ctx context.Context, owner, id string, updates map[string]any) (*domain.Task, error) {
	var updated *domain.Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&domain.Task{}).
			Where("id = ? AND user_id = ?", id, owner).
			Updates(updates)
		if result.Error != nil {
			return fmt.Errorf("update task: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrTaskNotFound
		}

		var task domain.Task
		if err := tx.First(&task, "id = ? AND user_id = ?", id, owner).Error; err != nil {
			return fmt.Errorf("reload task: %w", err)
		}
		updated = &task
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteOwned removes the task with id in a single conditional DELETE.
func (r *TaskRepository) DeleteOwned(ctx context.Context, owner, id string) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, owner).
		Delete(&domain.Task{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// DeleteAll removes every task. Used by the seed command.
func (r *TaskRepository) DeleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&domain.Task{}).Error
}
