package api

import (
	"github.com/example/taskmanager/apperr"
	"github.com/example/taskmanager/database"
	"github.com/example/taskmanager/domain/task"
	"github.com/example/taskmanager/domain/user"
)

// RegisterBody is the body of POST /api/auth/register.
type RegisterBody struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Name     *string `json:"name"`
}

// LoginBody is the body of POST /api/auth/login.
type LoginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateProfileBody is the body of PUT /api/auth/profile.
type UpdateProfileBody struct {
	Email *string `json:"email"`
	Name  *string `json:"name"`
}

// ChangePasswordBody is the body of PUT /api/auth/change-password.
type ChangePasswordBody struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// CreateTaskBody is the body of POST /api/tasks.
type CreateTaskBody struct {
	Title       string       `json:"title"`
	Description *string      `json:"description"`
	Status      *task.Status `json:"status"`
}

// UpdateTaskBody is the body of PATCH /api/tasks/:id. Absent fields are left
// unchanged.
type UpdateTaskBody struct {
	Title       *string      `json:"title"`
	Description *string      `json:"description"`
	Status      *task.Status `json:"status"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	User  user.Summary `json:"user"`
	Token string       `json:"token"`
}

// ProfileUpdatedResponse is returned by PUT /api/auth/profile.
type ProfileUpdatedResponse struct {
	Message string       `json:"message"`
	User    user.Summary `json:"user"`
}

// MessageResponse carries a confirmation message.
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// SchemaResponse is returned by GET /api/schemas/download.
type SchemaResponse struct {
	Migrations []database.Migration          `json:"migrations"`
	Validation map[string]map[string]string `json:"validation"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string              `json:"error"`
	Message string              `json:"message"`
	Errors  []apperr.FieldError `json:"errors,omitempty"`
}
