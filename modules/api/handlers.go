package api

import (
	"github.com/example/taskmanager/database"
	"github.com/example/taskmanager/domain/user"
	"github.com/example/taskmanager/modules/activity"
	"github.com/example/taskmanager/modules/auth"
	"github.com/example/taskmanager/modules/task"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// Handlers contains HTTP handlers for the API.
type Handlers struct {
	auth     auth.AuthPort
	tasks    task.TaskPort
	activity activity.ActivityPort
	log      zerolog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(deps Deps, log zerolog.Logger) *Handlers {
	return &Handlers{
		auth:     deps.Auth,
		tasks:    deps.Tasks,
		activity: deps.Activity,
		log:      log,
	}
}

// Register handles user registration.
func (h *Handlers) Register(c *fiber.Ctx) error {
	var body RegisterBody
	if err := c.BodyParser(&body); err != nil {
		return badBody(c)
	}

	result, err := h.auth.Register(c.UserContext(), auth.RegisterRequest{
		Email:    body.Email,
		Password: body.Password,
		Name:     body.Name,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}

	return c.Status(fiber.StatusCreated).JSON(AuthResponse{
		User:  result.User,
		Token: result.Token,
	})
}

// Login handles user login.
func (h *Handlers) Login(c *fiber.Ctx) error {
	var body LoginBody
	if err := c.BodyParser(&body); err != nil {
		return badBody(c)
	}

	result, err := h.auth.Login(c.UserContext(), auth.LoginRequest{
		Email:    body.Email,
		Password: body.Password,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}

	return c.JSON(AuthResponse{
		User:  result.User,
		Token: result.Token,
	})
}

// Profile returns the caller's profile.
func (h *Handlers) Profile(c *fiber.Ctx, identity user.Identity) error {
	profile, err := h.auth.GetProfile(c.UserContext(), identity.UserID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(profile)
}

// UpdateProfile changes the caller's email and/or name.
func (h *Handlers) UpdateProfile(c *fiber.Ctx, identity user.Identity) error {
	var body UpdateProfileBody
	if err := c.BodyParser(&body); err != nil {
		return badBody(c)
	}

	updated, err := h.auth.UpdateProfile(c.UserContext(), auth.UpdateProfileRequest{
		UserID: identity.UserID,
		Email:  body.Email,
		Name:   body.Name,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}

	return c.JSON(ProfileUpdatedResponse{
		Message: "Profile updated successfully",
		User:    updated,
	})
}

// ChangePassword replaces the caller's password. A wrong current password is
// a bad request, not an authentication failure of the session.
func (h *Handlers) ChangePassword(c *fiber.Ctx, identity user.Identity) error {
	var body ChangePasswordBody
	if err := c.BodyParser(&body); err != nil {
		return badBody(c)
	}

	err := h.auth.ChangePassword(c.UserContext(), auth.ChangePasswordRequest{
		UserID:          identity.UserID,
		CurrentPassword: body.CurrentPassword,
		NewPassword:     body.NewPassword,
	})
	if err != nil {
		return writeErrorStatus(c, h.log, err, fiber.StatusBadRequest)
	}

	return c.JSON(MessageResponse{Message: "Password changed successfully"})
}

// ListTasks returns the caller's tasks, newest first.
func (h *Handlers) ListTasks(c *fiber.Ctx, identity user.Identity) error {
	tasks, err := h.tasks.List(c.UserContext(), task.ListTasksRequest{UserID: identity.UserID})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(tasks)
}

// CreateTask creates a task owned by the caller.
func (h *Handlers) CreateTask(c *fiber.Ctx, identity user.Identity) error {
	var body CreateTaskBody
	if err := c.BodyParser(&body); err != nil {
		return badBody(c)
	}

	created, err := h.tasks.Create(c.UserContext(), task.CreateTaskRequest{
		UserID:      identity.UserID,
		Title:       body.Title,
		Description: body.Description,
		Status:      body.Status,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

// UpdateTask applies a partial update to one of the caller's tasks.
func (h *Handlers) UpdateTask(c *fiber.Ctx, identity user.Identity) error {
	var body UpdateTaskBody
	if err := c.BodyParser(&body); err != nil {
		return badBody(c)
	}

	updated, err := h.tasks.Update(c.UserContext(), task.UpdateTaskRequest{
		UserID:      identity.UserID,
		TaskID:      c.Params("id"),
		Title:       body.Title,
		Description: body.Description,
		Status:      body.Status,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}

	return c.JSON(updated)
}

// DeleteTask removes one of the caller's tasks.
func (h *Handlers) DeleteTask(c *fiber.Ctx, identity user.Identity) error {
	err := h.tasks.Delete(c.UserContext(), task.DeleteTaskRequest{
		UserID: identity.UserID,
		TaskID: c.Params("id"),
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListActivity returns the recent changes to the caller's tasks, newest first.
func (h *Handlers) ListActivity(c *fiber.Ctx, identity user.Identity) error {
	entries, err := h.activity.List(c.UserContext(), identity.UserID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(entries)
}

// DownloadSchemas returns the SQL migrations and the payload rules.
func (h *Handlers) DownloadSchemas(c *fiber.Ctx) error {
	migrations, err := database.Sources()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to read migrations")
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to download schemas",
		})
	}
	return c.JSON(SchemaResponse{
		Migrations: migrations,
		Validation: validationRules,
	})
}

// Health reports that the server is up.
func (h *Handlers) Health(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{Status: "ok"})
}

// validationRules describes the payload checks applied by the services.
var validationRules = map[string]map[string]string{
	"register": {
		"email":    "required, valid email address",
		"password": "required, at least 6 characters, at most 72 bytes",
		"name":     "optional string",
	},
	"updateProfile": {
		"email": "optional, valid email address, unique",
		"name":  "optional string",
	},
	"changePassword": {
		"currentPassword": "required",
		"newPassword":     "required, at least 6 characters, at most 72 bytes",
	},
	"task": {
		"title":       "required, at least 1 character",
		"description": "optional string",
		"status":      "optional, one of pending | in-progress | completed, default pending",
	},
}
