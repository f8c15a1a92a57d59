package api

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/taskmanager/database"
	"github.com/example/taskmanager/modules/activity"
	"github.com/example/taskmanager/modules/auth"
	"github.com/example/taskmanager/modules/task"
	"github.com/go-monolith/mono"
	"github.com/rs/zerolog"
	"github.com/steinfletcher/apitest"
	jsonpath "github.com/steinfletcher/apitest-jsonpath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// startApplication runs the auth, task, activity and api modules in one mono
// application, so every route goes through the request-reply adapters.
func startApplication(t *testing.T) *APIModule {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, filepath.Join(t.TempDir(), "mono.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	app, err := mono.NewMonoApplication(
		mono.WithLogLevel(mono.LogLevelError),
		mono.WithShutdownTimeout(5*time.Second),
	)
	require.NoError(t, err)

	app.Register(auth.NewModule(db, auth.Options{
		JWT:        auth.JWTConfig{SecretKey: "mono-test", TokenDuration: time.Hour, Issuer: "test"},
		BcryptCost: bcrypt.MinCost,
	}, zerolog.Nop()))
	app.Register(task.NewModule(db, zerolog.Nop()))
	app.Register(activity.NewModule(zerolog.Nop()))
	apiModule := NewModule(Options{Addr: "127.0.0.1:0"}, zerolog.Nop())
	app.Register(apiModule)

	require.NoError(t, app.Start(ctx))
	t.Cleanup(func() { _ = app.Stop(context.Background()) })
	return apiModule
}

func TestAPIModule_ThroughServiceContainer(t *testing.T) {
	m := startApplication(t)
	require.IsType(t, &auth.AuthAdapter{}, m.deps.Auth)
	require.IsType(t, &task.TaskAdapter{}, m.deps.Tasks)
	require.IsType(t, &activity.ActivityAdapter{}, m.deps.Activity)
	assert.True(t, m.Health(context.Background()).Healthy)

	h := httpHandler(m.app)
	john := register(t, h, "john@example.com")

	apitest.New().
		Handler(h).
		Post("/api/auth/register").
		JSON(`{"email":"john@example.com","password":"password123"}`).
		Expect(t).
		Status(http.StatusBadRequest).
		Assert(jsonpath.Equal("$.message", "User already exists")).
		End()

	apitest.New().
		Handler(h).
		Post("/api/auth/login").
		JSON(`{"email":"john@example.com","password":"wrong-password"}`).
		Expect(t).
		Status(http.StatusUnauthorized).
		Assert(jsonpath.Equal("$.message", "Invalid credentials")).
		End()

	apitest.New().
		Handler(h).
		Get("/api/auth/profile").
		Header("Authorization", bearer(john.Token)).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal("$.email", "john@example.com")).
		End()

	var created struct {
		ID string `json:"id"`
	}
	apitest.New().
		Handler(h).
		Post("/api/tasks").
		Header("Authorization", bearer(john.Token)).
		JSON(`{"title":"Write spec"}`).
		Expect(t).
		Status(http.StatusCreated).
		Assert(jsonpath.Equal("$.status", "pending")).
		End().
		JSON(&created)
	require.NotEmpty(t, created.ID)

	apitest.New().
		Handler(h).
		Patch("/api/tasks/"+created.ID).
		Header("Authorization", bearer(john.Token)).
		JSON(`{"status":"completed"}`).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal("$.status", "completed")).
		Assert(jsonpath.Equal("$.title", "Write spec")).
		End()

	apitest.New().
		Handler(h).
		Get("/api/tasks").
		Header("Authorization", bearer(john.Token)).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Len("$", 1)).
		Assert(jsonpath.Equal("$[0].status", "completed")).
		End()

	apitest.New().
		Handler(h).
		Delete("/api/tasks/"+created.ID).
		Header("Authorization", bearer(john.Token)).
		Expect(t).
		Status(http.StatusNoContent).
		End()

	apitest.New().
		Handler(h).
		Delete("/api/tasks/"+created.ID).
		Header("Authorization", bearer(john.Token)).
		Expect(t).
		Status(http.StatusBadRequest).
		Assert(jsonpath.Equal("$.message", "Task not found")).
		End()

	// Task events reach the journal asynchronously.
	assert.Eventually(t, func() bool {
		entries, err := m.deps.Activity.List(context.Background(), john.User.ID)
		return err == nil && len(entries) == 3
	}, 5*time.Second, 50*time.Millisecond)

	apitest.New().
		Handler(h).
		Get("/api/activity").
		Header("Authorization", bearer(john.Token)).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Len("$", 3)).
		Assert(jsonpath.Equal("$[0].action", "task_deleted")).
		End()
}
