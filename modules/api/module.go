package api

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/example/taskmanager/middleware/metrics"
	"github.com/example/taskmanager/modules/activity"
	"github.com/example/taskmanager/modules/auth"
	"github.com/example/taskmanager/modules/task"
	"github.com/go-monolith/mono"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"
)

// Options configures the HTTP server.
type Options struct {
	Addr        string
	CORSOrigins string

	// Metrics, when set, instruments every route and serves GET /metrics.
	Metrics *metrics.Metrics
	// RateLimit, when set, guards the login and register routes.
	RateLimit fiber.Handler
}

// Deps are the ports the routes call into.
type Deps struct {
	Auth     auth.AuthPort
	Tasks    task.TaskPort
	Activity activity.ActivityPort
}

// APIModule is the HTTP API module.
type APIModule struct {
	opts Options
	log  zerolog.Logger
	deps Deps
	app  *fiber.App
}

// Compile-time interface checks.
var _ mono.Module = (*APIModule)(nil)
var _ mono.DependentModule = (*APIModule)(nil)
var _ mono.HealthCheckableModule = (*APIModule)(nil)

// NewModule creates a new APIModule.
func NewModule(opts Options, log zerolog.Logger) *APIModule {
	return &APIModule{
		opts: opts,
		log:  log.With().Str("module", "api").Logger(),
	}
}

// Name returns the module name.
func (m *APIModule) Name() string {
	return "api"
}

// Dependencies returns the list of module dependencies.
func (m *APIModule) Dependencies() []string {
	return []string{"auth", "task", "activity"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *APIModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "auth":
		m.deps.Auth = auth.NewAuthAdapter(container)
	case "task":
		m.deps.Tasks = task.NewTaskAdapter(container)
	case "activity":
		m.deps.Activity = activity.NewActivityAdapter(container)
	}
}

// Start builds the Fiber app and starts listening.
func (m *APIModule) Start(ctx context.Context) error {
	if m.deps.Auth == nil {
		return fmt.Errorf("auth dependency not set")
	}
	if m.deps.Tasks == nil {
		return fmt.Errorf("task dependency not set")
	}
	if m.deps.Activity == nil {
		return fmt.Errorf("activity dependency not set")
	}

	m.app = NewApp(m.deps, m.opts, m.log)

	errChan := make(chan error, 1)
	go func() {
		if err := m.app.Listen(m.opts.Addr); err != nil {
			errChan <- err
		}
	}()

	// Give the server a moment to bind or fail.
	select {
	case err := <-errChan:
		return fmt.Errorf("failed to start HTTP server: %w", err)
	case <-time.After(100 * time.Millisecond):
		m.log.Info().Str("addr", m.opts.Addr).Msg("HTTP server started")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop waits for in-flight requests and shuts the server down.
func (m *APIModule) Stop(ctx context.Context) error {
	if m.app == nil {
		return nil
	}
	m.log.Info().Msg("Shutting down HTTP server...")
	if err := m.app.ShutdownWithContext(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}
	m.log.Info().Msg("HTTP server stopped")
	return nil
}

// Health returns the health status of the module.
func (m *APIModule) Health(_ context.Context) mono.HealthStatus {
	if m.app == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "HTTP server not initialized",
		}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"addr": m.opts.Addr,
		},
	}
}

// NewApp builds the Fiber app with middleware and the route table.
func NewApp(deps Deps, opts Options, log zerolog.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler(log),
	})

	app.Use(recover.New())
	app.Use(accessLog(log))
	if opts.Metrics != nil {
		app.Use(opts.Metrics.Middleware())
	}
	origins := opts.CORSOrigins
	if origins == "" {
		origins = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: strings.Join([]string{
			fiber.MethodGet, fiber.MethodPost, fiber.MethodPut,
			fiber.MethodPatch, fiber.MethodDelete, fiber.MethodOptions,
		}, ","),
	}))

	setupRoutes(app, NewHandlers(deps, log), deps, opts)
	return app
}

// setupRoutes configures all API routes.
func setupRoutes(app *fiber.App, h *Handlers, deps Deps, opts Options) {
	authPort := deps.Auth

	app.Get("/health", h.Health)
	if opts.Metrics != nil {
		app.Get("/metrics", opts.Metrics.Handler())
	}

	api := app.Group("/api")

	// Public auth routes
	authRoutes := api.Group("/auth")
	if opts.RateLimit != nil {
		authRoutes.Post("/register", opts.RateLimit, h.Register)
		authRoutes.Post("/login", opts.RateLimit, h.Login)
	} else {
		authRoutes.Post("/register", h.Register)
		authRoutes.Post("/login", h.Login)
	}

	// Protected routes receive the caller's identity as an argument.
	authRoutes.Get("/profile", Authenticated(authPort, h.Profile))
	authRoutes.Put("/profile", Authenticated(authPort, h.UpdateProfile))
	authRoutes.Put("/change-password", Authenticated(authPort, h.ChangePassword))

	tasks := api.Group("/tasks")
	tasks.Get("/", Authenticated(authPort, h.ListTasks))
	tasks.Post("/", Authenticated(authPort, h.CreateTask))
	tasks.Patch("/:id", Authenticated(authPort, h.UpdateTask))
	tasks.Delete("/:id", Authenticated(authPort, h.DeleteTask))

	if deps.Activity != nil {
		api.Get("/activity", Authenticated(authPort, h.ListActivity))
	}

	api.Get("/schemas/download", h.DownloadSchemas)
}
