package auth

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/taskmanager/apperr"
	"github.com/example/taskmanager/database"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Options configures the auth module.
type Options struct {
	JWT        JWTConfig
	BcryptCost int
}

// AuthModule provides authentication services.
type AuthModule struct {
	db      *gorm.DB
	opts    Options
	log     zerolog.Logger
	service *AuthService
}

// Compile-time interface checks.
var _ mono.Module = (*AuthModule)(nil)
var _ mono.ServiceProviderModule = (*AuthModule)(nil)
var _ mono.HealthCheckableModule = (*AuthModule)(nil)

// NewModule creates a new AuthModule on a migrated database.
func NewModule(db *gorm.DB, opts Options, log zerolog.Logger) *AuthModule {
	m := &AuthModule{
		db:   db,
		opts: opts,
		log:  log.With().Str("module", "auth").Logger(),
	}
	m.service = NewAuthService(
		NewUserRepository(db),
		NewPasswordHasherWithCost(opts.BcryptCost),
		NewJWTManager(opts.JWT),
		m.log,
	)
	return m
}

// Name returns the module name.
func (m *AuthModule) Name() string {
	return "auth"
}

// Start initializes the auth module.
func (m *AuthModule) Start(_ context.Context) error {
	if m.db == nil {
		return fmt.Errorf("database not set")
	}
	m.log.Info().
		Str("issuer", m.opts.JWT.Issuer).
		Dur("token_ttl", m.opts.JWT.TokenDuration).
		Msg("Module started")
	return nil
}

// Stop shuts down the module. The database is owned by the caller.
func (m *AuthModule) Stop(_ context.Context) error {
	m.log.Info().Msg("Module stopped")
	return nil
}

// Health returns the health status of the module.
func (m *AuthModule) Health(ctx context.Context) mono.HealthStatus {
	if err := database.Ping(ctx, m.db); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("database ping failed: %v", err),
		}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
	}
}

// RegisterServices registers request-reply services in the service container.
func (m *AuthModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceRegister, json.Unmarshal, json.Marshal, m.handleRegister,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceRegister, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceLogin, json.Unmarshal, json.Marshal, m.handleLogin,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceLogin, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceVerifyToken, json.Unmarshal, json.Marshal, m.handleVerifyToken,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceVerifyToken, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceGetProfile, json.Unmarshal, json.Marshal, m.handleGetProfile,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceGetProfile, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceUpdateProfile, json.Unmarshal, json.Marshal, m.handleUpdateProfile,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceUpdateProfile, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceChangePassword, json.Unmarshal, json.Marshal, m.handleChangePassword,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceChangePassword, err)
	}

	m.log.Debug().Msg("Registered services: register, login, verify-token, get-profile, update-profile, change-password")
	return nil
}

// Handlers never return transport errors for domain failures; the failure
// travels in the reply so its kind survives the hop.

func (m *AuthModule) handleRegister(ctx context.Context, req RegisterRequest, _ *mono.Msg) (AuthResponse, error) {
	result, err := m.service.Register(ctx, req)
	if err != nil {
		return AuthResponse{Failure: m.failure(ServiceRegister, err)}, nil
	}
	return AuthResponse{Result: result}, nil
}

func (m *AuthModule) handleLogin(ctx context.Context, req LoginRequest, _ *mono.Msg) (AuthResponse, error) {
	result, err := m.service.Login(ctx, req)
	if err != nil {
		return AuthResponse{Failure: m.failure(ServiceLogin, err)}, nil
	}
	return AuthResponse{Result: result}, nil
}

func (m *AuthModule) handleVerifyToken(ctx context.Context, req VerifyTokenRequest, _ *mono.Msg) (VerifyTokenResponse, error) {
	identity, err := m.service.VerifyToken(ctx, req.Token)
	if err != nil {
		return VerifyTokenResponse{Failure: m.failure(ServiceVerifyToken, err)}, nil
	}
	return VerifyTokenResponse{UserID: identity.UserID}, nil
}

func (m *AuthModule) handleGetProfile(ctx context.Context, req GetProfileRequest, _ *mono.Msg) (ProfileResponse, error) {
	user, err := m.service.GetProfile(ctx, req.UserID)
	if err != nil {
		return ProfileResponse{Failure: m.failure(ServiceGetProfile, err)}, nil
	}
	return ProfileResponse{User: user}, nil
}

func (m *AuthModule) handleUpdateProfile(ctx context.Context, req UpdateProfileRequest, _ *mono.Msg) (ProfileResponse, error) {
	user, err := m.service.UpdateProfile(ctx, req)
	if err != nil {
		return ProfileResponse{Failure: m.failure(ServiceUpdateProfile, err)}, nil
	}
	return ProfileResponse{User: user}, nil
}

func (m *AuthModule) handleChangePassword(ctx context.Context, req ChangePasswordRequest, _ *mono.Msg) (ChangePasswordResponse, error) {
	if err := m.service.ChangePassword(ctx, req); err != nil {
		return ChangePasswordResponse{Failure: m.failure(ServiceChangePassword, err)}, nil
	}
	return ChangePasswordResponse{}, nil
}

// failure classifies err and logs the cause of internal failures, which is
// dropped when the error is serialized.
func (m *AuthModule) failure(service string, err error) *apperr.Error {
	appErr := apperr.From(err)
	if appErr.Kind == apperr.KindInternal {
		m.log.Error().Err(err).Str("service", service).Msg("Service failed")
	}
	return appErr
}
