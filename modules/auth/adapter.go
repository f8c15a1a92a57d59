package auth

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/taskmanager/apperr"
	domain "github.com/example/taskmanager/domain/user"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// AuthPort defines the interface for authentication operations.
// This is the port that other modules use to access auth functionality.
// Every error returned is an *apperr.Error.
type AuthPort interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthResult, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResult, error)
	VerifyToken(ctx context.Context, token string) (domain.Identity, error)
	GetProfile(ctx context.Context, userID string) (domain.Summary, error)
	UpdateProfile(ctx context.Context, req UpdateProfileRequest) (domain.Summary, error)
	ChangePassword(ctx context.Context, req ChangePasswordRequest) error
}

var (
	_ AuthPort = (*AuthAdapter)(nil)
	_ AuthPort = (*AuthService)(nil)
)

// AuthAdapter implements AuthPort using the service container.
type AuthAdapter struct {
	container mono.ServiceContainer
}

// NewAuthAdapter creates a new AuthAdapter.
func NewAuthAdapter(container mono.ServiceContainer) *AuthAdapter {
	return &AuthAdapter{
		container: container,
	}
}

// Register creates an account through the register service.
func (a *AuthAdapter) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	var resp AuthResponse
	if err := call(ctx, a.container, ServiceRegister, &req, &resp); err != nil {
		return nil, err
	}
	if resp.Failure != nil {
		return nil, resp.Failure
	}
	return resp.Result, nil
}

// Login signs in through the login service.
func (a *AuthAdapter) Login(ctx context.Context, req LoginRequest) (*AuthResult, error) {
	var resp AuthResponse
	if err := call(ctx, a.container, ServiceLogin, &req, &resp); err != nil {
		return nil, err
	}
	if resp.Failure != nil {
		return nil, resp.Failure
	}
	return resp.Result, nil
}

// VerifyToken validates a bearer token and returns its identity.
func (a *AuthAdapter) VerifyToken(ctx context.Context, token string) (domain.Identity, error) {
	req := VerifyTokenRequest{Token: token}
	var resp VerifyTokenResponse
	if err := call(ctx, a.container, ServiceVerifyToken, &req, &resp); err != nil {
		return domain.Identity{}, err
	}
	if resp.Failure != nil {
		return domain.Identity{}, resp.Failure
	}
	return domain.Identity{UserID: resp.UserID}, nil
}

// GetProfile retrieves the profile of a user.
func (a *AuthAdapter) GetProfile(ctx context.Context, userID string) (domain.Summary, error) {
	req := GetProfileRequest{UserID: userID}
	var resp ProfileResponse
	if err := call(ctx, a.container, ServiceGetProfile, &req, &resp); err != nil {
		return domain.Summary{}, err
	}
	if resp.Failure != nil {
		return domain.Summary{}, resp.Failure
	}
	return resp.User, nil
}

// UpdateProfile changes profile fields of a user.
func (a *AuthAdapter) UpdateProfile(ctx context.Context, req UpdateProfileRequest) (domain.Summary, error) {
	var resp ProfileResponse
	if err := call(ctx, a.container, ServiceUpdateProfile, &req, &resp); err != nil {
		return domain.Summary{}, err
	}
	if resp.Failure != nil {
		return domain.Summary{}, resp.Failure
	}
	return resp.User, nil
}

// ChangePassword replaces the password of a user.
func (a *AuthAdapter) ChangePassword(ctx context.Context, req ChangePasswordRequest) error {
	var resp ChangePasswordResponse
	if err := call(ctx, a.container, ServiceChangePassword, &req, &resp); err != nil {
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
