package auth

import (
	"github.com/example/taskmanager/apperr"
	domain "github.com/example/taskmanager/domain/user"
)

// Request-reply service names registered by AuthModule.
const (
	ServiceRegister       = "register"
	ServiceLogin          = "login"
	ServiceVerifyToken    = "verify-token"
	ServiceGetProfile     = "get-profile"
	ServiceUpdateProfile  = "update-profile"
	ServiceChangePassword = "change-password"
)

// AuthResult is returned by a successful registration or login.
type AuthResult struct {
	User  domain.Summary `json:"user"`
	Token string         `json:"token"`
}

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=6"`
	Name     *string `json:"name,omitempty"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse carries the result of register and login calls.
type AuthResponse struct {
	Result  *AuthResult   `json:"result,omitempty"`
	Failure *apperr.Error `json:"failure,omitempty"`
}

// VerifyTokenRequest represents a token verification request.
type VerifyTokenRequest struct {
	Token string `json:"token"`
}

// VerifyTokenResponse represents a token verification response.
type VerifyTokenResponse struct {
	UserID  string        `json:"user_id,omitempty"`
	Failure *apperr.Error `json:"failure,omitempty"`
}

// GetProfileRequest represents a get profile request.
type GetProfileRequest struct {
	UserID string `json:"user_id"`
}

// UpdateProfileRequest represents a profile update. Nil fields are left
// unchanged.
type UpdateProfileRequest struct {
	UserID string  `json:"user_id" validate:"required"`
	Email  *string `json:"email,omitempty" validate:"omitempty,email"`
	Name   *string `json:"name,omitempty"`
}

// ProfileResponse carries a user summary or a failure.
type ProfileResponse struct {
	User    domain.Summary `json:"user"`
	Failure *apperr.Error  `json:"failure,omitempty"`
}

// ChangePasswordRequest represents a password change request.
type ChangePasswordRequest struct {
	UserID          string `json:"user_id" validate:"required"`
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
}

// ChangePasswordResponse represents a password change response.
type ChangePasswordResponse struct {
	Failure *apperr.Error `json:"failure,omitempty"`
}
