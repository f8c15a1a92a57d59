package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/example/taskmanager/apperr"
	domain "github.com/example/taskmanager/domain/user"
	"github.com/example/taskmanager/validation"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Client-facing messages. Login failures never say which half was wrong.
const (
	msgUserExists       = "User already exists"
	msgEmailTaken       = "Email already taken"
	msgInvalidCreds     = "Invalid credentials"
	msgInvalidToken     = "Invalid or expired token"
	msgUserNotFound     = "User not found"
	msgInvalidCurrentPw = "Invalid current password"
)

// AuthService handles authentication business logic.
type AuthService struct {
	repo   *UserRepository
	hasher *PasswordHasher
	jwt    *JWTManager
	log    zerolog.Logger

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService creates a new AuthService.
func NewAuthService(repo *UserRepository, hasher *PasswordHasher, jwt *JWTManager, log zerolog.Logger) *AuthService {
	return &AuthService{
		repo:   repo,
		hasher: hasher,
		jwt:    jwt,
		log:    log,
	}
}

// Register creates a new user account and signs it in.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	if err := checkPasswordBytes("password", req.Password); err != nil {
		return nil, err
	}

	if _, err := s.repo.FindByEmail(ctx, req.Email); err == nil {
		return nil, apperr.Conflict(msgUserExists)
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, apperr.Internal(fmt.Errorf("failed to check email existence: %w", err))
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("failed to hash password: %w", err))
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.New().String(),
		Email:        req.Email,
		PasswordHash: passwordHash,
		Name:         req.Name,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		// Lost a race with a concurrent registration of the same email.
		if errors.Is(err, ErrUserExists) {
			return nil, apperr.Conflict(msgUserExists)
		}
		return nil, apperr.Internal(fmt.Errorf("failed to create user: %w", err))
	}

	s.log.Info().Str("user_id", user.ID).Msg("User registered")
	return s.issue(user)
}

// Login authenticates a user and returns a fresh token.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResult, error) {
	user, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			// Spend the same bcrypt work as a real check.
			s.hasher.Verify(req.Password, s.dummy())
			return nil, apperr.Unauthenticated(msgInvalidCreds)
		}
		return nil, apperr.Internal(fmt.Errorf("failed to find user: %w", err))
	}

	if !s.hasher.Verify(req.Password, user.PasswordHash) {
		return nil, apperr.Unauthenticated(msgInvalidCreds)
	}

	return s.issue(user)
}

// VerifyToken checks the token signature and expiry and returns the identity
// it was issued to. The store is not consulted.
func (s *AuthService) VerifyToken(_ context.Context, token string) (domain.Identity, error) {
	claims, err := s.jwt.Validate(token)
	if err != nil {
		return domain.Identity{}, apperr.Unauthenticated(msgInvalidToken)
	}
	return domain.Identity{UserID: claims.UserID()}, nil
}

// GetProfile returns the profile of userID including its creation time.
func (s *AuthService) GetProfile(ctx context.Context, userID string) (domain.Summary, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return domain.Summary{}, err
	}
	return user.ToProfile(), nil
}

// UpdateProfile changes the email and/or name of the user.
func (s *AuthService) UpdateProfile(ctx context.Context, req UpdateProfileRequest) (domain.Summary, error) {
	if err := validation.Struct(req); err != nil {
		return domain.Summary{}, err
	}

	if req.Email != nil {
		taken, err := s.repo.EmailTakenByOther(ctx, *req.Email, req.UserID)
		if err != nil {
			return domain.Summary{}, apperr.Internal(fmt.Errorf("failed to check email: %w", err))
		}
		if taken {
			return domain.Summary{}, apperr.Conflict(msgEmailTaken)
		}
	}

	err := s.repo.UpdateProfile(ctx, req.UserID, ProfileChanges{Email: req.Email, Name: req.Name})
	switch {
	case errors.Is(err, ErrUserExists):
		return domain.Summary{}, apperr.Conflict(msgEmailTaken)
	case errors.Is(err, ErrUserNotFound):
		return domain.Summary{}, apperr.Unauthenticated(msgUserNotFound)
	case err != nil:
		return domain.Summary{}, apperr.Internal(fmt.Errorf("failed to update profile: %w", err))
	}

	user, err := s.findUser(ctx, req.UserID)
	if err != nil {
		return domain.Summary{}, err
	}
	return user.ToSummary(), nil
}

// ChangePassword replaces the password after verifying the current one.
// Tokens issued before the change stay valid until they expire.
func (s *AuthService) ChangePassword(ctx context.Context, req ChangePasswordRequest) error {
	if err := validation.Struct(req); err != nil {
		return err
	}
	if err := checkPasswordBytes("newPassword", req.NewPassword); err != nil {
		return err
	}

	// The token may outlive its account; that case is a 404 here, not a
	// failed session.
	user, err := s.repo.FindByID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return apperr.NotFound(msgUserNotFound)
		}
		return apperr.Internal(fmt.Errorf("failed to find user: %w", err))
	}
	if !s.hasher.Verify(req.CurrentPassword, user.PasswordHash) {
		return apperr.Unauthenticated(msgInvalidCurrentPw)
	}

	passwordHash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return apperr.Internal(fmt.Errorf("failed to hash password: %w", err))
	}

	if err := s.repo.UpdatePasswordHash(ctx, user.ID, passwordHash); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return apperr.NotFound(msgUserNotFound)
		}
		return apperr.Internal(fmt.Errorf("failed to update password: %w", err))
	}

	s.log.Info().Str("user_id", user.ID).Msg("Password changed")
	return nil
}

func (s *AuthService) findUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, apperr.Unauthenticated(msgUserNotFound)
		}
		return nil, apperr.Internal(fmt.Errorf("failed to find user: %w", err))
	}
	return user, nil
}

func (s *AuthService) issue(user *domain.User) (*AuthResult, error) {
	token, _, err := s.jwt.Generate(user.ID)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("failed to generate token: %w", err))
	}
	return &AuthResult{User: user.ToSummary(), Token: token}, nil
}

func (s *AuthService) dummy() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash(uuid.NewString())
		if err != nil {
			s.log.Warn().Err(err).Msg("Failed to prepare dummy hash")
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}

// checkPasswordBytes rejects passwords bcrypt would silently truncate.
func checkPasswordBytes(path, password string) error {
	if len(password) > MaxPasswordBytes {
		return apperr.Validation(apperr.FieldError{
			Path:    path,
			Message: fmt.Sprintf("Must contain at most %d byte(s)", MaxPasswordBytes),
		})
	}
	return nil
}
