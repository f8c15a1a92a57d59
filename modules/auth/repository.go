package auth

import (
	"context"
	"errors"
	"time"

	domain "github.com/example/taskmanager/domain/user"
	"gorm.io/gorm"
)

var (
	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserExists is returned when a user already exists.
	ErrUserExists = errors.New("user with this email already exists")
)

// UserRepository handles user persistence using GORM.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

// Create creates a new user in the database. The unique email index is the
// final arbiter between concurrent registrations.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	result := r.db.WithContext(ctx).Create(user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return ErrUserExists
		}
		return result.Error
	}
	return nil
}

// FindByID finds a user by ID.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	var user domain.User
	result := r.db.WithContext(ctx).First(&user, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, result.Error
	}
	return &user, nil
}

// FindByEmail finds a user by email. Emails compare case-sensitively.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	result := r.db.WithContext(ctx).First(&user, "email = ?", email)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, result.Error
	}
	return &user, nil
}

// EmailTakenByOther reports whether email belongs to a user other than userID.
func (r *UserRepository) EmailTakenByOther(ctx context.Context, email, userID string) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).
		Model(&domain.User{}).
		Where("email = ? AND id <> ?", email, userID).
		Count(&count)
	if result.Error != nil {
		return false, result.Error
	}
	return count > 0, nil
}

// ProfileChanges lists the profile fields to update; nil fields are left alone.
type ProfileChanges struct {
	Email *string
	Name  *string
}

// UpdateProfile applies changes to the user with the given ID.
func (r *UserRepository) UpdateProfile(ctx context.Context, id string, changes ProfileChanges) error {
	updates := map[string]any{"updated_at": time.Now().UTC()}
	if changes.Email != nil {
		updates["email"] = *changes.Email
	}
	if changes.Name != nil {
		updates["name"] = *changes.Name
	}
	return r.update(ctx, id, updates)
}

// UpdatePasswordHash replaces the stored hash of the user with the given ID.
func (r *UserRepository) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	return r.update(ctx, id, map[string]any{
		"password_hash": hash,
		"updated_at":    time.Now().UTC(),
	})
}

func (r *UserRepository) update(ctx context.Context, id string, updates map[string]any) error {
	result := r.db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return ErrUserExists
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// DeleteAll removes every user. Used by the seed command.
func (r *UserRepository) DeleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&domain.User{}).Error
}
