package user

import (
	"time"
)

// User represents a registered account.
type User struct {
	ID           string    `gorm:"primaryKey;type:text"`
	Email        string    `gorm:"uniqueIndex;not null;type:text"`
	PasswordHash string    `gorm:"column:password_hash;not null;type:text"`
	Name         *string   `gorm:"type:text"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName returns the table name for the User entity.
func (User) TableName() string {
	return "users"
}

// Summary is the client-facing view of a user. It never carries the
// password hash.
type Summary struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Name      *string    `json:"name"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// ToSummary converts u without its creation time.
func (u *User) ToSummary() Summary {
	return Summary{
		ID:    u.ID,
		Email: u.Email,
		Name:  u.Name,
	}
}

// ToProfile converts u including its creation time.
func (u *User) ToProfile() Summary {
	s := u.ToSummary()
	createdAt := u.CreatedAt
	s.CreatedAt = &createdAt
	return s
}

// Identity is the authenticated caller resolved from a bearer token.
type Identity struct {
	UserID string `json:"user_id"`
}
