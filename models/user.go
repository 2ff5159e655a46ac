package models

import (
	"time"

	"github.com/google/uuid"
)

// Role represents an authority granted to a user. Role names are uppercase.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// User represents a registered account. PasswordHash is a bcrypt hash and is
// never serialized.
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Pseudo       string    `json:"pseudo" db:"pseudo"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         Role      `json:"role" db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the User model
func (User) TableName() string {
	return "users"
}

// NewUser creates a new User instance
func NewUser(pseudo, email, passwordHash string, role Role) *User {
	now := time.Now()
	return &User{
		ID:           uuid.New(),
		Pseudo:       pseudo,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// IsAdmin returns true if the user has the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
