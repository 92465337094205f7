// Package models - user.go defines the User model for accounts with a unique
// email and stored bcrypt credential. Profile and settings are free-form JSON.
package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// StatusActive and StatusInactive are the values of the integer status columns
// shared by users and members.
const (
	StatusInactive = 0
	StatusActive   = 1
)

// EmptyJSON returns the empty object for jsonb columns that default to '{}'
func EmptyJSON() types.JSONText {
	return types.JSONText("{}")
}

// User represents an account in the system
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Profile      types.JSONText
	Status       int
	Settings     types.JSONText
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicUser is the wire representation of a user with the credential stripped
type PublicUser struct {
	ID        string         `json:"id"`
	Email     string         `json:"email"`
	Profile   types.JSONText `json:"profile"`
	Status    int            `json:"status"`
	CreatedAt time.Time      `json:"created_at"`
}

// Public returns the user without its credential fields
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Email:     u.Email,
		Profile:   u.Profile,
		Status:    u.Status,
		CreatedAt: u.CreatedAt,
	}
}
