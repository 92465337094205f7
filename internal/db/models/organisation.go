// Package models - organisation.go defines the Organisation model. Every
// account owns a personal organisation created at sign-up; further tenancy is
// granted through members rows.
package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// Organisation represents a tenant boundary for roles and memberships
type Organisation struct {
	ID        string
	Name      string
	Status    int
	Personal  bool
	Settings  types.JSONText
	CreatedAt time.Time
	UpdatedAt time.Time
}
