// Package models - member.go defines models for user-to-organisation membership,
// including role assignment and enriched views joining user and role details.
package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// Member represents a user's membership in an organisation.
// A user holds at most one membership per organisation.
type Member struct {
	ID        string
	OrgID     string
	UserID    string
	RoleID    string
	Status    int
	Settings  types.JSONText
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MemberWithDetails includes user and role details for listing views
type MemberWithDetails struct {
	ID        string    `json:"id"`
	OrgID     string    `json:"org_id"`
	UserID    string    `json:"user_id"`
	UserEmail string    `json:"user_email"`
	RoleID    string    `json:"role_id"`
	RoleName  string    `json:"role_name"`
	Status    int       `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// RoleUserCount is one row of the users-by-role aggregation
type RoleUserCount struct {
	RoleName  string `json:"role_name" db:"role_name"`
	UserCount int    `json:"user_count" db:"user_count"`
}

// OrgMemberCount is one row of the members-per-organisation aggregation
type OrgMemberCount struct {
	OrgName     string `json:"org_name" db:"org_name"`
	MemberCount int    `json:"member_count" db:"member_count"`
}

// OrgRoleUserCount is one row of the per-organisation role breakdown
type OrgRoleUserCount struct {
	OrgName   string `json:"org_name" db:"org_name"`
	RoleName  string `json:"role_name" db:"role_name"`
	UserCount int    `json:"user_count" db:"user_count"`
}
