// Package models - role.go defines the Role model. Role names are free-form
// and unique per organisation; "owner" and "member" are seeded at sign-up.
package models

import "time"

// Well-known role names seeded when an organisation is provisioned.
const (
	RoleOwner  = "owner"
	RoleMember = "member"
)

// Role represents a named role scoped to one organisation
type Role struct {
	ID          string
	OrgID       string
	Name        string
	Description *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
