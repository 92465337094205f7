// Package models - invite.go defines the Invite model for the invitation
// workflow. An invite is addressed to an email, not a user ID, so people
// without accounts can be invited; the accept path resolves the email to an
// account at click time.
package models

import "time"

// Invite status values. Cancellation deletes the row, so no cancelled status
// is stored; expiry is inferred from expires_at at read time.
const (
	InviteStatusPending  = "pending"
	InviteStatusAccepted = "accepted"
)

// Invite represents a pending or accepted invitation into an organisation
type Invite struct {
	ID             string
	Email          string
	OrganisationID string
	Status         string
	CreatedAt      time.Time
	ExpiresAt      time.Time
}

// Redeemable reports whether the invite can still transition out of pending
// at the given instant.
func (i *Invite) Redeemable(now time.Time) bool {
	return i.Status == InviteStatusPending && now.Before(i.ExpiresAt)
}
