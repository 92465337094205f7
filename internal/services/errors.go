// Package services implements the business logic that coordinates across
// repositories and external systems: account provisioning, membership
// management, and the invitation workflow. Each multi-step provisioning flow
// runs inside a single database transaction so a failure at any step rolls the
// whole operation back.
package services

import "errors"

// Sentinel errors mapped to HTTP statuses by the handlers. Lookup misses are
// ErrNotFound, duplicate unique fields are ErrConflict, and sign-in failure is
// always ErrInvalidCredentials regardless of whether the email or the password
// was wrong.
var (
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("already exists")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAlreadyMember      = errors.New("already a member of this organisation")
)

// SoftFailure is a redemption outcome that must render as a friendly message
// with a 200 status rather than an error page. Invite links arrive via email,
// so an expired or reused link is an expected case, not a fault.
type SoftFailure struct {
	Message string
}

func (s *SoftFailure) Error() string {
	return s.Message
}

// SoftFail builds a SoftFailure with the given user-facing message
func SoftFail(message string) *SoftFailure {
	return &SoftFailure{Message: message}
}

// AsSoftFailure unwraps err into a SoftFailure if it is one
func AsSoftFailure(err error) (*SoftFailure, bool) {
	var sf *SoftFailure
	if errors.As(err, &sf) {
		return sf, true
	}
	return nil, false
}
