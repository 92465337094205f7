// invite_repository.go implements queries for invitation rows. State
// transitions are pending -> accepted (stored) and pending -> cancelled (row
// deleted); expiry is never stored, it is inferred from expires_at when read.
package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/elencho/elencho/internal/db/models"
)

// InviteRepository handles invitation database operations
type InviteRepository struct {
	q Querier
}

// NewInviteRepository creates a new InviteRepository
func NewInviteRepository(db *sql.DB) *InviteRepository {
	return &InviteRepository{q: db}
}

// WithTx returns a copy of the repository bound to an open transaction
func (r *InviteRepository) WithTx(tx *sql.Tx) *InviteRepository {
	return &InviteRepository{q: tx}
}

// CreateInvite creates a pending invite expiring at the given instant
func (r *InviteRepository) CreateInvite(ctx context.Context, invite *models.Invite) error {
	invite.ID = uuid.New().String()
	invite.Status = models.InviteStatusPending
	invite.CreatedAt = time.Now()

	query := `
		INSERT INTO invites (id, email, organisation_id, status, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.q.ExecContext(ctx, query,
		invite.ID,
		invite.Email,
		invite.OrganisationID,
		invite.Status,
		invite.CreatedAt,
		invite.ExpiresAt,
	)

	return err
}

// GetInviteByID retrieves an invite by ID
func (r *InviteRepository) GetInviteByID(ctx context.Context, inviteID string) (*models.Invite, error) {
	query := `
		SELECT id, email, organisation_id, status, created_at, expires_at
		FROM invites
		WHERE id = $1
	`

	invite := &models.Invite{}
	err := r.q.QueryRowContext(ctx, query, inviteID).Scan(
		&invite.ID,
		&invite.Email,
		&invite.OrganisationID,
		&invite.Status,
		&invite.CreatedAt,
		&invite.ExpiresAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return invite, nil
}

// MarkAccepted transitions a pending invite to accepted. Returns false when
// the row was not pending anymore (lost race with another redemption).
func (r *InviteRepository) MarkAccepted(ctx context.Context, inviteID string) (bool, error) {
	query := `
		UPDATE invites
		SET status = $1
		WHERE id = $2 AND status = $3
	`

	result, err := r.q.ExecContext(ctx, query, models.InviteStatusAccepted, inviteID, models.InviteStatusPending)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

// DeleteInvite removes an invite row (cancellation)
func (r *InviteRepository) DeleteInvite(ctx context.Context, inviteID string) error {
	query := `DELETE FROM invites WHERE id = $1`

	_, err := r.q.ExecContext(ctx, query, inviteID)
	return err
}
