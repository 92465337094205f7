// member_repository.go implements queries for membership rows: creation, role
// reassignment, removal, and the org member listing joined with user and role
// details. The UNIQUE(org_id, user_id) constraint is surfaced to callers via
// IsUniqueViolation so a lost insert race reads as "already a member".
package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/elencho/elencho/internal/db/models"
)

// uniqueViolation is the PostgreSQL error code for a unique constraint breach
const uniqueViolation = "23505"

// IsUniqueViolation reports whether err is a PostgreSQL unique constraint error
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// MemberRepository handles membership database operations
type MemberRepository struct {
	q Querier
}

// NewMemberRepository creates a new MemberRepository
func NewMemberRepository(db *sql.DB) *MemberRepository {
	return &MemberRepository{q: db}
}

// WithTx returns a copy of the repository bound to an open transaction
func (r *MemberRepository) WithTx(tx *sql.Tx) *MemberRepository {
	return &MemberRepository{q: tx}
}

// CreateMember creates a new membership row. A unique violation means the user
// already holds a membership in the organisation; callers detect that with
// IsUniqueViolation.
func (r *MemberRepository) CreateMember(ctx context.Context, member *models.Member) error {
	member.ID = uuid.New().String()
	member.CreatedAt = time.Now()
	member.UpdatedAt = time.Now()
	if member.Status == 0 {
		member.Status = models.StatusActive
	}
	if member.Settings == nil {
		member.Settings = models.EmptyJSON()
	}

	query := `
		INSERT INTO members (id, org_id, user_id, role_id, status, settings, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.q.ExecContext(ctx, query,
		member.ID,
		member.OrgID,
		member.UserID,
		member.RoleID,
		member.Status,
		member.Settings,
		member.CreatedAt,
		member.UpdatedAt,
	)

	return err
}

// GetMemberByID retrieves a membership by ID
func (r *MemberRepository) GetMemberByID(ctx context.Context, memberID string) (*models.Member, error) {
	query := `
		SELECT id, org_id, user_id, role_id, status, settings, created_at, updated_at
		FROM members
		WHERE id = $1
	`
	return r.scanMember(r.q.QueryRowContext(ctx, query, memberID))
}

// GetMemberByOrgAndUser retrieves a user's membership in an organisation
func (r *MemberRepository) GetMemberByOrgAndUser(ctx context.Context, orgID, userID string) (*models.Member, error) {
	query := `
		SELECT id, org_id, user_id, role_id, status, settings, created_at, updated_at
		FROM members
		WHERE org_id = $1 AND user_id = $2
	`
	return r.scanMember(r.q.QueryRowContext(ctx, query, orgID, userID))
}

// UpdateMemberRole reassigns the member to a different role
func (r *MemberRepository) UpdateMemberRole(ctx context.Context, memberID, roleID string) error {
	query := `
		UPDATE members
		SET role_id = $1, updated_at = $2
		WHERE id = $3
	`

	_, err := r.q.ExecContext(ctx, query, roleID, time.Now(), memberID)
	return err
}

// DeleteMember removes a membership row
func (r *MemberRepository) DeleteMember(ctx context.Context, memberID string) error {
	query := `DELETE FROM members WHERE id = $1`

	_, err := r.q.ExecContext(ctx, query, memberID)
	return err
}

// ListOrgMembers returns all memberships in an organisation with user email
// and role name attached, for listing views.
func (r *MemberRepository) ListOrgMembers(ctx context.Context, orgID string) ([]models.MemberWithDetails, error) {
	query := `
		SELECT m.id, m.org_id, m.user_id, u.email, m.role_id, r.name, m.status, m.created_at
		FROM members m
		JOIN users u ON u.id = m.user_id
		JOIN roles r ON r.id = m.role_id
		WHERE m.org_id = $1
		ORDER BY m.created_at
	`

	rows, err := r.q.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := []models.MemberWithDetails{}
	for rows.Next() {
		var m models.MemberWithDetails
		if err := rows.Scan(
			&m.ID,
			&m.OrgID,
			&m.UserID,
			&m.UserEmail,
			&m.RoleID,
			&m.RoleName,
			&m.Status,
			&m.CreatedAt,
		); err != nil {
			return nil, err
		}
		members = append(members, m)
	}

	return members, rows.Err()
}

func (r *MemberRepository) scanMember(row *sql.Row) (*models.Member, error) {
	member := &models.Member{}
	err := row.Scan(
		&member.ID,
		&member.OrgID,
		&member.UserID,
		&member.RoleID,
		&member.Status,
		&member.Settings,
		&member.CreatedAt,
		&member.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return member, nil
}
