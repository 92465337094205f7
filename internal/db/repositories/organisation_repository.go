// organisation_repository.go implements queries for organisations and their
// per-organisation roles, including the concurrency-safe role lookup-or-create
// used by the sign-up and invite acceptance flows.
package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/elencho/elencho/internal/db/models"
)

// OrganisationRepository handles organisation and role database operations
type OrganisationRepository struct {
	q Querier
}

// NewOrganisationRepository creates a new OrganisationRepository
func NewOrganisationRepository(db *sql.DB) *OrganisationRepository {
	return &OrganisationRepository{q: db}
}

// WithTx returns a copy of the repository bound to an open transaction
func (r *OrganisationRepository) WithTx(tx *sql.Tx) *OrganisationRepository {
	return &OrganisationRepository{q: tx}
}

// CreateOrganisation creates a new organisation
func (r *OrganisationRepository) CreateOrganisation(ctx context.Context, org *models.Organisation) error {
	org.ID = uuid.New().String()
	org.CreatedAt = time.Now()
	org.UpdatedAt = time.Now()
	if org.Status == 0 {
		org.Status = models.StatusActive
	}
	if org.Settings == nil {
		org.Settings = models.EmptyJSON()
	}

	query := `
		INSERT INTO organisations (id, name, status, personal, settings, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.q.ExecContext(ctx, query,
		org.ID,
		org.Name,
		org.Status,
		org.Personal,
		org.Settings,
		org.CreatedAt,
		org.UpdatedAt,
	)

	return err
}

// GetOrganisationByID retrieves an organisation by ID
func (r *OrganisationRepository) GetOrganisationByID(ctx context.Context, orgID string) (*models.Organisation, error) {
	query := `
		SELECT id, name, status, personal, settings, created_at, updated_at
		FROM organisations
		WHERE id = $1
	`

	org := &models.Organisation{}
	err := r.q.QueryRowContext(ctx, query, orgID).Scan(
		&org.ID,
		&org.Name,
		&org.Status,
		&org.Personal,
		&org.Settings,
		&org.CreatedAt,
		&org.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return org, nil
}

// CreateRole creates a new role within an organisation
func (r *OrganisationRepository) CreateRole(ctx context.Context, role *models.Role) error {
	role.ID = uuid.New().String()
	role.CreatedAt = time.Now()
	role.UpdatedAt = time.Now()

	query := `
		INSERT INTO roles (id, org_id, name, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.q.ExecContext(ctx, query,
		role.ID,
		role.OrgID,
		role.Name,
		role.Description,
		role.CreatedAt,
		role.UpdatedAt,
	)

	return err
}

// GetRoleByName retrieves a role by name within an organisation
func (r *OrganisationRepository) GetRoleByName(ctx context.Context, orgID, name string) (*models.Role, error) {
	query := `
		SELECT id, org_id, name, description, created_at, updated_at
		FROM roles
		WHERE org_id = $1 AND name = $2
	`
	return r.scanRole(r.q.QueryRowContext(ctx, query, orgID, name))
}

// GetOrCreateRole returns the role with the given name in the organisation,
// inserting it first if absent. The UNIQUE(org_id, name) constraint plus the
// no-op upsert make concurrent callers converge on the same row.
func (r *OrganisationRepository) GetOrCreateRole(ctx context.Context, orgID, name string) (*models.Role, error) {
	query := `
		INSERT INTO roles (id, org_id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (org_id, name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, org_id, name, description, created_at, updated_at
	`
	return r.scanRole(r.q.QueryRowContext(ctx, query, uuid.New().String(), orgID, name, time.Now()))
}

func (r *OrganisationRepository) scanRole(row *sql.Row) (*models.Role, error) {
	role := &models.Role{}
	err := row.Scan(
		&role.ID,
		&role.OrgID,
		&role.Name,
		&role.Description,
		&role.CreatedAt,
		&role.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return role, nil
}
