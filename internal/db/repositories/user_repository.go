// user_repository.go implements queries for account rows: creation, lookup by
// email or ID, and credential updates.
package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/elencho/elencho/internal/db/models"
)

// UserRepository handles user database operations
type UserRepository struct {
	q Querier
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{q: db}
}

// WithTx returns a copy of the repository bound to an open transaction
func (r *UserRepository) WithTx(tx *sql.Tx) *UserRepository {
	return &UserRepository{q: tx}
}

// CreateUser creates a new user
func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) error {
	user.ID = uuid.New().String()
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	if user.Status == 0 {
		user.Status = models.StatusActive
	}
	if user.Profile == nil {
		user.Profile = models.EmptyJSON()
	}
	if user.Settings == nil {
		user.Settings = models.EmptyJSON()
	}

	query := `
		INSERT INTO users (id, email, password_hash, profile, status, settings, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.q.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.Profile,
		user.Status,
		user.Settings,
		user.CreatedAt,
		user.UpdatedAt,
	)

	return err
}

// GetUserByID retrieves a user by ID
func (r *UserRepository) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	query := `
		SELECT id, email, password_hash, profile, status, settings, created_at, updated_at
		FROM users
		WHERE id = $1
	`
	return r.scanUser(r.q.QueryRowContext(ctx, query, userID))
}

// GetUserByEmail retrieves a user by email
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT id, email, password_hash, profile, status, settings, created_at, updated_at
		FROM users
		WHERE email = $1
	`
	return r.scanUser(r.q.QueryRowContext(ctx, query, email))
}

// UpdatePassword overwrites the stored credential hash for a user
func (r *UserRepository) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	query := `
		UPDATE users
		SET password_hash = $1, updated_at = $2
		WHERE id = $3
	`

	_, err := r.q.ExecContext(ctx, query, passwordHash, time.Now(), userID)
	return err
}

func (r *UserRepository) scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Profile,
		&user.Status,
		&user.Settings,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return user, nil
}
