// accounts.go implements sign-up, sign-in, and password reset. Sign-up
// provisions the user's entire tenancy (account, personal organisation, owner
// and member roles, owner membership) in one transaction.
package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/elencho/elencho/internal/auth"
	"github.com/elencho/elencho/internal/config"
	"github.com/elencho/elencho/internal/db/models"
	"github.com/elencho/elencho/internal/db/repositories"
	"github.com/elencho/elencho/internal/safego"
	"github.com/elencho/elencho/internal/telemetry"
)

// Notifier is the outbound notification sink. Implementations must be safe for
// concurrent use; all calls are fire-and-forget and failures never propagate
// back to the triggering operation.
type Notifier interface {
	SendLoginAlert(email string)
	SendPasswordResetAlert(email string)
	SendInvite(email, acceptLink, cancelLink string)
}

// TokenPair carries the credentials issued on a successful sign-in
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// SignUpResult reports the IDs provisioned for a new account
type SignUpResult struct {
	UserID         string `json:"user_id"`
	OrganisationID string `json:"organization_id"`
}

// AccountService handles account lifecycle operations
type AccountService struct {
	db       *sql.DB
	users    *repositories.UserRepository
	orgs     *repositories.OrganisationRepository
	members  *repositories.MemberRepository
	cfg      config.AuthConfig
	notifier Notifier
}

// NewAccountService creates a new AccountService
func NewAccountService(db *sql.DB, users *repositories.UserRepository, orgs *repositories.OrganisationRepository, members *repositories.MemberRepository, cfg config.AuthConfig, notifier Notifier) *AccountService {
	return &AccountService{
		db:       db,
		users:    users,
		orgs:     orgs,
		members:  members,
		cfg:      cfg,
		notifier: notifier,
	}
}

// SignUp registers a new account and provisions its personal organisation,
// the owner and member roles, and the owner membership. Returns ErrConflict
// when the email is already registered. All writes are one transaction.
func (s *AccountService) SignUp(ctx context.Context, email, password, orgName string) (*SignUpResult, error) {
	existing, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("lookup existing user: %w", err)
	}
	if existing != nil {
		return nil, ErrConflict
	}

	hash, err := auth.HashPassword(password, s.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	users := s.users.WithTx(tx)
	orgs := s.orgs.WithTx(tx)
	members := s.members.WithTx(tx)

	user := &models.User{Email: email, PasswordHash: hash}
	if err := users.CreateUser(ctx, user); err != nil {
		if repositories.IsUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	org := &models.Organisation{Name: orgName, Personal: true}
	if err := orgs.CreateOrganisation(ctx, org); err != nil {
		return nil, fmt.Errorf("create organisation: %w", err)
	}

	ownerRole := &models.Role{OrgID: org.ID, Name: models.RoleOwner}
	if err := orgs.CreateRole(ctx, ownerRole); err != nil {
		return nil, fmt.Errorf("create owner role: %w", err)
	}

	memberRole := &models.Role{OrgID: org.ID, Name: models.RoleMember}
	if err := orgs.CreateRole(ctx, memberRole); err != nil {
		return nil, fmt.Errorf("create member role: %w", err)
	}

	member := &models.Member{OrgID: org.ID, UserID: user.ID, RoleID: ownerRole.ID}
	if err := members.CreateMember(ctx, member); err != nil {
		return nil, fmt.Errorf("create owner membership: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit sign-up: %w", err)
	}

	telemetry.SignupsTotal.Inc()
	return &SignUpResult{UserID: user.ID, OrganisationID: org.ID}, nil
}

// SignIn verifies credentials and issues an access/refresh token pair.
// Unknown email and wrong password both return ErrInvalidCredentials so the
// response does not reveal which field was wrong.
func (s *AccountService) SignIn(ctx context.Context, email, password string) (*TokenPair, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if user == nil || !auth.VerifyPassword(user.PasswordHash, password) {
		telemetry.SignInsTotal.WithLabelValues("failure").Inc()
		return nil, ErrInvalidCredentials
	}

	accessToken, err := auth.GenerateAccessToken(user.Email, s.cfg.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refreshToken, err := auth.GenerateRefreshToken(user.Email, s.cfg.RefreshTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	telemetry.SignInsTotal.WithLabelValues("success").Inc()
	safego.Go(func() { s.notifier.SendLoginAlert(user.Email) })

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
	}, nil
}

// ResetPassword overwrites the stored credential for an existing account.
// Returns ErrNotFound when the email is not registered.
func (s *AccountService) ResetPassword(ctx context.Context, email, newPassword string) error {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("lookup user: %w", err)
	}
	if user == nil {
		return ErrNotFound
	}

	hash, err := auth.HashPassword(newPassword, s.cfg.BcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	safego.Go(func() { s.notifier.SendPasswordResetAlert(user.Email) })
	return nil
}
