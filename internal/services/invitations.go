// invitations.go implements the invitation workflow state machine:
// pending -> accepted (stored transition) or pending -> cancelled (row
// deleted), with expiry inferred at redemption time from both the token's exp
// claim and the row's expires_at. Redemption edge cases surface as SoftFailure
// because the links arrive in email and stale clicks are expected.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/elencho/elencho/internal/auth"
	"github.com/elencho/elencho/internal/db/models"
	"github.com/elencho/elencho/internal/db/repositories"
	"github.com/elencho/elencho/internal/safego"
	"github.com/elencho/elencho/internal/telemetry"
)

// User-facing redemption messages. These render on pages reached from emailed
// links, so they stay descriptive rather than technical.
const (
	msgInviteSent      = "Invite sent to %s"
	msgInviteAccepted  = "Invite accepted successfully"
	msgInviteCancelled = "Invite cancelled successfully"
	msgInviteInvalid   = "Invalid or expired invite!"
	msgNoAccount       = "Please create an account to accept this invite!"
	msgAlreadyMember   = "You are already a member of this organisation!"
)

// InvitationService handles issuing, accepting, and cancelling invitations
type InvitationService struct {
	db        *sql.DB
	users     *repositories.UserRepository
	orgs      *repositories.OrganisationRepository
	members   *repositories.MemberRepository
	invites   *repositories.InviteRepository
	inviteTTL time.Duration
	publicURL string
	notifier  Notifier
}

// NewInvitationService creates a new InvitationService. publicURL is the
// externally reachable base URL embedded in emailed accept/cancel links.
func NewInvitationService(db *sql.DB, users *repositories.UserRepository, orgs *repositories.OrganisationRepository, members *repositories.MemberRepository, invites *repositories.InviteRepository, inviteTTL time.Duration, publicURL string, notifier Notifier) *InvitationService {
	if inviteTTL == 0 {
		inviteTTL = 7 * 24 * time.Hour
	}
	return &InvitationService{
		db:        db,
		users:     users,
		orgs:      orgs,
		members:   members,
		invites:   invites,
		inviteTTL: inviteTTL,
		publicURL: publicURL,
		notifier:  notifier,
	}
}

// Send creates a pending invite and dispatches the invitation email. The
// actor must hold a membership in the target organisation.
func (s *InvitationService) Send(ctx context.Context, actorUserID, orgID, recipientEmail string) (string, error) {
	org, err := s.orgs.GetOrganisationByID(ctx, orgID)
	if err != nil {
		return "", fmt.Errorf("lookup organisation: %w", err)
	}
	if org == nil {
		return "", ErrNotFound
	}

	actor, err := s.members.GetMemberByOrgAndUser(ctx, orgID, actorUserID)
	if err != nil {
		return "", fmt.Errorf("lookup actor membership: %w", err)
	}
	if actor == nil {
		return "", ErrUnauthorized
	}

	invite := &models.Invite{
		Email:          recipientEmail,
		OrganisationID: orgID,
		ExpiresAt:      time.Now().Add(s.inviteTTL),
	}
	if err := s.invites.CreateInvite(ctx, invite); err != nil {
		return "", fmt.Errorf("create invite: %w", err)
	}

	token, err := auth.GenerateInviteToken(recipientEmail, invite.ID, s.inviteTTL)
	if err != nil {
		return "", fmt.Errorf("sign invite token: %w", err)
	}

	acceptLink := fmt.Sprintf("%s/invitations/accept?invite_id=%s", s.publicURL, token)
	cancelLink := fmt.Sprintf("%s/invitations/cancel?invite_id=%s", s.publicURL, token)
	safego.Go(func() { s.notifier.SendInvite(recipientEmail, acceptLink, cancelLink) })

	telemetry.InvitesSentTotal.Inc()
	return fmt.Sprintf(msgInviteSent, recipientEmail), nil
}

// Accept redeems an invite token and joins the token's user to the inviting
// organisation with the default member role. The token and the stored row
// must both still be valid; all expected stale-link cases return a
// SoftFailure. The membership join and the invite transition commit as one
// transaction.
func (s *InvitationService) Accept(ctx context.Context, token string) (string, error) {
	claims, err := auth.ParseInviteToken(token)
	if err != nil {
		return "", SoftFail(msgInviteInvalid)
	}

	user, err := s.users.GetUserByEmail(ctx, claims.Email)
	if err != nil {
		return "", fmt.Errorf("lookup user: %w", err)
	}
	if user == nil {
		return "", SoftFail(msgNoAccount)
	}

	invite, err := s.invites.GetInviteByID(ctx, claims.InviteID)
	if err != nil {
		return "", fmt.Errorf("lookup invite: %w", err)
	}
	if invite == nil || !invite.Redeemable(time.Now()) {
		return "", SoftFail(msgInviteInvalid)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	membership := NewMembershipService(s.orgs.WithTx(tx), s.members.WithTx(tx))
	if _, err := membership.JoinAsMember(ctx, user.ID, invite.OrganisationID); err != nil {
		if errors.Is(err, ErrAlreadyMember) {
			return "", SoftFail(msgAlreadyMember)
		}
		return "", err
	}

	transitioned, err := s.invites.WithTx(tx).MarkAccepted(ctx, invite.ID)
	if err != nil {
		return "", fmt.Errorf("mark invite accepted: %w", err)
	}
	if !transitioned {
		// A concurrent redemption won; roll everything back.
		return "", SoftFail(msgInviteInvalid)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit acceptance: %w", err)
	}

	telemetry.InvitesAcceptedTotal.Inc()
	return msgInviteAccepted, nil
}

// Cancel redeems a cancel link by deleting the pending invite row. Stale or
// already-redeemed links return a SoftFailure and delete nothing.
func (s *InvitationService) Cancel(ctx context.Context, token string) (string, error) {
	claims, err := auth.ParseInviteToken(token)
	if err != nil {
		return "", SoftFail(msgInviteInvalid)
	}

	invite, err := s.invites.GetInviteByID(ctx, claims.InviteID)
	if err != nil {
		return "", fmt.Errorf("lookup invite: %w", err)
	}
	if invite == nil || !invite.Redeemable(time.Now()) {
		return "", SoftFail(msgInviteInvalid)
	}

	if err := s.invites.DeleteInvite(ctx, invite.ID); err != nil {
		return "", fmt.Errorf("delete invite: %w", err)
	}

	telemetry.InvitesCancelledTotal.Inc()
	return msgInviteCancelled, nil
}
