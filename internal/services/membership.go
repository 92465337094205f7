// membership.go implements joining an organisation, role reassignment,
// member removal, and the organisation member listing.
package services

import (
	"context"
	"fmt"

	"github.com/elencho/elencho/internal/db/models"
	"github.com/elencho/elencho/internal/db/repositories"
)

// MembershipService handles membership management within organisations
type MembershipService struct {
	orgs    *repositories.OrganisationRepository
	members *repositories.MemberRepository
}

// NewMembershipService creates a new MembershipService
func NewMembershipService(orgs *repositories.OrganisationRepository, members *repositories.MemberRepository) *MembershipService {
	return &MembershipService{orgs: orgs, members: members}
}

// JoinAsMember adds the user to the organisation with the default member
// role, resolving (or creating) that role first. Returns ErrAlreadyMember
// when a membership already exists, including when a concurrent join wins
// the insert race and the unique index collapses it.
func (s *MembershipService) JoinAsMember(ctx context.Context, userID, orgID string) (*models.Member, error) {
	existing, err := s.members.GetMemberByOrgAndUser(ctx, orgID, userID)
	if err != nil {
		return nil, fmt.Errorf("lookup existing membership: %w", err)
	}
	if existing != nil {
		return nil, ErrAlreadyMember
	}

	role, err := s.orgs.GetOrCreateRole(ctx, orgID, models.RoleMember)
	if err != nil {
		return nil, fmt.Errorf("resolve member role: %w", err)
	}

	member := &models.Member{OrgID: orgID, UserID: userID, RoleID: role.ID}
	if err := s.members.CreateMember(ctx, member); err != nil {
		if repositories.IsUniqueViolation(err) {
			return nil, ErrAlreadyMember
		}
		return nil, fmt.Errorf("create membership: %w", err)
	}
	return member, nil
}

// UpdateMemberRole assigns the named role to a member. The role is resolved
// (or created) within the member's own organisation and the membership is
// repointed at it; roles held by other members are never renamed.
func (s *MembershipService) UpdateMemberRole(ctx context.Context, memberID, roleName string) error {
	member, err := s.members.GetMemberByID(ctx, memberID)
	if err != nil {
		return fmt.Errorf("lookup member: %w", err)
	}
	if member == nil {
		return ErrNotFound
	}

	role, err := s.orgs.GetOrCreateRole(ctx, member.OrgID, roleName)
	if err != nil {
		return fmt.Errorf("resolve role %q: %w", roleName, err)
	}

	if err := s.members.UpdateMemberRole(ctx, member.ID, role.ID); err != nil {
		return fmt.Errorf("update member role: %w", err)
	}
	return nil
}

// RemoveMember deletes a membership. Returns ErrNotFound when the member does
// not exist.
func (s *MembershipService) RemoveMember(ctx context.Context, memberID string) error {
	member, err := s.members.GetMemberByID(ctx, memberID)
	if err != nil {
		return fmt.Errorf("lookup member: %w", err)
	}
	if member == nil {
		return ErrNotFound
	}

	if err := s.members.DeleteMember(ctx, member.ID); err != nil {
		return fmt.Errorf("delete member: %w", err)
	}
	return nil
}

// ListOrgMembers returns the members of an organisation with user and role
// details. Returns ErrNotFound when the organisation does not exist.
func (s *MembershipService) ListOrgMembers(ctx context.Context, orgID string) ([]models.MemberWithDetails, error) {
	org, err := s.orgs.GetOrganisationByID(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("lookup organisation: %w", err)
	}
	if org == nil {
		return nil, ErrNotFound
	}

	members, err := s.members.ListOrgMembers(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	return members, nil
}
