// Package members implements the membership management endpoints: role
// updates, removal, and per-organisation member listing.
package members

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/elencho/elencho/internal/services"
)

// Handlers handles membership management endpoints
type Handlers struct {
	svc *services.MembershipService
}

// NewHandlers creates a new Handlers instance
func NewHandlers(svc *services.MembershipService) *Handlers {
	return &Handlers{svc: svc}
}

// UpdateRoleRequest is the payload for POST /member/update-role
type UpdateRoleRequest struct {
	MemberID string `json:"member_id" binding:"required"`
	RoleName string `json:"role_name" binding:"required"`
}

// @Summary      Update member role
// @Description  Assigns the named role to the member, creating the role in the member's organisation if it does not exist yet.
// @Tags         Members
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        payload  body  UpdateRoleRequest  true  "Member and role name"
// @Success      200  {object}  map[string]interface{}  "message"
// @Failure      404  {object}  map[string]interface{}  "Member not found"
// @Router       /member/update-role [post]
// UpdateRoleHandler reassigns a member to the named role
func (h *Handlers) UpdateRoleHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateRoleRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if err := h.svc.UpdateMemberRole(c.Request.Context(), req.MemberID, req.RoleName); err != nil {
			if errors.Is(err, services.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Member not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update member role"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Member role updated successfully"})
	}
}

// @Summary      Delete member
// @Description  Removes a membership. The user account and organisation are untouched.
// @Tags         Members
// @Security     Bearer
// @Produce      json
// @Param        member_id  path  string  true  "Member ID"
// @Success      200  {object}  map[string]interface{}  "message"
// @Failure      404  {object}  map[string]interface{}  "Member not found"
// @Router       /member/delete/{member_id} [delete]
// DeleteHandler removes a membership row
func (h *Handlers) DeleteHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		memberID := c.Param("member_id")

		if err := h.svc.RemoveMember(c.Request.Context(), memberID); err != nil {
			if errors.Is(err, services.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Member not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete member"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Member deleted successfully"})
	}
}

// @Summary      List organisation members
// @Description  Lists an organisation's members with user email and role name, ordered by join time.
// @Tags         Members
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Organisation ID"
// @Success      200  {object}  map[string]interface{}  "message, data: []members"
// @Failure      404  {object}  map[string]interface{}  "Organisation not found"
// @Router       /organisations/{id}/members [get]
// ListOrgMembersHandler lists an organisation's members
func (h *Handlers) ListOrgMembersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		orgID := c.Param("id")

		members, err := h.svc.ListOrgMembers(c.Request.Context(), orgID)
		if err != nil {
			if errors.Is(err, services.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Organisation not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list members"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "Members fetched successfully",
			"data":    members,
		})
	}
}
