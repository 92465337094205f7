// Package invitations implements the endpoints for issuing, accepting, and
// cancelling organisation invitations. Accept and cancel are GET endpoints
// because they are reached from links embedded in invitation emails; their
// expected-failure outcomes (expired, reused, cancelled) render as 200
// responses with a friendly message rather than error statuses.
package invitations

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/elencho/elencho/internal/middleware"
	"github.com/elencho/elencho/internal/services"
)

// Handlers handles invitation workflow endpoints
type Handlers struct {
	svc *services.InvitationService
}

// NewHandlers creates a new Handlers instance
func NewHandlers(svc *services.InvitationService) *Handlers {
	return &Handlers{svc: svc}
}

// SendRequest is the payload for POST /invitations/send
type SendRequest struct {
	OrganisationID string `json:"organisation_id" binding:"required"`
	RecipientMail  string `json:"recipient_mail" binding:"required,email"`
}

// @Summary      Send invite
// @Description  Creates a pending invitation and emails the recipient an accept link. The caller must be a member of the target organisation.
// @Tags         Invitations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        payload  body  SendRequest  true  "Organisation and recipient"
// @Success      200  {object}  map[string]interface{}  "message"
// @Failure      401  {object}  map[string]interface{}  "Caller is not a member"
// @Failure      404  {object}  map[string]interface{}  "Organisation not found"
// @Router       /invitations/send [post]
// SendHandler creates an invitation and dispatches the email
func (h *Handlers) SendHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SendRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		actorID := c.GetString(middleware.UserIDKey)

		msg, err := h.svc.Send(c.Request.Context(), actorID, req.OrganisationID, req.RecipientMail)
		if err != nil {
			respondError(c, err, "Failed to send invite")
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": msg})
	}
}

// @Summary      Accept invite
// @Description  Redeems an invitation token and creates the membership. Stale or reused links return 200 with an explanatory message.
// @Tags         Invitations
// @Security     Bearer
// @Produce      json
// @Param        invite_id  query  string  true  "Invitation token"
// @Success      200  {object}  map[string]interface{}  "message"
// @Router       /invitations/accept [get]
// AcceptHandler redeems an invitation token
func (h *Handlers) AcceptHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("invite_id")

		msg, err := h.svc.Accept(c.Request.Context(), token)
		if err != nil {
			respondError(c, err, "Failed to accept invite")
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": msg})
	}
}

// @Summary      Cancel invite
// @Description  Cancels a pending invitation, removing it entirely. Stale or reused links return 200 with an explanatory message.
// @Tags         Invitations
// @Security     Bearer
// @Produce      json
// @Param        invite_id  query  string  true  "Invitation token"
// @Success      200  {object}  map[string]interface{}  "message"
// @Router       /invitations/cancel [get]
// CancelHandler cancels a pending invitation
func (h *Handlers) CancelHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("invite_id")

		msg, err := h.svc.Cancel(c.Request.Context(), token)
		if err != nil {
			respondError(c, err, "Failed to cancel invite")
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": msg})
	}
}

// respondError maps a service error to an HTTP response. Soft failures are
// expected user-facing outcomes and respond 200.
func respondError(c *gin.Context, err error, fallback string) {
	if sf, ok := services.AsSoftFailure(err); ok {
		c.JSON(http.StatusOK, gin.H{"message": sf.Message})
		return
	}
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Organisation not found"})
	case errors.Is(err, services.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "You are not a member of this organisation"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
