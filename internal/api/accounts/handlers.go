// Package accounts implements the public authentication endpoints (sign-up,
// sign-in) and the authenticated password reset endpoint.
package accounts

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/elencho/elencho/internal/services"
)

// Handlers handles account lifecycle endpoints
type Handlers struct {
	svc *services.AccountService
}

// NewHandlers creates a new Handlers instance
func NewHandlers(svc *services.AccountService) *Handlers {
	return &Handlers{svc: svc}
}

// SignUpRequest is the payload for POST /auth/sign-up
type SignUpRequest struct {
	Email            string `json:"email" binding:"required,email"`
	Password         string `json:"password" binding:"required,min=8"`
	OrganisationName string `json:"organisation_name" binding:"required"`
}

// SignInRequest is the payload for POST /auth/sign-in
type SignInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ResetPasswordRequest is the payload for POST /users/reset-password
type ResetPasswordRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// @Summary      Sign up
// @Description  Registers a new account and provisions its personal organisation with an owner membership.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        payload  body  SignUpRequest  true  "Sign-up details"
// @Success      201  {object}  map[string]interface{}  "message, data: {user_id, organization_id}"
// @Failure      400  {object}  map[string]interface{}  "Invalid payload"
// @Failure      409  {object}  map[string]interface{}  "Email already registered"
// @Router       /auth/sign-up [post]
// SignUpHandler registers a new account
func (h *Handlers) SignUpHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SignUpRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		result, err := h.svc.SignUp(c.Request.Context(), req.Email, req.Password, req.OrganisationName)
		if err != nil {
			if errors.Is(err, services.ErrConflict) {
				c.JSON(http.StatusConflict, gin.H{"error": "User already exists"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sign up user"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"message": "User signed up successfully",
			"data":    result,
		})
	}
}

// @Summary      Sign in
// @Description  Verifies credentials and issues an access/refresh token pair.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        payload  body  SignInRequest  true  "Credentials"
// @Success      200  {object}  map[string]interface{}  "message, data: {access_token, refresh_token, token_type}"
// @Failure      400  {object}  map[string]interface{}  "Invalid payload"
// @Failure      401  {object}  map[string]interface{}  "Invalid credentials"
// @Router       /auth/sign-in [post]
// SignInHandler verifies credentials and issues tokens
func (h *Handlers) SignInHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SignInRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		tokens, err := h.svc.SignIn(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			if errors.Is(err, services.ErrInvalidCredentials) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sign in user"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "User signed in successfully",
			"data":    tokens,
		})
	}
}

// @Summary      Reset password
// @Description  Replaces the stored password hash for the given account.
// @Tags         Users
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        payload  body  ResetPasswordRequest  true  "Email and new password"
// @Success      200  {object}  map[string]interface{}  "message"
// @Failure      400  {object}  map[string]interface{}  "Invalid payload"
// @Failure      404  {object}  map[string]interface{}  "User not found"
// @Router       /users/reset-password [post]
// ResetPasswordHandler replaces the account's password
func (h *Handlers) ResetPasswordHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ResetPasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if err := h.svc.ResetPassword(c.Request.Context(), req.Email, req.Password); err != nil {
			if errors.Is(err, services.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset password"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "User password reset successfully"})
	}
}
