// Package middleware provides Gin HTTP middleware for authentication, rate
// limiting, security headers, request correlation, and metrics.
//
// Middleware ordering matters and is enforced in router.go:
//
//	Security → RateLimit → Auth → Handler
//
// Security headers run first so they appear on all responses including errors.
// Rate limiting runs before auth to block brute-force attacks before any DB work.
// Auth resolves the bearer token to a user and stores it in the context.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/elencho/elencho/internal/auth"
	"github.com/elencho/elencho/internal/db/repositories"
)

// Context keys populated by AuthMiddleware.
const (
	UserKey   = "user"
	UserIDKey = "user_id"
)

// AuthMiddleware validates the bearer access token and loads the account it
// was issued for. The token's only identity claim is the subject email, so a
// deleted account invalidates its outstanding tokens on the next request.
func AuthMiddleware(userRepo *repositories.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Missing authorization header",
			})
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header must start with 'Bearer '",
			})
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization token is empty",
			})
			return
		}

		email, err := auth.ParseSubjectToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			return
		}

		user, err := userRepo.GetUserByEmail(c.Request.Context(), email)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to load user",
			})
			return
		}
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid credentials",
			})
			return
		}

		c.Set(UserKey, user)
		c.Set(UserIDKey, user.ID)

		c.Next()
	}
}
