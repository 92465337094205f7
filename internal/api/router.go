// Package api wires together all HTTP routes for the Elencho backend.
//
// Route grouping philosophy:
//   - /auth/sign-up and /auth/sign-in are public but sit behind the strict
//     rate limit tier since they are the credential-stuffing surface.
//   - Everything else under the bearer group requires a valid access token;
//     the auth middleware resolves the token subject to a live account on
//     every request.
//   - /health and /version stay public for load balancer probes.
package api

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/elencho/elencho/internal/api/accounts"
	"github.com/elencho/elencho/internal/api/invitations"
	"github.com/elencho/elencho/internal/api/members"
	"github.com/elencho/elencho/internal/api/stats"
	"github.com/elencho/elencho/internal/config"
	"github.com/elencho/elencho/internal/db/repositories"
	"github.com/elencho/elencho/internal/middleware"
	"github.com/elencho/elencho/internal/notify"
	"github.com/elencho/elencho/internal/services"
)

// BackgroundServices holds references to background resources that must be
// stopped during graceful shutdown. The caller (cmd/server) is responsible
// for calling Shutdown() when the process receives a termination signal.
type BackgroundServices struct {
	rateLimiters []*middleware.RateLimiter
}

// Shutdown stops all background goroutines. It should be called after the
// HTTP server has been shut down so that in-flight requests are drained first.
func (bg *BackgroundServices) Shutdown() {
	slog.Info("stopping background services")
	for _, rl := range bg.rateLimiters {
		rl.Stop()
	}
	slog.Info("all background services stopped")
}

// NewRouter creates and configures the Gin router
func NewRouter(cfg *config.Config, database *sql.DB) (*gin.Engine, *BackgroundServices) {
	router := gin.New()

	// Initialize repositories
	userRepo := repositories.NewUserRepository(database)
	orgRepo := repositories.NewOrganisationRepository(database)
	memberRepo := repositories.NewMemberRepository(database)
	inviteRepo := repositories.NewInviteRepository(database)

	// Wrap *sql.DB with sqlx for the stats aggregation queries
	sqlxDB := sqlx.NewDb(database, "postgres")

	// Initialize services
	mailer := notify.NewMailer(&cfg.Notifications)
	accountSvc := services.NewAccountService(database, userRepo, orgRepo, memberRepo, cfg.Auth, mailer)
	membershipSvc := services.NewMembershipService(orgRepo, memberRepo)
	invitationSvc := services.NewInvitationService(
		database, userRepo, orgRepo, memberRepo, inviteRepo,
		cfg.Auth.InviteTTL, cfg.Server.GetPublicURL(), mailer,
	)

	// Initialize handlers
	accountHandlers := accounts.NewHandlers(accountSvc)
	invitationHandlers := invitations.NewHandlers(invitationSvc)
	memberHandlers := members.NewHandlers(membershipSvc)
	statsHandlers := stats.NewHandlers(sqlxDB)

	// Initialize rate limiters
	authRateLimiter := middleware.NewRateLimiter(middleware.AuthRateLimitConfig())
	generalRateLimiter := middleware.NewRateLimiter(middleware.DefaultRateLimitConfig())

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.MetricsMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg))
	router.Use(middleware.SecurityHeadersMiddleware(middleware.APISecurityHeadersConfig()))

	// Health check endpoint
	router.GET("/health", healthCheckHandler(database))

	// API version
	router.GET("/version", versionHandler())

	// Public authentication endpoints (no auth required, but strictly rate limited)
	authGroup := router.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware(authRateLimiter))
	{
		authGroup.POST("/sign-up", accountHandlers.SignUpHandler())
		authGroup.POST("/sign-in", accountHandlers.SignInHandler())
	}

	// Authenticated endpoints
	bearerGroup := router.Group("")
	bearerGroup.Use(middleware.RateLimitMiddleware(generalRateLimiter))
	bearerGroup.Use(middleware.AuthMiddleware(userRepo))
	{
		bearerGroup.POST("/users/reset-password", accountHandlers.ResetPasswordHandler())

		invitesGroup := bearerGroup.Group("/invitations")
		{
			invitesGroup.POST("/send", invitationHandlers.SendHandler())
			invitesGroup.GET("/accept", invitationHandlers.AcceptHandler())
			invitesGroup.GET("/cancel", invitationHandlers.CancelHandler())
		}

		memberGroup := bearerGroup.Group("/member")
		{
			memberGroup.POST("/update-role", memberHandlers.UpdateRoleHandler())
			memberGroup.DELETE("/delete/:member_id", memberHandlers.DeleteHandler())
		}

		bearerGroup.GET("/organisations/:id/members", memberHandlers.ListOrgMembersHandler())

		statsGroup := bearerGroup.Group("/stats")
		{
			statsGroup.GET("/users-by-role", statsHandlers.UsersByRoleHandler())
			statsGroup.GET("/organization-members", statsHandlers.OrganizationMembersHandler())
			statsGroup.GET("/organization-role-wise-users", statsHandlers.OrgRoleWiseUsersHandler())
		}
	}

	bg := &BackgroundServices{
		rateLimiters: []*middleware.RateLimiter{authRateLimiter, generalRateLimiter},
	}

	return router, bg
}

// @Summary      Health check
// @Description  Returns the health status of the service, including database connectivity.
// @Tags         System
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "status: healthy, time: RFC3339 timestamp"
// @Failure      503  {object}  map[string]interface{}  "status: unhealthy, error: database connection failed"
// @Router       /health [get]
// healthCheckHandler returns the health status of the service
func healthCheckHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  "database connection failed",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// @Summary      API version
// @Description  Returns the current API version.
// @Tags         System
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "version, api_version"
// @Router       /version [get]
// versionHandler returns the API version
func versionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":     "0.1.0",
			"api_version": "v1",
		})
	}
}

// LoggerMiddleware provides structured request logging with request-id
// correlation. Output format (JSON or text) follows the global slog handler
// configured in telemetry.SetupLogger.
func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		requestID, _ := c.Get(middleware.RequestIDKey)

		slog.LogAttrs(
			c.Request.Context(),
			slog.LevelInfo,
			"http request",
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.String("query", query),
			slog.Int("status", c.Writer.Status()),
			slog.Int("size", c.Writer.Size()),
			slog.Duration("latency", latency),
			slog.String("ip", c.ClientIP()),
			slog.String("request_id", fmt.Sprintf("%v", requestID)),
			slog.String("user_agent", c.Request.UserAgent()),
		)
	}
}

// CORSMiddleware handles CORS
func CORSMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		// Check if origin is allowed
		allowed := false
		for _, allowedOrigin := range cfg.Security.CORS.AllowedOrigins {
			if allowedOrigin == "*" || allowedOrigin == origin {
				allowed = true
				break
			}
		}

		if allowed {
			if origin == "" {
				c.Header("Access-Control-Allow-Origin", "*")
			} else {
				c.Header("Access-Control-Allow-Origin", origin)
			}
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, X-Requested-With")
			c.Header("Access-Control-Max-Age", "3600")
		}

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
