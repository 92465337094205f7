// Package stats implements the membership reporting endpoints. The
// aggregation queries run directly via sqlx rather than going through the
// repositories: they are read-only GROUP BY reports with dynamic filters and
// no business rules attached.
package stats

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/elencho/elencho/internal/db/models"
)

// Handlers handles membership statistics endpoints
type Handlers struct {
	db *sqlx.DB
}

// NewHandlers creates a new Handlers instance
func NewHandlers(database *sqlx.DB) *Handlers {
	return &Handlers{db: database}
}

// memberFilters builds the optional WHERE fragment shared by the filtered
// reports. status filters on member status; from_time and to_time bound the
// membership creation timestamp and only apply together.
func memberFilters(c *gin.Context) (string, []interface{}) {
	clause := ""
	args := []interface{}{}

	if status := c.Query("status"); status != "" {
		args = append(args, status)
		clause += " AND m.status = $1"
	}

	fromTime := c.Query("from_time")
	toTime := c.Query("to_time")
	if fromTime != "" && toTime != "" {
		args = append(args, fromTime, toTime)
		if len(args) == 3 {
			clause += " AND m.created_at BETWEEN $2 AND $3"
		} else {
			clause += " AND m.created_at BETWEEN $1 AND $2"
		}
	}

	return clause, args
}

// @Summary      Users by role
// @Description  Returns the number of users holding each role name across all organisations.
// @Tags         Stats
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "message, role_wise_users"
// @Failure      500  {object}  map[string]interface{}  "Internal server error"
// @Router       /stats/users-by-role [get]
// UsersByRoleHandler counts users per role name
func (h *Handlers) UsersByRoleHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		query := `
			SELECT r.name AS role_name, COUNT(u.id) AS user_count
			FROM roles r
			JOIN members m ON m.role_id = r.id
			JOIN users u ON u.id = m.user_id
			GROUP BY r.name
			ORDER BY r.name
		`

		results := []models.RoleUserCount{}
		if err := h.db.SelectContext(c.Request.Context(), &results, query); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load role statistics"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message":         "Role wise user count fetched successfully!",
			"role_wise_users": results,
		})
	}
}

// @Summary      Organisation member counts
// @Description  Returns the number of members in each organisation, optionally filtered by member status and creation time window.
// @Tags         Stats
// @Security     Bearer
// @Produce      json
// @Param        from_time  query  string  false  "Window start (with to_time)"
// @Param        to_time    query  string  false  "Window end (with from_time)"
// @Param        status     query  string  false  "Member status filter"
// @Success      200  {object}  map[string]interface{}  "message, organization_wise_members"
// @Failure      500  {object}  map[string]interface{}  "Internal server error"
// @Router       /stats/organization-members [get]
// OrganizationMembersHandler counts members per organisation
func (h *Handlers) OrganizationMembersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		filters, args := memberFilters(c)

		query := `
			SELECT o.name AS org_name, COUNT(m.id) AS member_count
			FROM organisations o
			JOIN members m ON m.org_id = o.id
			WHERE 1=1` + filters + `
			GROUP BY o.name
			ORDER BY o.name
		`

		results := []models.OrgMemberCount{}
		if err := h.db.SelectContext(c.Request.Context(), &results, query, args...); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load organisation statistics"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message":                   "Organization wise member count fetched successfully!",
			"organization_wise_members": results,
		})
	}
}

// @Summary      Organisation role-wise user counts
// @Description  Returns the number of users in each organisation broken down by role, optionally filtered by member status and creation time window.
// @Tags         Stats
// @Security     Bearer
// @Produce      json
// @Param        from_time  query  string  false  "Window start (with to_time)"
// @Param        to_time    query  string  false  "Window end (with from_time)"
// @Param        status     query  string  false  "Member status filter"
// @Success      200  {object}  map[string]interface{}  "org_role_wise_users"
// @Failure      500  {object}  map[string]interface{}  "Internal server error"
// @Router       /stats/organization-role-wise-users [get]
// OrgRoleWiseUsersHandler counts users per organisation and role
func (h *Handlers) OrgRoleWiseUsersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		filters, args := memberFilters(c)

		query := `
			SELECT o.name AS org_name, r.name AS role_name, COUNT(u.id) AS user_count
			FROM organisations o
			JOIN members m ON m.org_id = o.id
			JOIN roles r ON r.id = m.role_id
			JOIN users u ON u.id = m.user_id
			WHERE 1=1` + filters + `
			GROUP BY o.name, r.name
			ORDER BY o.name, r.name
		`

		results := []models.OrgRoleUserCount{}
		if err := h.db.SelectContext(c.Request.Context(), &results, query, args...); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load organisation role statistics"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"org_role_wise_users": results,
		})
	}
}
