package stats

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newHandlers(t *testing.T) (*Handlers, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return NewHandlers(sqlx.NewDb(db, "sqlmock")), mock
}

func statsRouter(h *Handlers) *gin.Engine {
	router := gin.New()
	router.GET("/stats/users-by-role", h.UsersByRoleHandler())
	router.GET("/stats/organization-members", h.OrganizationMembersHandler())
	router.GET("/stats/organization-role-wise-users", h.OrgRoleWiseUsersHandler())
	return router
}

func TestUsersByRoleHandler(t *testing.T) {
	h, mock := newHandlers(t)
	router := statsRouter(h)

	mock.ExpectQuery("SELECT r.name AS role_name, COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"role_name", "user_count"}).
			AddRow("member", 7).
			AddRow("owner", 3))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stats/users-by-role", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Message string `json:"message"`
		Results []struct {
			RoleName  string `json:"role_name"`
			UserCount int    `json:"user_count"`
		} `json:"role_wise_users"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Message != "Role wise user count fetched successfully!" {
		t.Errorf("unexpected message: %q", resp.Message)
	}
	if len(resp.Results) != 2 || resp.Results[0].RoleName != "member" || resp.Results[0].UserCount != 7 {
		t.Errorf("unexpected results: %+v", resp.Results)
	}
}

func TestOrganizationMembersHandler_NoFilters(t *testing.T) {
	h, mock := newHandlers(t)
	router := statsRouter(h)

	mock.ExpectQuery("SELECT o.name AS org_name, COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"org_name", "member_count"}).
			AddRow("Acme", 4))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stats/organization-members", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Results []struct {
			OrgName     string `json:"org_name"`
			MemberCount int    `json:"member_count"`
		} `json:"organization_wise_members"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(resp.Results) != 1 || resp.Results[0].OrgName != "Acme" || resp.Results[0].MemberCount != 4 {
		t.Errorf("unexpected results: %+v", resp.Results)
	}
}

func TestOrganizationMembersHandler_StatusAndWindowFilters(t *testing.T) {
	h, mock := newHandlers(t)
	router := statsRouter(h)

	mock.ExpectQuery("SELECT o.name AS org_name, COUNT.*m.status.*m.created_at BETWEEN").
		WithArgs("1", "2026-01-01", "2026-02-01").
		WillReturnRows(sqlmock.NewRows([]string{"org_name", "member_count"}).
			AddRow("Acme", 2))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet,
		"/stats/organization-members?status=1&from_time=2026-01-01&to_time=2026-02-01", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestOrganizationMembersHandler_WindowRequiresBothBounds(t *testing.T) {
	h, mock := newHandlers(t)
	router := statsRouter(h)

	// from_time without to_time is ignored; no BETWEEN clause and no args.
	mock.ExpectQuery("SELECT o.name AS org_name, COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"org_name", "member_count"}))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet,
		"/stats/organization-members?from_time=2026-01-01", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestOrgRoleWiseUsersHandler(t *testing.T) {
	h, mock := newHandlers(t)
	router := statsRouter(h)

	mock.ExpectQuery("SELECT o.name AS org_name, r.name AS role_name, COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"org_name", "role_name", "user_count"}).
			AddRow("Acme", "member", 3).
			AddRow("Acme", "owner", 1))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stats/organization-role-wise-users", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Results []struct {
			OrgName   string `json:"org_name"`
			RoleName  string `json:"role_name"`
			UserCount int    `json:"user_count"`
		} `json:"org_role_wise_users"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(resp.Results) != 2 || resp.Results[1].RoleName != "owner" {
		t.Errorf("unexpected results: %+v", resp.Results)
	}
}

func TestUsersByRoleHandler_QueryFailure(t *testing.T) {
	h, mock := newHandlers(t)
	router := statsRouter(h)

	mock.ExpectQuery("SELECT r.name AS role_name, COUNT").
		WillReturnError(sqlmock.ErrCancelled)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stats/users-by-role", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
}
