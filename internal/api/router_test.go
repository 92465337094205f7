package api

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"

	"github.com/elencho/elencho/internal/config"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Setenv("ELENCHO_JWT_SECRET", "test-jwt-secret-that-is-32-chars-!")
	os.Exit(m.Run())
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:    "127.0.0.1",
			Port:    8080,
			BaseURL: "http://localhost:8080",
		},
		Auth: config.AuthConfig{
			AccessTokenTTL:  30 * time.Minute,
			RefreshTokenTTL: 7 * 24 * time.Hour,
			InviteTTL:       7 * 24 * time.Hour,
			BcryptCost:      4,
		},
		Security: config.SecurityConfig{
			CORS: config.CORSConfig{AllowedOrigins: []string{"*"}},
		},
	}
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()

	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	router, bg := NewRouter(testConfig(), db)
	t.Cleanup(bg.Shutdown)
	return router
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "healthy") {
		t.Errorf("unexpected body: %s", w.Body.String())
	}
}

func TestVersionEndpoint(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/version", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "api_version") {
		t.Errorf("unexpected body: %s", w.Body.String())
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	router := newTestRouter(t)

	protected := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/users/reset-password"},
		{http.MethodPost, "/invitations/send"},
		{http.MethodGet, "/invitations/accept"},
		{http.MethodGet, "/invitations/cancel"},
		{http.MethodPost, "/member/update-role"},
		{http.MethodDelete, "/member/delete/member-1"},
		{http.MethodGet, "/organisations/org-1/members"},
		{http.MethodGet, "/stats/users-by-role"},
		{http.MethodGet, "/stats/organization-members"},
		{http.MethodGet, "/stats/organization-role-wise-users"},
	}

	for _, route := range protected {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(route.method, route.path, nil))
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: expected 401 without token, got %d", route.method, route.path, w.Code)
		}
	}
}

func TestSignUpRouteIsPublic(t *testing.T) {
	router := newTestRouter(t)

	// No token required; an empty body fails validation, not authentication.
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/sign-up", nil))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for empty payload, got %d", w.Code)
	}
}

func TestSecurityHeadersApplied(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("expected nosniff, got %q", got)
	}
	if got := w.Header().Get("X-Request-ID"); got == "" {
		t.Error("expected X-Request-ID header on every response")
	}
}

func TestCORSPreflight(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/auth/sign-in", nil)
	req.Header.Set("Origin", "http://app.example.com")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for preflight, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://app.example.com" {
		t.Errorf("expected origin echo, got %q", got)
	}
}
