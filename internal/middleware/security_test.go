package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func securityRouter(cfg SecurityHeadersConfig) *gin.Engine {
	router := gin.New()
	router.Use(SecurityHeadersMiddleware(cfg))
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })
	return router
}

func TestSecurityHeadersMiddleware_APIDefaults(t *testing.T) {
	router := securityRouter(APISecurityHeadersConfig())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	want := map[string]string{
		"Strict-Transport-Security":         "max-age=31536000; includeSubDomains",
		"X-Frame-Options":                   "DENY",
		"X-Content-Type-Options":            "nosniff",
		"Content-Security-Policy":           "default-src 'none'; frame-ancestors 'none'",
		"Referrer-Policy":                   "no-referrer",
		"X-Permitted-Cross-Domain-Policies": "none",
		"Cross-Origin-Opener-Policy":        "same-origin",
		"Cross-Origin-Resource-Policy":      "same-origin",
	}
	for header, value := range want {
		if got := w.Header().Get(header); got != value {
			t.Errorf("%s: expected %q, got %q", header, value, got)
		}
	}
}

func TestSecurityHeadersMiddleware_DisabledFeatures(t *testing.T) {
	router := securityRouter(SecurityHeadersConfig{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	for _, header := range []string{
		"Strict-Transport-Security",
		"X-Frame-Options",
		"X-Content-Type-Options",
		"Content-Security-Policy",
		"Referrer-Policy",
	} {
		if got := w.Header().Get(header); got != "" {
			t.Errorf("%s should be absent, got %q", header, got)
		}
	}

	// The cross-origin isolation headers are unconditional.
	if got := w.Header().Get("Cross-Origin-Resource-Policy"); got != "same-origin" {
		t.Errorf("Cross-Origin-Resource-Policy: expected same-origin, got %q", got)
	}
}
