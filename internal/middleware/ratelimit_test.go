package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestRateLimiter_AllowsWithinBurst(t *testing.T) {
	limiter := NewRateLimiter(RateLimitConfig{
		RequestsPerMinute: 60,
		BurstSize:         3,
		CleanupInterval:   time.Minute,
	})
	defer limiter.Stop()

	for i := 0; i < 3; i++ {
		if !limiter.Allow("client") {
			t.Fatalf("request %d within burst should be allowed", i+1)
		}
	}
	if limiter.Allow("client") {
		t.Error("request beyond burst should be denied")
	}
}

func TestRateLimiter_KeysAreIndependent(t *testing.T) {
	limiter := NewRateLimiter(RateLimitConfig{
		RequestsPerMinute: 60,
		BurstSize:         1,
		CleanupInterval:   time.Minute,
	})
	defer limiter.Stop()

	if !limiter.Allow("a") {
		t.Fatal("first request for key a should be allowed")
	}
	if limiter.Allow("a") {
		t.Error("key a is exhausted")
	}
	if !limiter.Allow("b") {
		t.Error("key b has its own bucket and should be allowed")
	}
}

func TestRateLimiter_RefillsOverTime(t *testing.T) {
	// 600 requests/minute refills 10 tokens per second, so a short sleep
	// is enough to earn a token back.
	limiter := NewRateLimiter(RateLimitConfig{
		RequestsPerMinute: 600,
		BurstSize:         1,
		CleanupInterval:   time.Minute,
	})
	defer limiter.Stop()

	if !limiter.Allow("client") {
		t.Fatal("first request should be allowed")
	}
	if limiter.Allow("client") {
		t.Fatal("bucket should be empty")
	}

	time.Sleep(150 * time.Millisecond)

	if !limiter.Allow("client") {
		t.Error("bucket should have refilled after waiting")
	}
}

func TestRateLimitMiddleware_Returns429WhenExhausted(t *testing.T) {
	limiter := NewRateLimiter(RateLimitConfig{
		RequestsPerMinute: 60,
		BurstSize:         1,
		CleanupInterval:   time.Minute,
	})
	defer limiter.Stop()

	router := gin.New()
	router.Use(RateLimitMiddleware(limiter))
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	first := httptest.NewRecorder()
	router.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if first.Code != http.StatusOK {
		t.Fatalf("first request: expected 200, got %d", first.Code)
	}
	if first.Header().Get("X-RateLimit-Limit") != "60" {
		t.Errorf("expected X-RateLimit-Limit 60, got %q", first.Header().Get("X-RateLimit-Limit"))
	}

	second := httptest.NewRecorder()
	router.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: expected 429, got %d", second.Code)
	}
	if second.Header().Get("Retry-After") != "60" {
		t.Errorf("expected Retry-After 60, got %q", second.Header().Get("Retry-After"))
	}
}

func TestGetRateLimitKey_PrefersUserID(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/ping", nil)

	if key := getRateLimitKey(c); key[:3] != "ip:" {
		t.Errorf("anonymous request should bucket by IP, got %q", key)
	}

	c.Set(UserIDKey, "user-1")
	if key := getRateLimitKey(c); key != "user:user-1" {
		t.Errorf("authenticated request should bucket by user, got %q", key)
	}
}
