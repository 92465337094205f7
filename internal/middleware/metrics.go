// metrics.go records Prometheus request metrics for every request passing
// through the router.
package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/elencho/elencho/internal/telemetry"
)

// MetricsMiddleware records http_requests_total{method, path, status} and
// http_request_duration_seconds{method, path} for each request. The path label
// comes from c.FullPath(), the matched route template (e.g.
// /member/delete/:member_id) rather than the raw URL, so user-supplied path
// segments cannot inflate label cardinality. Requests matching no registered
// route use the literal "<no-route>".
//
// Register after gin.Recovery() and RequestIDMiddleware so the status set by
// error handlers is captured correctly.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "<no-route>"
		}

		duration := time.Since(start).Seconds()
		method := c.Request.Method
		status := fmt.Sprintf("%d", c.Writer.Status())

		telemetry.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
		telemetry.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
	}
}
