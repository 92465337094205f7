// Package telemetry provides application-level observability for the Elencho server.
//
// # Prometheus Metrics Endpoint
//
// All metrics are registered against the default Prometheus registry and are
// automatically available on the side-channel HTTP server started by main.go:
//
//	GET http(s)://<host>:<ELENCHO_TELEMETRY_METRICS_PROMETHEUS_PORT>/metrics
//
// Default port: 9090.  The endpoint returns data in the Prometheus text exposition
// format and is intended to be scraped by a Prometheus server every 15–60 seconds.
// It is NOT served by the Gin router, so it never passes through the public ingress
// or the rate-limiting middleware.
//
// # Label Cardinality
//
// HTTP metrics use c.FullPath() (route template such as /member/delete/:member_id)
// rather than the raw request URL to prevent unbounded label cardinality from
// user-supplied path segments such as member IDs.
package telemetry

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics — labelled by method, route template, and status code.
//
// Example PromQL queries:
//   - Request rate (req/s, 5 m window):  rate(http_requests_total[5m])
//   - Error rate (%):                    sum(rate(http_requests_total{status=~"5.."}[5m])) / sum(rate(http_requests_total[5m])) * 100
//   - p99 latency per route:             histogram_quantile(0.99, sum by (path, le) (rate(http_request_duration_seconds_bucket[5m])))
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed, by method, route template, and status code.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request latencies, by method and route template.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "path"},
	)
)

// Account lifecycle metrics.
//
// SignupsTotal counts successful sign-ups — each one provisions a user, a personal
// organisation, its two default roles, and the owner membership in one transaction.
// SignInsTotal has a result label ("success" | "failure") so that a spike in
// failures (credential stuffing) is visible without leaking which field was wrong.
//
// Example PromQL queries:
//   - Sign-in failure ratio:  rate(sign_ins_total{result="failure"}[15m]) / rate(sign_ins_total[15m])
//   - New tenants per day:    increase(signups_total[24h])
var (
	SignupsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "signups_total",
			Help: "Total number of successful sign-ups (user + personal organisation provisioned).",
		},
	)

	SignInsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sign_ins_total",
			Help: "Total number of sign-in attempts, by result (success or failure).",
		},
		[]string{"result"},
	)
)

// Invitation workflow metrics — one counter per state-machine transition.
//
// InvitesAcceptedTotal and InvitesCancelledTotal only count completed transitions;
// soft failures (expired or reused links) are not transitions and are not counted here.
//
// Example PromQL queries:
//   - Invite conversion rate:  increase(invites_accepted_total[7d]) / increase(invites_sent_total[7d])
var (
	InvitesSentTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "invites_sent_total",
			Help: "Total number of invitations created and dispatched.",
		},
	)

	InvitesAcceptedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "invites_accepted_total",
			Help: "Total number of invitations accepted (membership created).",
		},
	)

	InvitesCancelledTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "invites_cancelled_total",
			Help: "Total number of pending invitations cancelled.",
		},
	)
)

// NotificationEmailsTotal counts outbound notification emails by kind
// (login, password_reset, invite) and result (sent or failed). Email dispatch is
// fire-and-forget, so this counter is the only place delivery failures are
// visible besides the log stream.
//
// Example PromQL queries:
//   - Delivery failure rate:  rate(notification_emails_total{result="failed"}[1h])
var NotificationEmailsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "notification_emails_total",
		Help: "Total number of outbound notification emails, by kind and result.",
	},
	[]string{"kind", "result"},
)

// DBOpenConnections is a Gauge that tracks the number of open connections currently
// held by the sql.DB connection pool.  It is sampled every 30 seconds by
// StartDBStatsCollector rather than per-request to avoid the overhead of sql.DB.Stats().
var DBOpenConnections = promauto.NewGauge(
	prometheus.GaugeOpts{
		Name: "db_open_connections",
		Help: "Current number of open database connections in the pool.",
	},
)

// StartDBStatsCollector launches a background goroutine that samples sql.DB connection
// pool statistics every 30 seconds and updates the DBOpenConnections gauge.
// The goroutine exits cleanly when the database becomes unreachable (db.Ping fails),
// which happens automatically when the application shuts down and defers db.Close().
//
// Call this once, immediately after db.Connect() succeeds in main.go:
//
//	telemetry.StartDBStatsCollector(database)
func StartDBStatsCollector(db *sql.DB) {
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			if err := db.Ping(); err != nil {
				slog.Warn("db stats collector: database unreachable, stopping collector", "error", err)
				return
			}
			DBOpenConnections.Set(float64(db.Stats().OpenConnections))
		}
	}()
}
