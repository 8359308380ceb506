// Package telemetry provides application-level observability for the studio
// backend: the global slog logger and the Prometheus metrics served on the
// dedicated side-channel port started by cmd/server.
//
// HTTP metrics use c.FullPath() (route template such as /api/admin/projects/:slug)
// rather than the raw request URL to prevent unbounded label cardinality from
// user-supplied path segments such as project slugs.
package telemetry

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts processed requests by method, route template,
	// and status code.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed, by method, route template, and status code.",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration is a latency histogram by method and route template.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request latencies, by method and route template.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "path"},
	)

	// ImageConversionsTotal counts media-library image conversions by the
	// format that ultimately succeeded ("avif", "avif-external", "webp",
	// "original").
	ImageConversionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_conversions_total",
			Help: "Total number of uploaded images processed, by resulting format.",
		},
		[]string{"format"},
	)

	// RevalidationsTotal counts frontend revalidation webhook calls by outcome.
	RevalidationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "frontend_revalidations_total",
			Help: "Total number of frontend revalidation webhook calls, by outcome (ok, error, skipped).",
		},
		[]string{"outcome"},
	)

	// SessionsReapedTotal counts expired admin sessions removed by the reaper job.
	SessionsReapedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "admin_sessions_reaped_total",
			Help: "Total number of expired admin sessions deleted by the background reaper.",
		},
	)

	// DBConnectionsOpen tracks the database pool, polled every 30 seconds.
	DBConnectionsOpen = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "db_connections",
			Help: "Database connection pool statistics.",
		},
		[]string{"state"},
	)
)

// StartDBStatsCollector begins exporting sql.DB pool statistics to the
// DBConnectionsOpen gauge every 30 seconds. The goroutine runs for the
// lifetime of the process.
func StartDBStatsCollector(db *sql.DB) {
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			stats := db.Stats()
			DBConnectionsOpen.WithLabelValues("open").Set(float64(stats.OpenConnections))
			DBConnectionsOpen.WithLabelValues("in_use").Set(float64(stats.InUse))
			DBConnectionsOpen.WithLabelValues("idle").Set(float64(stats.Idle))
		}
	}()
	slog.Debug("database pool stats collector started")
}
