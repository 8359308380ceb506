// Package middleware provides the Gin middleware stack for the studio
// backend. Everything here is registered in internal/api/router.go before the
// route handlers so every request is covered regardless of handler.
package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/masterskaya-studio/site-backend/internal/telemetry"
)

// MetricsMiddleware records request count and latency for every request.
//
// The path label uses c.FullPath() — the matched route template (e.g.
// /api/admin/projects/:slug) rather than the raw URL — so slugs do not
// explode label cardinality. Requests matching no route are labeled
// "<no-route>".
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "<no-route>"
		}

		telemetry.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method, path, fmt.Sprintf("%d", c.Writer.Status())).Inc()
		telemetry.HTTPRequestDuration.WithLabelValues(
			c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
