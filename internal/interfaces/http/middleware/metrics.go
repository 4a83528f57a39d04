package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jass/bff/internal/infrastructure/telemetry"
)

// unmatchedRoute labels requests that matched no route, keeping the label
// cardinality bounded
const unmatchedRoute = "unmatched"

// HTTPMetrics records the count and latency of every served request by
// route pattern
func HTTPMetrics(m *telemetry.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		m.ObserveHTTP(c.Request.Method, routePattern(c), c.Writer.Status(), time.Since(start))
	}
}

// routePattern returns the registered pattern (e.g. /api/v1/admin/clients/:id)
func routePattern(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return unmatchedRoute
}
