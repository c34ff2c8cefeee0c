package middleware

import (
	"strconv"

	"lumo/internal/metrics"

	"github.com/gin-gonic/gin"
)

// MetricsMiddleware counts every request by method, route template and
// status code. Uses FullPath so path parameters do not explode the label
// cardinality.
func MetricsMiddleware(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.HTTPRequests.WithLabelValues(
			c.Request.Method,
			route,
			strconv.Itoa(c.Writer.Status()),
		).Inc()
	}
}
