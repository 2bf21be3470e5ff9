package middleware

import (
	"strconv"
	"time"

	"github.com/fxcache/currency_rates_app/internal/metrics"
	"github.com/gin-gonic/gin"
)

// MetricsMiddleware records per-request prometheus counters and latency.
// The route template (c.FullPath) is used as the path label so parameterized
// routes don't explode label cardinality.
func MetricsMiddleware(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		m.HTTPRequestsTotal.WithLabelValues(path, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPRequestDuration.WithLabelValues(path, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}
