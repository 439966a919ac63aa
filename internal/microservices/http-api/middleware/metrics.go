package middleware

import (
	"strconv"
	"time"

	"bookhub/internal/metrics"

	"github.com/gin-gonic/gin"
)

// MetricsMiddleware observes request durations labelled by route template, never by raw path
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
