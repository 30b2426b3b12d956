package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/famboard/famboard/pkg/metrics"
)

// Metrics records request latency per route. The route template is used
// instead of the raw path to keep label cardinality bounded.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.APILatency.WithLabelValues(
			c.Request.Method,
			path,
			strconv.Itoa(c.Writer.Status()),
		).Observe(time.Since(start).Seconds())
	}
}
