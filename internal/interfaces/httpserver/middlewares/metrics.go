package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"

	"jan-server/services/engage-api/internal/infrastructure/metrics"
)

// Metrics records request latency by route template so path ids do not explode label cardinality.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
