package metrics

import (
	"time"

	"github.com/gin-gonic/gin"
)

// unmatchedEndpoint labels requests that hit no route, keeping label
// cardinality bounded
const unmatchedEndpoint = "unmatched"

// Middleware records request count and latency per route template
func Middleware(m Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = unmatchedEndpoint
		}
		m.IncRequestsTotal(endpoint, c.Writer.Status())
		m.ObserveRequestDuration(endpoint, time.Since(start))
	}
}
