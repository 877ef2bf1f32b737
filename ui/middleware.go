package ui

import (
	"time"

	"github.com/gin-gonic/gin"

	"instviz/internal/logging"
)

// requestLogger logs one line per request at debug, errors at warn
func requestLogger(logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		elapsed := time.Since(start).Round(time.Microsecond)
		if status >= 500 {
			logger.Warn("[HTTP] %s %s %d %s", c.Request.Method, c.Request.URL.Path, status, elapsed)
			return
		}
		logger.Debug("[HTTP] %s %s %d %s", c.Request.Method, c.Request.URL.Path, status, elapsed)
	}
}
