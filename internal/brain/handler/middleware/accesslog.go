package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Missonix/SSAI-brain/pkg/logger"
)

// AccessLog writes one line per request with method, path, status and
// latency.
func AccessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()
		logger.Info("[HTTP] %s %s %d %v",
			c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(started).Round(time.Millisecond))
	}
}
