package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rsaputelli/PRS/pkg/metrics"
)

// Metrics records request duration and errors by route template.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := c.Writer.Status()
		metrics.ObserveRequest(c.Request.Method, path, strconv.Itoa(status), time.Since(start).Seconds(), status >= 500)
	}
}
