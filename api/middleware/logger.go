package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/ytmp3-go/pkg/logger"
)

// Logger returns a gin middleware that logs every request. Server errors
// also go to the error category log.
func Logger(logs *logger.LoggerAdapter) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}

		logs.Logger().Debug("HTTP request", fields...)

		if c.Writer.Status() >= 500 {
			logs.LogError("HTTP error response", append(fields, zap.String("user_agent", c.Request.UserAgent()))...)
		}
	}
}
