package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/scholarfolio/backend/pkg/logger"
	"go.uber.org/zap"
)

// RequestLogger logs one structured line per request.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if owner := OwnerFrom(c); owner != "" {
			fields = append(fields, zap.String("owner", owner))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		logger.Zap().Info("http request", fields...)
	}
}
