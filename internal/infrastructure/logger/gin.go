package logger

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GinMiddleware logs one entry per request and stores a request-scoped
// logger under the "logger" key on the gin context. 5xx responses log
// at error, 4xx at warn, everything else at info.
func GinMiddleware(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		requestLog := log
		if requestID := c.GetString("request_id"); requestID != "" {
			requestLog = requestLog.With(zap.String("request_id", requestID))
		}
		requestLog = WithTraceContext(c.Request.Context(), requestLog)
		c.Set("logger", requestLog)

		c.Next()

		fields := []zap.Field{
			zap.Int("status", c.Writer.Status()),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.String("client_ip", c.ClientIP()),
			zap.Duration("latency", time.Since(start)),
			zap.Int("response_size", c.Writer.Size()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch {
		case c.Writer.Status() >= 500:
			requestLog.Error("http request", fields...)
		case c.Writer.Status() >= 400:
			requestLog.Warn("http request", fields...)
		default:
			requestLog.Info("http request", fields...)
		}
	}
}

// Recovery converts panics into a logged 500 response instead of
// killing the process.
func Recovery(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error("panic recovered",
					zap.Any("error", err),
					zap.String("method", c.Request.Method),
					zap.String("path", c.Request.URL.Path),
					zap.Stack("stack"),
				)
				c.AbortWithStatusJSON(500, gin.H{
					"success": false,
					"error": gin.H{
						"code":    "INTERNAL_ERROR",
						"message": "Internal server error",
					},
				})
			}
		}()
		c.Next()
	}
}

// GetGinLogger returns the request-scoped logger placed on c by
// GinMiddleware, or a nop logger when the middleware did not run.
func GetGinLogger(c *gin.Context) *zap.Logger {
	if value, exists := c.Get("logger"); exists {
		if log, ok := value.(*zap.Logger); ok {
			return log
		}
	}
	return zap.NewNop()
}
