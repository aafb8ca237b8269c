package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

// Logging writes one structured line per request. Server errors and handler
// errors attached with c.Error are logged at error level, client errors at
// warn.
func Logging(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		attrs := []slog.Attr{
			slog.Int("status", status),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.String("route", c.FullPath()),
			slog.String("ip", c.ClientIP()),
			slog.Duration("latency", time.Since(start)),
			slog.Int("bytes", c.Writer.Size()),
		}

		ctx := c.Request.Context()

		switch {
		case len(c.Errors) > 0:
			attrs = append(attrs, slog.String("errors", c.Errors.String()))
			logger.LogAttrs(ctx, slog.LevelError, "request completed with errors", attrs...)
		case status >= 500:
			logger.LogAttrs(ctx, slog.LevelError, "request failed", attrs...)
		case status >= 400:
			logger.LogAttrs(ctx, slog.LevelWarn, "request rejected", attrs...)
		default:
			logger.LogAttrs(ctx, slog.LevelInfo, "request completed", attrs...)
		}
	}
}
