package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/orris-inc/zlpay/internal/shared/constants"
	"github.com/orris-inc/zlpay/internal/shared/logger"
)

// Logger logs one line per request. Provider callbacks are logged at info
// level so every delivery shows up in production logs.
func Logger(log logger.Interface, infoPaths ...string) gin.HandlerFunc {
	loud := make(map[string]struct{}, len(infoPaths))
	for _, p := range infoPaths {
		loud[p] = struct{}{}
	}

	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		latency := time.Since(start)

		args := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", latency,
			"client_ip", c.ClientIP(),
			"user_agent", c.Request.UserAgent(),
			"body_size", c.Writer.Size(),
		}

		if requestID := c.GetString(constants.ContextKeyRequestID); requestID != "" {
			args = append(args, "request_id", requestID)
		}

		if admin, exists := c.Get(constants.ContextKeyAdmin); exists {
			args = append(args, "admin", admin)
		}

		if len(c.Errors) > 0 {
			args = append(args, "error", c.Errors.Last().Error())
		}

		status := c.Writer.Status()
		_, isLoud := loud[c.FullPath()]
		switch {
		case status >= 500:
			log.Errorw("HTTP request completed with server error", args...)
		case status >= 400:
			log.Warnw("HTTP request completed with client error", args...)
		case isLoud:
			log.Infow("HTTP request completed", args...)
		case status >= 300:
			log.Debugw("HTTP request completed with redirect", args...)
		default:
			log.Debugw("HTTP request completed successfully", args...)
		}
	}
}
