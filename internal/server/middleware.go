package server

import (
	"log/slog"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDKey is the gin context key and response header carrying the
// request id.
const (
	RequestIDKey    = "request_id"
	RequestIDHeader = "X-Request-ID"
)

// LoggingConfig configures LoggingMiddleware.
type LoggingConfig struct {
	// SkipPaths are path prefixes that get a request id but no log lines.
	SkipPaths []string
	Logger    *slog.Logger
}

// LoggingMiddleware tags every request with a uuid and logs its completion.
func LoggingMiddleware(cfg *LoggingConfig) gin.HandlerFunc {
	if cfg == nil {
		cfg = &LoggingConfig{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return func(c *gin.Context) {
		requestID := uuid.New().String()
		c.Set(RequestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)

		if shouldSkipPath(c.Request.URL.Path, cfg.SkipPaths) {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		attrs := []any{
			"request_id", requestID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", float64(time.Since(start).Microseconds()) / 1e3,
			"response_size", c.Writer.Size(),
			"client_ip", c.ClientIP(),
		}
		ctx := c.Request.Context()
		if len(c.Errors) > 0 {
			logger.ErrorContext(ctx, "http request failed", append(attrs, "error", c.Errors.String())...)
			return
		}
		logger.InfoContext(ctx, "http request", attrs...)
	}
}

// GetRequestID returns the id set by LoggingMiddleware, or "".
func GetRequestID(c *gin.Context) string {
	return c.GetString(RequestIDKey)
}

func shouldSkipPath(path string, skip []string) bool {
	for _, p := range skip {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
