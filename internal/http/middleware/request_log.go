package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sayevvv/LearnUp-sub001/internal/platform/ctxutil"
	"github.com/sayevvv/LearnUp-sub001/internal/platform/logger"
)

// quietRoutes are polled constantly; they are logged only when they fail.
var quietRoutes = map[string]bool{
	"/healthcheck": true,
	"/metrics":     true,
}

// RequestLogger writes one line per request after the handler chain has run.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	if log == nil {
		log = logger.Nop()
	}
	log = log.With("component", "http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := routeOf(c)
		status := c.Writer.Status()
		if quietRoutes[route] && status < http.StatusBadRequest {
			return
		}
		logAt(log, status)("http request", requestFields(c, route, status, time.Since(start))...)
	}
}

func routeOf(c *gin.Context) string {
	if r := c.FullPath(); r != "" {
		return r
	}
	return c.Request.URL.Path
}

func requestFields(c *gin.Context, route string, status int, dur time.Duration) []any {
	ctx := c.Request.Context()
	fields := []any{
		"method", c.Request.Method,
		"route", route,
		"status", status,
		"bytes", c.Writer.Size(),
		"duration_ms", dur.Milliseconds(),
	}
	if td := ctxutil.GetTraceData(ctx); td != nil {
		fields = appendNonEmpty(fields, "trace_id", td.TraceID)
		fields = appendNonEmpty(fields, "request_id", td.RequestID)
	}
	if uid := ctxutil.UserID(ctx); uid != uuid.Nil {
		fields = append(fields, "user_id", uid.String())
	}
	if len(c.Errors) > 0 {
		fields = append(fields, "error", c.Errors.String())
	}
	return fields
}

func appendNonEmpty(fields []any, key, val string) []any {
	if val == "" {
		return fields
	}
	return append(fields, key, val)
}

func logAt(log *logger.Logger, status int) func(string, ...any) {
	switch {
	case status >= http.StatusInternalServerError:
		return log.Error
	case status >= http.StatusBadRequest:
		return log.Warn
	default:
		return log.Info
	}
}
