package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"basegraph.app/scout/common/id"
	"basegraph.app/scout/common/logger"
	"basegraph.app/scout/internal/retrieval"
)

const (
	RequestIDHeader = "X-Request-ID"
	requestIDKey    = "scout.request_id"
	maxRequestIDLen = 128
)

// RequestID returns the id Logger assigned to the request, or "" when the
// request did not pass through Logger.
func RequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// Logger tags the request with a request id (the caller's X-Request-ID, or a
// fresh one) and the session it addresses, then logs one line per request.
// Failed retrievals are logged with their error kind.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" || len(requestID) > maxRequestIDLen {
			requestID = id.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)

		fields := logger.LogFields{
			RequestID: logger.Ptr(requestID),
			Component: "scout.http",
		}
		if sessionID := c.Param("session_id"); sessionID != "" {
			fields.SessionID = logger.Ptr(sessionID)
		}
		ctx := logger.WithLogFields(c.Request.Context(), fields)
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			"method", c.Request.Method,
			"route", c.FullPath(),
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if locator := c.Query("url"); locator != "" {
			attrs = append(attrs, "locator", logger.Truncate(locator, 200))
		}
		if hit := c.Writer.Header().Get("X-Cache"); hit != "" {
			attrs = append(attrs, "cache", hit)
		}
		if last := c.Errors.Last(); last != nil {
			attrs = append(attrs, "error", last.Err.Error())
			if kind := retrieval.KindOf(last.Err); kind != "" {
				attrs = append(attrs, "error_kind", string(kind))
			}
		}

		switch {
		case status >= 500:
			slog.ErrorContext(ctx, "request failed", attrs...)
		case status >= 400:
			slog.WarnContext(ctx, "request rejected", attrs...)
		default:
			slog.InfoContext(ctx, "request served", attrs...)
		}
	}
}
