// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file holds the correlation and crash-safety pieces: RequestID tags
// every request with a stable id, Recovery converts panics into JSON 500s,
// and LoggerFrom hands handlers the request-scoped logger. The access log
// itself lives in RedactingLogger, which scrubs warranty codes and claimant
// PII before anything reaches the log stream.
package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	// requestIDKey and loggerKey are the Gin context keys for the correlation
	// id and the request-scoped logger.
	requestIDKey = "requestID"
	loggerKey    = "logger"
	// requestIDHeader propagates the correlation id to clients and upstreams.
	requestIDHeader = "X-Request-ID"
	// maxQueryLogLength caps logged query strings. Verify lookups arrive as
	// free text in ?q=, and this is more than enough of one to debug.
	maxQueryLogLength = 2048
)

// RequestID reuses an incoming X-Request-ID or generates a fresh UUID, stores
// it in the context, and echoes it on the response. Install first so every
// later middleware and handler can correlate.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(requestIDHeader)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(requestIDKey, rid)
		c.Writer.Header().Set(requestIDHeader, rid)
		c.Next()
	}
}

// Recovery intercepts panics, logs the stack with the correlation id, and
// answers with the standard error envelope when nothing has been written yet.
// Install after the access logger so the panic is captured in context.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				rid, _ := c.Get(requestIDKey)
				log.Error().
					Interface("panic", rec).
					Bytes("stack", debug.Stack()).
					Str("request_id", ctxString(rid)).
					Msg("panic recovered")

				if !c.Writer.Written() {
					c.Header("Content-Type", "application/json")
					c.Header(requestIDHeader, ctxString(rid))
					c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
						"request_id": ctxString(rid),
						"code":       "internal_error",
						"message":    "internal server error",
					})
					return
				}
				c.AbortWithStatus(http.StatusInternalServerError)
			}
		}()
		c.Next()
	}
}

// LoggerFrom returns the request-scoped logger attached by RedactingLogger.
// When none is attached (background goroutines, bare test routers) it falls
// back to the global logger, so callers never need a nil check.
func LoggerFrom(c *gin.Context) *zerolog.Logger {
	if v, ok := c.Get(loggerKey); ok {
		if lg, ok := v.(*zerolog.Logger); ok {
			return lg
		}
	}
	l := log.With().Logger()
	return &l
}

// ctxString extracts a string context value, tolerating absent or non-string
// entries.
func ctxString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// truncate caps s at max bytes, marking the cut with an ellipsis. A max <= 0
// disables the cap. Byte truncation is fine for log output.
func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max] + "…"
}
