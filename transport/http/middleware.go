package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/fidena/fidena/internal/metrics"
	"github.com/fidena/fidena/internal/ratelimit"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var statusMessages = map[int]string{
	200: "Ok",
	204: "No Content",
	307: "Temporary Redirect",
	400: "Bad Request",
	401: "Unauthorized",
	403: "Forbidden",
	404: "Not Found",
	429: "Too many requests",
	500: "Internal Server Error",
}

var statusToLevel = map[int]zapcore.Level{
	200: zap.InfoLevel,
	204: zap.InfoLevel,
	307: zap.InfoLevel,
	400: zap.WarnLevel,
	401: zap.WarnLevel,
	403: zap.WarnLevel,
	404: zap.WarnLevel,
	429: zap.InfoLevel,
	500: zap.ErrorLevel,
}

// bodyCapture tees error responses so the logger can pick up their
// `error` field
type bodyCapture struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *bodyCapture) Write(b []byte) (int, error) {
	if w.Status() >= http.StatusBadRequest && w.buf.Len() < 4096 {
		w.buf.Write(b)
	}
	return w.ResponseWriter.Write(b)
}

func (w *bodyCapture) WriteString(s string) (int, error) {
	if w.Status() >= http.StatusBadRequest && w.buf.Len() < 4096 {
		w.buf.WriteString(s)
	}
	return w.ResponseWriter.WriteString(s)
}

// LoggingMiddleware logs every request once it completes
func LoggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		w := &bodyCapture{ResponseWriter: c.Writer}
		c.Writer = w

		c.Next()

		statusCode := w.Status()
		responseErr := struct {
			ResponseErr string `json:"error"`
		}{}
		if w.buf.Len() > 0 {
			_ = json.Unmarshal(w.buf.Bytes(), &responseErr)
		}

		fields := []zap.Field{
			zap.String("err", responseErr.ResponseErr),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", statusCode),
			zap.Duration("duration", time.Since(start)),
		}

		level, ok := statusToLevel[statusCode]
		if !ok {
			level = zap.InfoLevel
			if statusCode >= http.StatusInternalServerError {
				level = zap.ErrorLevel
			}
		}

		message, ok := statusMessages[statusCode]
		if !ok {
			message = fmt.Sprintf("Unknown status %d", statusCode)
		}

		if ce := logger.Check(level, message); ce != nil {
			ce.Write(fields...)
		}
	}
}

// MetricsMiddleware records request counts and latency per route template
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.RecordHTTPRequest(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start).Seconds())
	}
}

// RateLimit rejects clients that exceed their token bucket
func RateLimit(limiter *ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, errorResponse{Error: "Too many requests"})
			return
		}
		c.Next()
	}
}
