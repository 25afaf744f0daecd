package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pablogoliveira/personia-hub/internal/logging"
	"github.com/pablogoliveira/personia-hub/internal/observability"
	"go.uber.org/zap"
)

// RequestIDHeader carries the request correlation id
const RequestIDHeader = "X-Request-ID"

// RequestIDKey is the gin context key holding the request id
const RequestIDKey = "RequestID"

// RequestLogger logs request information and records request duration
func RequestLogger() gin.HandlerFunc {
	logger := logging.Named("http")
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		fields := []zap.Field{
			zap.String("request_id", c.GetString(RequestIDKey)),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("route", c.FullPath()),
			zap.Int("status", status),
			zap.Duration("latency", latency),
			zap.String("ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch {
		case status >= 500:
			logger.Error("request completed", fields...)
		case status >= 400:
			logger.Warn("request completed", fields...)
		default:
			logger.Info("request completed", fields...)
		}

		// unmatched routes share one label to keep cardinality bounded
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		observability.RequestDuration.WithLabelValues(
			route,
			c.Request.Method,
			strconv.Itoa(status),
		).Observe(latency.Seconds())
	}
}

// RequestTracker tracks active connections
func RequestTracker() gin.HandlerFunc {
	return func(c *gin.Context) {
		observability.ActiveConnections.Inc()
		defer observability.ActiveConnections.Dec()
		c.Next()
	}
}

// RequestID adds a unique request ID to the context and response headers
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(RequestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)
		c.Next()
	}
}
