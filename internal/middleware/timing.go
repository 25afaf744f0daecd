package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
)

// RequestTiming opens a server span around the request, continuing any
// trace propagated by the caller
func RequestTiming() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Set("request_start_time", start)

		parent := otel.GetTextMapPropagator().Extract(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))
		ctx, span := otel.Tracer("http").Start(parent, "http.request")
		defer span.End()

		span.SetAttributes(
			attribute.String("http.method", c.Request.Method),
			attribute.String("http.route", c.FullPath()),
			attribute.String("http.user_agent", c.Request.UserAgent()),
		)
		if id := c.GetString(RequestIDKey); id != "" {
			span.SetAttributes(attribute.String("http.request_id", id))
		}

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(
			attribute.Int("http.status_code", status),
			attribute.Int64("http.duration_ms", time.Since(start).Milliseconds()),
		)
		if status >= 500 {
			span.SetStatus(codes.Error, "server error")
		}
	}
}
