package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/trace"
)

func TestRequestTiming_SetsStartTimeAndSpan(t *testing.T) {
	router := gin.New()
	router.Use(RequestTiming())

	var (
		start  time.Time
		exists bool
		hasCtx bool
	)
	router.GET("/test", func(c *gin.Context) {
		var v any
		v, exists = c.Get("request_start_time")
		start, _ = v.(time.Time)
		hasCtx = trace.SpanFromContext(c.Request.Context()) != nil
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, exists)
	assert.False(t, start.IsZero())
	assert.True(t, hasCtx)
}

func TestRequestTiming_ServerError(t *testing.T) {
	router := gin.New()
	router.Use(RequestID(), RequestTiming())
	router.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	w := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
