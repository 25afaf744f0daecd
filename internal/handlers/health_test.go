package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHealthHandler(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	tests := []struct {
		name     string
		checks   map[string]HealthCheckFunc
		status   int
		overall  string
		services map[string]string
	}{
		{
			name:     "all healthy",
			checks:   map[string]HealthCheckFunc{"mongodb": ok, "redis": ok},
			status:   http.StatusOK,
			overall:  "healthy",
			services: map[string]string{"mongodb": "healthy", "redis": "healthy"},
		},
		{
			name:     "one down",
			checks:   map[string]HealthCheckFunc{"mongodb": ok, "redis": down},
			status:   http.StatusServiceUnavailable,
			overall:  "unhealthy",
			services: map[string]string{"mongodb": "healthy", "redis": "unhealthy"},
		},
		{
			name:     "no dependencies",
			checks:   nil,
			status:   http.StatusOK,
			overall:  "healthy",
			services: map[string]string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.GET("/health", NewHealthHandler(tt.checks, zap.NewNop()).HealthCheck)

			w := performRequest(t, router, http.MethodGet, "/health", nil)
			require.Equal(t, tt.status, w.Code)
			health := decodeBody[HealthResponse](t, w)
			assert.Equal(t, tt.overall, health.Status)
			assert.Equal(t, tt.services, health.Services)
			assert.False(t, health.Timestamp.IsZero())
		})
	}
}
