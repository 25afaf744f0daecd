package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// HealthCheckFunc reports whether one dependency is reachable
type HealthCheckFunc func(ctx context.Context) error

// HealthHandler reports the state of the service's dependencies
type HealthHandler struct {
	checks  map[string]HealthCheckFunc
	timeout time.Duration
	logger  *zap.Logger
}

// NewHealthHandler creates a health handler over the named checks
func NewHealthHandler(checks map[string]HealthCheckFunc, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{checks: checks, timeout: 2 * time.Second, logger: logger}
}

// HealthCheck godoc
// @Summary Verificação de saúde
// @Description Verifica a saúde do serviço e de suas dependências. Retorna o status de cada uma.
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse "Todos os serviços estão saudáveis"
// @Failure 503 {object} HealthResponse "Um ou mais serviços estão indisponíveis"
// @Router /health [get]
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	ctx, span := otel.Tracer("").Start(c.Request.Context(), "HealthCheck")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	health := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Services:  make(map[string]string, len(h.checks)),
	}
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			h.logger.Warn("health check failed", zap.String("service", name), zap.Error(err))
			health.Services[name] = "unhealthy"
			health.Status = "unhealthy"
			continue
		}
		health.Services[name] = "healthy"
	}
	span.SetAttributes(attribute.String("health.status", health.Status))

	if health.Status != "healthy" {
		c.JSON(http.StatusServiceUnavailable, health)
		return
	}
	c.JSON(http.StatusOK, health)
}
