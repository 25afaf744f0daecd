package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pablogoliveira/personia-hub/internal/models"
	"github.com/pablogoliveira/personia-hub/internal/utils"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

// AddressResolver resolves a CEP to an address
type AddressResolver interface {
	LookupAddress(ctx context.Context, cep string) (*models.AddressLookupResult, error)
}

// CEPHandler serves /cep/:cep
type CEPHandler struct {
	resolver AddressResolver
	logger   *zap.Logger
}

// NewCEPHandler creates the CEP lookup handler
func NewCEPHandler(resolver AddressResolver, logger *zap.Logger) *CEPHandler {
	return &CEPHandler{resolver: resolver, logger: logger}
}

// LookupCEP godoc
// @Summary Busca endereço pelo CEP
// @Description Consulta o ViaCEP (com cache) e devolve logradouro, bairro, cidade e estado.
// @Tags cep
// @Produce json
// @Param cep path string true "CEP com ou sem máscara" example(01001-000)
// @Success 200 {object} models.AddressLookupResult
// @Failure 400 {object} models.APIError "CEP inválido"
// @Failure 404 {object} models.APIError "CEP não encontrado"
// @Failure 502 {object} models.APIError
// @Router /cep/{cep} [get]
func (h *CEPHandler) LookupCEP(c *gin.Context) {
	ctx, span := otel.Tracer("").Start(c.Request.Context(), "LookupCEP")
	defer span.End()

	result, err := h.resolver.LookupAddress(ctx, c.Param("cep"))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, result)
	case errors.Is(err, models.ErrInvalidCEP):
		abortWithError(c, newAPIError(http.StatusBadRequest, models.ErrInvalidCEP.Error()))
	case errors.Is(err, models.ErrCEPNotFound):
		abortWithError(c, newAPIError(http.StatusNotFound, models.ErrCEPNotFound.Error()))
	default:
		utils.RecordErrorInSpan(span, err, map[string]interface{}{"cep": c.Param("cep")})
		h.logger.Error("cep lookup failed", zap.String("cep", c.Param("cep")), zap.Error(err))
		abortWithError(c, newAPIError(http.StatusBadGateway, MsgCEPFailed))
	}
}
