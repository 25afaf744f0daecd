package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pablogoliveira/personia-hub/internal/middleware"
	"github.com/pablogoliveira/personia-hub/internal/models"
	"github.com/pablogoliveira/personia-hub/internal/services"
)

// User-facing error messages
const (
	MsgInvalidBody    = "Corpo da requisição inválido"
	MsgInvalidData    = "Dados inválidos"
	MsgServerError    = "Ocorreu um erro no servidor"
	MsgCreateFailed   = "Erro ao criar pessoa"
	MsgGetFailed      = "Erro ao buscar pessoa"
	MsgListFailed     = "Erro ao listar pessoas"
	MsgUpdateFailed   = "Erro ao atualizar pessoa"
	MsgDeleteFailed   = "Erro ao excluir pessoa"
	MsgCEPFailed      = "Erro ao buscar CEP"
	MsgSessionMissing = "Sessão de formulário não encontrada"
	MsgUnknownField   = "Campo desconhecido"

	MsgInvalidTransition = "Operação inválida para a etapa atual"
	MsgSubmitInProgress  = "Envio em andamento"
)

// HealthResponse reports the state of each dependency
type HealthResponse struct {
	Status    string            `json:"status" example:"healthy"`
	Timestamp time.Time         `json:"timestamp"`
	Services  map[string]string `json:"services"`
}

// newAPIError builds an error body stamped with the current time
func newAPIError(status int, message string) *models.APIError {
	return &models.APIError{
		Status:    status,
		ErrorCode: http.StatusText(status),
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
}

// abortWithError writes err as the response body
func abortWithError(c *gin.Context, apiErr *models.APIError) {
	c.AbortWithStatusJSON(apiErr.Status, apiErr)
}

// requestContext attaches the caller's audit details to the request context
func requestContext(c *gin.Context) context.Context {
	return services.ContextWithAudit(c.Request.Context(), services.AuditContext{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		RequestID: c.GetString(middleware.RequestIDKey),
	})
}

// personError translates a person operation failure into an error body.
// Failures with no user-facing meaning get status 500 and fallback.
func personError(err error, fallback string) *models.APIError {
	var validationErr *services.DomainValidationError
	if errors.As(err, &validationErr) {
		apiErr := newAPIError(http.StatusBadRequest, MsgInvalidData)
		apiErr.Details = validationErr.Fields.Details()
		return apiErr
	}
	if field := models.ConflictField(err); field != "" {
		apiErr := newAPIError(http.StatusConflict, err.Error())
		apiErr.Field = field
		return apiErr
	}
	if errors.Is(err, models.ErrPersonNotFound) {
		return newAPIError(http.StatusNotFound, models.ErrPersonNotFound.Error())
	}
	return newAPIError(http.StatusInternalServerError, fallback)
}

// upstreamError re-forwards an error returned by the backend API. Transport
// failures become 502.
func upstreamError(err error) *models.APIError {
	var apiErr *models.APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return newAPIError(http.StatusBadGateway, MsgServerError)
}
