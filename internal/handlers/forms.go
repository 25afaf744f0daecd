package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pablogoliveira/personia-hub/internal/form"
	"github.com/pablogoliveira/personia-hub/internal/models"
	"github.com/pablogoliveira/personia-hub/internal/services"
	"github.com/pablogoliveira/personia-hub/internal/utils"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// FieldValueRequest is the body of a field edit
type FieldValueRequest struct {
	// Valor digitado, com ou sem máscara
	Value string `json:"value" example:"529.982.247-25"`
}

// FormSessionResponse is the state of a form session as the client renders it
type FormSessionResponse struct {
	ID string `json:"id"`
	// Valores sem máscara
	Values map[string]string `json:"values"`
	// Valores com máscara aplicada
	Display map[string]string `json:"display"`
	// Erros dos campos já tocados
	Errors         models.FieldErrors      `json:"errors"`
	Touched        map[string]bool         `json:"touched"`
	Step           int                     `json:"step"`
	Fields         []string                `json:"fields"`
	Phase          form.Phase              `json:"phase" swaggertype:"string" example:"personal"`
	Valid          bool                    `json:"valid"`
	Submitting     bool                    `json:"submitting"`
	Success        bool                    `json:"success"`
	LoadingAddress bool                    `json:"loadingAddress"`
	Focus          string                  `json:"focus,omitempty"`
	Notifications  []services.Notification `json:"notifications"`
	Person         *models.Person          `json:"person,omitempty"`
}

// FormHandler exposes server-side form sessions
type FormHandler struct {
	sessions *services.FormSessionService
	logger   *zap.Logger
}

// NewFormHandler creates the form session handler
func NewFormHandler(sessions *services.FormSessionService, logger *zap.Logger) *FormHandler {
	return &FormHandler{sessions: sessions, logger: logger}
}

// Register mounts the form routes on group
func (h *FormHandler) Register(group *gin.RouterGroup) {
	forms := group.Group("/forms")
	forms.POST("", h.CreateSession)
	forms.GET("/:id", h.GetSession)
	forms.DELETE("/:id", h.DeleteSession)
	forms.PUT("/:id/fields/:field", h.EditField)
	forms.POST("/:id/fields/:field/blur", h.BlurField)
	forms.POST("/:id/next", h.NextStep)
	forms.POST("/:id/prev", h.PreviousStep)
	forms.POST("/:id/submit", h.Submit)
	forms.POST("/:id/reset", h.Reset)
}

func sessionResponse(session *services.FormSession) FormSessionResponse {
	f := session.Form()
	state := f.Snapshot()
	values := state.Values.Map()
	display := make(map[string]string, len(values))
	for field, value := range values {
		display[field] = utils.ApplyMask(field, value)
	}

	return FormSessionResponse{
		ID:             session.ID,
		Values:         values,
		Display:        display,
		Errors:         state.VisibleErrors,
		Touched:        state.Touched,
		Step:           state.Step,
		Fields:         form.StepFields(state.Step),
		Phase:          state.Phase,
		Valid:          state.Valid,
		Submitting:     state.Submitting,
		Success:        state.Success,
		LoadingAddress: state.LoadingAddress,
		Focus:          f.TakeFocus(),
		Notifications:  session.DrainNotifications(),
	}
}

func (h *FormHandler) session(c *gin.Context) (*services.FormSession, bool) {
	session, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		abortWithError(c, newAPIError(http.StatusNotFound, MsgSessionMissing))
		return nil, false
	}
	return session, true
}

// respond writes the session state. Outcomes the form records in its own
// state (gate failures, invalid or rejected submissions) answer 422 with the
// state so the client can show the errors.
func (h *FormHandler) respond(c *gin.Context, session *services.FormSession, err error) {
	switch {
	case err == nil:
		c.JSON(http.StatusOK, sessionResponse(session))
	case errors.Is(err, form.ErrClosed):
		abortWithError(c, newAPIError(http.StatusNotFound, MsgSessionMissing))
	case errors.Is(err, form.ErrUnknownField):
		abortWithError(c, newAPIError(http.StatusBadRequest, MsgUnknownField))
	case errors.Is(err, form.ErrSubmitting):
		abortWithError(c, newAPIError(http.StatusConflict, MsgSubmitInProgress))
	case errors.Is(err, form.ErrInvalidTransition):
		abortWithError(c, newAPIError(http.StatusConflict, MsgInvalidTransition))
	default:
		h.logger.Debug("form operation rejected", zap.String("session_id", session.ID), zap.Error(err))
		c.JSON(http.StatusUnprocessableEntity, sessionResponse(session))
	}
}

// CreateSession godoc
// @Summary Cria uma sessão de formulário
// @Description Abre um formulário de cadastro vazio na etapa de dados pessoais.
// @Tags forms
// @Produce json
// @Success 201 {object} FormSessionResponse
// @Router /forms [post]
func (h *FormHandler) CreateSession(c *gin.Context) {
	_, span := otel.Tracer("").Start(c.Request.Context(), "CreateFormSession")
	defer span.End()

	session := h.sessions.Create()
	span.SetAttributes(attribute.String("form.session_id", session.ID))
	c.JSON(http.StatusCreated, sessionResponse(session))
}

// GetSession godoc
// @Summary Estado de uma sessão de formulário
// @Tags forms
// @Produce json
// @Param id path string true "ID da sessão"
// @Success 200 {object} FormSessionResponse
// @Failure 404 {object} models.APIError
// @Router /forms/{id} [get]
func (h *FormHandler) GetSession(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, sessionResponse(session))
}

// DeleteSession godoc
// @Summary Encerra uma sessão de formulário
// @Tags forms
// @Param id path string true "ID da sessão"
// @Success 204
// @Failure 404 {object} models.APIError
// @Router /forms/{id} [delete]
func (h *FormHandler) DeleteSession(c *gin.Context) {
	if err := h.sessions.Delete(c.Param("id")); err != nil {
		abortWithError(c, newAPIError(http.StatusNotFound, MsgSessionMissing))
		return
	}
	c.Status(http.StatusNoContent)
}

// EditField godoc
// @Summary Altera o valor de um campo
// @Description O valor é gravado sem máscara e o campo é revalidado.
// @Tags forms
// @Accept json
// @Produce json
// @Param id path string true "ID da sessão"
// @Param field path string true "Nome do campo" example(cpf)
// @Param data body FieldValueRequest true "Novo valor"
// @Success 200 {object} FormSessionResponse
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Failure 409 {object} models.APIError "Envio em andamento"
// @Router /forms/{id}/fields/{field} [put]
func (h *FormHandler) EditField(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var req FieldValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, newAPIError(http.StatusBadRequest, MsgInvalidBody))
		return
	}

	field := c.Param("field")
	err := session.Form().Edit(field, utils.UnmaskValue(field, req.Value))
	h.respond(c, session, err)
}

// BlurField godoc
// @Summary Marca um campo como visitado
// @Description Ao sair do CEP com 8 dígitos o endereço é buscado e preenchido.
// @Tags forms
// @Produce json
// @Param id path string true "ID da sessão"
// @Param field path string true "Nome do campo" example(cep)
// @Success 200 {object} FormSessionResponse
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Failure 409 {object} models.APIError "Envio em andamento"
// @Router /forms/{id}/fields/{field}/blur [post]
func (h *FormHandler) BlurField(c *gin.Context) {
	ctx, span := otel.Tracer("").Start(c.Request.Context(), "BlurFormField")
	defer span.End()

	session, ok := h.session(c)
	if !ok {
		return
	}
	span.SetAttributes(attribute.String("form.field", c.Param("field")))
	h.respond(c, session, session.Form().Blur(ctx, c.Param("field")))
}

// NextStep godoc
// @Summary Avança para a próxima etapa
// @Tags forms
// @Produce json
// @Param id path string true "ID da sessão"
// @Success 200 {object} FormSessionResponse
// @Failure 409 {object} models.APIError "Transição inválida"
// @Failure 422 {object} FormSessionResponse "Etapa incompleta"
// @Router /forms/{id}/next [post]
func (h *FormHandler) NextStep(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	h.respond(c, session, session.Form().AdvanceStep())
}

// PreviousStep godoc
// @Summary Volta para a etapa anterior
// @Tags forms
// @Produce json
// @Param id path string true "ID da sessão"
// @Success 200 {object} FormSessionResponse
// @Failure 409 {object} models.APIError "Transição inválida"
// @Router /forms/{id}/prev [post]
func (h *FormHandler) PreviousStep(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	h.respond(c, session, session.Form().RetreatStep())
}

// Submit godoc
// @Summary Envia o cadastro
// @Description Valida todos os campos e envia a pessoa para a API. Após o sucesso o formulário é limpo automaticamente.
// @Tags forms
// @Produce json
// @Param id path string true "ID da sessão"
// @Success 200 {object} FormSessionResponse
// @Failure 409 {object} models.APIError "Transição inválida"
// @Failure 422 {object} FormSessionResponse "Dados inválidos ou cadastro recusado"
// @Router /forms/{id}/submit [post]
func (h *FormHandler) Submit(c *gin.Context) {
	ctx, span := otel.Tracer("").Start(requestContext(c), "SubmitForm")
	defer span.End()

	session, ok := h.session(c)
	if !ok {
		return
	}

	person, err := session.Form().Submit(ctx)
	if err != nil {
		utils.RecordErrorInSpan(span, err, nil)
		h.respond(c, session, err)
		return
	}

	resp := sessionResponse(session)
	resp.Person = person
	c.JSON(http.StatusOK, resp)
}

// Reset godoc
// @Summary Limpa o formulário
// @Tags forms
// @Produce json
// @Param id path string true "ID da sessão"
// @Success 200 {object} FormSessionResponse
// @Failure 409 {object} models.APIError "Envio em andamento"
// @Router /forms/{id}/reset [post]
func (h *FormHandler) Reset(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	h.respond(c, session, session.Form().Reset())
}
