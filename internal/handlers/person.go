package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pablogoliveira/personia-hub/internal/models"
	"github.com/pablogoliveira/personia-hub/internal/services"
	"github.com/pablogoliveira/personia-hub/internal/utils"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// PersonStore is the person CRUD behind the handlers. *services.PersonService
// satisfies it directly; the BFF adapts *services.BackendClient.
type PersonStore interface {
	Create(ctx context.Context, input models.PersonInput) (*models.Person, error)
	Get(ctx context.Context, id string) (*models.Person, error)
	List(ctx context.Context, filter models.PersonFilter) (*models.PersonListResponse, error)
	Update(ctx context.Context, id string, input models.PersonInput) (*models.Person, error)
	Delete(ctx context.Context, id string) error
}

// PersonHandler serves /pessoas
type PersonHandler struct {
	store     PersonStore
	translate func(err error, fallback string) *models.APIError
	logger    *zap.Logger
}

// NewPersonHandler serves persons straight from the service layer
func NewPersonHandler(store PersonStore, logger *zap.Logger) *PersonHandler {
	return &PersonHandler{store: store, translate: personError, logger: logger}
}

// backendStore adapts the backend client to PersonStore
type backendStore struct {
	client *services.BackendClient
}

func (b backendStore) Create(ctx context.Context, input models.PersonInput) (*models.Person, error) {
	return b.client.CreatePerson(ctx, input)
}

func (b backendStore) Get(ctx context.Context, id string) (*models.Person, error) {
	return b.client.GetPerson(ctx, id)
}

func (b backendStore) List(ctx context.Context, filter models.PersonFilter) (*models.PersonListResponse, error) {
	return b.client.ListPersons(ctx, filter)
}

func (b backendStore) Update(ctx context.Context, id string, input models.PersonInput) (*models.Person, error) {
	return b.client.UpdatePerson(ctx, id, input)
}

func (b backendStore) Delete(ctx context.Context, id string) error {
	return b.client.DeletePerson(ctx, id)
}

// NewPersonProxyHandler serves persons from the backend API, re-forwarding
// its error responses unchanged
func NewPersonProxyHandler(client *services.BackendClient, logger *zap.Logger) *PersonHandler {
	return &PersonHandler{
		store:     backendStore{client: client},
		translate: func(err error, _ string) *models.APIError { return upstreamError(err) },
		logger:    logger,
	}
}

// Register mounts the person routes on group
func (h *PersonHandler) Register(group *gin.RouterGroup) {
	group.POST("/pessoas", h.CreatePerson)
	group.GET("/pessoas", h.ListPersons)
	group.GET("/pessoas/:id", h.GetPerson)
	group.PUT("/pessoas/:id", h.UpdatePerson)
	group.DELETE("/pessoas/:id", h.DeletePerson)
}

func (h *PersonHandler) fail(c *gin.Context, operation string, err error, fallback string) {
	apiErr := h.translate(err, fallback)

	fields := []zap.Field{
		zap.String("operation", operation),
		zap.Int("status", apiErr.Status),
		zap.Error(err),
	}
	if apiErr.Status >= http.StatusInternalServerError {
		h.logger.Error("person request failed", fields...)
	} else {
		h.logger.Debug("person request rejected", fields...)
	}
	_ = c.Error(err)
	abortWithError(c, apiErr)
}

func (h *PersonHandler) bindInput(c *gin.Context) (models.PersonInput, bool) {
	var input models.PersonInput
	if err := c.ShouldBindJSON(&input); err != nil {
		abortWithError(c, newAPIError(http.StatusBadRequest, MsgInvalidBody))
		return input, false
	}
	return input, true
}

// CreatePerson godoc
// @Summary Cadastra uma pessoa
// @Description Valida os dados (CPF, CEP, telefone, e-mail e demais campos) e cadastra a pessoa. CPF e e-mail são únicos.
// @Tags pessoas
// @Accept json
// @Produce json
// @Param data body models.PersonInput true "Dados da pessoa"
// @Success 201 {object} models.Person
// @Failure 400 {object} models.APIError "Dados inválidos"
// @Failure 409 {object} models.APIError "CPF ou e-mail já cadastrado"
// @Failure 500 {object} models.APIError
// @Router /pessoas [post]
func (h *PersonHandler) CreatePerson(c *gin.Context) {
	ctx, span := otel.Tracer("").Start(requestContext(c), "CreatePerson")
	defer span.End()
	span.SetAttributes(attribute.String("operation", "create_person"))

	input, ok := h.bindInput(c)
	if !ok {
		return
	}

	person, err := h.store.Create(ctx, input)
	if err != nil {
		utils.RecordErrorInSpan(span, err, nil)
		h.fail(c, "create", err, MsgCreateFailed)
		return
	}

	_, responseSpan := utils.TraceResponseSerialization(ctx, "person")
	c.JSON(http.StatusCreated, person)
	responseSpan.End()
}

// GetPerson godoc
// @Summary Busca uma pessoa
// @Tags pessoas
// @Produce json
// @Param id path string true "ID da pessoa"
// @Success 200 {object} models.Person
// @Failure 404 {object} models.APIError "Pessoa não encontrada"
// @Failure 500 {object} models.APIError
// @Router /pessoas/{id} [get]
func (h *PersonHandler) GetPerson(c *gin.Context) {
	ctx, span := otel.Tracer("").Start(requestContext(c), "GetPerson")
	defer span.End()

	id := c.Param("id")
	span.SetAttributes(attribute.String("person.id", id))

	person, err := h.store.Get(ctx, id)
	if err != nil {
		utils.RecordErrorInSpan(span, err, nil)
		h.fail(c, "get", err, MsgGetFailed)
		return
	}
	c.JSON(http.StatusOK, person)
}

// ListPersons godoc
// @Summary Lista pessoas
// @Description Lista paginada ordenada por nome. A busca considera nome, CPF e e-mail.
// @Tags pessoas
// @Produce json
// @Param page query int false "Página (padrão: 1)" minimum(1)
// @Param limit query int false "Itens por página (padrão: 10, máximo: 100)" minimum(1) maximum(100)
// @Param search query string false "Texto de busca"
// @Success 200 {object} models.PersonListResponse
// @Failure 500 {object} models.APIError
// @Router /pessoas [get]
func (h *PersonHandler) ListPersons(c *gin.Context) {
	ctx, span := otel.Tracer("").Start(requestContext(c), "ListPersons")
	defer span.End()

	// malformed numbers fall back to the defaults
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	filter := models.PersonFilter{Page: page, Limit: limit, Search: c.Query("search")}
	utils.AddSpanAttribute(span, "page", page)
	utils.AddSpanAttribute(span, "limit", limit)

	resp, err := h.store.List(ctx, filter)
	if err != nil {
		utils.RecordErrorInSpan(span, err, nil)
		h.fail(c, "list", err, MsgListFailed)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UpdatePerson godoc
// @Summary Atualiza uma pessoa
// @Tags pessoas
// @Accept json
// @Produce json
// @Param id path string true "ID da pessoa"
// @Param data body models.PersonInput true "Dados da pessoa"
// @Success 200 {object} models.Person
// @Failure 400 {object} models.APIError "Dados inválidos"
// @Failure 404 {object} models.APIError "Pessoa não encontrada"
// @Failure 409 {object} models.APIError "CPF ou e-mail já cadastrado"
// @Failure 500 {object} models.APIError
// @Router /pessoas/{id} [put]
func (h *PersonHandler) UpdatePerson(c *gin.Context) {
	ctx, span := otel.Tracer("").Start(requestContext(c), "UpdatePerson")
	defer span.End()

	id := c.Param("id")
	span.SetAttributes(attribute.String("person.id", id))

	input, ok := h.bindInput(c)
	if !ok {
		return
	}

	person, err := h.store.Update(ctx, id, input)
	if err != nil {
		utils.RecordErrorInSpan(span, err, nil)
		h.fail(c, "update", err, MsgUpdateFailed)
		return
	}
	c.JSON(http.StatusOK, person)
}

// DeletePerson godoc
// @Summary Exclui uma pessoa
// @Tags pessoas
// @Param id path string true "ID da pessoa"
// @Success 204
// @Failure 404 {object} models.APIError "Pessoa não encontrada"
// @Failure 500 {object} models.APIError
// @Router /pessoas/{id} [delete]
func (h *PersonHandler) DeletePerson(c *gin.Context) {
	ctx, span := otel.Tracer("").Start(requestContext(c), "DeletePerson")
	defer span.End()

	id := c.Param("id")
	span.SetAttributes(attribute.String("person.id", id))

	if err := h.store.Delete(ctx, id); err != nil {
		utils.RecordErrorInSpan(span, err, nil)
		h.fail(c, "delete", err, MsgDeleteFailed)
		return
	}
	c.Status(http.StatusNoContent)
}
