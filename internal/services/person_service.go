package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pablogoliveira/personia-hub/internal/models"
	"github.com/pablogoliveira/personia-hub/internal/observability"
	"github.com/pablogoliveira/personia-hub/internal/utils"
	"github.com/pablogoliveira/personia-hub/internal/validation"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Listing limits
const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// DomainValidationError reports the fields that failed validation
type DomainValidationError struct {
	Fields models.FieldErrors
}

func (e *DomainValidationError) Error() string {
	details := e.Fields.Details()
	parts := make([]string, 0, len(details))
	for _, d := range details {
		parts = append(parts, d.Field+": "+d.Message)
	}
	return "dados inválidos: " + strings.Join(parts, "; ")
}

// AuditLogger records audit entries. *AuditWorker satisfies it.
type AuditLogger interface {
	Log(ctx context.Context, log AuditLog)
}

// PersonService implements the person use cases
type PersonService struct {
	repo     PersonRepository
	cache    Cache
	cacheTTL time.Duration
	audit    AuditLogger
	registry *validation.Registry
	logger   *zap.Logger
	now      func() time.Time
}

// PersonServiceOption configures a PersonService
type PersonServiceOption func(*PersonService)

// WithPersonCache enables cache-aside reads of single persons
func WithPersonCache(cache Cache, ttl time.Duration) PersonServiceOption {
	return func(s *PersonService) {
		s.cache = cache
		s.cacheTTL = ttl
	}
}

// WithAuditLogger records create, update and delete operations
func WithAuditLogger(audit AuditLogger) PersonServiceOption {
	return func(s *PersonService) { s.audit = audit }
}

// WithValidationRegistry replaces the default validation rules
func WithValidationRegistry(registry *validation.Registry) PersonServiceOption {
	return func(s *PersonService) { s.registry = registry }
}

// WithPersonClock overrides the timestamp source
func WithPersonClock(now func() time.Time) PersonServiceOption {
	return func(s *PersonService) { s.now = now }
}

// NewPersonService creates a PersonService over repo
func NewPersonService(repo PersonRepository, logger *zap.Logger, opts ...PersonServiceOption) *PersonService {
	s := &PersonService{
		repo:     repo,
		registry: validation.Default(),
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SanitizePersonInput trims every field, strips masks, upper-cases the state,
// lower-cases the email and normalizes the birth date to YYYY-MM-DD
func SanitizePersonInput(in models.PersonInput) models.PersonInput {
	out := models.PersonInput{}
	for _, field := range models.FieldNames() {
		value, _ := in.Field(field)
		out.SetField(field, utils.UnmaskValue(field, strings.TrimSpace(value)))
	}
	out.Estado = strings.ToUpper(out.Estado)
	out.Email = strings.ToLower(out.Email)
	if t, ok := validation.ParseDate(out.DataNascimento); ok {
		out.DataNascimento = t.Format("2006-01-02")
	}
	return out
}

func personCacheKey(id string) string {
	return fmt.Sprintf("person:%s", id)
}

func (s *PersonService) recordOperation(operation string, err error) {
	status := "success"
	switch {
	case err == nil:
	case errors.Is(err, models.ErrCPFAlreadyExists), errors.Is(err, models.ErrEmailAlreadyExists):
		status = "conflict"
	case errors.Is(err, models.ErrPersonNotFound):
		status = "not_found"
	default:
		var validationErr *DomainValidationError
		if errors.As(err, &validationErr) {
			status = "invalid"
		} else {
			status = "error"
		}
	}
	observability.PersonOperations.WithLabelValues(operation, status).Inc()
}

func (s *PersonService) validate(ctx context.Context, input models.PersonInput) error {
	_, span := utils.TraceInputValidation(ctx, "person", "all")
	defer span.End()

	errs := s.registry.ValidatePerson(input)
	if len(errs) == 0 {
		return nil
	}
	for field := range errs {
		observability.ValidationFailures.WithLabelValues(field).Inc()
	}
	return &DomainValidationError{Fields: errs}
}

// checkUnique looks up cpf and email concurrently. Lookups for values equal to
// the current record's are skipped.
func (s *PersonService) checkUnique(ctx context.Context, input models.PersonInput, current *models.Person) error {
	g, gctx := errgroup.WithContext(ctx)

	if current == nil || current.CPF != input.CPF {
		g.Go(func() error {
			_, err := s.repo.FindByCPF(gctx, input.CPF)
			switch {
			case err == nil:
				return models.ErrCPFAlreadyExists
			case errors.Is(err, ErrNotFound):
				return nil
			default:
				return fmt.Errorf("failed to check cpf: %w", err)
			}
		})
	}
	if current == nil || !strings.EqualFold(current.Email, input.Email) {
		g.Go(func() error {
			_, err := s.repo.FindByEmail(gctx, input.Email)
			switch {
			case err == nil:
				return models.ErrEmailAlreadyExists
			case errors.Is(err, ErrNotFound):
				return nil
			default:
				return fmt.Errorf("failed to check email: %w", err)
			}
		})
	}
	return g.Wait()
}

func (s *PersonService) auditLog(ctx context.Context, action string, person *models.Person) {
	if s.audit == nil {
		return
	}
	ac := AuditFromContext(ctx)
	s.audit.Log(ctx, AuditLog{
		Action:     action,
		Resource:   AuditResourcePerson,
		ResourceID: person.ID,
		CPF:        observability.MaskCPF(person.CPF),
		IPAddress:  ac.IPAddress,
		UserAgent:  ac.UserAgent,
		RequestID:  ac.RequestID,
		Timestamp:  s.now(),
	})
}

// Create validates input and stores a new person
func (s *PersonService) Create(ctx context.Context, input models.PersonInput) (person *models.Person, err error) {
	ctx, span := utils.TraceBusinessLogic(ctx, "create_person")
	defer span.End()
	defer func() { s.recordOperation("create", err) }()

	input = SanitizePersonInput(input)
	if err := s.validate(ctx, input); err != nil {
		return nil, err
	}
	if err := s.checkUnique(ctx, input, nil); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	person = &models.Person{
		ID:           utils.GenerateUUID(),
		PersonInput:  input,
		TelefoneE164: utils.FormatPhoneE164(input.Telefone),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, person); err != nil {
		utils.RecordErrorInSpan(span, err, map[string]interface{}{"operation": "create"})
		return nil, err
	}

	s.logger.Info("person created",
		zap.String("id", person.ID),
		zap.String("cpf", observability.MaskCPF(person.CPF)))
	s.auditLog(ctx, AuditActionCreate, person)
	return person, nil
}

// Get returns a person by id, reading through the cache
func (s *PersonService) Get(ctx context.Context, id string) (person *models.Person, err error) {
	ctx, span := utils.TraceBusinessLogic(ctx, "get_person")
	defer span.End()
	defer func() { s.recordOperation("get", err) }()

	if cached := s.getCached(ctx, id); cached != nil {
		return cached, nil
	}

	person, err = s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, models.ErrPersonNotFound
		}
		return nil, err
	}

	s.setCached(ctx, person)
	return person, nil
}

func (s *PersonService) getCached(ctx context.Context, id string) *models.Person {
	if s.cache == nil {
		return nil
	}
	key := personCacheKey(id)
	ctx, span := utils.TraceCacheGet(ctx, key)
	defer span.End()

	data, err := s.cache.Get(ctx, key).Result()
	if err != nil {
		observability.CacheHits.WithLabelValues("get_person", "miss").Inc()
		return nil
	}
	var person models.Person
	if err := json.Unmarshal([]byte(data), &person); err != nil {
		s.logger.Warn("discarding unreadable cached person", zap.String("id", id), zap.Error(err))
		return nil
	}
	observability.CacheHits.WithLabelValues("get_person", "hit").Inc()
	return &person
}

func (s *PersonService) setCached(ctx context.Context, person *models.Person) {
	if s.cache == nil {
		return
	}
	key := personCacheKey(person.ID)
	ctx, span := utils.TraceCacheSet(ctx, key, s.cacheTTL)
	defer span.End()

	data, err := json.Marshal(person)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, s.cacheTTL).Err(); err != nil {
		s.logger.Warn("failed to cache person", zap.String("id", person.ID), zap.Error(err))
	}
}

func (s *PersonService) invalidateCached(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	key := personCacheKey(id)
	ctx, span := utils.TraceCacheInvalidation(ctx, key)
	defer span.End()

	if err := s.cache.Del(ctx, key).Err(); err != nil {
		s.logger.Warn("failed to invalidate cached person", zap.String("id", id), zap.Error(err))
	}
}

// NormalizeFilter applies the listing defaults: page 1, limit 10, at most 100
func NormalizeFilter(filter models.PersonFilter) models.PersonFilter {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = DefaultPageLimit
	}
	if filter.Limit > MaxPageLimit {
		filter.Limit = MaxPageLimit
	}
	filter.Search = strings.TrimSpace(filter.Search)
	return filter
}

// List returns one page of persons
func (s *PersonService) List(ctx context.Context, filter models.PersonFilter) (resp *models.PersonListResponse, err error) {
	ctx, span := utils.TraceBusinessLogic(ctx, "list_persons")
	defer span.End()
	defer func() { s.recordOperation("list", err) }()

	filter = NormalizeFilter(filter)
	persons, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &models.PersonListResponse{
		Data:       persons,
		Pagination: models.NewPagination(total, filter.Page, filter.Limit),
	}, nil
}

// Update validates input and replaces the person with id
func (s *PersonService) Update(ctx context.Context, id string, input models.PersonInput) (person *models.Person, err error) {
	ctx, span := utils.TraceBusinessLogic(ctx, "update_person")
	defer span.End()
	defer func() { s.recordOperation("update", err) }()

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, models.ErrPersonNotFound
		}
		return nil, err
	}

	input = SanitizePersonInput(input)
	if err := s.validate(ctx, input); err != nil {
		return nil, err
	}
	if err := s.checkUnique(ctx, input, current); err != nil {
		return nil, err
	}

	person = &models.Person{
		ID:           current.ID,
		PersonInput:  input,
		TelefoneE164: utils.FormatPhoneE164(input.Telefone),
		CreatedAt:    current.CreatedAt,
		UpdatedAt:    s.now().UTC(),
	}
	if err := s.repo.Update(ctx, person); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, models.ErrPersonNotFound
		}
		return nil, err
	}

	s.invalidateCached(ctx, id)
	s.logger.Info("person updated", zap.String("id", id))
	s.auditLog(ctx, AuditActionUpdate, person)
	return person, nil
}

// Delete removes the person with id
func (s *PersonService) Delete(ctx context.Context, id string) (err error) {
	ctx, span := utils.TraceBusinessLogic(ctx, "delete_person")
	defer span.End()
	defer func() { s.recordOperation("delete", err) }()

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return models.ErrPersonNotFound
		}
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return models.ErrPersonNotFound
		}
		return err
	}

	s.invalidateCached(ctx, id)
	s.logger.Info("person deleted", zap.String("id", id))
	s.auditLog(ctx, AuditActionDelete, current)
	return nil
}
