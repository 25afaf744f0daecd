package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pablogoliveira/personia-hub/internal/models"
	"github.com/pablogoliveira/personia-hub/internal/observability"
	"github.com/pablogoliveira/personia-hub/internal/utils"
	"github.com/pablogoliveira/personia-hub/internal/utils/httpclient"
	"go.uber.org/zap"
)

// viaCEPResponse is the ViaCEP payload. erro is a bool in current responses
// and the string "true" in older ones.
type viaCEPResponse struct {
	CEP        string          `json:"cep"`
	Logradouro string          `json:"logradouro"`
	Bairro     string          `json:"bairro"`
	Localidade string          `json:"localidade"`
	UF         string          `json:"uf"`
	Erro       json.RawMessage `json:"erro,omitempty"`
}

func (r viaCEPResponse) notFound() bool {
	switch strings.Trim(strings.ToLower(string(r.Erro)), `"`) {
	case "true":
		return true
	default:
		return false
	}
}

// CEPService resolves postal codes through ViaCEP with a Redis cache in front
type CEPService struct {
	baseURL  string
	client   *http.Client
	cache    Cache
	cacheTTL time.Duration
	retry    httpclient.RetryConfig
	logger   *zap.Logger
}

// CEPServiceOption configures a CEPService
type CEPServiceOption func(*CEPService)

// WithCEPCache caches found addresses under address:cep:<digits>
func WithCEPCache(cache Cache, ttl time.Duration) CEPServiceOption {
	return func(s *CEPService) {
		s.cache = cache
		s.cacheTTL = ttl
	}
}

// WithCEPRetry overrides the retry policy
func WithCEPRetry(cfg httpclient.RetryConfig) CEPServiceOption {
	return func(s *CEPService) { s.retry = cfg }
}

// NewCEPService creates a lookup service against baseURL
func NewCEPService(baseURL string, client *http.Client, logger *zap.Logger, opts ...CEPServiceOption) *CEPService {
	s := &CEPService{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		retry:   httpclient.DefaultRetryConfig(),
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func cepCacheKey(cep string) string {
	return fmt.Sprintf("address:cep:%s", cep)
}

// LookupAddress returns the address for cep. It fails with
// models.ErrInvalidCEP when cep does not have 8 digits and with
// models.ErrCEPNotFound when ViaCEP knows no such CEP.
func (s *CEPService) LookupAddress(ctx context.Context, cep string) (*models.AddressLookupResult, error) {
	ctx, span := utils.TraceBusinessLogic(ctx, "cep_lookup")
	defer span.End()

	digits := utils.OnlyDigits(cep)
	if len(digits) != 8 {
		observability.CEPLookups.WithLabelValues("invalid").Inc()
		return nil, models.ErrInvalidCEP
	}

	if cached := s.getCached(ctx, digits); cached != nil {
		observability.CEPLookups.WithLabelValues("cache_hit").Inc()
		return cached, nil
	}

	var body viaCEPResponse
	err := httpclient.Do(ctx, s.retry, s.logger, "viacep_lookup", func(ctx context.Context) error {
		var err error
		body, err = s.fetch(ctx, digits)
		return err
	})
	if err != nil {
		var statusErr *httpclient.StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusBadRequest {
			observability.CEPLookups.WithLabelValues("invalid").Inc()
			return nil, models.ErrInvalidCEP
		}
		observability.CEPLookups.WithLabelValues("error").Inc()
		utils.RecordErrorInSpan(span, err, map[string]interface{}{"cep": digits})
		return nil, fmt.Errorf("failed to look up cep: %w", err)
	}

	if body.notFound() {
		observability.CEPLookups.WithLabelValues("not_found").Inc()
		return nil, models.ErrCEPNotFound
	}

	result := &models.AddressLookupResult{
		CEP:        digits,
		Logradouro: body.Logradouro,
		Bairro:     body.Bairro,
		Cidade:     body.Localidade,
		Estado:     body.UF,
	}
	observability.CEPLookups.WithLabelValues("found").Inc()
	s.setCached(ctx, digits, result)
	return result, nil
}

// Lookup resolves an 8-digit CEP for the registration form. Unknown or
// malformed CEPs yield (nil, nil).
func (s *CEPService) Lookup(ctx context.Context, cep string) (*models.AddressLookupResult, error) {
	result, err := s.LookupAddress(ctx, cep)
	if errors.Is(err, models.ErrCEPNotFound) || errors.Is(err, models.ErrInvalidCEP) {
		return nil, nil
	}
	return result, err
}

func (s *CEPService) fetch(ctx context.Context, cep string) (viaCEPResponse, error) {
	ctx, span := utils.TraceExternalService(ctx, "viacep", "get_cep")
	defer span.End()

	var body viaCEPResponse
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/ws/%s/json/", s.baseURL, cep), nil)
	if err != nil {
		return body, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return body, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return body, &httpclient.StatusError{StatusCode: resp.StatusCode, Body: string(data)}
	}

	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return body, fmt.Errorf("failed to decode viacep response: %w", err)
	}
	return body, nil
}

func (s *CEPService) getCached(ctx context.Context, cep string) *models.AddressLookupResult {
	if s.cache == nil {
		return nil
	}
	key := cepCacheKey(cep)
	ctx, span := utils.TraceCacheGet(ctx, key)
	defer span.End()

	data, err := s.cache.Get(ctx, key).Result()
	if err != nil {
		observability.CacheHits.WithLabelValues("get_cep", "miss").Inc()
		return nil
	}
	var result models.AddressLookupResult
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		s.logger.Warn("discarding unreadable cached address", zap.String("cep", cep), zap.Error(err))
		return nil
	}
	observability.CacheHits.WithLabelValues("get_cep", "hit").Inc()
	return &result
}

func (s *CEPService) setCached(ctx context.Context, cep string, result *models.AddressLookupResult) {
	if s.cache == nil {
		return
	}
	key := cepCacheKey(cep)
	ctx, span := utils.TraceCacheSet(ctx, key, s.cacheTTL)
	defer span.End()

	data, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, s.cacheTTL).Err(); err != nil {
		s.logger.Warn("failed to cache address", zap.String("cep", cep), zap.Error(err))
	}
}
