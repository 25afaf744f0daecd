package services

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pablogoliveira/personia-hub/internal/models"
	"github.com/pablogoliveira/personia-hub/internal/testutil"
	"github.com/pablogoliveira/personia-hub/internal/utils/httpclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const viaCEPSe = `{
  "cep": "01001-000",
  "logradouro": "Praça da Sé",
  "complemento": "lado ímpar",
  "bairro": "Sé",
  "localidade": "São Paulo",
  "uf": "SP",
  "ibge": "3550308"
}`

func fastCEPRetry() httpclient.RetryConfig {
	return httpclient.RetryConfig{MaxRetries: 2, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond, BackoffFactor: 2}
}

// setupViaCEP starts a fake ViaCEP answering with handler
func setupViaCEP(t *testing.T, handler http.HandlerFunc, opts ...CEPServiceOption) (*CEPService, *int32) {
	t.Helper()
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	opts = append([]CEPServiceOption{WithCEPRetry(fastCEPRetry())}, opts...)
	return NewCEPService(server.URL+"/", httpclient.New(5*time.Second), zap.NewNop(), opts...), &calls
}

func TestCEPService_LookupAddress(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		service, calls := setupViaCEP(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/ws/01001000/json/", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, viaCEPSe)
		})

		result, err := service.LookupAddress(ctx, "01001-000")
		require.NoError(t, err)
		assert.Equal(t, &models.AddressLookupResult{
			CEP:        "01001000",
			Logradouro: "Praça da Sé",
			Bairro:     "Sé",
			Cidade:     "São Paulo",
			Estado:     "SP",
		}, result)
		assert.Equal(t, int32(1), atomic.LoadInt32(calls))
	})

	t.Run("erro flag as bool", func(t *testing.T) {
		service, _ := setupViaCEP(t, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"erro": true}`)
		})
		_, err := service.LookupAddress(ctx, "99999999")
		assert.ErrorIs(t, err, models.ErrCEPNotFound)
	})

	t.Run("erro flag as string", func(t *testing.T) {
		service, _ := setupViaCEP(t, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"erro": "true"}`)
		})
		_, err := service.LookupAddress(ctx, "99999999")
		assert.ErrorIs(t, err, models.ErrCEPNotFound)
	})

	t.Run("short cep is rejected without a request", func(t *testing.T) {
		service, calls := setupViaCEP(t, func(w http.ResponseWriter, r *http.Request) {})
		_, err := service.LookupAddress(ctx, "0100")
		assert.ErrorIs(t, err, models.ErrInvalidCEP)
		assert.Zero(t, atomic.LoadInt32(calls))
	})

	t.Run("bad request maps to invalid", func(t *testing.T) {
		service, calls := setupViaCEP(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
		})
		_, err := service.LookupAddress(ctx, "00000000")
		assert.ErrorIs(t, err, models.ErrInvalidCEP)
		assert.Equal(t, int32(1), atomic.LoadInt32(calls))
	})

	t.Run("retries server errors", func(t *testing.T) {
		var attempts int32
		service, calls := setupViaCEP(t, func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt32(&attempts, 1) < 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			fmt.Fprint(w, viaCEPSe)
		})
		result, err := service.LookupAddress(ctx, "01001000")
		require.NoError(t, err)
		assert.Equal(t, "São Paulo", result.Cidade)
		assert.Equal(t, int32(3), atomic.LoadInt32(calls))
	})

	t.Run("gives up after retries", func(t *testing.T) {
		service, calls := setupViaCEP(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})
		_, err := service.LookupAddress(ctx, "01001000")
		require.Error(t, err)
		assert.NotErrorIs(t, err, models.ErrCEPNotFound)
		assert.Equal(t, int32(3), atomic.LoadInt32(calls))
	})
}

func TestCEPService_Lookup(t *testing.T) {
	ctx := context.Background()

	service, _ := setupViaCEP(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/ws/99999999/json/" {
			fmt.Fprint(w, `{"erro": true}`)
			return
		}
		fmt.Fprint(w, viaCEPSe)
	})

	result, err := service.Lookup(ctx, "01001000")
	require.NoError(t, err)
	assert.Equal(t, "Praça da Sé", result.Logradouro)

	result, err = service.Lookup(ctx, "99999999")
	assert.NoError(t, err)
	assert.Nil(t, result)

	result, err = service.Lookup(ctx, "123")
	assert.NoError(t, err)
	assert.Nil(t, result)
}

func TestCEPService_Cache(t *testing.T) {
	ctx := context.Background()
	cache := newMemoryCache()

	service, calls := setupViaCEP(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, viaCEPSe)
	}, WithCEPCache(cache, 24*time.Hour))

	first, err := service.LookupAddress(ctx, "01001000")
	require.NoError(t, err)
	assert.True(t, cache.has("address:cep:01001000"))
	assert.Equal(t, 24*time.Hour, cache.ttls["address:cep:01001000"])

	second, err := service.LookupAddress(ctx, "01001-000")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}

func TestCEPService_RedisCacheIntegration(t *testing.T) {
	client := testutil.StartRedis(t)
	ctx := context.Background()

	service, calls := setupViaCEP(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, viaCEPSe)
	}, WithCEPCache(client, time.Hour))

	_, err := service.LookupAddress(ctx, "01001000")
	require.NoError(t, err)

	ttl, err := client.TTL(ctx, "address:cep:01001000").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 59*time.Minute)

	result, err := service.LookupAddress(ctx, "01001000")
	require.NoError(t, err)
	assert.Equal(t, "SP", result.Estado)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}
