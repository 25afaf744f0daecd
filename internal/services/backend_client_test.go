package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pablogoliveira/personia-hub/internal/models"
	"github.com/pablogoliveira/personia-hub/internal/utils/httpclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupBackend(t *testing.T, handler http.HandlerFunc) *BackendClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := NewBackendClient(server.URL, httpclient.New(5*time.Second), zap.NewNop())
	client.retry = httpclient.RetryConfig{MaxRetries: 1, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond, BackoffFactor: 1}
	return client
}

func TestBackendClient_CreatePerson(t *testing.T) {
	ctx := ContextWithAudit(context.Background(), AuditContext{RequestID: "req-42"})
	input := validPersonInput("52998224725", "joao@example.com")

	t.Run("created", func(t *testing.T) {
		client := setupBackend(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/v1/pessoas", r.URL.Path)
			assert.Equal(t, "req-42", r.Header.Get("X-Request-ID"))
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

			var got models.PersonInput
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			assert.Equal(t, input, got)

			w.WriteHeader(http.StatusCreated)
			require.NoError(t, json.NewEncoder(w).Encode(models.Person{ID: "abc", PersonInput: got}))
		})

		person, err := client.SubmitPerson(ctx, input)
		require.NoError(t, err)
		assert.Equal(t, "abc", person.ID)
		assert.Equal(t, input.Nome, person.Nome)
	})

	t.Run("conflict is decoded", func(t *testing.T) {
		client := setupBackend(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusConflict)
			fmt.Fprint(w, `{"status":409,"error":"Conflict","message":"CPF já cadastrado","field":"cpf","timestamp":"2024-06-15T13:00:00Z"}`)
		})

		_, err := client.CreatePerson(ctx, input)
		var apiErr *models.APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, http.StatusConflict, apiErr.Status)
		assert.Equal(t, "cpf", apiErr.Field)
		assert.Equal(t, "CPF já cadastrado", apiErr.Message)
	})

	t.Run("non json error body", func(t *testing.T) {
		client := setupBackend(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			fmt.Fprint(w, "upstream down")
		})

		_, err := client.CreatePerson(ctx, input)
		var apiErr *models.APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, http.StatusBadGateway, apiErr.Status)
		assert.Equal(t, "Bad Gateway", apiErr.ErrorCode)
		assert.Equal(t, "upstream down", apiErr.Message)
		assert.False(t, apiErr.Timestamp.IsZero())
	})

	t.Run("transport failure", func(t *testing.T) {
		client := NewBackendClient("http://127.0.0.1:1", httpclient.New(time.Second), zap.NewNop())
		_, err := client.CreatePerson(ctx, input)
		require.Error(t, err)
		var apiErr *models.APIError
		assert.False(t, errors.As(err, &apiErr))
	})
}

func TestBackendClient_ListPersons(t *testing.T) {
	client := setupBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		assert.Equal(t, "ana souza", r.URL.Query().Get("search"))
		require.NoError(t, json.NewEncoder(w).Encode(models.PersonListResponse{
			Data:       []models.Person{{ID: "1"}},
			Pagination: models.NewPagination(6, 2, 5),
		}))
	})

	resp, err := client.ListPersons(context.Background(), models.PersonFilter{Page: 2, Limit: 5, Search: "ana souza"})
	require.NoError(t, err)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, 2, resp.Pagination.TotalPages)
}

func TestBackendClient_GetRetriesTransportOnly(t *testing.T) {
	calls := 0
	client := setupBackend(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"status":404,"error":"Not Found","message":"Pessoa não encontrada"}`)
	})

	_, err := client.GetPerson(context.Background(), "missing")
	var apiErr *models.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Pessoa não encontrada", apiErr.Message)
	assert.Equal(t, 1, calls)
}

func TestBackendClient_UpdateAndDelete(t *testing.T) {
	client := setupBackend(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPut:
			assert.Equal(t, "/v1/pessoas/abc", r.URL.Path)
			require.NoError(t, json.NewEncoder(w).Encode(models.Person{ID: "abc"}))
		case http.MethodDelete:
			assert.Equal(t, "/v1/pessoas/abc", r.URL.Path)
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Errorf("unexpected method %s", r.Method)
		}
	})

	ctx := context.Background()
	person, err := client.UpdatePerson(ctx, "abc", validPersonInput("52998224725", "joao@example.com"))
	require.NoError(t, err)
	assert.Equal(t, "abc", person.ID)
	assert.NoError(t, client.DeletePerson(ctx, "abc"))
}
