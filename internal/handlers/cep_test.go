package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/pablogoliveira/personia-hub/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type resolverFunc func(ctx context.Context, cep string) (*models.AddressLookupResult, error)

func (f resolverFunc) LookupAddress(ctx context.Context, cep string) (*models.AddressLookupResult, error) {
	return f(ctx, cep)
}

func TestCEPHandler_LookupCEP(t *testing.T) {
	resolver := resolverFunc(func(ctx context.Context, cep string) (*models.AddressLookupResult, error) {
		switch cep {
		case "01001-000":
			return &models.AddressLookupResult{CEP: "01001000", Logradouro: "Praça da Sé", Bairro: "Sé", Cidade: "São Paulo", Estado: "SP"}, nil
		case "123":
			return nil, models.ErrInvalidCEP
		case "99999999":
			return nil, models.ErrCEPNotFound
		default:
			return nil, errors.New("viacep unavailable")
		}
	})

	router := gin.New()
	router.GET("/v1/cep/:cep", NewCEPHandler(resolver, zap.NewNop()).LookupCEP)

	tests := []struct {
		name    string
		cep     string
		status  int
		message string
	}{
		{"found", "01001-000", http.StatusOK, ""},
		{"invalid", "123", http.StatusBadRequest, "CEP inválido"},
		{"not found", "99999999", http.StatusNotFound, "CEP não encontrado"},
		{"upstream failure", "22222222", http.StatusBadGateway, MsgCEPFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performRequest(t, router, http.MethodGet, "/v1/cep/"+tt.cep, nil)
			require.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				result := decodeBody[models.AddressLookupResult](t, w)
				assert.Equal(t, "São Paulo", result.Cidade)
				assert.Equal(t, "SP", result.Estado)
				return
			}
			assert.Equal(t, tt.message, decodeError(t, w).Message)
		})
	}
}
