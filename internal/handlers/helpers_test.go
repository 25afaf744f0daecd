package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/pablogoliveira/personia-hub/internal/models"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// personBody is a valid person as a browser would post it, masks included
func personBody(cpf, email string) map[string]string {
	return map[string]string{
		"nome":           "João Silva",
		"dataNascimento": "1990-05-20",
		"nomeMae":        "Maria Silva",
		"rg":             "12.345.678-9",
		"cpf":            cpf,
		"cep":            "01001-000",
		"logradouro":     "Praça da Sé",
		"numero":         "100",
		"bairro":         "Sé",
		"cidade":         "São Paulo",
		"estado":         "SP",
		"telefone":       "(11) 98765-4321",
		"email":          email,
	}
}

// performRequest serves one request; body is JSON-encoded unless it is a string
func performRequest(t *testing.T, router http.Handler, method, path string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) models.APIError {
	t.Helper()
	return decodeBody[models.APIError](t, w)
}
