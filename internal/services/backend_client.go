package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pablogoliveira/personia-hub/internal/models"
	"github.com/pablogoliveira/personia-hub/internal/utils"
	"github.com/pablogoliveira/personia-hub/internal/utils/httpclient"
	"go.uber.org/zap"
)

const personsPath = "/v1/pessoas"

// BackendClient calls the person API. Error responses are returned as
// *models.APIError with the backend's status and body; transport failures
// are returned wrapped.
type BackendClient struct {
	baseURL string
	client  *http.Client
	retry   httpclient.RetryConfig
	logger  *zap.Logger
}

// NewBackendClient creates a client for the API at baseURL
func NewBackendClient(baseURL string, client *http.Client, logger *zap.Logger) *BackendClient {
	return &BackendClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		retry:   httpclient.DefaultRetryConfig(),
		logger:  logger,
	}
}

// decodeAPIError builds an APIError from an error response, filling the
// gaps when the body is not an APIError document
func decodeAPIError(resp *http.Response) *models.APIError {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))

	apiErr := &models.APIError{}
	if err := json.Unmarshal(data, apiErr); err != nil {
		apiErr = &models.APIError{Message: strings.TrimSpace(string(data))}
	}
	if apiErr.Status == 0 {
		apiErr.Status = resp.StatusCode
	}
	if apiErr.ErrorCode == "" {
		apiErr.ErrorCode = http.StatusText(resp.StatusCode)
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	if apiErr.Timestamp.IsZero() {
		apiErr.Timestamp = time.Now().UTC()
	}
	return apiErr
}

// do sends one request and decodes a 2xx body into out when out is not nil
func (c *BackendClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	ctx, span := utils.TraceExternalService(ctx, "backend_api", method+" "+personsPath)
	defer span.End()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if requestID := AuditFromContext(ctx).RequestID; requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		utils.RecordErrorInSpan(span, err, map[string]interface{}{"method": method})
		return fmt.Errorf("backend request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := decodeAPIError(resp)
		c.logger.Debug("backend returned error",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", apiErr.Status),
			zap.String("message", apiErr.Message))
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode backend response: %w", err)
	}
	return nil
}

// doIdempotent retries transport failures
func (c *BackendClient) doIdempotent(ctx context.Context, method, path string, out interface{}) error {
	return httpclient.Do(ctx, c.retry, c.logger, "backend "+method, func(ctx context.Context) error {
		return c.do(ctx, method, path, nil, out)
	})
}

// CreatePerson posts a new person
func (c *BackendClient) CreatePerson(ctx context.Context, input models.PersonInput) (*models.Person, error) {
	var person models.Person
	if err := c.do(ctx, http.MethodPost, personsPath, input, &person); err != nil {
		return nil, err
	}
	return &person, nil
}

// SubmitPerson creates the person described by a completed form
func (c *BackendClient) SubmitPerson(ctx context.Context, input models.PersonInput) (*models.Person, error) {
	return c.CreatePerson(ctx, input)
}

// GetPerson fetches one person
func (c *BackendClient) GetPerson(ctx context.Context, id string) (*models.Person, error) {
	var person models.Person
	if err := c.doIdempotent(ctx, http.MethodGet, personsPath+"/"+url.PathEscape(id), &person); err != nil {
		return nil, err
	}
	return &person, nil
}

// ListPersons fetches one page of persons
func (c *BackendClient) ListPersons(ctx context.Context, filter models.PersonFilter) (*models.PersonListResponse, error) {
	query := url.Values{}
	if filter.Page > 0 {
		query.Set("page", strconv.Itoa(filter.Page))
	}
	if filter.Limit > 0 {
		query.Set("limit", strconv.Itoa(filter.Limit))
	}
	if filter.Search != "" {
		query.Set("search", filter.Search)
	}
	path := personsPath
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var resp models.PersonListResponse
	if err := c.doIdempotent(ctx, http.MethodGet, path, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdatePerson replaces a person
func (c *BackendClient) UpdatePerson(ctx context.Context, id string, input models.PersonInput) (*models.Person, error) {
	var person models.Person
	if err := c.do(ctx, http.MethodPut, personsPath+"/"+url.PathEscape(id), input, &person); err != nil {
		return nil, err
	}
	return &person, nil
}

// DeletePerson removes a person
func (c *BackendClient) DeletePerson(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, personsPath+"/"+url.PathEscape(id), nil, nil)
}
