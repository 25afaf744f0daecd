package httpclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func fastRetry() RetryConfig {
	return RetryConfig{MaxRetries: 2, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond, BackoffFactor: 2}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil", nil, false},
		{"canceled", context.Canceled, false},
		{"deadline", context.DeadlineExceeded, false},
		{"5xx", &StatusError{StatusCode: http.StatusBadGateway}, true},
		{"4xx", &StatusError{StatusCode: http.StatusNotFound}, false},
		{"transport", &url.Error{Op: "Get", URL: "http://x", Err: errors.New("connection refused")}, true},
		{"plain", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsRetryable(tt.err))
		})
	}
}

func TestRetryConfig_Delay(t *testing.T) {
	cfg := RetryConfig{BaseDelay: 100 * time.Millisecond, MaxDelay: 300 * time.Millisecond, BackoffFactor: 2}
	assert.Equal(t, 100*time.Millisecond, cfg.delay(1))
	assert.Equal(t, 200*time.Millisecond, cfg.delay(2))
	assert.Equal(t, 300*time.Millisecond, cfg.delay(3))
}

func TestDo(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()

	t.Run("succeeds after retryable failures", func(t *testing.T) {
		calls := 0
		err := Do(ctx, fastRetry(), logger, "test", func(context.Context) error {
			calls++
			if calls < 3 {
				return &StatusError{StatusCode: http.StatusServiceUnavailable}
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("stops on non-retryable error", func(t *testing.T) {
		calls := 0
		notFound := &StatusError{StatusCode: http.StatusNotFound}
		err := Do(ctx, fastRetry(), logger, "test", func(context.Context) error {
			calls++
			return notFound
		})
		assert.Same(t, notFound, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("wraps the last error when exhausted", func(t *testing.T) {
		calls := 0
		err := Do(ctx, fastRetry(), logger, "test", func(context.Context) error {
			calls++
			return &StatusError{StatusCode: http.StatusInternalServerError}
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed after 3 attempts")
		var statusErr *StatusError
		assert.True(t, errors.As(err, &statusErr))
		assert.Equal(t, 3, calls)
	})

	t.Run("honours context cancellation between attempts", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cfg := fastRetry()
		cfg.BaseDelay = time.Hour
		cfg.MaxDelay = time.Hour

		err := Do(cancelled, cfg, logger, "test", func(context.Context) error {
			cancel()
			return &StatusError{StatusCode: http.StatusBadGateway}
		})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestNew(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := New(0)
	assert.Equal(t, DefaultTimeout, client.Timeout)

	resp, err := client.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}
