package httpclient

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// RetryConfig defines retry behavior for outbound requests
type RetryConfig struct {
	MaxRetries    int
	BaseDelay     time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// DefaultRetryConfig returns the retry policy used for ViaCEP and the backend API
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:    2,
		BaseDelay:     200 * time.Millisecond,
		MaxDelay:      2 * time.Second,
		BackoffFactor: 2.0,
	}
}

// delay returns the wait before the given retry attempt (1-based)
func (c RetryConfig) delay(attempt int) time.Duration {
	d := time.Duration(float64(c.BaseDelay) * math.Pow(c.BackoffFactor, float64(attempt-1)))
	if c.MaxDelay > 0 && d > c.MaxDelay {
		d = c.MaxDelay
	}
	return d
}

// StatusError is returned for responses whose status code the caller did not expect
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// IsRetryable reports whether err is a transport failure or a 5xx response.
// Context cancellation is never retried.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode >= http.StatusInternalServerError
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

// Do runs fn until it succeeds, fails with a non-retryable error or the
// retries are exhausted, backing off exponentially between attempts
func Do(ctx context.Context, cfg RetryConfig, logger *zap.Logger, operation string, fn func(ctx context.Context) error) error {
	var lastErr error

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := cfg.delay(attempt)
			logger.Debug("retrying operation",
				zap.String("operation", operation),
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay))

			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			if attempt > 0 {
				logger.Info("operation succeeded after retry",
					zap.String("operation", operation),
					zap.Int("attempts", attempt+1))
			}
			return nil
		}

		if !IsRetryable(lastErr) {
			return lastErr
		}

		logger.Warn("operation failed, will retry",
			zap.String("operation", operation),
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", cfg.MaxRetries),
			zap.Error(lastErr))
	}

	logger.Error("operation failed after all retries",
		zap.String("operation", operation),
		zap.Int("total_attempts", cfg.MaxRetries+1),
		zap.Error(lastErr))

	return fmt.Errorf("operation %s failed after %d attempts: %w", operation, cfg.MaxRetries+1, lastErr)
}
