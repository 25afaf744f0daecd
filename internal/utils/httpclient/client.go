// Package httpclient builds the traced HTTP clients used for outbound calls
// (ViaCEP, BFF to API, CLI to BFF) and the retry loop shared by them.
package httpclient

import (
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// DefaultTimeout applies when New is called with a non-positive timeout
const DefaultTimeout = 30 * time.Second

// New returns an HTTP client whose transport propagates trace context and
// records a client span per request
func New(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(newTransport()),
	}
}

func newTransport() *http.Transport {
	return &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}
}
