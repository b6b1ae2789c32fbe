package httpclient

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
)

// ErrTooManyRedirects is returned when a response chain exceeds MaxRedirects.
var ErrTooManyRedirects = fmt.Errorf("too many redirects")

// New creates a new HTTP client with the given configuration.
// The client includes:
//   - Request logging with sanitized URLs and a span per request
//   - User-Agent header injection
//   - Redirect validation against AllowedSchemes, capped at MaxRedirects
//   - Optional private address blocking at dial time
//   - TLS 1.2 minimum, TLS 1.3 preferred
//   - Connection pooling with sensible defaults
//
// Returns an error if the configuration is invalid.
func New(cfg Config) (*http.Client, error) {
	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	dial := dialer.DialContext
	if cfg.BlockPrivateIPs {
		dial = secureDialContext(dialer)
	}

	// Create base HTTP transport with TLS and connection pooling
	baseTransport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,

		// TLS configuration: 1.2 minimum, 1.3 preferred
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
			MaxVersion: tls.VersionTLS13,
		},

		// Connection pooling settings
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,

		DialContext:           dial,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: cfg.Timeout,
		ExpectContinueTimeout: 1 * time.Second,
	}
	if cfg.BlockPrivateIPs {
		// A proxy would dial on our behalf and bypass the address check.
		baseTransport.Proxy = nil
	}

	tp := cfg.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}

	return &http.Client{
		Transport:     newLoggingTransport(baseTransport, cfg.UserAgent, tp),
		Timeout:       cfg.Timeout,
		CheckRedirect: checkRedirect(cfg),
	}, nil
}

func checkRedirect(cfg Config) func(req *http.Request, via []*http.Request) error {
	return func(req *http.Request, via []*http.Request) error {
		if len(via) > cfg.MaxRedirects {
			return fmt.Errorf("%w: stopped after %d", ErrTooManyRedirects, cfg.MaxRedirects)
		}
		if !cfg.schemeAllowed(req.URL.Scheme) {
			return fmt.Errorf("redirect to %s refused: scheme %q is not allowed", SanitizeURL(req.URL), req.URL.Scheme)
		}
		return nil
	}
}
