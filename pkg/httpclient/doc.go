// Package httpclient provides the HTTP client factory used by the httpRequest
// operation, with consistent timeout, redirect and observability behavior.
//
// The package creates HTTP clients with secure defaults including:
//   - Request logging with sanitized URLs (sensitive parameters redacted)
//   - An OpenTelemetry client span per request, with trace context propagation
//   - User-Agent header injection
//   - Redirects re-validated against the allowed schemes and capped
//   - Optional blocking of private, loopback and link-local addresses
//   - TLS 1.2 minimum (TLS 1.3 preferred)
//   - Connection pooling for performance
//
// # Usage
//
// Create a client with default settings:
//
//	client, err := httpclient.New(httpclient.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	resp, err := client.Get("https://api.example.com/resource")
//
// Customize configuration:
//
//	cfg := httpclient.DefaultConfig()
//	cfg.UserAgent = "my-host/2.0"
//	cfg.BlockPrivateIPs = true
//	client, err := httpclient.New(cfg)
//
// Requests are never retried automatically. A failed request fails the step
// that issued it, and re-running is always a fresh run of the whole spec.
//
// # Observability
//
// All requests emit structured logs via log/slog:
//   - Debug level: successful requests
//   - Warn level: failed requests (4xx/5xx status, errors)
//   - Fields: method, url (sanitized), status, duration_ms, error
package httpclient
