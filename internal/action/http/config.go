package http

import (
	"time"

	"go.opentelemetry.io/otel/trace"
)

// Config holds configuration for the HTTP action.
type Config struct {
	// Timeout is the default timeout for requests (default: 30s)
	Timeout time.Duration

	// BlockPrivateIPs blocks RFC1918, link-local, localhost
	BlockPrivateIPs bool

	// MaxResponseSize limits response body size (default: 10MB)
	MaxResponseSize int64

	// MaxRedirects limits redirect following (default: 10)
	MaxRedirects int

	// UserAgent is sent when a step does not set its own.
	UserAgent string

	// TracerProvider supplies the tracer for request spans (default: global).
	TracerProvider trace.TracerProvider
}

// DefaultConfig returns a config with secure defaults.
func DefaultConfig() *Config {
	return &Config{
		Timeout:         30 * time.Second,
		BlockPrivateIPs: false,
		MaxResponseSize: 10 * 1024 * 1024, // 10MB
		MaxRedirects:    10,
		UserAgent:       "cmdspec/1.0",
	}
}
