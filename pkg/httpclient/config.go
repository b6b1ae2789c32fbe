package httpclient

import (
	"fmt"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// Config configures the HTTP client.
type Config struct {
	// Timeout is the client-level request timeout. Zero leaves deadlines to
	// the request context, which is how per-step timeouts are applied.
	// Must be >= 0.
	Timeout time.Duration

	// UserAgent is the User-Agent header value.
	// Required. Must be non-empty.
	UserAgent string

	// MaxRedirects caps the number of redirects followed.
	// Default: 10. Must be >= 0.
	MaxRedirects int

	// AllowedSchemes lists the URL schemes requests and redirects may use.
	// Default: http, https.
	AllowedSchemes []string

	// BlockPrivateIPs refuses connections to private, loopback, link-local
	// and cloud metadata addresses after DNS resolution.
	BlockPrivateIPs bool

	// TracerProvider supplies the tracer for request spans.
	// Default: the global provider.
	TracerProvider trace.TracerProvider
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		UserAgent:      "cmdspec/1.0",
		MaxRedirects:   10,
		AllowedSchemes: []string{"http", "https"},
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be >= 0, got %v", c.Timeout)
	}

	if c.MaxRedirects < 0 {
		return fmt.Errorf("max_redirects must be >= 0, got %d", c.MaxRedirects)
	}

	if len(c.AllowedSchemes) == 0 {
		return fmt.Errorf("allowed_schemes must list at least one scheme")
	}

	// UserAgent must be non-empty
	if c.UserAgent == "" {
		return fmt.Errorf("user_agent is required and must be non-empty")
	}

	return nil
}

func (c *Config) schemeAllowed(scheme string) bool {
	for _, s := range c.AllowedSchemes {
		if s == scheme {
			return true
		}
	}
	return false
}
