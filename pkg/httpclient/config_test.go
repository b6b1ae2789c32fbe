package httpclient

import (
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Timeout != 0 {
		t.Errorf("expected no client timeout, got %v", cfg.Timeout)
	}

	if cfg.MaxRedirects != 10 {
		t.Errorf("expected max redirects 10, got %d", cfg.MaxRedirects)
	}

	if cfg.UserAgent == "" {
		t.Error("expected non-empty user agent")
	}

	if cfg.BlockPrivateIPs {
		t.Error("expected BlockPrivateIPs to be false by default")
	}

	if !cfg.schemeAllowed("https") || !cfg.schemeAllowed("http") || cfg.schemeAllowed("file") {
		t.Errorf("unexpected default schemes %v", cfg.AllowedSchemes)
	}

	// Should be valid
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		cfg       Config
		expectErr bool
		errText   string
	}{
		{
			name: "valid config",
			cfg: Config{
				Timeout:        10 * time.Second,
				MaxRedirects:   3,
				AllowedSchemes: []string{"https"},
				UserAgent:      "test-agent/1.0",
			},
			expectErr: false,
		},
		{
			name: "negative timeout",
			cfg: Config{
				Timeout:        -1 * time.Second,
				AllowedSchemes: []string{"https"},
				UserAgent:      "test-agent/1.0",
			},
			expectErr: true,
			errText:   "timeout must be >= 0",
		},
		{
			name: "negative redirects",
			cfg: Config{
				MaxRedirects:   -1,
				AllowedSchemes: []string{"https"},
				UserAgent:      "test-agent/1.0",
			},
			expectErr: true,
			errText:   "max_redirects must be >= 0",
		},
		{
			name: "no schemes",
			cfg: Config{
				UserAgent: "test-agent/1.0",
			},
			expectErr: true,
			errText:   "allowed_schemes",
		},
		{
			name: "empty user agent",
			cfg: Config{
				AllowedSchemes: []string{"https"},
			},
			expectErr: true,
			errText:   "user_agent is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()

			if tt.expectErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if tt.errText != "" && !strings.Contains(err.Error(), tt.errText) {
					t.Errorf("expected error containing %q, got %q", tt.errText, err.Error())
				}
			} else if err != nil {
				t.Errorf("expected no error, got %v", err)
			}
		})
	}
}
