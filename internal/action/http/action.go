// Package http implements the httpRequest operation.
package http

import (
	"context"
	"net/http"

	"github.com/tombee/cmdspec/pkg/httpclient"
)

// HTTPAction performs HTTP requests described by step config.
type HTTPAction struct {
	config *Config
	client *http.Client
}

// New creates a new HTTP action instance.
func New(config *Config) (*HTTPAction, error) {
	if config == nil {
		config = DefaultConfig()
	}

	defaults := DefaultConfig()
	if config.Timeout == 0 {
		config.Timeout = defaults.Timeout
	}
	if config.MaxResponseSize == 0 {
		config.MaxResponseSize = defaults.MaxResponseSize
	}
	if config.MaxRedirects == 0 {
		config.MaxRedirects = defaults.MaxRedirects
	}
	if config.UserAgent == "" {
		config.UserAgent = defaults.UserAgent
	}

	clientCfg := httpclient.DefaultConfig()
	clientCfg.UserAgent = config.UserAgent
	clientCfg.MaxRedirects = config.MaxRedirects
	clientCfg.BlockPrivateIPs = config.BlockPrivateIPs
	clientCfg.TracerProvider = config.TracerProvider

	client, err := httpclient.New(clientCfg)
	if err != nil {
		return nil, err
	}

	return &HTTPAction{config: config, client: client}, nil
}

// Name returns the operation type handled.
func (c *HTTPAction) Name() string {
	return "httpRequest"
}

// Execute sends the request described by inputs and returns the decoded
// response body: parsed JSON for JSON content types, otherwise text.
func (c *HTTPAction) Execute(ctx context.Context, inputs map[string]any) (any, error) {
	prepared, err := c.prepareRequest(ctx, inputs)
	if err != nil {
		return nil, err
	}
	defer prepared.cancel()

	return c.executeRequest(ctx, prepared)
}
