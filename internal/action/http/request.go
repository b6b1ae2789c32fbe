package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tombee/cmdspec/internal/action"
	cmderrors "github.com/tombee/cmdspec/pkg/errors"
	"github.com/tombee/cmdspec/pkg/httpclient"
)

// AllowedMethods lists the methods a step may use.
var AllowedMethods = []string{"GET", "POST", "PUT", "DELETE", "PATCH"}

// forbiddenHeaders are managed by the transport and may not be set by steps.
var forbiddenHeaders = map[string]bool{
	"Host":              true,
	"Connection":        true,
	"Transfer-Encoding": true,
}

// bodyExcerptSize bounds the response body kept on HTTPStatusError.
const bodyExcerptSize = 512

type preparedRequest struct {
	req     *http.Request
	timeout time.Duration
	logURL  string
	cancel  context.CancelFunc
}

// prepareRequest validates config and builds the request. Nothing is sent
// when it returns an error.
func (c *HTTPAction) prepareRequest(ctx context.Context, inputs map[string]any) (*preparedRequest, error) {
	rawURL, err := action.RequireString(inputs, "url")
	if err != nil {
		return nil, &RequestError{Field: "url", Reason: err.Error()}
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, &InvalidURLError{URL: rawURL, Reason: err.Error()}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, &InvalidURLError{URL: rawURL, Reason: fmt.Sprintf("scheme %q is not allowed (use http or https)", u.Scheme)}
	}
	if u.Host == "" {
		return nil, &InvalidURLError{URL: rawURL, Reason: "missing host"}
	}

	method, ok := action.String(inputs, "method")
	if !ok || method == "" {
		method = http.MethodGet
	}
	method = strings.ToUpper(method)
	if !methodAllowed(method) {
		return nil, &RequestError{Field: "method", Reason: fmt.Sprintf("%s is not one of %v", method, AllowedMethods)}
	}

	headers, err := action.StringMap(inputs, "headers")
	if err != nil {
		return nil, &RequestError{Field: "headers", Reason: err.Error()}
	}
	for name := range headers {
		if forbiddenHeaders[http.CanonicalHeaderKey(name)] {
			return nil, &RequestError{Field: "headers", Reason: fmt.Sprintf("header %s may not be set", name)}
		}
	}

	timeout, err := action.Timeout(inputs, c.config.Timeout)
	if err != nil {
		return nil, &RequestError{Field: "timeout", Reason: err.Error()}
	}

	body, jsonBody, err := encodeBody(inputs["body"])
	if err != nil {
		return nil, &RequestError{Field: "body", Reason: err.Error()}
	}

	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	req, err := http.NewRequestWithContext(reqCtx, method, u.String(), body)
	if err != nil {
		cancel()
		return nil, &InvalidURLError{URL: rawURL, Reason: err.Error()}
	}
	for name, value := range headers {
		req.Header.Set(name, value)
	}
	if jsonBody && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	return &preparedRequest{
		req:     req,
		timeout: timeout,
		logURL:  httpclient.SanitizeURL(u),
		cancel:  cancel,
	}, nil
}

// executeRequest sends the request and decodes the response.
func (c *HTTPAction) executeRequest(parent context.Context, p *preparedRequest) (any, error) {
	resp, err := c.client.Do(p.req)
	if err != nil {
		return nil, c.classifyError(parent, p, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.config.MaxResponseSize+1))
	if err != nil {
		return nil, c.classifyError(parent, p, err)
	}
	if int64(len(data)) > c.config.MaxResponseSize {
		return nil, &NetworkError{
			URL:    p.logURL,
			Reason: fmt.Sprintf("response body exceeds %d bytes", c.config.MaxResponseSize),
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		excerpt := data
		if len(excerpt) > bodyExcerptSize {
			excerpt = excerpt[:bodyExcerptSize]
		}
		return nil, &cmderrors.HTTPStatusError{
			Method:     p.req.Method,
			URL:        p.logURL,
			StatusCode: resp.StatusCode,
			Body:       string(excerpt),
		}
	}

	if isJSON(resp.Header.Get("Content-Type")) {
		if len(bytes.TrimSpace(data)) == 0 {
			return nil, nil
		}
		var parsed any
		if err := json.Unmarshal(data, &parsed); err != nil {
			return nil, &NetworkError{URL: p.logURL, Reason: "invalid JSON response", Cause: err}
		}
		return parsed, nil
	}
	return string(data), nil
}

func (c *HTTPAction) classifyError(parent context.Context, p *preparedRequest, err error) error {
	// A cancelled parent is the caller's doing, not a step timeout.
	if parent.Err() != nil {
		return parent.Err()
	}
	if errors.Is(err, context.DeadlineExceeded) || p.req.Context().Err() == context.DeadlineExceeded {
		return &cmderrors.TimeoutError{
			Operation: p.req.Method + " " + p.logURL,
			Duration:  p.timeout,
			Cause:     err,
		}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return &NetworkError{URL: p.logURL, Reason: urlErr.Err.Error(), Cause: err}
	}
	return &NetworkError{URL: p.logURL, Reason: err.Error(), Cause: err}
}

// encodeBody returns the request body. Strings are sent as-is; any other
// non-nil value is JSON encoded.
func encodeBody(v any) (io.Reader, bool, error) {
	switch b := v.(type) {
	case nil:
		return nil, false, nil
	case string:
		if b == "" {
			return nil, false, nil
		}
		return strings.NewReader(b), false, nil
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, false, err
		}
		return bytes.NewReader(data), true, nil
	}
}

func isJSON(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

func methodAllowed(method string) bool {
	for _, allowed := range AllowedMethods {
		if method == allowed {
			return true
		}
	}
	return false
}
