package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cmderrors "github.com/tombee/cmdspec/pkg/errors"
)

func newAction(t *testing.T, cfg *Config) *HTTPAction {
	t.Helper()
	a, err := New(cfg)
	require.NoError(t, err)
	return a
}

func TestNew_Defaults(t *testing.T) {
	a := newAction(t, &Config{})
	assert.Equal(t, 30*time.Second, a.config.Timeout)
	assert.Equal(t, int64(10*1024*1024), a.config.MaxResponseSize)
	assert.Equal(t, 10, a.config.MaxRedirects)
	assert.Equal(t, "httpRequest", a.Name())
}

func TestExecute_JSONResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, "token abc", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = io.WriteString(w, `[{"name":"cmdspec","stars":42}]`)
	}))
	defer server.Close()

	a := newAction(t, nil)
	got, err := a.Execute(context.Background(), map[string]any{
		"url":     server.URL + "/repos",
		"method":  "GET",
		"headers": map[string]any{"Authorization": "token abc"},
	})
	require.NoError(t, err)
	assert.Equal(t, []any{map[string]any{"name": "cmdspec", "stars": float64(42)}}, got)
}

func TestExecute_VendorJSONAndText(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		want        any
	}{
		{name: "vendor json", contentType: "application/vnd.github+json", body: `{"ok":true}`, want: map[string]any{"ok": true}},
		{name: "plain text", contentType: "text/plain", body: "hello", want: "hello"},
		{name: "no content type", contentType: "", body: `{"ok":true}`, want: `{"ok":true}`},
		{name: "empty json", contentType: "application/json", body: "", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.contentType != "" {
					w.Header().Set("Content-Type", tt.contentType)
				} else {
					w.Header()["Content-Type"] = nil
				}
				_, _ = io.WriteString(w, tt.body)
			}))
			defer server.Close()

			got, err := newAction(t, nil).Execute(context.Background(), map[string]any{"url": server.URL, "method": "GET"})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExecute_JSONBody(t *testing.T) {
	var gotBody map[string]any
	var gotType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	_, err := newAction(t, nil).Execute(context.Background(), map[string]any{
		"url":    server.URL,
		"method": "post",
		"body":   map[string]any{"title": "hello"},
	})
	require.NoError(t, err)
	assert.Equal(t, "application/json", gotType)
	assert.Equal(t, map[string]any{"title": "hello"}, gotBody)
}

func TestExecute_StringBodySentAsIs(t *testing.T) {
	var gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		gotBody = string(data)
	}))
	defer server.Close()

	_, err := newAction(t, nil).Execute(context.Background(), map[string]any{
		"url":     server.URL,
		"method":  "PUT",
		"body":    "a=1&b=2",
		"headers": map[string]any{"Content-Type": "application/x-www-form-urlencoded"},
	})
	require.NoError(t, err)
	assert.Equal(t, "a=1&b=2", gotBody)
}

func TestExecute_RejectedBeforeSending(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer server.Close()

	tests := []struct {
		name    string
		inputs  map[string]any
		wantErr any
	}{
		{name: "file scheme", inputs: map[string]any{"url": "file:///etc/passwd", "method": "GET"}, wantErr: &InvalidURLError{}},
		{name: "ftp scheme", inputs: map[string]any{"url": "ftp://example.com/x", "method": "GET"}, wantErr: &InvalidURLError{}},
		{name: "javascript", inputs: map[string]any{"url": "javascript:alert(1)", "method": "GET"}, wantErr: &InvalidURLError{}},
		{name: "missing url", inputs: map[string]any{"method": "GET"}, wantErr: &RequestError{}},
		{name: "bad method", inputs: map[string]any{"url": server.URL, "method": "TRACE"}, wantErr: &RequestError{}},
		{name: "host header", inputs: map[string]any{"url": server.URL, "method": "GET", "headers": map[string]any{"host": "evil"}}, wantErr: &RequestError{}},
		{name: "transfer encoding", inputs: map[string]any{"url": server.URL, "method": "GET", "headers": map[string]any{"Transfer-Encoding": "chunked"}}, wantErr: &RequestError{}},
		{name: "non-string header", inputs: map[string]any{"url": server.URL, "method": "GET", "headers": map[string]any{"X-Count": 1.0}}, wantErr: &RequestError{}},
		{name: "bad timeout", inputs: map[string]any{"url": server.URL, "method": "GET", "timeout": -5.0}, wantErr: &RequestError{}},
	}

	a := newAction(t, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.Execute(context.Background(), tt.inputs)
			require.Error(t, err)
			switch tt.wantErr.(type) {
			case *InvalidURLError:
				var target *InvalidURLError
				assert.ErrorAs(t, err, &target)
			case *RequestError:
				var target *RequestError
				assert.ErrorAs(t, err, &target)
			}
		})
	}
	assert.Zero(t, hits.Load(), "no request may be sent for rejected config")
}

func TestExecute_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, strings.Repeat("x", 2000))
	}))
	defer server.Close()

	_, err := newAction(t, nil).Execute(context.Background(), map[string]any{"url": server.URL + "/missing?token=secret", "method": "GET"})

	var statusErr *cmderrors.HTTPStatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	assert.Equal(t, "GET", statusErr.Method)
	assert.Len(t, statusErr.Body, bodyExcerptSize)
	assert.NotContains(t, statusErr.URL, "secret")
}

// TestExecute_TimeoutAgainstUnresponsiveServer verifies the step timeout
// bounds a request to a server that never answers.
func TestExecute_TimeoutAgainstUnresponsiveServer(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	start := time.Now()
	_, err := newAction(t, nil).Execute(context.Background(), map[string]any{
		"url":     server.URL,
		"method":  "GET",
		"timeout": float64(100),
	})
	elapsed := time.Since(start)

	var timeoutErr *cmderrors.TimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.Equal(t, 100*time.Millisecond, timeoutErr.Duration)
	assert.Contains(t, timeoutErr.Operation, "GET ")
	assert.Less(t, elapsed, 2*time.Second)
}

func TestExecute_DefaultTimeoutFromConfig(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	a := newAction(t, &Config{Timeout: 50 * time.Millisecond})
	_, err := a.Execute(context.Background(), map[string]any{"url": server.URL, "method": "GET"})

	var timeoutErr *cmderrors.TimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.Equal(t, 50*time.Millisecond, timeoutErr.Duration)
}

func TestExecute_ParentCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newAction(t, nil).Execute(ctx, map[string]any{"url": server.URL, "method": "GET"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExecute_ResponseTooLarge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, strings.Repeat("a", 2048))
	}))
	defer server.Close()

	a := newAction(t, &Config{MaxResponseSize: 1024})
	_, err := a.Execute(context.Background(), map[string]any{"url": server.URL, "method": "GET"})

	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Contains(t, netErr.Reason, "exceeds 1024 bytes")
}

func TestExecute_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := newAction(t, nil).Execute(context.Background(), map[string]any{"url": url, "method": "GET"})

	var netErr *NetworkError
	assert.ErrorAs(t, err, &netErr)
}

func TestIsJSON(t *testing.T) {
	assert.True(t, isJSON("application/json"))
	assert.True(t, isJSON("application/problem+json; charset=utf-8"))
	assert.False(t, isJSON("text/html"))
	assert.False(t, isJSON(""))
	assert.False(t, isJSON(";;;"))
}
