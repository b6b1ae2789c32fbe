package jq

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cmderrors "github.com/tombee/cmdspec/pkg/errors"
)

func TestExecutor_Execute(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		data    any
		want    any
		wantErr bool
	}{
		{
			name:  "empty query returns data as-is",
			query: "",
			data:  map[string]any{"foo": "bar"},
			want:  map[string]any{"foo": "bar"},
		},
		{
			name:  "simple field extraction",
			query: ".foo",
			data:  map[string]any{"foo": "bar"},
			want:  "bar",
		},
		{
			name:  "array map",
			query: "map(.x)",
			data:  []any{map[string]any{"x": 1}, map[string]any{"x": 2}},
			want:  []any{float64(1), float64(2)},
		},
		{
			name:  "multiple outputs collected",
			query: ".[] | select(.open) | .name",
			data: []any{
				map[string]any{"name": "a", "open": true},
				map[string]any{"name": "b", "open": false},
				map[string]any{"name": "c", "open": true},
			},
			want: []any{"a", "c"},
		},
		{
			name:  "no output",
			query: "empty",
			data:  1.0,
			want:  nil,
		},
		{
			name:  "typed Go values are normalized",
			query: ".stdout | length",
			data:  map[string]any{"stdout": []string{"x", "y"}, "exitCode": 0},
			want:  2,
		},
		{
			name:    "invalid query",
			query:   ".[",
			data:    map[string]any{"foo": "bar"},
			wantErr: true,
		},
		{
			name:    "runtime error",
			query:   ".foo + 1",
			data:    map[string]any{"foo": "bar"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			executor := NewExecutor(DefaultTimeout, DefaultMaxInputSize)
			got, err := executor.Execute(context.Background(), tt.query, tt.data)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExecutor_Timeout(t *testing.T) {
	executor := NewExecutor(50*time.Millisecond, DefaultMaxInputSize)

	start := time.Now()
	_, err := executor.Execute(context.Background(), "def f: f; f", nil)
	require.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)

	var timeoutErr *cmderrors.TimeoutError
	assert.True(t, errors.As(err, &timeoutErr), "got %v", err)
}

func TestExecutor_MaxInputSize(t *testing.T) {
	executor := NewExecutor(DefaultTimeout, 16)
	_, err := executor.Execute(context.Background(), ".", strings.Repeat("x", 64))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds maximum")
}

func TestExecutor_Validate(t *testing.T) {
	executor := NewExecutor(0, 0)
	assert.NoError(t, executor.Validate(""))
	assert.NoError(t, executor.Validate(".items[] | .name"))
	assert.Error(t, executor.Validate(".["))

	// compiled queries are cached
	assert.NoError(t, executor.Validate(".items[] | .name"))
	assert.Len(t, executor.cache, 1)
}
