// Package action holds the builtin operation handlers and the config
// accessors they share. Each handler lives in its own subpackage and does
// not import the operation package; the builtin table in internal/operation
// bridges handlers to the interpreter.
package action

import (
	"fmt"
	"math"
	"time"
)

// String returns config[key] as a string. Missing keys return "" and false.
func String(config map[string]any, key string) (string, bool) {
	s, ok := config[key].(string)
	return s, ok
}

// RequireString returns config[key] or an error naming the key.
func RequireString(config map[string]any, key string) (string, error) {
	v, present := config[key]
	if !present {
		return "", fmt.Errorf("%s is required", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%s must be a string, got %T", key, v)
	}
	return s, nil
}

// Bool returns config[key] as a bool, false when absent.
func Bool(config map[string]any, key string) (bool, error) {
	v, present := config[key]
	if !present || v == nil {
		return false, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("%s must be a boolean, got %T", key, v)
	}
	return b, nil
}

// StringMap returns config[key] as a map of strings, nil when absent.
func StringMap(config map[string]any, key string) (map[string]string, error) {
	v, present := config[key]
	if !present || v == nil {
		return nil, nil
	}

	switch m := v.(type) {
	case map[string]string:
		return m, nil
	case map[string]any:
		out := make(map[string]string, len(m))
		for k, raw := range m {
			s, ok := raw.(string)
			if !ok {
				return nil, fmt.Errorf("%s.%s must be a string, got %T", key, k, raw)
			}
			out[k] = s
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%s must be an object of strings, got %T", key, v)
	}
}

// maxTimeoutMillis is the largest millisecond count a time.Duration holds.
const maxTimeoutMillis = math.MaxInt64 / int64(time.Millisecond)

// Timeout reads config["timeout"] as milliseconds. Absent returns def and
// values past the time.Duration range are clamped.
func Timeout(config map[string]any, def time.Duration) (time.Duration, error) {
	v, present := config["timeout"]
	if !present || v == nil {
		return def, nil
	}

	var ms float64
	switch n := v.(type) {
	case float64:
		ms = n
	case int:
		ms = float64(n)
	case int64:
		ms = float64(n)
	default:
		return 0, fmt.Errorf("timeout must be a number of milliseconds, got %T", v)
	}
	if ms <= 0 || math.IsNaN(ms) {
		return 0, fmt.Errorf("timeout must be positive, got %v", ms)
	}
	if ms >= float64(maxTimeoutMillis) {
		return time.Duration(maxTimeoutMillis) * time.Millisecond, nil
	}
	return time.Duration(ms * float64(time.Millisecond)), nil
}
