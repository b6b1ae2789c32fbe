package spec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Parse decodes a JSON document and validates it.
func Parse(data []byte) (*CommandSpec, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	var tree any
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, ValidationErrors{NewValidationError("$", "syntax", fmt.Sprintf("invalid JSON: %v", err))}
	}
	return Validate(tree)
}

// ParseYAML decodes a YAML authoring document into the same JSON-like tree a
// JSON document would produce and validates it.
func ParseYAML(data []byte) (*CommandSpec, error) {
	var tree any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, ValidationErrors{NewValidationError("$", "syntax", fmt.Sprintf("invalid YAML: %v", err))}
	}

	normalized, err := normalizeYAML(tree)
	if err != nil {
		return nil, ValidationErrors{NewValidationError("$", "syntax", err.Error())}
	}
	return Validate(normalized)
}

// ParseFile reads and validates a spec file. Files ending in .yaml or .yml are
// decoded as YAML, everything else as JSON.
func ParseFile(path string) (*CommandSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading spec file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return Parse(data)
	}
}

// Marshal serialises a spec in the persisted format: UTF-8 JSON indented with
// two spaces and a trailing newline.
func Marshal(s *CommandSpec) ([]byte, error) {
	out := *s
	if out.Steps == nil {
		out.Steps = []Operation{}
	}
	if out.Metadata.Tags == nil {
		out.Metadata.Tags = []string{}
	}

	data, err := json.MarshalIndent(&out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding spec %s: %w", s.ID, err)
	}
	return append(data, '\n'), nil
}

// normalizeYAML converts the value types yaml.v3 produces into the ones
// encoding/json produces, so both authoring formats validate identically.
func normalizeYAML(v any) (any, error) {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			n, err := normalizeYAML(item)
			if err != nil {
				return nil, err
			}
			out[k] = n
		}
		return out, nil
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			key, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("invalid YAML: mapping key %v is not a string", k)
			}
			n, err := normalizeYAML(item)
			if err != nil {
				return nil, err
			}
			out[key] = n
		}
		return out, nil
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			n, err := normalizeYAML(item)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	case int:
		return float64(val), nil
	case int64:
		return float64(val), nil
	case uint64:
		return float64(val), nil
	case time.Time:
		return val.Format(time.RFC3339Nano), nil
	default:
		return v, nil
	}
}
