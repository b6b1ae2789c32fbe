// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package shared

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tombee/cmdspec/internal/cli/prompt"
	pkgerrors "github.com/tombee/cmdspec/pkg/errors"
	"github.com/tombee/cmdspec/pkg/spec"
)

// ParseInputs collects form values from an optional YAML or JSON file and
// --input key=value pairs, with pairs taking precedence. Values for declared
// fields are converted to the field's type.
func ParseInputs(pairs []string, inputFile string, fields []spec.InputField) (map[string]any, error) {
	values := make(map[string]any)

	if inputFile != "" {
		data, err := os.ReadFile(inputFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read input file: %w", err)
		}
		if err := yaml.Unmarshal(data, &values); err != nil {
			return nil, &pkgerrors.ValidationError{
				Field:      "input",
				Message:    fmt.Sprintf("input file %s is not a YAML or JSON object: %v", inputFile, err),
				Suggestion: "write the inputs as a mapping of input id to value",
			}
		}
		if values == nil {
			values = make(map[string]any)
		}
	}

	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, &pkgerrors.ValidationError{
				Field:      "input",
				Message:    fmt.Sprintf("invalid input %q", pair),
				Suggestion: "use --input id=value",
			}
		}
		values[key] = value
	}

	byID := make(map[string]spec.InputField, len(fields))
	for _, field := range fields {
		byID[field.ID] = field
	}
	for key, raw := range values {
		field, declared := byID[key]
		if !declared {
			continue
		}
		v, err := coerceInput(field, raw)
		if err != nil {
			return nil, err
		}
		values[key] = v
	}
	return values, nil
}

func coerceInput(field spec.InputField, raw any) (any, error) {
	invalid := func(reason string) error {
		return &pkgerrors.ValidationError{
			Field:      "input." + field.ID,
			Message:    reason,
			Suggestion: fmt.Sprintf("provide a valid %s value for %s", field.Type, field.ID),
		}
	}

	switch field.Type {
	case spec.InputNumber:
		switch v := raw.(type) {
		case int:
			return float64(v), nil
		case float64:
			return v, nil
		case string:
			if strings.TrimSpace(v) == "" {
				return "", nil
			}
			n, err := prompt.ValidateNumber(v)
			if err != nil {
				return nil, invalid(err.Error())
			}
			return n, nil
		}
		return nil, invalid("input must be a number")
	case spec.InputCheckbox:
		switch v := raw.(type) {
		case bool:
			return v, nil
		case string:
			b, err := prompt.ValidateBool(v)
			if err != nil {
				return nil, invalid(err.Error())
			}
			return b, nil
		}
		return nil, invalid("input must be true or false")
	case spec.InputDropdown:
		s := fmt.Sprint(raw)
		if s == "" {
			return s, nil
		}
		for _, opt := range field.Options {
			if opt.Value == s {
				return s, nil
			}
		}
		return nil, invalid(fmt.Sprintf("%q is not one of the options", s))
	default:
		if s, ok := raw.(string); ok {
			if err := prompt.ValidateString(s); err != nil {
				return nil, invalid(err.Error())
			}
			return s, nil
		}
		return raw, nil
	}
}
