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
package prompt

import (
	"fmt"
	"strings"

	"github.com/tombee/cmdspec/pkg/spec"
)

// Pending returns the fields of a form that were not supplied on the
// command line and should therefore be asked for.
func Pending(fields []spec.InputField, provided map[string]any) []spec.InputField {
	pending := make([]spec.InputField, 0, len(fields))
	for _, field := range fields {
		if _, ok := provided[field.ID]; ok {
			continue
		}
		pending = append(pending, field)
	}
	return pending
}

// MissingRequired returns the required fields that have neither a
// provided value nor a default.
func MissingRequired(fields []spec.InputField, provided map[string]any) []spec.InputField {
	missing := make([]spec.InputField, 0)
	for _, field := range fields {
		if !field.Required || field.Default != nil {
			continue
		}
		if v, ok := provided[field.ID]; ok {
			if s, isString := v.(string); !isString || strings.TrimSpace(s) != "" {
				continue
			}
		}
		missing = append(missing, field)
	}
	return missing
}

// FormatMissing creates a structured message listing missing inputs.
func FormatMissing(missing []spec.InputField) string {
	var sb strings.Builder
	sb.WriteString("Missing required inputs:\n")
	for _, field := range missing {
		sb.WriteString(fmt.Sprintf("  - %s (%s): %s\n", field.ID, field.Type, field.Label))
		if len(field.Options) > 0 {
			values := make([]string, len(field.Options))
			for i, opt := range field.Options {
				values[i] = opt.Value
			}
			sb.WriteString(fmt.Sprintf("    Valid values: %s\n", strings.Join(values, ", ")))
		}
	}
	sb.WriteString("\nPass them with --input id=value.")
	return sb.String()
}
