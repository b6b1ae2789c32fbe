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
// Package prompt collects form inputs for command specs interactively.
// Two terminal front ends are provided: HuhPrompter renders the whole form
// at once, SurveyPrompter asks one question per line.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/tombee/cmdspec/pkg/spec"
)

// MaxInputSize is the maximum allowed input size in bytes.
const MaxInputSize = 65536

// ErrNonInteractive is returned when a prompt is requested without a
// terminal.
var ErrNonInteractive = errors.New("cannot prompt in non-interactive mode")

// Prompter defines the interface for interactive input collection.
type Prompter interface {
	// Form asks for each field and returns the answers keyed by field ID.
	// Numbers are returned as float64, checkboxes as bool and everything
	// else as string.
	Form(ctx context.Context, title string, fields []spec.InputField) (map[string]any, error)

	// Confirm asks a yes/no question.
	Confirm(ctx context.Context, message string, def bool) (bool, error)

	// IsInteractive returns true if prompts can be displayed
	IsInteractive() bool
}

// defaultString renders a field default as the initial text of a prompt.
func defaultString(field spec.InputField) string {
	switch v := field.Default.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}

// defaultBool reports the initial state of a checkbox field.
func defaultBool(field spec.InputField) bool {
	switch v := field.Default.(type) {
	case bool:
		return v
	case string:
		b, err := ValidateBool(v)
		return err == nil && b
	default:
		return false
	}
}

// validator returns the per-keystroke validation for a text-like field.
func validator(field spec.InputField) func(string) error {
	return func(s string) error {
		if err := ValidateString(s); err != nil {
			return err
		}
		if field.Type == spec.InputNumber && s != "" {
			if _, err := ValidateNumber(s); err != nil {
				return err
			}
		}
		return nil
	}
}

// convert turns the raw answer for field into its typed value. Empty
// answers stay empty strings so the interpreter applies defaults and
// required checks.
func convert(field spec.InputField, answer string) (any, error) {
	if err := ValidateString(answer); err != nil {
		return nil, &ValidationError{InputID: field.ID, Reason: err.Error()}
	}
	if field.Type == spec.InputNumber && answer != "" {
		n, err := ValidateNumber(answer)
		if err != nil {
			return nil, &ValidationError{InputID: field.ID, Reason: err.Error()}
		}
		return n, nil
	}
	return answer, nil
}

// ValidationError represents an input validation failure.
type ValidationError struct {
	InputID string
	Reason  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("input %s: %s", e.InputID, e.Reason)
}
