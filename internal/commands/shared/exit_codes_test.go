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
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	pkgerrors "github.com/tombee/cmdspec/pkg/errors"
	"github.com/tombee/cmdspec/pkg/spec"
)

func TestExitCodeFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{
			name: "nil",
			err:  nil,
			want: ExitSuccess,
		},
		{
			name: "explicit exit error",
			err:  fmt.Errorf("wrapped: %w", NewNotFoundError("no such spec", nil)),
			want: ExitNotFound,
		},
		{
			name: "validation findings",
			err:  spec.ValidationErrors{spec.NewValidationError("$.mode", "enum", "bad mode")},
			want: ExitInvalidSpec,
		},
		{
			name: "unknown operation",
			err: &pkgerrors.InterpreterError{
				StepIndex: 0,
				StepType:  "eval",
				Cause:     &pkgerrors.UnknownOperationError{StepIndex: 0, Type: "eval"},
			},
			want: ExitInvalidSpec,
		},
		{
			name: "missing form input",
			err:  &pkgerrors.ValidationError{Field: "input.query", Message: "required input \"Query\" is missing"},
			want: ExitMissingInput,
		},
		{
			name: "not found",
			err:  &pkgerrors.NotFoundError{Resource: "spec", ID: "nope"},
			want: ExitNotFound,
		},
		{
			name: "step timeout",
			err: &pkgerrors.InterpreterError{
				StepIndex: 1,
				StepType:  "httpRequest",
				Cause:     &pkgerrors.TimeoutError{Operation: "GET http://x", Duration: time.Second},
			},
			want: ExitExecutionFailed,
		},
		{
			name: "plain error",
			err:  errors.New("boom"),
			want: ExitExecutionFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCodeFor(tt.err); got != tt.want {
				t.Errorf("ExitCodeFor() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestExitError(t *testing.T) {
	cause := errors.New("disk full")
	err := NewExecutionError("run failed", cause)

	if err.Error() != "run failed: disk full" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Error("expected ExitError to unwrap to its cause")
	}
	if NewInvalidSpecError("bad", nil).Error() != "bad" {
		t.Error("expected message without cause")
	}
	if NewMissingInputError("x", nil).Code != ExitMissingInput {
		t.Error("expected missing input code")
	}
}

func TestWriteError(t *testing.T) {
	t.Run("interpreter error suggestion", func(t *testing.T) {
		var buf bytes.Buffer
		err := &pkgerrors.InterpreterError{
			StepIndex: 2,
			StepType:  "transform",
			Cause:     &pkgerrors.InterpolationError{StepIndex: 2, Template: "{{missing}}", Cause: errors.New("unbound")},
		}

		code := WriteError(&buf, err)

		if code != ExitExecutionFailed {
			t.Errorf("code = %d, want %d", code, ExitExecutionFailed)
		}
		out := buf.String()
		if !strings.HasPrefix(out, "Error: step 2 (transform) failed") {
			t.Errorf("unexpected output: %q", out)
		}
		if !strings.Contains(out, "Suggestion: check that every {{placeholder}}") {
			t.Errorf("expected suggestion, got %q", out)
		}
	})

	t.Run("validation error suggestion", func(t *testing.T) {
		var buf bytes.Buffer
		code := WriteError(&buf, &pkgerrors.ValidationError{
			Field:      "input.repo",
			Message:    "required input \"Repository\" is missing",
			Suggestion: "provide a value for repo",
		})

		if code != ExitMissingInput {
			t.Errorf("code = %d, want %d", code, ExitMissingInput)
		}
		if !strings.Contains(buf.String(), "Suggestion: provide a value for repo") {
			t.Errorf("expected suggestion, got %q", buf.String())
		}
	})

	t.Run("no suggestion", func(t *testing.T) {
		var buf bytes.Buffer
		WriteError(&buf, errors.New("boom"))
		if buf.String() != "Error: boom\n" {
			t.Errorf("unexpected output: %q", buf.String())
		}
	})
}
