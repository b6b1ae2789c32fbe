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
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	pkgerrors "github.com/tombee/cmdspec/pkg/errors"
	"github.com/tombee/cmdspec/pkg/spec"
)

// Exit codes for cmdspec commands
const (
	ExitSuccess         = 0
	ExitExecutionFailed = 1
	ExitInvalidSpec     = 2
	ExitMissingInput    = 3
	ExitNotFound        = 4
)

// ExitError is an error that carries an exit code
type ExitError struct {
	Code    int
	Message string
	Cause   error
}

func (e *ExitError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Cause
}

// NewExecutionError creates an error for run failures
func NewExecutionError(msg string, cause error) *ExitError {
	return &ExitError{
		Code:    ExitExecutionFailed,
		Message: msg,
		Cause:   cause,
	}
}

// NewInvalidSpecError creates an error for specs that fail validation
func NewInvalidSpecError(msg string, cause error) *ExitError {
	return &ExitError{
		Code:    ExitInvalidSpec,
		Message: msg,
		Cause:   cause,
	}
}

// NewMissingInputError creates an error for missing required inputs
func NewMissingInputError(msg string, cause error) *ExitError {
	return &ExitError{
		Code:    ExitMissingInput,
		Message: msg,
		Cause:   cause,
	}
}

// NewNotFoundError creates an error for unknown specs, actions or items
func NewNotFoundError(msg string, cause error) *ExitError {
	return &ExitError{
		Code:    ExitNotFound,
		Message: msg,
		Cause:   cause,
	}
}

// ExitCodeFor maps an error to the exit code the process should end with.
// An ExitError anywhere in the chain wins; otherwise the typed errors of
// the run are classified.
func ExitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	var specErrs spec.ValidationErrors
	if errors.As(err, &specErrs) {
		return ExitInvalidSpec
	}

	var unknownErr *pkgerrors.UnknownOperationError
	if errors.As(err, &unknownErr) {
		return ExitInvalidSpec
	}

	var validationErr *pkgerrors.ValidationError
	if errors.As(err, &validationErr) && strings.HasPrefix(validationErr.Field, "input.") {
		return ExitMissingInput
	}

	if pkgerrors.Classify(err) == "not_found" {
		return ExitNotFound
	}
	return ExitExecutionFailed
}

// WriteError prints err and any suggestion it carries to w and returns the
// exit code for it.
func WriteError(w io.Writer, err error) int {
	if err == nil {
		return ExitSuccess
	}
	if msg := err.Error(); msg != "" {
		fmt.Fprintln(w, "Error:", msg)
	}
	if suggestion := suggestionFor(err); suggestion != "" {
		fmt.Fprintf(w, "\nSuggestion: %s\n", suggestion)
	}
	return ExitCodeFor(err)
}

// HandleExitError prints err to stderr and exits with its exit code
func HandleExitError(err error) {
	if err == nil {
		return
	}
	os.Exit(WriteError(os.Stderr, err))
}

// suggestionFor walks the error chain for a user-visible suggestion. The
// input validation errors of a run carry one too.
func suggestionFor(err error) string {
	for e := err; e != nil; e = errors.Unwrap(e) {
		if userErr, ok := e.(pkgerrors.UserVisibleError); ok {
			if userErr.IsUserVisible() {
				return userErr.Suggestion()
			}
			return ""
		}
	}

	var validationErr *pkgerrors.ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Suggestion
	}
	return ""
}
