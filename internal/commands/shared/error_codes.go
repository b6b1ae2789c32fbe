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

	pkgerrors "github.com/tombee/cmdspec/pkg/errors"
	"github.com/tombee/cmdspec/pkg/spec"
)

// Error codes for structured JSON output
const (
	// Validation errors (E001-E099)
	ErrorCodeMissingField     = "E001" // Missing required field
	ErrorCodeInvalidSyntax    = "E002" // Invalid JSON or YAML syntax
	ErrorCodeSchemaViolation  = "E003" // Schema constraint violation
	ErrorCodeUnknownOperation = "E004" // Operation type outside the allowlist

	// Execution errors (E100-E199)
	ErrorCodeStepFailed    = "E103" // Step execution failed
	ErrorCodeTimeout       = "E104" // Step timeout
	ErrorCodeInterpolation = "E105" // Template could not be expanded
	ErrorCodePathEscape    = "E106" // Path left the sandbox
	ErrorCodeHTTPStatus    = "E107" // Non-2xx HTTP response
	ErrorCodeProcess       = "E108" // Process failed to start or exited non-zero

	// Configuration errors (E200-E299)
	ErrorCodeInvalidConfig = "E202" // Invalid configuration

	// Input errors (E300-E399)
	ErrorCodeMissingInput = "E301" // Required input missing
	ErrorCodeInvalidInput = "E302" // Invalid input format
	ErrorCodeFileNotFound = "E303" // File not found

	// Resource errors (E400-E499)
	ErrorCodeNotFound = "E401" // Resource not found
	ErrorCodeInternal = "E402" // Internal error
)

// ErrorCodeFor maps an error to its JSON error code.
func ErrorCodeFor(err error) string {
	if err == nil {
		return ""
	}

	var specErrs spec.ValidationErrors
	if errors.As(err, &specErrs) {
		for _, e := range specErrs {
			switch e.Keyword {
			case "syntax":
				return ErrorCodeInvalidSyntax
			case "required":
				return ErrorCodeMissingField
			}
		}
		return ErrorCodeSchemaViolation
	}

	switch pkgerrors.Classify(err) {
	case "timeout":
		return ErrorCodeTimeout
	case "interpolation":
		return ErrorCodeInterpolation
	case "unknown_operation":
		return ErrorCodeUnknownOperation
	case "path_escape":
		return ErrorCodePathEscape
	case "http_status":
		return ErrorCodeHTTPStatus
	case "process":
		return ErrorCodeProcess
	case "not_found":
		return ErrorCodeNotFound
	case "config":
		return ErrorCodeInvalidConfig
	case "validation":
		if ExitCodeFor(err) == ExitMissingInput {
			return ErrorCodeMissingInput
		}
		return ErrorCodeInvalidInput
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return mapExitErrorToCode(exitErr)
	}
	return ErrorCodeInternal
}

// mapExitErrorToCode maps ExitError codes to JSON error codes
func mapExitErrorToCode(exitErr *ExitError) string {
	if exitErr == nil {
		return ""
	}

	switch exitErr.Code {
	case ExitInvalidSpec:
		return ErrorCodeSchemaViolation
	case ExitMissingInput:
		return ErrorCodeMissingInput
	case ExitNotFound:
		return ErrorCodeNotFound
	default:
		return ErrorCodeStepFailed
	}
}
