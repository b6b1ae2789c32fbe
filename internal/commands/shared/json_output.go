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
	"encoding/json"
	"errors"
	"io"

	"github.com/tombee/cmdspec/pkg/spec"
)

// JSONVersion is the envelope version of every JSON response.
const JSONVersion = "1.0"

// JSONResponse is the base envelope for all JSON output
type JSONResponse struct {
	Version string `json:"@version"`
	Command string `json:"command"`
	Success bool   `json:"success"`
}

// JSONError represents a structured error with code, message, path, and suggestion
type JSONError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Path       string `json:"path,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
	StepIndex  *int   `json:"step_index,omitempty"`
}

// NewResponse returns a successful envelope for command.
func NewResponse(command string) JSONResponse {
	return JSONResponse{Version: JSONVersion, Command: command, Success: true}
}

// EmitJSON marshals a response to indented JSON on w
func EmitJSON(w io.Writer, response any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(response)
}

// EmitJSONError creates and emits a JSON error response
func EmitJSONError(w io.Writer, command string, errs []JSONError) error {
	type errorResponse struct {
		JSONResponse
		Errors []JSONError `json:"errors"`
	}

	resp := errorResponse{
		JSONResponse: JSONResponse{
			Version: JSONVersion,
			Command: command,
			Success: false,
		},
		Errors: errs,
	}

	return EmitJSON(w, resp)
}

// JSONErrors converts err into structured errors. Validation findings
// become one entry each.
func JSONErrors(err error) []JSONError {
	if err == nil {
		return nil
	}

	var specErrs spec.ValidationErrors
	if errors.As(err, &specErrs) {
		out := make([]JSONError, 0, len(specErrs))
		for _, e := range specErrs {
			je := JSONError{
				Code:    ErrorCodeSchemaViolation,
				Message: e.Message,
				Path:    e.Path,
			}
			switch e.Keyword {
			case "required":
				je.Code = ErrorCodeMissingField
			case "syntax":
				je.Code = ErrorCodeInvalidSyntax
			}
			if e.StepIndex >= 0 {
				idx := e.StepIndex
				je.StepIndex = &idx
			}
			out = append(out, je)
		}
		return out
	}

	return []JSONError{{
		Code:       ErrorCodeFor(err),
		Message:    err.Error(),
		Suggestion: suggestionFor(err),
	}}
}
