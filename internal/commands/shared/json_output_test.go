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
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/tombee/cmdspec/pkg/errors"
	"github.com/tombee/cmdspec/pkg/spec"
)

func TestEmitJSON(t *testing.T) {
	var buf bytes.Buffer
	resp := struct {
		JSONResponse
		Count int `json:"count"`
	}{JSONResponse: NewResponse("list"), Count: 3}

	require.NoError(t, EmitJSON(&buf, resp))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, JSONVersion, decoded["@version"])
	assert.Equal(t, "list", decoded["command"])
	assert.Equal(t, true, decoded["success"])
	assert.Equal(t, float64(3), decoded["count"])
	assert.Contains(t, buf.String(), "\n  \"command\"")
}

func TestEmitJSONError(t *testing.T) {
	var buf bytes.Buffer
	err := EmitJSONError(&buf, "validate", []JSONError{{Code: ErrorCodeSchemaViolation, Message: "bad"}})
	require.NoError(t, err)

	var decoded struct {
		JSONResponse
		Errors []JSONError `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.False(t, decoded.Success)
	assert.Equal(t, "validate", decoded.Command)
	require.Len(t, decoded.Errors, 1)
	assert.Equal(t, "bad", decoded.Errors[0].Message)
}

func TestJSONErrors_ValidationFindings(t *testing.T) {
	stepErr := &spec.ValidationError{Path: "$.steps[1].config.url", Keyword: "required", Message: "url is required", StepIndex: 1}
	errs := JSONErrors(spec.ValidationErrors{
		spec.NewValidationError("$", "syntax", "invalid JSON"),
		stepErr,
	})

	require.Len(t, errs, 2)
	assert.Equal(t, ErrorCodeInvalidSyntax, errs[0].Code)
	assert.Nil(t, errs[0].StepIndex)
	assert.Equal(t, ErrorCodeMissingField, errs[1].Code)
	assert.Equal(t, "$.steps[1].config.url", errs[1].Path)
	require.NotNil(t, errs[1].StepIndex)
	assert.Equal(t, 1, *errs[1].StepIndex)
}

func TestJSONErrors_RunError(t *testing.T) {
	errs := JSONErrors(&pkgerrors.InterpreterError{
		StepIndex: 0,
		StepType:  "readFile",
		Cause:     &pkgerrors.PathEscapeError{Path: "../x", Root: "/sandbox"},
	})

	require.Len(t, errs, 1)
	assert.Equal(t, ErrorCodePathEscape, errs[0].Code)
	assert.Equal(t, "file paths must stay inside the sandbox directory", errs[0].Suggestion)
	assert.Nil(t, JSONErrors(nil))
}

func TestErrorCodeFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"not found", &pkgerrors.NotFoundError{Resource: "spec", ID: "x"}, ErrorCodeNotFound},
		{"config", &pkgerrors.ConfigError{Key: "store.dir", Reason: "required"}, ErrorCodeInvalidConfig},
		{"missing input", &pkgerrors.ValidationError{Field: "input.q", Message: "missing"}, ErrorCodeMissingInput},
		{"bad input", &pkgerrors.ValidationError{Field: "input", Message: "invalid"}, ErrorCodeInvalidInput},
		{"process", &pkgerrors.ProcessError{Program: "git", ExitCode: 1}, ErrorCodeProcess},
		{"http status", &pkgerrors.HTTPStatusError{Method: "GET", URL: "u", StatusCode: 500}, ErrorCodeHTTPStatus},
		{"exit error", NewInvalidSpecError("bad", nil), ErrorCodeSchemaViolation},
		{"plain", errors.New("boom"), ErrorCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorCodeFor(tt.err))
		})
	}
}
