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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/tombee/cmdspec/pkg/errors"
	"github.com/tombee/cmdspec/pkg/spec"
)

var formFields = []spec.InputField{
	{ID: "query", Type: spec.InputText, Label: "Query"},
	{ID: "limit", Type: spec.InputNumber, Label: "Limit"},
	{ID: "draft", Type: spec.InputCheckbox, Label: "Include drafts"},
	{ID: "sort", Type: spec.InputDropdown, Label: "Sort", Options: []spec.InputOption{
		{Title: "Updated", Value: "updated"},
		{Title: "Created", Value: "created"},
	}},
}

func TestParseInputs_Pairs(t *testing.T) {
	values, err := ParseInputs([]string{"query=is:open label=bug", "limit=25", "draft=yes", "sort=created", "extra=1"}, "", formFields)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"query": "is:open label=bug",
		"limit": float64(25),
		"draft": true,
		"sort":  "created",
		"extra": "1",
	}, values)
}

func TestParseInputs_FileThenPairs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inputs.yaml")
	require.NoError(t, os.WriteFile(path, []byte("query: from-file\nlimit: 5\ndraft: false\n"), 0o600))

	values, err := ParseInputs([]string{"query=from-flag"}, path, formFields)
	require.NoError(t, err)

	assert.Equal(t, "from-flag", values["query"])
	assert.Equal(t, float64(5), values["limit"])
	assert.Equal(t, false, values["draft"])
}

func TestParseInputs_JSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inputs.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"limit": 2.5, "sort": "updated"}`), 0o600))

	values, err := ParseInputs(nil, path, formFields)
	require.NoError(t, err)
	assert.Equal(t, float64(2.5), values["limit"])
	assert.Equal(t, "updated", values["sort"])
}

func TestParseInputs_Errors(t *testing.T) {
	tests := []struct {
		name  string
		pairs []string
		field string
	}{
		{"missing equals", []string{"query"}, "input"},
		{"empty key", []string{"=value"}, "input"},
		{"bad number", []string{"limit=ten"}, "input.limit"},
		{"bad bool", []string{"draft=maybe"}, "input.draft"},
		{"unknown option", []string{"sort=stars"}, "input.sort"},
		{"control character", []string{"query=a\x1bb"}, "input.query"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseInputs(tt.pairs, "", formFields)
			var validationErr *pkgerrors.ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tt.field, validationErr.Field)
		})
	}
}

func TestParseInputs_EmptyNumberStaysEmpty(t *testing.T) {
	values, err := ParseInputs([]string{"limit="}, "", formFields)
	require.NoError(t, err)
	assert.Equal(t, "", values["limit"])
}

func TestParseInputs_BadFile(t *testing.T) {
	_, err := ParseInputs(nil, filepath.Join(t.TempDir(), "missing.yaml"), formFields)
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "list.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- a\n- b\n"), 0o600))
	_, err = ParseInputs(nil, path, formFields)
	var validationErr *pkgerrors.ValidationError
	require.ErrorAs(t, err, &validationErr)
}
