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
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/AlecAivazis/survey/v2"
	"github.com/charmbracelet/huh"

	"github.com/tombee/cmdspec/pkg/spec"
)

func formFields() []spec.InputField {
	return []spec.InputField{
		{ID: "query", Type: spec.InputText, Label: "Query", Required: true},
		{ID: "limit", Type: spec.InputNumber, Label: "Limit", Default: float64(10)},
		{ID: "draft", Type: spec.InputCheckbox, Label: "Include drafts", Default: true},
		{ID: "sort", Type: spec.InputDropdown, Label: "Sort", Default: "updated", Options: []spec.InputOption{
			{Title: "Updated", Value: "updated"},
			{Title: "Created", Value: "created"},
		}},
		{ID: "token", Type: spec.InputPassword, Label: "Token"},
		{ID: "notes", Type: spec.InputTextarea, Label: "Notes", Default: "n/a"},
	}
}

func TestHuhPrompter_Form(t *testing.T) {
	hp := NewHuhPrompter(true)
	var shown *huh.Form
	hp.run = func(ctx context.Context, form *huh.Form) error {
		shown = form
		return nil
	}

	values, err := hp.Form(context.Background(), "Search PRs", formFields())
	if err != nil {
		t.Fatalf("Form() error = %v", err)
	}
	if shown == nil {
		t.Fatal("expected form to be shown")
	}

	want := map[string]any{
		"query": "",
		"limit": float64(10),
		"draft": true,
		"sort":  "updated",
		"token": "",
		"notes": "n/a",
	}
	for k, v := range want {
		if values[k] != v {
			t.Errorf("values[%q] = %#v, want %#v", k, values[k], v)
		}
	}
}

func TestHuhPrompter_FormAborted(t *testing.T) {
	hp := NewHuhPrompter(true)
	hp.run = func(ctx context.Context, form *huh.Form) error {
		return huh.ErrUserAborted
	}

	if _, err := hp.Form(context.Background(), "", formFields()); !errors.Is(err, huh.ErrUserAborted) {
		t.Fatalf("Form() error = %v, want ErrUserAborted", err)
	}
}

func TestHuhPrompter_NonInteractive(t *testing.T) {
	hp := NewHuhPrompter(false)

	if _, err := hp.Form(context.Background(), "", formFields()); !errors.Is(err, ErrNonInteractive) {
		t.Errorf("Form() error = %v, want ErrNonInteractive", err)
	}
	if _, err := hp.Confirm(context.Background(), "Delete?", false); !errors.Is(err, ErrNonInteractive) {
		t.Errorf("Confirm() error = %v, want ErrNonInteractive", err)
	}

	// No fields never needs a terminal
	values, err := hp.Form(context.Background(), "", nil)
	if err != nil || len(values) != 0 {
		t.Errorf("Form(nil) = %v, %v", values, err)
	}
}

func TestHuhPrompter_Confirm(t *testing.T) {
	hp := NewHuhPrompter(true)
	hp.run = func(ctx context.Context, form *huh.Form) error { return nil }

	ok, err := hp.Confirm(context.Background(), "Delete?", true)
	if err != nil {
		t.Fatalf("Confirm() error = %v", err)
	}
	if !ok {
		t.Error("Confirm() should return the default when unchanged")
	}
}

func TestSurveyPrompter_NonInteractive(t *testing.T) {
	sp := NewSurveyPrompter(false)
	if sp.IsInteractive() {
		t.Fatal("IsInteractive() = true, want false")
	}

	if _, err := sp.Form(context.Background(), "", formFields()); !errors.Is(err, ErrNonInteractive) {
		t.Errorf("Form() error = %v, want ErrNonInteractive", err)
	}
	if _, err := sp.Confirm(context.Background(), "Delete?", false); !errors.Is(err, ErrNonInteractive) {
		t.Errorf("Confirm() error = %v, want ErrNonInteractive", err)
	}
}

func TestSurveyPrompt_DropdownDefault(t *testing.T) {
	fields := formFields()

	sel, ok := surveyPrompt(fields[3], "Sort").(*survey.Select)
	if !ok {
		t.Fatal("expected a select prompt for dropdown fields")
	}
	if sel.Default != "updated" {
		t.Errorf("Default = %v, want updated", sel.Default)
	}
	if len(sel.Options) != 2 || sel.Options[1] != "created" {
		t.Errorf("Options = %v", sel.Options)
	}

	// A default outside the options is dropped
	bad := fields[3]
	bad.Default = "missing"
	sel = surveyPrompt(bad, "Sort").(*survey.Select)
	if sel.Default != nil {
		t.Errorf("Default = %v, want nil", sel.Default)
	}

	if _, ok := surveyPrompt(fields[4], "Token").(*survey.Password); !ok {
		t.Error("expected a password prompt for password fields")
	}
}

func TestConvert(t *testing.T) {
	number := spec.InputField{ID: "n", Type: spec.InputNumber}

	v, err := convert(number, " 2.5 ")
	if err != nil || v != 2.5 {
		t.Errorf("convert(number) = %v, %v", v, err)
	}

	v, err = convert(number, "")
	if err != nil || v != "" {
		t.Errorf("convert(empty number) = %#v, %v", v, err)
	}

	_, err = convert(number, "ten")
	var vErr *ValidationError
	if !errors.As(err, &vErr) || vErr.InputID != "n" {
		t.Errorf("convert(bad number) error = %v", err)
	}

	_, err = convert(spec.InputField{ID: "s", Type: spec.InputText}, "a\x00b")
	if err == nil || !strings.Contains(err.Error(), "null byte") {
		t.Errorf("convert(NUL) error = %v", err)
	}
}

func TestPendingAndMissing(t *testing.T) {
	fields := formFields()
	provided := map[string]any{"query": "  ", "limit": "5"}

	pending := Pending(fields, provided)
	if len(pending) != 4 || pending[0].ID != "draft" {
		t.Errorf("Pending() = %v", pending)
	}

	missing := MissingRequired(fields, provided)
	if len(missing) != 1 || missing[0].ID != "query" {
		t.Fatalf("MissingRequired() = %v", missing)
	}

	msg := FormatMissing(append(missing, fields[3]))
	for _, want := range []string{"query (text): Query", "Valid values: updated, created", "--input"} {
		if !strings.Contains(msg, want) {
			t.Errorf("FormatMissing() missing %q:\n%s", want, msg)
		}
	}

	if got := MissingRequired(fields, map[string]any{"query": "prs"}); len(got) != 0 {
		t.Errorf("MissingRequired() = %v, want none", got)
	}
}

func TestValidate(t *testing.T) {
	if err := ValidateString(strings.Repeat("x", MaxInputSize+1)); err == nil {
		t.Error("ValidateString() should reject oversized input")
	}
	if err := ValidateString("line\nnext\ttab"); err != nil {
		t.Errorf("ValidateString() error = %v", err)
	}
	if _, err := ValidateNumber("NaN"); err == nil {
		t.Error("ValidateNumber(NaN) should fail")
	}
	if _, err := ValidateNumber("  "); err == nil {
		t.Error("ValidateNumber(blank) should fail")
	}

	tests := []struct {
		in   string
		want bool
		ok   bool
	}{
		{"yes", true, true},
		{"ON", true, true},
		{"0", false, true},
		{"off", false, true},
		{"maybe", false, false},
	}
	for _, tt := range tests {
		got, err := ValidateBool(tt.in)
		if (err == nil) != tt.ok || got != tt.want {
			t.Errorf("ValidateBool(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestDefaults(t *testing.T) {
	if got := defaultString(spec.InputField{Default: float64(3)}); got != "3" {
		t.Errorf("defaultString(3) = %q", got)
	}
	if got := defaultString(spec.InputField{Default: true}); got != "true" {
		t.Errorf("defaultString(true) = %q", got)
	}
	if !defaultBool(spec.InputField{Default: "yes"}) {
		t.Error("defaultBool(yes) = false")
	}
	if defaultBool(spec.InputField{}) {
		t.Error("defaultBool(nil) = true")
	}
}
