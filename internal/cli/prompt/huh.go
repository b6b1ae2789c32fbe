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

	"github.com/charmbracelet/huh"

	"github.com/tombee/cmdspec/pkg/spec"
)

// HuhPrompter implements Prompter with a single huh form per spec.
type HuhPrompter struct {
	interactive bool

	// run shows the form; replaced in tests.
	run func(ctx context.Context, form *huh.Form) error
}

// NewHuhPrompter creates a new huh-based prompter.
func NewHuhPrompter(interactive bool) *HuhPrompter {
	return &HuhPrompter{
		interactive: interactive,
		run: func(ctx context.Context, form *huh.Form) error {
			return form.RunWithContext(ctx)
		},
	}
}

// answer is the value a huh field writes into.
type answer struct {
	field spec.InputField
	text  string
	check bool
}

// Form renders every field in one group and converts the answers.
func (hp *HuhPrompter) Form(ctx context.Context, title string, fields []spec.InputField) (map[string]any, error) {
	if len(fields) == 0 {
		return map[string]any{}, nil
	}
	if !hp.interactive {
		return nil, ErrNonInteractive
	}

	answers := make([]*answer, len(fields))
	huhFields := make([]huh.Field, 0, len(fields)+1)
	if title != "" {
		huhFields = append(huhFields, huh.NewNote().Title(title))
	}
	for i, field := range fields {
		a := &answer{field: field, text: defaultString(field), check: defaultBool(field)}
		answers[i] = a
		huhFields = append(huhFields, huhField(a))
	}

	form := huh.NewForm(huh.NewGroup(huhFields...))
	if err := hp.run(ctx, form); err != nil {
		return nil, err
	}

	values := make(map[string]any, len(answers))
	for _, a := range answers {
		if a.field.Type == spec.InputCheckbox {
			values[a.field.ID] = a.check
			continue
		}
		v, err := convert(a.field, a.text)
		if err != nil {
			return nil, err
		}
		values[a.field.ID] = v
	}
	return values, nil
}

func huhField(a *answer) huh.Field {
	title := a.field.Label
	if a.field.Required {
		title += " *"
	}

	switch a.field.Type {
	case spec.InputCheckbox:
		return huh.NewConfirm().Title(title).Value(&a.check)
	case spec.InputDropdown:
		options := make([]huh.Option[string], len(a.field.Options))
		for i, opt := range a.field.Options {
			options[i] = huh.NewOption(opt.Title, opt.Value)
		}
		return huh.NewSelect[string]().Title(title).Options(options...).Value(&a.text)
	case spec.InputTextarea:
		return huh.NewText().Title(title).Placeholder(a.field.Placeholder).Value(&a.text).Validate(validator(a.field))
	default:
		input := huh.NewInput().Title(title).Placeholder(a.field.Placeholder).Value(&a.text).Validate(validator(a.field))
		if a.field.Type == spec.InputPassword {
			input = input.EchoMode(huh.EchoModePassword)
		}
		return input
	}
}

// Confirm asks a yes/no question with huh.Confirm.
func (hp *HuhPrompter) Confirm(ctx context.Context, message string, def bool) (bool, error) {
	if !hp.interactive {
		return false, ErrNonInteractive
	}
	result := def
	form := huh.NewForm(huh.NewGroup(huh.NewConfirm().Title(message).Value(&result)))
	if err := hp.run(ctx, form); err != nil {
		return false, err
	}
	return result, nil
}

// IsInteractive returns whether the prompter can display interactive prompts.
func (hp *HuhPrompter) IsInteractive() bool {
	return hp.interactive
}
