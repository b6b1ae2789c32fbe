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
	"fmt"

	"github.com/AlecAivazis/survey/v2"

	"github.com/tombee/cmdspec/pkg/spec"
)

// SurveyPrompter implements Prompter using the survey library.
// It asks one question per line, which suits terminals where a full-screen
// form is unwanted.
type SurveyPrompter struct {
	interactive bool
}

// NewSurveyPrompter creates a new survey-based prompter.
func NewSurveyPrompter(interactive bool) *SurveyPrompter {
	return &SurveyPrompter{
		interactive: interactive,
	}
}

// Form asks for each field in order.
func (sp *SurveyPrompter) Form(ctx context.Context, title string, fields []spec.InputField) (map[string]any, error) {
	if len(fields) == 0 {
		return map[string]any{}, nil
	}
	if !sp.interactive {
		return nil, ErrNonInteractive
	}

	values := make(map[string]any, len(fields))
	for i, field := range fields {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		message := fmt.Sprintf("[%d/%d] %s", i+1, len(fields), field.Label)

		if field.Type == spec.InputCheckbox {
			var result bool
			if err := survey.AskOne(&survey.Confirm{Message: message, Default: defaultBool(field)}, &result); err != nil {
				return nil, err
			}
			values[field.ID] = result
			continue
		}

		var raw string
		if err := survey.AskOne(surveyPrompt(field, message), &raw, survey.WithValidator(func(ans interface{}) error {
			if str, ok := ans.(string); ok {
				return validator(field)(str)
			}
			return nil
		})); err != nil {
			return nil, err
		}

		v, err := convert(field, raw)
		if err != nil {
			return nil, err
		}
		values[field.ID] = v
	}
	return values, nil
}

func surveyPrompt(field spec.InputField, message string) survey.Prompt {
	switch field.Type {
	case spec.InputPassword:
		return &survey.Password{Message: message}
	case spec.InputTextarea:
		return &survey.Multiline{Message: message, Default: defaultString(field)}
	case spec.InputDropdown:
		options := make([]string, len(field.Options))
		p := &survey.Select{Message: message, Options: options}
		def := defaultString(field)
		for i, opt := range field.Options {
			options[i] = opt.Value
			if opt.Value == def {
				p.Default = def
			}
		}
		return p
	default:
		return &survey.Input{Message: message, Default: defaultString(field)}
	}
}

// Confirm collects a boolean answer using survey.Confirm.
func (sp *SurveyPrompter) Confirm(ctx context.Context, message string, def bool) (bool, error) {
	if !sp.interactive {
		return false, ErrNonInteractive
	}

	var result bool
	err := survey.AskOne(&survey.Confirm{Message: message, Default: def}, &result)
	return result, err
}

// IsInteractive returns whether the prompter can display interactive prompts.
func (sp *SurveyPrompter) IsInteractive() bool {
	return sp.interactive
}
