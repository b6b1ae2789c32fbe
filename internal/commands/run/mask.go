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
package run

import (
	"fmt"

	"github.com/tombee/cmdspec/pkg/interpreter"
	"github.com/tombee/cmdspec/pkg/render"
	"github.com/tombee/cmdspec/pkg/secrets"
)

// resultMasker collects the secret-looking values of the environment the
// run saw.
func resultMasker(result *interpreter.Result) *secrets.Masker {
	m := secrets.NewMasker()
	if result == nil {
		return m
	}
	env, _ := result.Context[interpreter.VarEnv].(map[string]any)
	vars := make(map[string]string, len(env))
	for k, v := range env {
		vars[k] = fmt.Sprint(v)
	}
	m.AddSecretsFromEnv(vars)
	return m
}

// maskResult returns a copy of result with secrets masked in its context
// and error messages.
func maskResult(m *secrets.Masker, result *interpreter.Result) *interpreter.Result {
	if result == nil || m.Len() == 0 {
		return result
	}
	masked := *result
	masked.Context = m.MaskMap(result.Context)
	masked.Error = m.Mask(result.Error)
	masked.Steps = make([]interpreter.StepRecord, len(result.Steps))
	for i, step := range result.Steps {
		step.Error = m.Mask(step.Error)
		masked.Steps[i] = step
	}
	return &masked
}

// maskView returns a copy of view with secrets masked in every rendered
// string.
func maskView(m *secrets.Masker, view *render.Projection) *render.Projection {
	if view == nil || m.Len() == 0 {
		return view
	}
	masked := *view
	masked.Content = m.Mask(view.Content)
	if view.Items != nil {
		masked.Items = make([]render.ListItem, len(view.Items))
		for i, item := range view.Items {
			item.Title = m.Mask(item.Title)
			item.Subtitle = m.Mask(item.Subtitle)
			item.Accessories, _ = m.MaskValue(item.Accessories).([]string)
			item.Value = m.MaskValue(item.Value)
			masked.Items[i] = item
		}
	}
	return &masked
}
