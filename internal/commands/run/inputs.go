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
	"context"
	"errors"
	"maps"

	"github.com/tombee/cmdspec/internal/cli/prompt"
	"github.com/tombee/cmdspec/internal/commands/shared"
	"github.com/tombee/cmdspec/pkg/spec"
)

// collectInputs resolves the form values for cs. File and flag values come
// first; the prompter is asked for whatever they leave unset. Required
// inputs that are still missing fail with exit code 3.
func collectInputs(ctx context.Context, cs *spec.CommandSpec, pairs []string, inputFile string, p prompt.Prompter) (map[string]any, error) {
	values, err := shared.ParseInputs(pairs, inputFile, cs.Inputs)
	if err != nil {
		return nil, err
	}
	if cs.Mode != spec.ModeForm || len(cs.Inputs) == 0 {
		return values, nil
	}

	if pending := prompt.Pending(cs.Inputs, values); len(pending) > 0 && p.IsInteractive() {
		answers, err := p.Form(ctx, cs.Title, pending)
		switch {
		case errors.Is(err, prompt.ErrNonInteractive):
		case err != nil:
			return nil, err
		default:
			maps.Copy(values, answers)
		}
	}

	if missing := prompt.MissingRequired(cs.Inputs, values); len(missing) > 0 {
		return nil, shared.NewMissingInputError(prompt.FormatMissing(missing), nil)
	}
	return values, nil
}
