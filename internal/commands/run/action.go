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
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tombee/cmdspec/internal/commands/completion"
	"github.com/tombee/cmdspec/internal/commands/shared"
	pkgerrors "github.com/tombee/cmdspec/pkg/errors"
	"github.com/tombee/cmdspec/pkg/render"
)

// ActionResponse is the JSON output of action.
type ActionResponse struct {
	shared.JSONResponse
	RunID  string `json:"runId"`
	Action string `json:"action"`
	Output any    `json:"output"`
}

// NewActionCommand creates the action command
func NewActionCommand() *cobra.Command {
	var (
		opts      runOptions
		itemIndex int
	)

	cmd := &cobra.Command{
		Use:   "action <id|file> <action-index>",
		Short: "Run one of a spec's actions",
		Annotations: map[string]string{
			"group": "execution",
		},
		Long: `Action runs the spec, then executes the action at <action-index> against
the final context of the run. For list specs, --item-index picks the list
element bound as {{item}}.

Actions run once per invocation. Their output is printed; it is not bound
into the context.`,
		Example: `  # Copy the title of the third pull request
  cmdspec action github-prs 0 --item-index 2`,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completion.CompleteSpecs,
		SilenceUsage:      true,
		SilenceErrors:     true,
		RunE: func(cmd *cobra.Command, args []string) error {
			actionIndex, err := strconv.Atoi(args[1])
			if err != nil {
				return &pkgerrors.ValidationError{
					Field:      "action-index",
					Message:    fmt.Sprintf("%q is not a number", args[1]),
					Suggestion: "run 'cmdspec show " + args[0] + "' to list the actions",
				}
			}

			app, err := shared.NewApp(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer app.Close()

			cs, err := shared.ResolveSpec(cmd.Context(), app.Store, args[0])
			if err != nil {
				return err
			}
			if actionIndex < 0 || actionIndex >= len(cs.Actions) {
				return shared.NewNotFoundError(
					fmt.Sprintf("spec %s has no action %d (%d defined)", cs.ID, actionIndex, len(cs.Actions)), nil)
			}

			result, interp, err := execute(cmd.Context(), cmd, app, cs, &opts)
			if err != nil {
				return err
			}

			var item any
			if itemIndex >= 0 {
				if item, err = render.Item(result, itemIndex); err != nil {
					return shared.NewNotFoundError(fmt.Sprintf("item %d is out of range", itemIndex), err)
				}
			}

			output, err := interp.RunAction(cmd.Context(), cs, actionIndex, result, item)
			if err != nil {
				return err
			}

			output = resultMasker(result).MaskValue(output)
			out := cmd.OutOrStdout()
			if shared.GetJSON() {
				resp := ActionResponse{
					JSONResponse: shared.NewResponse("action"),
					RunID:        result.RunID,
					Action:       cs.Actions[actionIndex].Title,
					Output:       output,
				}
				return shared.EmitJSON(out, resp)
			}
			return printValue(out, output)
		},
	}

	opts.register(cmd)
	cmd.Flags().IntVar(&itemIndex, "item-index", -1, "Index of the list item bound as {{item}}")

	return cmd
}
