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
package specs

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tombee/cmdspec/internal/cli/prompt"
	"github.com/tombee/cmdspec/internal/commands/completion"
	"github.com/tombee/cmdspec/internal/commands/shared"
)

// NewDeleteCommand creates the delete command
func NewDeleteCommand() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a stored spec",
		Annotations: map[string]string{
			"group": "specs",
		},
		Long: `Delete removes a spec from the configured store. You are asked to
confirm unless --yes is given; non-interactive sessions require --yes.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completion.CompleteSpecIDs,
		SilenceUsage:      true,
		SilenceErrors:     true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]

			app, err := shared.NewApp(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer app.Close()

			ctx := cmd.Context()
			cs, err := app.Store.Load(ctx, id)
			if err != nil {
				return err
			}

			if !yes {
				p := newPrompter(!shared.IsNonInteractive())
				ok, err := p.Confirm(ctx, fmt.Sprintf("Delete %q (%s)?", cs.Title, cs.ID), false)
				if errors.Is(err, prompt.ErrNonInteractive) {
					return fmt.Errorf("refusing to delete %s without confirmation: pass --yes", id)
				}
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), shared.Muted.Render("cancelled"))
					return nil
				}
			}

			if err := app.Store.Delete(ctx, id); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if shared.GetJSON() {
				return shared.EmitJSON(out, struct {
					shared.JSONResponse
					ID string `json:"id"`
				}{shared.NewResponse("delete"), id})
			}
			fmt.Fprintln(out, shared.RenderOK("deleted "+id))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Delete without asking")

	return cmd
}
