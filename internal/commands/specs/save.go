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
	"time"

	"github.com/spf13/cobra"

	"github.com/tombee/cmdspec/internal/commands/completion"
	"github.com/tombee/cmdspec/internal/commands/shared"
	pkgerrors "github.com/tombee/cmdspec/pkg/errors"
	"github.com/tombee/cmdspec/pkg/spec"
)

// SaveResponse is the JSON output of save.
type SaveResponse struct {
	shared.JSONResponse
	ID       string   `json:"id"`
	Replaced bool     `json:"replaced"`
	Warnings []string `json:"warnings"`
}

// NewSaveCommand creates the save command
func NewSaveCommand() *cobra.Command {
	var (
		force bool
		touch bool
	)

	cmd := &cobra.Command{
		Use:     "save <file>",
		Aliases: []string{"import"},
		Short:   "Validate a spec file and store it",
		Annotations: map[string]string{
			"group": "specs",
		},
		Long: `Save validates a spec file and writes it to the configured store under
its ID. Invalid specs are never stored. A spec with the same ID is only
replaced with --force.`,
		Example: `  # Store a new spec
  cmdspec save github-prs.json

  # Replace the stored version and bump metadata.modified
  cmdspec save github-prs.yaml --force --touch`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completion.CompleteSpecFiles,
		SilenceUsage:      true,
		SilenceErrors:     true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cs, err := spec.ParseFile(args[0])
			if err != nil {
				var findings spec.ValidationErrors
				if errors.As(err, &findings) {
					return shared.NewInvalidSpecError(fmt.Sprintf("%s is not a valid spec", args[0]), err)
				}
				return err
			}

			app, err := shared.NewApp(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer app.Close()

			ctx := cmd.Context()
			replaced := false
			if _, err := app.Store.Load(ctx, cs.ID); err == nil {
				if !force {
					return &pkgerrors.ValidationError{
						Field:      "id",
						Message:    fmt.Sprintf("spec %q already exists", cs.ID),
						Suggestion: "pass --force to replace it",
					}
				}
				replaced = true
			} else if pkgerrors.Classify(err) != "not_found" {
				return err
			}

			if touch {
				cs.Metadata.Modified = time.Now().UTC().Format(time.RFC3339)
			}
			if err := app.Store.Save(ctx, cs); err != nil {
				return fmt.Errorf("failed to save spec: %w", err)
			}

			warnings := spec.Lint(cs)
			out := cmd.OutOrStdout()
			if shared.GetJSON() {
				if warnings == nil {
					warnings = []string{}
				}
				return shared.EmitJSON(out, SaveResponse{
					JSONResponse: shared.NewResponse("save"),
					ID:           cs.ID,
					Replaced:     replaced,
					Warnings:     warnings,
				})
			}

			verb := "saved"
			if replaced {
				verb = "replaced"
			}
			fmt.Fprintln(out, shared.RenderOK(fmt.Sprintf("%s %s", verb, cs.ID)))
			for _, w := range warnings {
				fmt.Fprintln(out, shared.RenderWarn(w))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Replace a stored spec with the same ID")
	cmd.Flags().BoolVar(&touch, "touch", false, "Set metadata.modified to the current time")

	return cmd
}
