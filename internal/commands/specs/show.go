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
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tombee/cmdspec/internal/cli/format"
	"github.com/tombee/cmdspec/internal/commands/completion"
	"github.com/tombee/cmdspec/internal/commands/shared"
	"github.com/tombee/cmdspec/pkg/spec"
)

// NewShowCommand creates the show command
func NewShowCommand() *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "show <id|file>",
		Short: "Show a spec",
		Annotations: map[string]string{
			"group": "specs",
		},
		Long: `Show prints a summary of a stored spec or spec file: its inputs, steps,
UI binding and actions. --raw (or --json) prints the document itself,
highlighted when stdout is a terminal.`,
		Example: `  # Summarize a stored spec
  cmdspec show github-prs

  # Print the stored document
  cmdspec show github-prs --raw > github-prs.json`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completion.CompleteSpecs,
		SilenceUsage:      true,
		SilenceErrors:     true,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := shared.NewApp(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer app.Close()

			cs, err := shared.ResolveSpec(cmd.Context(), app.Store, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if raw || shared.GetJSON() {
				data, err := spec.Marshal(cs)
				if err != nil {
					return err
				}
				tty := !shared.GetJSON() && format.Styled(out)
				text, err := format.FormatCode(string(data), "json", tty)
				if err != nil {
					return err
				}
				fmt.Fprint(out, text)
				return nil
			}

			printSummary(out, cs)
			return nil
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Print the spec document")

	return cmd
}

func printSummary(out io.Writer, cs *spec.CommandSpec) {
	fmt.Fprintln(out, shared.Header.Render(cs.Title))
	if cs.Description != "" {
		fmt.Fprintln(out, cs.Description)
	}
	fmt.Fprintln(out)

	field := func(label, value string) {
		fmt.Fprintf(out, "%s %s\n", shared.RenderLabel(fmt.Sprintf("%-9s", label+":")), value)
	}
	field("id", cs.ID)
	field("mode", string(cs.Mode))
	if len(cs.Metadata.Tags) > 0 {
		field("tags", strings.Join(cs.Metadata.Tags, ", "))
	}
	field("created", cs.Metadata.Created)
	field("modified", cs.Metadata.Modified)
	if cs.Metadata.Author != "" {
		field("author", cs.Metadata.Author)
	}

	if len(cs.Inputs) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, shared.Bold.Render("Inputs"))
		for _, in := range cs.Inputs {
			line := fmt.Sprintf("  %s (%s) %s", in.ID, in.Type, in.Label)
			if in.Required {
				line += shared.StatusWarn.Render(" required")
			}
			fmt.Fprintln(out, line)
		}
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, shared.Bold.Render("Steps"))
	if len(cs.Steps) == 0 {
		fmt.Fprintln(out, shared.Muted.Render("  (none)"))
	}
	for i, op := range cs.Steps {
		line := fmt.Sprintf("  %d %s", i, op.Type)
		if op.OutputVar != "" {
			line += " → " + op.OutputVar
		}
		fmt.Fprintln(out, line)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, shared.Bold.Render("UI"))
	fmt.Fprintf(out, "  %s from %s\n", cs.UI.Mode, cs.UI.DataSource)

	if len(cs.Actions) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, shared.Bold.Render("Actions"))
		for i, a := range cs.Actions {
			fmt.Fprintf(out, "  %d %s (%s)\n", i, a.Title, a.Operation.Type)
		}
	}
}
