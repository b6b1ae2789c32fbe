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
// Package examples implements the examples command, which browses the
// command specs embedded in the binary and copies or installs them.
package examples

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tombee/cmdspec/internal/cli/format"
	"github.com/tombee/cmdspec/internal/cli/prompt"
	"github.com/tombee/cmdspec/internal/commands/completion"
	"github.com/tombee/cmdspec/internal/commands/shared"
	"github.com/tombee/cmdspec/internal/examples"
	pkgerrors "github.com/tombee/cmdspec/pkg/errors"
)

var newPrompter = func(interactive bool) prompt.Prompter {
	return prompt.NewHuhPrompter(interactive)
}

// ListResponse is the JSON output of examples list.
type ListResponse struct {
	shared.JSONResponse
	Examples []examples.Example `json:"examples"`
}

// NewCommand creates the examples command
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use: "examples",
		Annotations: map[string]string{
			"group": "specs",
		},
		Short: "Browse and install example specs",
		Long: `Browse, view, copy and install example command specs.

Examples are embedded in the cmdspec binary and work offline. Install one
into the configured store and run it by ID, or copy it to disk as a
starting point for your own spec.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	list := newListCmd()
	cmd.AddCommand(list)
	cmd.AddCommand(newShowCmd())
	cmd.AddCommand(newCopyCmd())
	cmd.AddCommand(newInstallCmd())

	// Default to list if no subcommand specified
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return list.RunE(cmd, args)
	}

	return cmd
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the embedded example specs",
		Example: `  # List all examples
  cmdspec examples list

  # Extract example names for scripting
  cmdspec examples list --json | jq -r '.examples[].name'`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			examplesList, err := examples.List()
			if err != nil {
				return fmt.Errorf("failed to list examples: %w", err)
			}

			out := cmd.OutOrStdout()
			if shared.GetJSON() {
				return shared.EmitJSON(out, ListResponse{
					JSONResponse: shared.NewResponse("examples list"),
					Examples:     examplesList,
				})
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tMODE\tDESCRIPTION")
			for _, ex := range examplesList {
				fmt.Fprintf(w, "%s\t%s\t%s\n", ex.Name, ex.Mode, ex.Description)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			if !shared.GetQuiet() {
				fmt.Fprintln(out)
				fmt.Fprintln(out, shared.Muted.Render("Use 'cmdspec examples show <name>' to view an example"))
				fmt.Fprintln(out, shared.Muted.Render("Use 'cmdspec examples install <name>' to add it to your store"))
			}
			return nil
		},
	}
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Print an example spec",
		Long: `Print the JSON of an example spec, highlighted when writing to a terminal.

See also: cmdspec examples copy, cmdspec validate`,
		Example: `  # View an example
  cmdspec examples show github-pulls

  # Save it under another name
  cmdspec examples show word-count > counter.json`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completion.CompleteExampleNames,
		SilenceUsage:      true,
		SilenceErrors:     true,
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := examples.Get(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			rendered, err := format.FormatJSON(string(content), format.Styled(out))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(out, strings.TrimRight(rendered, "\n"))
			return err
		},
	}
}

func newCopyCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "copy <name> [dest]",
		Short: "Copy an example to the filesystem",
		Long: `Copy an embedded example spec to the local filesystem.

If no destination is given the example is written to '<name>.json' in the
current directory. A destination directory receives '<name>.json'. An
existing file is only replaced after confirmation or with --force.`,
		Example: `  # Copy to the current directory
  cmdspec examples copy github-pulls

  # Copy into a directory and validate it
  cmdspec examples copy word-count ./specs/ && cmdspec validate ./specs/word-count.json`,
		Args:              cobra.RangeArgs(1, 2),
		ValidArgsFunction: completion.CompleteExampleNames,
		SilenceUsage:      true,
		SilenceErrors:     true,
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if !examples.Exists(name) {
				return &pkgerrors.NotFoundError{Resource: "example", ID: name}
			}

			destPath := name + ".json"
			if len(args) > 1 {
				destPath = args[1]
			}
			if stat, err := os.Stat(destPath); err == nil && stat.IsDir() {
				destPath = filepath.Join(destPath, name+".json")
			}

			out := cmd.OutOrStdout()
			if _, err := os.Stat(destPath); err == nil && !force {
				p := newPrompter(!shared.IsNonInteractive())
				ok, err := p.Confirm(cmd.Context(), fmt.Sprintf("File %s already exists. Overwrite?", destPath), false)
				if errors.Is(err, prompt.ErrNonInteractive) {
					return fmt.Errorf("refusing to overwrite %s: pass --force", destPath)
				}
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(out, shared.Muted.Render("cancelled"))
					return nil
				}
			}

			if err := examples.CopyTo(name, destPath); err != nil {
				return err
			}

			if shared.GetJSON() {
				return shared.EmitJSON(out, struct {
					shared.JSONResponse
					Name string `json:"name"`
					Path string `json:"path"`
				}{shared.NewResponse("examples copy"), name, destPath})
			}
			fmt.Fprintln(out, shared.RenderOK(fmt.Sprintf("copied %s to %s", name, destPath)))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite the destination without asking")

	return cmd
}

func newInstallCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "install <name>",
		Short: "Save an example into the spec store",
		Long: `Install validates an example and saves it to the configured store under
its ID, after which it can be run with 'cmdspec run <id>'. A stored spec
with the same ID is only replaced with --force.`,
		Example: `  cmdspec examples install word-count
  cmdspec run word-count --input text="hello world"`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completion.CompleteExampleNames,
		SilenceUsage:      true,
		SilenceErrors:     true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cs, err := examples.Load(args[0])
			if err != nil {
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

			if err := app.Store.Save(ctx, cs); err != nil {
				return fmt.Errorf("failed to save spec: %w", err)
			}

			out := cmd.OutOrStdout()
			if shared.GetJSON() {
				return shared.EmitJSON(out, struct {
					shared.JSONResponse
					ID       string `json:"id"`
					Replaced bool   `json:"replaced"`
				}{shared.NewResponse("examples install"), cs.ID, replaced})
			}

			verb := "installed"
			if replaced {
				verb = "reinstalled"
			}
			fmt.Fprintln(out, shared.RenderOK(fmt.Sprintf("%s %s", verb, cs.ID)))
			if !shared.GetQuiet() {
				fmt.Fprintln(out, shared.Muted.Render(fmt.Sprintf("Run it with 'cmdspec run %s'", cs.ID)))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Replace a stored spec with the same ID")

	return cmd
}
