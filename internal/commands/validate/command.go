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
package validate

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/tombee/cmdspec/internal/commands/completion"
	"github.com/tombee/cmdspec/internal/commands/shared"
	"github.com/tombee/cmdspec/pkg/spec"
)

// Result is the JSON output of a successful validation.
type Result struct {
	shared.JSONResponse
	Valid    bool     `json:"valid"`
	Spec     Summary  `json:"spec"`
	Warnings []string `json:"warnings"`
}

// Summary describes the validated spec.
type Summary struct {
	ID      string    `json:"id"`
	Title   string    `json:"title"`
	Mode    spec.Mode `json:"mode"`
	Steps   int       `json:"steps"`
	Inputs  int       `json:"inputs"`
	Actions int       `json:"actions"`
}

// NewCommand creates the validate command
func NewCommand() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Validate a command spec file",
		Annotations: map[string]string{
			"group": "specs",
		},
		Long: `Validate checks that a spec file is well-formed JSON (or YAML) and that
every field, operation and template-bearing value conforms to the command
spec format. Every finding is reported, not only the first. Nothing is run.

Valid specs may still carry warnings: outputVar names reused across
operation types, names that shadow interpreter variables, and credentials
embedded in step configs. Use --strict to fail on warnings.

Pass - to read a JSON spec from stdin.

See also: cmdspec run, cmdspec schema`,
		Example: `  # Validate a spec file
  cmdspec validate github-prs.json

  # Validate a YAML-authored spec and fail on warnings
  cmdspec validate github-prs.yaml --strict

  # Validate from stdin with JSON output
  cat spec.json | cmdspec validate - --json`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completion.CompleteSpecFiles,
		SilenceUsage:      true,
		SilenceErrors:     true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, args[0], strict)
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Treat warnings as errors")

	return cmd
}

func runValidate(cmd *cobra.Command, path string, strict bool) error {
	out := cmd.OutOrStdout()

	cs, err := load(cmd, path)
	if err != nil {
		if shared.GetJSON() {
			if jsonErr := shared.EmitJSONError(out, "validate", shared.JSONErrors(err)); jsonErr != nil {
				return jsonErr
			}
		} else {
			printFindings(out, err)
		}
		return shared.NewInvalidSpecError(fmt.Sprintf("%s is not a valid spec", path), nil)
	}

	warnings := spec.Lint(cs)
	if warnings == nil {
		warnings = []string{}
	}

	if shared.GetJSON() {
		resp := Result{
			JSONResponse: shared.NewResponse("validate"),
			Valid:        true,
			Spec: Summary{
				ID:      cs.ID,
				Title:   cs.Title,
				Mode:    cs.Mode,
				Steps:   len(cs.Steps),
				Inputs:  len(cs.Inputs),
				Actions: len(cs.Actions),
			},
			Warnings: warnings,
		}
		if strict && len(warnings) > 0 {
			resp.Success = false
		}
		if err := shared.EmitJSON(out, resp); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(out, shared.RenderOK(fmt.Sprintf("%s is valid", path)))
		fmt.Fprintf(out, "  %s %s\n", shared.RenderLabel("id:   "), cs.ID)
		fmt.Fprintf(out, "  %s %s\n", shared.RenderLabel("mode: "), cs.Mode)
		fmt.Fprintf(out, "  %s %d\n", shared.RenderLabel("steps:"), len(cs.Steps))
		for _, w := range warnings {
			fmt.Fprintln(out, shared.RenderWarn(w))
		}
	}

	if strict && len(warnings) > 0 {
		return shared.NewInvalidSpecError(fmt.Sprintf("%s has %d warning(s)", path, len(warnings)), nil)
	}
	return nil
}

func load(cmd *cobra.Command, path string) (*spec.CommandSpec, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return spec.Parse(data)
	}
	return spec.ParseFile(path)
}

func printFindings(w io.Writer, err error) {
	findings, ok := err.(spec.ValidationErrors)
	if !ok {
		fmt.Fprintln(w, shared.RenderError(err.Error()))
		return
	}
	fmt.Fprintln(w, shared.Header.Render(fmt.Sprintf("%d problem(s) found", len(findings))))
	for _, f := range findings {
		fmt.Fprintln(w, shared.RenderError(fmt.Sprintf("%s %s", shared.RenderLabel(f.Path), f.Message)))
	}
}
