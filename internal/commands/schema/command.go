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
package schema

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tombee/cmdspec/internal/cli/format"
	"github.com/tombee/cmdspec/internal/commands/shared"
	"github.com/tombee/cmdspec/schemas"
)

// NewCommand creates the schema command
func NewCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the command spec JSON Schema",
		Annotations: map[string]string{
			"group": "specs",
		},
		Long: `Schema prints the JSON Schema describing command spec documents. Point
an editor at it for completion while authoring specs, or hand it to a
generator so its output passes validation.`,
		Example: `  # Print the schema
  cmdspec schema

  # Save it next to your specs
  cmdspec schema -o command-spec.schema.json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			data := schemas.GetCommandSpecSchema()

			if output != "" {
				if err := os.WriteFile(output, data, 0o644); err != nil {
					return fmt.Errorf("failed to write schema: %w", err)
				}
				if !shared.GetQuiet() {
					fmt.Fprintln(cmd.ErrOrStderr(), shared.RenderOK("schema written to "+output))
				}
				return nil
			}

			out := cmd.OutOrStdout()
			if !shared.GetJSON() && format.Styled(out) {
				highlighted, err := format.FormatCode(string(data), "json", true)
				if err == nil {
					fmt.Fprint(out, highlighted)
					return nil
				}
			}
			_, err := out.Write(data)
			return err
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the schema to a file")

	return cmd
}
