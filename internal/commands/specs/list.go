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
	"strings"
	"text/tabwriter"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/tombee/cmdspec/internal/commands/completion"
	"github.com/tombee/cmdspec/internal/commands/shared"
	pkgerrors "github.com/tombee/cmdspec/pkg/errors"
	"github.com/tombee/cmdspec/pkg/spec"
)

// ListResponse is the JSON output of list.
type ListResponse struct {
	shared.JSONResponse
	Specs []Summary `json:"specs"`
}

// NewListCommand creates the list command
func NewListCommand() *cobra.Command {
	var (
		tags  []string
		match string
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored specs",
		Annotations: map[string]string{
			"group": "specs",
		},
		Long: `List shows the specs in the configured store, ordered by ID.

Filters:
  --tag <tag>      Only specs carrying the tag (repeat to require several)
  --match <glob>   Only specs whose ID matches a glob (e.g. "github-*")`,
		Example: `  # List every stored spec
  cmdspec list

  # Specs tagged github whose ID starts with pr-
  cmdspec list --tag github --match 'pr-*'`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if match != "" && !doublestar.ValidatePattern(match) {
				return &pkgerrors.ValidationError{
					Field:      "match",
					Message:    fmt.Sprintf("invalid glob %q", match),
					Suggestion: "use *, ?, [a-z] or {a,b} patterns",
				}
			}

			app, err := shared.NewApp(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer app.Close()

			all, err := app.Store.LoadAll(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list specs: %w", err)
			}

			summaries := make([]Summary, 0, len(all))
			for _, cs := range filter(all, tags, match) {
				summaries = append(summaries, summarize(cs))
			}

			out := cmd.OutOrStdout()
			if shared.GetJSON() {
				return shared.EmitJSON(out, ListResponse{
					JSONResponse: shared.NewResponse("list"),
					Specs:        summaries,
				})
			}

			if len(summaries) == 0 {
				fmt.Fprintln(out, "No specs found.")
				fmt.Fprintln(out)
				fmt.Fprintln(out, "Run 'cmdspec new <title> --save' to scaffold one, or 'cmdspec save <file>' to import one.")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tMODE\tSTEPS\tTAGS")
			for _, s := range summaries {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", s.ID, s.Title, s.Mode, s.Steps, strings.Join(s.Tags, ","))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringSliceVarP(&tags, "tag", "t", nil, "Only list specs with this tag")
	cmd.Flags().StringVarP(&match, "match", "m", "", "Only list specs whose ID matches a glob")
	_ = cmd.RegisterFlagCompletionFunc("tag", completion.CompleteTags)

	return cmd
}

// filter keeps the specs carrying every tag whose ID matches the glob.
func filter(all []*spec.CommandSpec, tags []string, match string) []*spec.CommandSpec {
	kept := make([]*spec.CommandSpec, 0, len(all))
	for _, cs := range all {
		if match != "" {
			if ok, _ := doublestar.Match(match, cs.ID); !ok {
				continue
			}
		}
		hasAll := true
		for _, tag := range tags {
			if !cs.HasTag(tag) {
				hasAll = false
				break
			}
		}
		if hasAll {
			kept = append(kept, cs)
		}
	}
	return kept
}
