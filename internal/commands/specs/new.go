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
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tombee/cmdspec/internal/commands/completion"
	"github.com/tombee/cmdspec/internal/commands/shared"
	pkgerrors "github.com/tombee/cmdspec/pkg/errors"
	"github.com/tombee/cmdspec/pkg/spec"
)

// NewNewCommand creates the new command
func NewNewCommand() *cobra.Command {
	var (
		mode     string
		id       string
		tags     []string
		save     bool
		output   string
		yamlDocs bool
	)

	cmd := &cobra.Command{
		Use:   "new <title>",
		Short: "Scaffold a new spec",
		Annotations: map[string]string{
			"group": "specs",
		},
		Long: `New writes a valid skeleton spec for the chosen mode with a fresh UUID
and current timestamps. Edit the steps, then run it with 'cmdspec run'.

  list     fetches JSON over HTTP and lists the elements
  detail   renders a markdown document
  form     asks for a query, then renders it
  view     like detail, for custom views

The skeleton is printed to stdout unless --output or --save is given.`,
		Example: `  # Print a list skeleton
  cmdspec new "Open pull requests"

  # Write a form skeleton as YAML
  cmdspec new "Search issues" --mode form --yaml -o search.yaml

  # Store a detail skeleton straight away
  cmdspec new "Release notes" --mode detail --tag docs --save`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if id == "" {
				id = uuid.NewString()
			}
			cs, err := Scaffold(args[0], spec.Mode(mode), id, tags, time.Now())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if save {
				app, err := shared.NewApp(cmd.ErrOrStderr())
				if err != nil {
					return err
				}
				defer app.Close()
				if err := app.Store.Save(cmd.Context(), cs); err != nil {
					return fmt.Errorf("failed to save spec: %w", err)
				}
				if !shared.GetQuiet() {
					fmt.Fprintln(cmd.ErrOrStderr(), shared.RenderOK("saved "+cs.ID))
				}
				if output == "" {
					fmt.Fprintln(out, cs.ID)
					return nil
				}
			}

			data, err := encode(cs, yamlDocs || isYAMLPath(output))
			if err != nil {
				return err
			}
			if output != "" {
				if err := os.WriteFile(output, data, 0o644); err != nil {
					return fmt.Errorf("failed to write spec: %w", err)
				}
				if !shared.GetQuiet() {
					fmt.Fprintln(cmd.ErrOrStderr(), shared.RenderOK("wrote "+output))
				}
				return nil
			}
			_, err = out.Write(data)
			return err
		},
	}

	cmd.Flags().StringVar(&mode, "mode", string(spec.ModeList), "Spec mode: list, detail, form or view")
	cmd.Flags().StringVar(&id, "id", "", "Spec ID (default: a new UUID)")
	cmd.Flags().StringSliceVarP(&tags, "tag", "t", nil, "Tag to add to metadata")
	cmd.Flags().BoolVar(&save, "save", false, "Store the spec instead of printing it")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the spec to a file")
	cmd.Flags().BoolVar(&yamlDocs, "yaml", false, "Emit YAML instead of JSON")
	_ = cmd.RegisterFlagCompletionFunc("mode", completion.CompleteModes)

	return cmd
}

// Scaffold builds a valid skeleton spec for mode.
func Scaffold(title string, mode spec.Mode, id string, tags []string, now time.Time) (*spec.CommandSpec, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, &pkgerrors.ValidationError{Field: "title", Message: "title cannot be empty"}
	}
	if tags == nil {
		tags = []string{}
	}

	stamp := now.UTC().Format(time.RFC3339)
	cs := &spec.CommandSpec{
		ID:          id,
		Title:       title,
		Description: title,
		Mode:        mode,
		Metadata: spec.Metadata{
			Created:  stamp,
			Modified: stamp,
			Tags:     tags,
		},
	}

	switch mode {
	case spec.ModeList:
		cs.Steps = []spec.Operation{{
			Type: spec.OpHTTPRequest,
			Config: map[string]any{
				"url":     "https://api.example.com/items",
				"method":  "GET",
				"headers": map[string]any{"Accept": "application/json"},
			},
			OutputVar: "items",
		}}
		cs.UI = spec.UIBinding{
			Mode:       spec.ModeList,
			DataSource: "items",
			ItemProps:  &spec.ItemProps{Title: "{{item.title}}", Subtitle: "{{item.description}}"},
		}
		cs.Actions = []spec.ActionDef{{
			Title:     "Copy title",
			Operation: spec.Operation{Type: spec.OpClipboard, Config: map[string]any{"action": "copy", "text": "{{item.title}}"}},
		}}
	case spec.ModeForm:
		cs.Inputs = []spec.InputField{{ID: "query", Type: spec.InputText, Label: "Query", Required: true}}
		cs.Steps = []spec.Operation{{
			Type:      spec.OpTransform,
			Config:    map[string]any{"template": "You searched for **{{query}}**", "data": map[string]any{"query": "{{input.query}}"}},
			OutputVar: "content",
		}}
		cs.UI = spec.UIBinding{Mode: spec.ModeDetail, DataSource: "content", Content: "{{content}}"}
	case spec.ModeDetail, spec.ModeView:
		cs.Steps = []spec.Operation{{
			Type:      spec.OpTransform,
			Config:    map[string]any{"template": "# {{title}}\n\nGenerated {{created}}.", "data": map[string]any{"title": title, "created": stamp}},
			OutputVar: "content",
		}}
		cs.UI = spec.UIBinding{Mode: spec.ModeDetail, DataSource: "content", Content: "{{content}}"}
	default:
		return nil, &pkgerrors.ValidationError{
			Field:      "mode",
			Message:    fmt.Sprintf("unknown mode %q", mode),
			Suggestion: "use list, detail, form or view",
		}
	}

	if err := spec.Check(cs); err != nil {
		return nil, err
	}
	return cs, nil
}

func encode(cs *spec.CommandSpec, asYAML bool) ([]byte, error) {
	if !asYAML {
		return spec.Marshal(cs)
	}
	data, err := yaml.Marshal(cs)
	if err != nil {
		return nil, fmt.Errorf("encoding spec %s: %w", cs.ID, err)
	}
	return data, nil
}

func isYAMLPath(path string) bool {
	return strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml")
}
