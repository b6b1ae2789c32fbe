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
// Package run implements the run and action commands, which execute a spec
// and print what its UI binding renders.
package run

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/tombee/cmdspec/internal/cli/prompt"
	"github.com/tombee/cmdspec/internal/cli/timeline"
	"github.com/tombee/cmdspec/internal/commands/completion"
	"github.com/tombee/cmdspec/internal/commands/shared"
	"github.com/tombee/cmdspec/internal/tracing"
	"github.com/tombee/cmdspec/pkg/interpreter"
	"github.com/tombee/cmdspec/pkg/spec"
)

// newPrompter builds the form prompter; tests replace it.
var newPrompter = func(interactive, plain bool) prompt.Prompter {
	if plain {
		return prompt.NewSurveyPrompter(interactive)
	}
	return prompt.NewHuhPrompter(interactive)
}

// runOptions holds the flags shared by run and action.
type runOptions struct {
	inputs        []string
	inputFile     string
	noInteractive bool
	plainPrompts  bool
	trace         bool
	metricsFile   string
}

func (o *runOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVarP(&o.inputs, "input", "i", nil, "Form input in id=value format")
	cmd.Flags().StringVar(&o.inputFile, "input-file", "", "YAML or JSON file with form inputs")
	cmd.Flags().BoolVar(&o.noInteractive, "no-interactive", false, "Disable prompts for missing inputs")
	cmd.Flags().BoolVar(&o.plainPrompts, "plain-prompts", false, "Use line-based prompts instead of the form UI")
	cmd.Flags().BoolVar(&o.trace, "trace", false, "Print OpenTelemetry spans for the run to stderr")
	cmd.Flags().StringVar(&o.metricsFile, "metrics-file", "", "Write run metrics in Prometheus text format to this file")
}

// NewCommand creates the run command
func NewCommand() *cobra.Command {
	var (
		opts         runOptions
		showTimeline bool
	)

	cmd := &cobra.Command{
		Use:   "run <id|file>",
		Short: "Execute a spec",
		Annotations: map[string]string{
			"group": "execution",
		},
		Long: `Run executes a stored spec, or a spec file, and prints the result the
way its UI binding describes it: a list of items or a markdown document.

Form inputs come from --input-file and --input flags, with flags taking
precedence. Required inputs that are still missing are asked for when
stdin is a terminal; otherwise the run fails with exit code 3.

Exit codes:
  0  success
  1  a step failed
  2  the spec is invalid
  3  a required input is missing
  4  the spec was not found`,
		Example: `  # Run a stored spec
  cmdspec run github-prs

  # Run a form spec without prompting
  cmdspec run search.json --input query=golang --no-interactive

  # Print the raw result with per-step timings
  cmdspec run github-prs --json`,
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

			result, interp, err := execute(cmd.Context(), cmd, app, cs, &opts)
			if showTimeline && result != nil && len(result.Steps) > 0 {
				if tl, terr := timeline.NewRenderer(0).Render(cs.Title, result.Steps); terr == nil {
					fmt.Fprint(cmd.ErrOrStderr(), tl)
				}
			}
			if err != nil {
				if shared.GetJSON() && result != nil {
					_ = shared.EmitJSON(cmd.OutOrStdout(), newRunResponse(result, nil))
				}
				return err
			}

			return printResult(cmd, result, interp)
		},
	}

	opts.register(cmd)
	cmd.Flags().BoolVar(&showTimeline, "timeline", false, "Print a timeline of step durations to stderr")

	return cmd
}

// execute collects inputs and runs cs. The partial result of a failed run
// is returned along with the error.
func execute(ctx context.Context, cmd *cobra.Command, app *shared.App, cs *spec.CommandSpec, opts *runOptions) (*interpreter.Result, *interpreter.Interpreter, error) {
	interactive := !opts.noInteractive && !shared.GetJSON() && !shared.IsNonInteractive()
	values, err := collectInputs(ctx, cs, opts.inputs, opts.inputFile, newPrompter(interactive, opts.plainPrompts))
	if err != nil {
		return nil, nil, err
	}

	var extra []interpreter.Option
	if opts.trace {
		cfg := tracing.DefaultConfig()
		cfg.ServiceVersion, _, _ = shared.GetVersion()
		cfg.Writer = cmd.ErrOrStderr()
		cfg.PrettyPrint = true
		provider, err := tracing.NewProvider(cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to set up tracing: %w", err)
		}
		defer func() {
			if err := provider.Shutdown(context.Background()); err != nil {
				app.Logger.Warn("failed to flush spans", "error", err)
			}
		}()
		extra = append(extra, interpreter.WithTracerProvider(provider.TracerProvider()))
	}

	interp, err := app.Interpreter(extra...)
	if err != nil {
		return nil, nil, err
	}

	result, err := interp.Run(ctx, cs, values)
	if opts.metricsFile != "" {
		if werr := prometheus.WriteToTextfile(opts.metricsFile, prometheus.DefaultGatherer); werr != nil {
			app.Logger.Warn("failed to write metrics", "path", opts.metricsFile, "error", werr)
		}
	}
	return result, interp, err
}
