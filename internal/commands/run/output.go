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
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/tombee/cmdspec/internal/cli/format"
	"github.com/tombee/cmdspec/internal/commands/shared"
	"github.com/tombee/cmdspec/pkg/interpreter"
	"github.com/tombee/cmdspec/pkg/render"
	"github.com/tombee/cmdspec/pkg/spec"
)

// RunResponse is the JSON output of run.
type RunResponse struct {
	shared.JSONResponse
	Result *interpreter.Result `json:"result"`

	// View is the rendered projection; absent when the run failed.
	View *render.Projection `json:"view,omitempty"`
}

// newRunResponse masks secret environment values out of the result and the
// view before they are emitted.
func newRunResponse(result *interpreter.Result, view *render.Projection) RunResponse {
	m := resultMasker(result)
	resp := RunResponse{
		JSONResponse: shared.NewResponse("run"),
		Result:       maskResult(m, result),
		View:         maskView(m, view),
	}
	resp.Success = result.Status == interpreter.RunStatusSucceeded
	return resp
}

// printResult renders a completed run to stdout.
func printResult(cmd *cobra.Command, result *interpreter.Result, interp *interpreter.Interpreter) error {
	view, err := render.Project(result, interp.Engine())
	if err != nil {
		return shared.NewExecutionError("failed to render result", err)
	}

	out := cmd.OutOrStdout()
	if shared.GetJSON() {
		return shared.EmitJSON(out, newRunResponse(result, view))
	}
	view = maskView(resultMasker(result), view)

	switch view.Mode {
	case spec.ModeList:
		printList(out, view.Items)
	case spec.ModeDetail:
		text, err := format.FormatMarkdown(view.Content, format.Styled(out))
		if err != nil {
			return err
		}
		fmt.Fprintln(out, text)
	}

	if shared.GetVerbose() {
		elapsed := result.CompletedAt.Sub(result.StartedAt).Round(time.Millisecond)
		fmt.Fprintln(cmd.ErrOrStderr(), shared.Muted.Render(
			fmt.Sprintf("%d steps in %s (run %s)", len(result.Steps), elapsed, result.RunID)))
	}
	return nil
}

// printList prints one row per item. Item text comes from remote data and
// is sanitized before it reaches the terminal.
func printList(out io.Writer, items []render.ListItem) {
	if len(items) == 0 {
		fmt.Fprintln(out, shared.Muted.Render("No items."))
		return
	}
	for _, item := range items {
		accessories := make([]string, len(item.Accessories))
		for i, acc := range item.Accessories {
			accessories[i] = format.Sanitize(acc)
		}
		fmt.Fprintln(out, shared.RenderItem(
			item.Index,
			format.Sanitize(item.Title),
			format.Sanitize(item.Subtitle),
			accessories,
		))
	}
}

// printValue prints the output of an action.
func printValue(out io.Writer, v any) error {
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		if val != "" {
			fmt.Fprintln(out, format.Sanitize(val))
		}
		return nil
	default:
		return shared.EmitJSON(out, val)
	}
}
