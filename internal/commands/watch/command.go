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
// Package watch implements the watch command, which reports specs as they
// change in the spec directory.
package watch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tombee/cmdspec/internal/commands/shared"
	"github.com/tombee/cmdspec/internal/store/filestore"
	"github.com/tombee/cmdspec/pkg/spec"
)

// Event is one line of watch output.
type Event struct {
	Time  time.Time         `json:"time"`
	ID    string            `json:"id"`
	Op    filestore.EventOp `json:"op"`
	Valid bool              `json:"valid"`
	Title string            `json:"title,omitempty"`
	Error string            `json:"error,omitempty"`
}

// NewCommand creates the watch command
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Report spec changes as they happen",
		Annotations: map[string]string{
			"group": "specs",
		},
		Long: `Watch follows the spec directory of the file store and reports every
spec that is saved or deleted, validating saved specs as they land. It
runs until interrupted.

With --json, each change is printed as one JSON object per line.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := shared.NewApp(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer app.Close()

			watcher, ok := app.Store.(shared.Watcher)
			if !ok {
				return fmt.Errorf("the %s store cannot be watched; set store.backend to file", app.Config.Store.Backend)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			events, err := watcher.Watch(ctx)
			if err != nil {
				return err
			}
			if !shared.GetQuiet() {
				fmt.Fprintln(cmd.ErrOrStderr(), shared.Muted.Render("Watching "+app.Config.Store.Dir+" (Ctrl+C to stop)"))
			}

			return follow(ctx, app.Store, events, cmd.OutOrStdout())
		},
	}

	return cmd
}

// follow reports events until the channel closes.
func follow(ctx context.Context, store spec.Store, events <-chan filestore.Event, out io.Writer) error {
	enc := json.NewEncoder(out)
	for ev := range events {
		e := Event{Time: time.Now(), ID: ev.ID, Op: ev.Op}
		if ev.Op == filestore.EventSaved {
			cs, err := store.Load(ctx, ev.ID)
			if err != nil {
				e.Error = err.Error()
			} else {
				e.Valid = true
				e.Title = cs.Title
			}
		}

		if shared.GetJSON() {
			if err := enc.Encode(e); err != nil {
				return err
			}
			continue
		}
		fmt.Fprintln(out, describe(e))
	}
	return nil
}

func describe(e Event) string {
	stamp := shared.Muted.Render(e.Time.Format("15:04:05"))
	switch {
	case e.Op == filestore.EventDeleted:
		return fmt.Sprintf("%s %s", stamp, shared.RenderWarn("deleted "+e.ID))
	case e.Valid:
		return fmt.Sprintf("%s %s %s", stamp, shared.RenderOK("saved "+e.ID), shared.Muted.Render(e.Title))
	default:
		return fmt.Sprintf("%s %s\n  %s", stamp, shared.RenderError("invalid "+e.ID), e.Error)
	}
}
