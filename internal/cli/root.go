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
package cli

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/tombee/cmdspec/internal/commands/shared"
	internallog "github.com/tombee/cmdspec/internal/log"
)

// SetVersion sets the version information (called from main)
func SetVersion(v, c, b string) {
	shared.SetVersion(v, c, b)
}

// NewRootCommand creates the root Cobra command for cmdspec
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cmdspec",
		Short: "cmdspec - run declarative command specs",
		Long: `cmdspec runs command specs: JSON documents that describe a small
program as a list of steps (HTTP requests, shell commands, transforms,
file access, clipboard, notifications) and how its result is displayed.

Run 'cmdspec new <title> --save' to scaffold a spec.
Run 'cmdspec run <id>' to execute one.`,
		SilenceUsage:  true, // Don't show usage on errors
		SilenceErrors: true, // We handle errors ourselves for proper exit codes
	}

	// Get flag pointers from shared package
	verbose, quiet, json, config := shared.RegisterFlagPointers()

	// Add global flags
	cmd.PersistentFlags().BoolVarP(verbose, "verbose", "v", false, "Enable verbose output")
	cmd.PersistentFlags().BoolVarP(quiet, "quiet", "q", false, "Suppress non-error output")
	cmd.PersistentFlags().BoolVar(json, "json", false, "Output in JSON format")
	cmd.PersistentFlags().StringVar(config, "config", "", "Path to config file (default: ~/.config/cmdspec/config.yaml)")

	cmd.AddGroup(
		&cobra.Group{ID: "specs", Title: "Spec Commands:"},
		&cobra.Group{ID: "execution", Title: "Execution Commands:"},
		&cobra.Group{ID: "setup", Title: "Setup Commands:"},
	)

	return cmd
}

// Finalize assigns cobra groups from each command's "group" annotation and
// wraps every handler with invocation logging. Call it once all commands
// are added.
func Finalize(root *cobra.Command) {
	groups := make(map[string]bool)
	for _, g := range root.Groups() {
		groups[g.ID] = true
	}
	for _, c := range root.Commands() {
		if id := c.Annotations["group"]; groups[id] && c.GroupID == "" {
			c.GroupID = id
		}
	}
	wrapHandlers(root)
}

func wrapHandlers(cmd *cobra.Command) {
	for _, c := range cmd.Commands() {
		wrapHandlers(c)
	}
	if cmd.RunE == nil {
		return
	}

	handler := cmd.RunE
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		inv := &internallog.Invocation{
			Command:  cmd.CommandPath(),
			Metadata: map[string]any{"args": len(args)},
		}
		if group := cmd.Annotations["group"]; len(args) > 0 && (group == "execution" || group == "specs") {
			inv.SpecID = args[0]
		}
		mw := internallog.NewCommandMiddleware(commandLogger(cmd.ErrOrStderr()))
		return mw.Handler(inv, func() error { return handler(cmd, args) })
	}
}

// commandLogger builds the logger for invocation records, falling back to
// the environment when the config file cannot be loaded.
func commandLogger(out io.Writer) *slog.Logger {
	if cfg, err := shared.LoadConfig(); err == nil {
		return shared.NewLogger(cfg, out)
	}
	cfg := internallog.FromEnv()
	cfg.Output = out
	return internallog.New(cfg)
}

// GetVersion returns version information
func GetVersion() (string, string, string) {
	return shared.GetVersion()
}

// HandleExitError handles exit errors with proper exit codes
func HandleExitError(err error) {
	shared.HandleExitError(err)
}
