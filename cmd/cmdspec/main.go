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
package main

import (
	"github.com/tombee/cmdspec/internal/cli"
	"github.com/tombee/cmdspec/internal/commands/completion"
	"github.com/tombee/cmdspec/internal/commands/config"
	"github.com/tombee/cmdspec/internal/commands/examples"
	"github.com/tombee/cmdspec/internal/commands/run"
	"github.com/tombee/cmdspec/internal/commands/schema"
	"github.com/tombee/cmdspec/internal/commands/specs"
	"github.com/tombee/cmdspec/internal/commands/validate"
	versioncmd "github.com/tombee/cmdspec/internal/commands/version"
	"github.com/tombee/cmdspec/internal/commands/watch"
)

// Version information (injected via ldflags at build time)
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	// Set version information from build-time ldflags
	cli.SetVersion(version, commit, buildDate)

	// Create root command and add subcommands
	rootCmd := cli.NewRootCommand()

	// Spec management commands
	rootCmd.AddCommand(specs.NewListCommand())
	rootCmd.AddCommand(specs.NewShowCommand())
	rootCmd.AddCommand(specs.NewSaveCommand())
	rootCmd.AddCommand(specs.NewDeleteCommand())
	rootCmd.AddCommand(specs.NewNewCommand())
	rootCmd.AddCommand(validate.NewCommand())
	rootCmd.AddCommand(watch.NewCommand())
	rootCmd.AddCommand(examples.NewCommand())

	// Execution commands
	rootCmd.AddCommand(run.NewCommand())
	rootCmd.AddCommand(run.NewActionCommand())

	// Configuration and tooling
	rootCmd.AddCommand(schema.NewCommand())
	rootCmd.AddCommand(config.NewConfigCommand())
	rootCmd.AddCommand(completion.NewCommand())
	rootCmd.AddCommand(versioncmd.NewVersionCommand())

	// Custom help command with JSON support
	rootCmd.SetHelpCommand(cli.NewHelpCommand(rootCmd))

	cli.Finalize(rootCmd)

	// Execute root command
	if err := rootCmd.Execute(); err != nil {
		cli.HandleExitError(err)
	}
}
