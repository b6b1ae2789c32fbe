// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
/*
Package cli provides the root command and shared configuration for the
cmdspec CLI.

This package creates the main Cobra command tree and handles global concerns like
version information, persistent flags, and error handling. Individual commands
are implemented in the internal/commands subpackages.

# Command Tree

The CLI is organized as:

	cmdspec
	├── list          List stored specs
	├── show          Summarize a spec
	├── save          Validate and store a spec file
	├── delete        Remove a stored spec
	├── new           Scaffold a spec
	├── validate      Validate a spec file
	├── watch         Report spec changes
	├── examples      Browse and install example specs
	├── run           Execute a spec
	├── action        Run one of a spec's actions
	├── schema        Output JSON schema
	├── config        Configuration management
	├── completion    Shell completion scripts
	├── version       Show version
	└── help          Show help

# Usage

From main.go:

	cli.SetVersion(version, commit, date)
	rootCmd := cli.NewRootCommand()
	// ... add commands ...
	cli.Finalize(rootCmd)
	if err := rootCmd.Execute(); err != nil {
	    cli.HandleExitError(err)
	}

# Global Flags

All commands inherit these flags:

	--verbose, -v    Enable verbose output
	--quiet, -q      Suppress non-error output
	--json           Output in JSON format
	--config         Path to config file

# Error Handling

Errors are handled centrally to ensure proper exit codes:

  - Exit 0: Success
  - Exit 1: A step failed, or any other error
  - Exit 2: The spec is invalid
  - Exit 3: A required input is missing
  - Exit 4: The spec, action or item was not found
*/
package cli
