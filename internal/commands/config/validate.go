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
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/tombee/cmdspec/internal/commands/shared"
	"github.com/tombee/cmdspec/internal/config"
)

// ValidationResult represents the result of config validation.
type ValidationResult struct {
	shared.JSONResponse
	Path     string   `json:"path"`
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// NewValidateCommand creates the 'config validate' subcommand.
func NewValidateCommand() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		Long: `Validate the configuration file structure and values.

Checks performed:
  - YAML syntax and structure
  - Log level and format
  - Timeouts and size limits are positive
  - Store backend settings are complete
  - Sandbox and store directories exist

With --strict, warnings are treated as errors.`,
		Example: `  # Validate configuration
  cmdspec config validate

  # Validate with warnings as errors
  cmdspec config validate --strict

  # Get validation result as JSON
  cmdspec config validate --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath()
			if err != nil {
				return err
			}
			return outputValidationResult(cmd, validateFile(path), strict)
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Treat warnings as errors")

	return cmd
}

// validateFile loads the config file at path and checks it.
func validateFile(path string) ValidationResult {
	result := ValidationResult{JSONResponse: shared.NewResponse("config validate"), Path: path}

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		result.Errors = []string{"No config file found. Run 'cmdspec config init' to create one."}
		return result
	}

	cfg, err := config.Load(path)
	if err != nil {
		msg := err.Error()
		if cause := errors.Unwrap(err); cause != nil {
			msg = cause.Error()
		}
		result.Errors = []string{msg}
		return result
	}

	result.Warnings = configWarnings(cfg)
	result.Valid = true
	return result
}

// configWarnings reports settings that load but are likely mistakes.
func configWarnings(cfg *config.Config) []string {
	var warnings []string

	if !isDir(cfg.Sandbox.Root) {
		warnings = append(warnings, fmt.Sprintf("Sandbox directory %s does not exist yet; it is created on first run.", cfg.Sandbox.Root))
	}
	if cfg.Store.Backend == config.BackendFile && !isDir(cfg.Store.Dir) {
		warnings = append(warnings, fmt.Sprintf("Spec directory %s does not exist yet; it is created on first save.", cfg.Store.Dir))
	}
	if cfg.Store.Backend == config.BackendMemory {
		warnings = append(warnings, "The memory store keeps specs for one command only; saved specs are lost on exit.")
	}
	if !cfg.HTTP.BlockPrivateIPs {
		warnings = append(warnings, "http.block_private_ips is off; specs can reach services on private networks.")
	}

	return warnings
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// outputValidationResult prints the result and returns an error when
// validation failed.
func outputValidationResult(cmd *cobra.Command, result ValidationResult, strict bool) error {
	out := cmd.OutOrStdout()
	failed := !result.Valid || (strict && len(result.Warnings) > 0)
	result.Success = !failed

	if shared.GetJSON() {
		if err := shared.EmitJSON(out, result); err != nil {
			return err
		}
	} else {
		if result.Valid {
			fmt.Fprintln(out, shared.RenderOK("Configuration is valid"))
		} else {
			fmt.Fprintln(out, shared.RenderError("Configuration validation failed"))
		}
		fmt.Fprintln(out)

		if len(result.Errors) > 0 {
			fmt.Fprintln(out, shared.Header.Render("Errors:"))
			for _, err := range result.Errors {
				fmt.Fprintf(out, "  %s %s\n", shared.StatusError.Render(shared.SymbolError), err)
			}
			fmt.Fprintln(out)
		}

		if len(result.Warnings) > 0 {
			fmt.Fprintln(out, shared.Header.Render("Warnings:"))
			for _, warn := range result.Warnings {
				fmt.Fprintf(out, "  %s %s\n", shared.StatusWarn.Render(shared.SymbolWarn), warn)
			}
			fmt.Fprintln(out)
		}

		if result.Valid && len(result.Warnings) == 0 {
			fmt.Fprintln(out, "No issues found.")
		}
	}

	if !result.Valid {
		return shared.NewExecutionError("configuration is invalid", nil)
	}
	if failed {
		return shared.NewExecutionError("validation failed (strict mode: warnings treated as errors)", nil)
	}
	return nil
}
