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
package completion

import (
	"github.com/spf13/cobra"

	"github.com/tombee/cmdspec/internal/config"
)

// CompleteStoreBackends provides completion for store backend values.
func CompleteStoreBackends(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return SafeCompletionWrapper(func() ([]string, cobra.ShellCompDirective) {
		backends := []string{
			config.BackendFile + "\tOne JSON file per spec",
			config.BackendSQLite + "\tSQLite database",
			config.BackendMemory + "\tIn-memory, discarded on exit",
		}
		return backends, cobra.ShellCompDirectiveNoFileComp
	})
}

// CompleteModes provides completion for spec mode values.
func CompleteModes(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return SafeCompletionWrapper(func() ([]string, cobra.ShellCompDirective) {
		modes := []string{
			"list\tRender an array as a list of items",
			"detail\tRender a markdown document",
			"form\tAsk for inputs, then render",
			"view\tRender a custom view",
		}
		return modes, cobra.ShellCompDirectiveNoFileComp
	})
}
