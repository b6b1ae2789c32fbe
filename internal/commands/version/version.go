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
package version

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tombee/cmdspec/internal/commands/shared"
	"github.com/tombee/cmdspec/pkg/spec"
)

// VersionInfo contains version metadata
type VersionInfo struct {
	Version    string   `json:"version"`
	Commit     string   `json:"commit"`
	BuildDate  string   `json:"build_date"`
	GoVersion  string   `json:"go_version"`
	Platform   string   `json:"platform"`
	Operations []string `json:"operations"`
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Annotations: map[string]string{
			"group": "setup",
		},
		Long: `Display version, commit hash, build date and the operation types this
build of cmdspec can run.`,
		Args: cobra.NoArgs,
		RunE: runVersion,
	}

	return cmd
}

func currentInfo() VersionInfo {
	v, c, b := shared.GetVersion()

	ops := spec.OperationTypes()
	names := make([]string, len(ops))
	for i, op := range ops {
		names[i] = string(op)
	}

	return VersionInfo{
		Version:    v,
		Commit:     c,
		BuildDate:  b,
		GoVersion:  runtime.Version(),
		Platform:   runtime.GOOS + "/" + runtime.GOARCH,
		Operations: names,
	}
}

func runVersion(cmd *cobra.Command, args []string) error {
	info := currentInfo()
	out := cmd.OutOrStdout()

	if shared.GetJSON() {
		return shared.EmitJSON(out, info)
	}

	fmt.Fprintf(out, "cmdspec version %s\n", info.Version)
	fmt.Fprintf(out, "  commit:     %s\n", info.Commit)
	fmt.Fprintf(out, "  build date: %s\n", info.BuildDate)
	fmt.Fprintf(out, "  go:         %s %s\n", info.GoVersion, info.Platform)
	fmt.Fprintf(out, "  operations: %s\n", strings.Join(info.Operations, ", "))

	return nil
}
