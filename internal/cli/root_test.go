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

package cli

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/tombee/cmdspec/internal/commands/shared"
	"github.com/tombee/cmdspec/internal/config"
)

func TestNewRootCommand(t *testing.T) {
	cmd := NewRootCommand()

	if cmd.Use != "cmdspec" {
		t.Errorf("expected use 'cmdspec', got %q", cmd.Use)
	}

	if cmd.Short == "" {
		t.Error("expected short description to be set")
	}

	if cmd.Long == "" {
		t.Error("expected long description to be set")
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	// Check that flags are registered
	if cmd.PersistentFlags().Lookup("verbose") == nil {
		t.Error("verbose flag not registered")
	}

	if cmd.PersistentFlags().Lookup("quiet") == nil {
		t.Error("quiet flag not registered")
	}

	if cmd.PersistentFlags().Lookup("json") == nil {
		t.Error("json flag not registered")
	}

	if cmd.PersistentFlags().Lookup("config") == nil {
		t.Error("config flag not registered")
	}
}

func TestSetVersion(t *testing.T) {
	// Test setting version
	SetVersion("1.2.3", "abc123", "2025-12-22")

	v, c, b := GetVersion()
	if v != "1.2.3" {
		t.Errorf("expected version '1.2.3', got %q", v)
	}
	if c != "abc123" {
		t.Errorf("expected commit 'abc123', got %q", c)
	}
	if b != "2025-12-22" {
		t.Errorf("expected build date '2025-12-22', got %q", b)
	}
}

func TestFinalize(t *testing.T) {
	t.Cleanup(shared.ResetFlagsForTest)
	t.Setenv("CMDSPEC_DEBUG", "")
	t.Setenv("CMDSPEC_LOG_LEVEL", "")
	t.Setenv("LOG_LEVEL", "")

	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := config.Save(cfgPath, config.Default()); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	root := NewRootCommand()
	var ran []string
	root.AddCommand(&cobra.Command{
		Use:         "list",
		Annotations: map[string]string{"group": "specs"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ran = append(ran, "list")
			return nil
		},
	})
	root.AddCommand(&cobra.Command{
		Use:         "run <id>",
		Annotations: map[string]string{"group": "execution"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return errors.New("boom")
		},
	})
	root.AddCommand(&cobra.Command{
		Use:         "misc",
		Annotations: map[string]string{"group": "unknown"},
		Run:         func(cmd *cobra.Command, args []string) {},
	})
	Finalize(root)

	groups := map[string]string{}
	for _, c := range root.Commands() {
		groups[c.Name()] = c.GroupID
	}
	if groups["list"] != "specs" || groups["run"] != "execution" || groups["misc"] != "" {
		t.Errorf("unexpected groups: %v", groups)
	}

	var errOut bytes.Buffer
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&errOut)

	root.SetArgs([]string{"list", "--verbose", "--config", cfgPath})
	if err := root.Execute(); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(ran) != 1 {
		t.Errorf("expected wrapped handler to run once, ran %v", ran)
	}
	if !strings.Contains(errOut.String(), "command completed") {
		t.Errorf("expected invocation log at debug level, got: %s", errOut.String())
	}

	errOut.Reset()
	root.SetArgs([]string{"run", "github-prs", "--verbose=false", "--config", cfgPath})
	err := root.Execute()
	if err == nil || err.Error() != "boom" {
		t.Fatalf("expected handler error to pass through, got %v", err)
	}
	if errOut.Len() != 0 {
		t.Errorf("failures log at info, below the default warn level: %s", errOut.String())
	}
}
