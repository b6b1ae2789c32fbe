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
package specs

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/cmdspec/internal/cli/prompt"
	"github.com/tombee/cmdspec/internal/commands/shared"
	"github.com/tombee/cmdspec/internal/config"
	"github.com/tombee/cmdspec/internal/store/filestore"
	pkgerrors "github.com/tombee/cmdspec/pkg/errors"
	"github.com/tombee/cmdspec/pkg/spec"
)

var fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

// testStore points the CLI config at an empty file store and returns it.
func testStore(t *testing.T) *filestore.Store {
	t.Helper()
	t.Setenv("CMDSPEC_STORE", "")
	t.Setenv("CMDSPEC_SPECS_DIR", "")

	dir := t.TempDir()
	cfg := config.Default()
	cfg.Store.Backend = config.BackendFile
	cfg.Store.Dir = filepath.Join(dir, "specs")
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, config.Save(cfgPath, cfg))
	shared.SetConfigPathForTest(cfgPath)
	t.Cleanup(shared.ResetFlagsForTest)

	store, err := filestore.New(filestore.Config{Dir: cfg.Store.Dir})
	require.NoError(t, err)
	return store
}

func seed(t *testing.T, store spec.Store, id, title string, tags ...string) *spec.CommandSpec {
	t.Helper()
	cs, err := Scaffold(title, spec.ModeList, id, tags, fixedNow)
	require.NoError(t, err)
	require.NoError(t, store.Save(context.Background(), cs))
	return cs
}

// execute runs one command under a root carrying the global flags.
func execute(t *testing.T, sub *cobra.Command, args ...string) (string, error) {
	t.Helper()

	root := &cobra.Command{Use: "cmdspec", SilenceErrors: true, SilenceUsage: true}
	verbose, quiet, jsonOut, cfg := shared.RegisterFlagPointers()
	root.PersistentFlags().BoolVar(verbose, "verbose", false, "")
	root.PersistentFlags().BoolVar(quiet, "quiet", false, "")
	root.PersistentFlags().BoolVar(jsonOut, "json", false, "")
	root.PersistentFlags().StringVar(cfg, "config", shared.GetConfigPath(), "")
	root.AddCommand(sub)

	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{sub.Name()}, args...))

	err := root.Execute()
	return out.String(), err
}

func TestScaffold(t *testing.T) {
	for _, mode := range []spec.Mode{spec.ModeList, spec.ModeDetail, spec.ModeForm, spec.ModeView} {
		t.Run(string(mode), func(t *testing.T) {
			cs, err := Scaffold("My command", mode, "abc", []string{"x"}, fixedNow)
			require.NoError(t, err)
			assert.Equal(t, mode, cs.Mode)
			assert.Equal(t, "2025-03-01T12:00:00Z", cs.Metadata.Created)
			assert.NotEmpty(t, cs.Steps)
			assert.NoError(t, spec.Check(cs))
		})
	}

	_, err := Scaffold("  ", spec.ModeList, "abc", nil, fixedNow)
	var validationErr *pkgerrors.ValidationError
	require.ErrorAs(t, err, &validationErr)

	_, err = Scaffold("x", spec.Mode("grid"), "abc", nil, fixedNow)
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "mode", validationErr.Field)
}

func TestNewCommand_Stdout(t *testing.T) {
	testStore(t)

	out, err := execute(t, NewNewCommand(), "Open pull requests", "--tag", "github")
	require.NoError(t, err)

	cs, err := spec.Parse([]byte(out))
	require.NoError(t, err)
	assert.Equal(t, "Open pull requests", cs.Title)
	assert.Equal(t, []string{"github"}, cs.Metadata.Tags)
	assert.Len(t, cs.ID, 36, "expected a UUID id")
}

func TestNewCommand_YAMLFile(t *testing.T) {
	testStore(t)
	path := filepath.Join(t.TempDir(), "search.yaml")

	_, err := execute(t, NewNewCommand(), "Search", "--mode", "form", "--id", "search", "-o", path)
	require.NoError(t, err)

	cs, err := spec.ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, "search", cs.ID)
	require.Len(t, cs.Inputs, 1)
	assert.True(t, cs.Inputs[0].Required)
}

func TestNewCommand_Save(t *testing.T) {
	store := testStore(t)

	out, err := execute(t, NewNewCommand(), "Notes", "--mode", "detail", "--id", "notes", "--save")
	require.NoError(t, err)
	assert.Equal(t, "notes\n", out)

	cs, err := store.Load(context.Background(), "notes")
	require.NoError(t, err)
	assert.Equal(t, "Notes", cs.Title)
}

func TestListCommand(t *testing.T) {
	store := testStore(t)
	seed(t, store, "github-prs", "Pull requests", "github", "work")
	seed(t, store, "github-issues", "Issues", "github")
	seed(t, store, "weather", "Weather")

	out, err := execute(t, NewListCommand())
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.True(t, strings.HasPrefix(lines[1], "github-issues"))

	out, err = execute(t, NewListCommand(), "--tag", "github", "--tag", "work")
	require.NoError(t, err)
	assert.Contains(t, out, "github-prs")
	assert.NotContains(t, out, "github-issues")

	out, err = execute(t, NewListCommand(), "--match", "github-*", "--json")
	require.NoError(t, err)
	var resp ListResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Specs, 2)
	assert.Equal(t, "github-issues", resp.Specs[0].ID)
	assert.Equal(t, 1, resp.Specs[0].Steps)
}

func TestListCommand_Empty(t *testing.T) {
	testStore(t)

	out, err := execute(t, NewListCommand())
	require.NoError(t, err)
	assert.Contains(t, out, "No specs found.")
}

func TestListCommand_BadGlob(t *testing.T) {
	testStore(t)

	_, err := execute(t, NewListCommand(), "--match", "[unclosed")
	var validationErr *pkgerrors.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "match", validationErr.Field)
}

func TestShowCommand(t *testing.T) {
	store := testStore(t)
	seed(t, store, "github-prs", "Pull requests", "github")

	out, err := execute(t, NewShowCommand(), "github-prs")
	require.NoError(t, err)
	assert.Contains(t, out, "Pull requests")
	assert.Contains(t, out, "0 httpRequest → items")
	assert.Contains(t, out, "Copy title (clipboard)")

	out, err = execute(t, NewShowCommand(), "github-prs", "--raw")
	require.NoError(t, err)
	cs, err := spec.Parse([]byte(out))
	require.NoError(t, err)
	assert.Equal(t, "github-prs", cs.ID)

	_, err = execute(t, NewShowCommand(), "missing")
	assert.Equal(t, shared.ExitNotFound, shared.ExitCodeFor(err))
}

func TestSaveCommand(t *testing.T) {
	store := testStore(t)

	cs, err := Scaffold("Pull requests", spec.ModeList, "github-prs", nil, fixedNow)
	require.NoError(t, err)
	data, err := spec.Marshal(cs)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "prs.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	out, err := execute(t, NewSaveCommand(), path)
	require.NoError(t, err)
	assert.Contains(t, out, "saved github-prs")

	_, err = execute(t, NewSaveCommand(), path)
	require.Error(t, err, "expected an existing spec to need --force")

	out, err = execute(t, NewSaveCommand(), path, "--force", "--touch", "--json")
	require.NoError(t, err)
	var resp SaveResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.True(t, resp.Replaced)

	stored, err := store.Load(context.Background(), "github-prs")
	require.NoError(t, err)
	assert.NotEqual(t, cs.Metadata.Modified, stored.Metadata.Modified)
}

func TestSaveCommand_Invalid(t *testing.T) {
	store := testStore(t)
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"id": "bad", "mode": "grid"}`), 0o644))

	_, err := execute(t, NewSaveCommand(), path)
	assert.Equal(t, shared.ExitInvalidSpec, shared.ExitCodeFor(err))

	all, err := store.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

type fakePrompter struct {
	answer bool
	err    error
}

func (f fakePrompter) Form(ctx context.Context, title string, fields []spec.InputField) (map[string]any, error) {
	return nil, prompt.ErrNonInteractive
}

func (f fakePrompter) Confirm(ctx context.Context, message string, def bool) (bool, error) {
	return f.answer, f.err
}

func (f fakePrompter) IsInteractive() bool { return f.err == nil }

func usePrompter(t *testing.T, p prompt.Prompter) {
	t.Helper()
	orig := newPrompter
	newPrompter = func(bool) prompt.Prompter { return p }
	t.Cleanup(func() { newPrompter = orig })
}

func TestDeleteCommand(t *testing.T) {
	store := testStore(t)
	seed(t, store, "a", "A")
	seed(t, store, "b", "B")
	seed(t, store, "c", "C")
	ctx := context.Background()

	_, err := execute(t, NewDeleteCommand(), "a", "--yes")
	require.NoError(t, err)
	_, err = store.Load(ctx, "a")
	assert.Error(t, err)

	usePrompter(t, fakePrompter{answer: false})
	out, err := execute(t, NewDeleteCommand(), "b")
	require.NoError(t, err)
	assert.Contains(t, out, "cancelled")
	_, err = store.Load(ctx, "b")
	assert.NoError(t, err)

	usePrompter(t, fakePrompter{answer: true})
	_, err = execute(t, NewDeleteCommand(), "b")
	require.NoError(t, err)
	_, err = store.Load(ctx, "b")
	assert.Error(t, err)

	usePrompter(t, fakePrompter{err: prompt.ErrNonInteractive})
	_, err = execute(t, NewDeleteCommand(), "c")
	assert.ErrorContains(t, err, "pass --yes")

	_, err = execute(t, NewDeleteCommand(), "missing", "--yes")
	assert.Equal(t, shared.ExitNotFound, shared.ExitCodeFor(err))
}
