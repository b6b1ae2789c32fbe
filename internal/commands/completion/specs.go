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
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tombee/cmdspec/internal/commands/shared"
	"github.com/tombee/cmdspec/pkg/spec"
)

const (
	maxSpecFiles   = 100
	maxSearchDepth = 2

	// storeTimeout bounds how long completion waits on the spec store.
	storeTimeout = 2 * time.Second
)

// specFile represents a discovered spec file with metadata.
type specFile struct {
	path    string
	modTime int64
}

// SafeCompletionWrapper runs fn and turns panics and nil results into an
// empty completion.
func SafeCompletionWrapper(fn func() ([]string, cobra.ShellCompDirective)) (results []string, directive cobra.ShellCompDirective) {
	results = []string{}
	directive = cobra.ShellCompDirectiveNoFileComp

	defer func() {
		if r := recover(); r != nil {
			results = []string{}
			directive = cobra.ShellCompDirectiveNoFileComp
		}
	}()

	results, directive = fn()
	if results == nil {
		return []string{}, cobra.ShellCompDirectiveNoFileComp
	}
	return results, directive
}

// loadSpecs reads every stored spec through the configured store.
func loadSpecs() ([]*spec.CommandSpec, error) {
	app, err := shared.NewApp(io.Discard)
	if err != nil {
		return nil, err
	}
	defer app.Close()

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	return app.Store.LoadAll(ctx)
}

// CompleteSpecs completes the <id|file> argument of run and action with
// stored spec IDs followed by spec files near the working directory.
func CompleteSpecs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return []string{}, cobra.ShellCompDirectiveNoFileComp
	}
	return SafeCompletionWrapper(func() ([]string, cobra.ShellCompDirective) {
		completions := storedIDs(toComplete)
		files, _ := discoverSpecFiles(".", maxSearchDepth)
		for _, f := range files {
			completions = append(completions, f.path)
		}
		return completions, cobra.ShellCompDirectiveNoFileComp
	})
}

// CompleteSpecIDs completes stored spec IDs only.
func CompleteSpecIDs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return []string{}, cobra.ShellCompDirectiveNoFileComp
	}
	return SafeCompletionWrapper(func() ([]string, cobra.ShellCompDirective) {
		return storedIDs(toComplete), cobra.ShellCompDirectiveNoFileComp
	})
}

// CompleteSpecFiles completes spec files near the working directory, newest
// first.
func CompleteSpecFiles(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return SafeCompletionWrapper(func() ([]string, cobra.ShellCompDirective) {
		files, err := discoverSpecFiles(".", maxSearchDepth)
		if err != nil || len(files) == 0 {
			return []string{}, cobra.ShellCompDirectiveDefault
		}

		paths := make([]string, 0, len(files))
		for _, f := range files {
			paths = append(paths, f.path)
		}
		return paths, cobra.ShellCompDirectiveDefault
	})
}

// CompleteTags completes --tag with the tags of stored specs.
func CompleteTags(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return SafeCompletionWrapper(func() ([]string, cobra.ShellCompDirective) {
		specs, err := loadSpecs()
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}

		seen := make(map[string]bool)
		var tags []string
		for _, s := range specs {
			for _, tag := range s.Metadata.Tags {
				if !seen[tag] && strings.HasPrefix(tag, toComplete) {
					seen[tag] = true
					tags = append(tags, tag)
				}
			}
		}
		sort.Strings(tags)
		return tags, cobra.ShellCompDirectiveNoFileComp
	})
}

// storedIDs returns "id\ttitle" entries for stored specs matching prefix.
func storedIDs(prefix string) []string {
	specs, err := loadSpecs()
	if err != nil {
		return []string{}
	}

	ids := make([]string, 0, len(specs))
	for _, s := range specs {
		if strings.HasPrefix(s.ID, prefix) {
			ids = append(ids, s.ID+"\t"+s.Title)
		}
	}
	return ids
}

// discoverSpecFiles searches for spec files up to maxDepth levels below
// root. Returns at most maxSpecFiles, newest first.
func discoverSpecFiles(root string, maxDepth int) ([]specFile, error) {
	var files []specFile

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Skip directories we can't read
			return nil
		}

		relPath, _ := filepath.Rel(root, path)
		depth := strings.Count(relPath, string(filepath.Separator))
		if depth > maxDepth {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if d.IsDir() && strings.HasPrefix(d.Name(), ".") && path != root {
			return fs.SkipDir
		}

		if d.IsDir() || !hasSpecExt(path) || !isSafeFile(path) || !isSpecFile(path) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		files = append(files, specFile{path: path, modTime: info.ModTime().Unix()})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].modTime > files[j].modTime
	})
	if len(files) > maxSpecFiles {
		files = files[:maxSpecFiles]
	}
	return files, nil
}

func hasSpecExt(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

// isSafeFile rejects symlinks in the final path component.
func isSafeFile(path string) bool {
	info, err := os.Lstat(path)
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeSymlink == 0
}

// isSpecFile reports whether a JSON or YAML file looks like a command spec:
// a top-level object with id and steps keys. YAML decoding covers both.
func isSpecFile(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}

	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return false
	}

	_, hasID := doc["id"]
	_, hasSteps := doc["steps"]
	return hasID && hasSteps
}
