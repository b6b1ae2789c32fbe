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
package shared

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/tombee/cmdspec/pkg/spec"
)

// IsSpecFile reports whether arg names a spec file rather than a stored ID.
// Anything with a path separator or a .json, .yaml or .yml extension is a
// file, as is an existing regular file.
func IsSpecFile(arg string) bool {
	if strings.ContainsRune(arg, filepath.Separator) || strings.ContainsRune(arg, '/') {
		return true
	}
	switch strings.ToLower(filepath.Ext(arg)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	info, err := os.Stat(arg)
	return err == nil && info.Mode().IsRegular()
}

// ResolveSpec loads the spec named by arg, from disk when arg is a file and
// from store otherwise.
func ResolveSpec(ctx context.Context, store spec.Store, arg string) (*spec.CommandSpec, error) {
	if IsSpecFile(arg) {
		cs, err := spec.ParseFile(arg)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, NewNotFoundError("spec file not found", err)
		}
		return cs, err
	}
	return store.Load(ctx, arg)
}
