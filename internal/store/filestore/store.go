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

// Package filestore stores command specs as one pretty-printed JSON file per
// spec in a directory, and can watch that directory so hosts reload specs
// that change on disk.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	cmderrors "github.com/tombee/cmdspec/pkg/errors"
	"github.com/tombee/cmdspec/pkg/spec"
)

const fileExt = ".json"

// Config configures a Store.
type Config struct {
	// Dir is the directory holding the spec files. It is created if missing.
	Dir string

	// Pattern is an optional doublestar glob matched against spec IDs.
	// LoadAll and Watch skip specs that do not match.
	Pattern string

	// Logger is used for structured logging (optional)
	Logger *slog.Logger

	// DebounceDelay is how long Watch waits for a file to settle before
	// reporting it (defaults to 200ms)
	DebounceDelay time.Duration
}

// Store implements spec.Store on a directory.
type Store struct {
	dir      string
	pattern  string
	logger   *slog.Logger
	debounce time.Duration

	// mu serializes writers; readers rely on atomic renames.
	mu sync.Mutex
}

var _ spec.Store = (*Store)(nil)

// New creates a file store rooted at cfg.Dir.
func New(cfg Config) (*Store, error) {
	if cfg.Dir == "" {
		return nil, &cmderrors.ConfigError{Key: "store.dir", Reason: "directory is required"}
	}
	if cfg.Pattern != "" && !doublestar.ValidatePattern(cfg.Pattern) {
		return nil, &cmderrors.ConfigError{Key: "store.pattern", Reason: fmt.Sprintf("invalid glob %q", cfg.Pattern)}
	}

	dir, err := filepath.Abs(cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve store directory: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory %s: %w", dir, err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	debounce := cfg.DebounceDelay
	if debounce == 0 {
		debounce = 200 * time.Millisecond
	}

	return &Store{
		dir:      dir,
		pattern:  cfg.Pattern,
		logger:   logger.With("component", "filestore"),
		debounce: debounce,
	}, nil
}

// Dir returns the absolute store directory.
func (s *Store) Dir() string {
	return s.dir
}

// Load reads and validates the spec stored under id.
func (s *Store) Load(ctx context.Context, id string) (*spec.CommandSpec, error) {
	path, err := s.pathFor(id)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &cmderrors.NotFoundError{Resource: "spec", ID: id}
		}
		return nil, fmt.Errorf("failed to read spec %s: %w", id, err)
	}

	cs, err := spec.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("stored spec %s is invalid: %w", id, err)
	}
	if cs.ID != id {
		return nil, fmt.Errorf("stored spec %s declares id %q", id, cs.ID)
	}
	return cs, nil
}

// LoadAll returns every valid spec in the directory ordered by ID. Files
// that fail to parse or validate are logged and skipped.
func (s *Store) LoadAll(ctx context.Context) ([]*spec.CommandSpec, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list specs: %w", err)
	}

	specs := make([]*spec.CommandSpec, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		id, ok := s.idFor(entry.Name())
		if !ok || entry.IsDir() {
			continue
		}

		cs, err := s.Load(ctx, id)
		if err != nil {
			s.logger.Warn("skipping unreadable spec", "spec_id", id, "error", err)
			continue
		}
		specs = append(specs, cs)
	}

	spec.SortByID(specs)
	return specs, nil
}

// Save validates cs and replaces the file for its ID atomically.
func (s *Store) Save(ctx context.Context, cs *spec.CommandSpec) error {
	if err := spec.Check(cs); err != nil {
		return err
	}
	path, err := s.pathFor(cs.ID)
	if err != nil {
		return err
	}
	data, err := spec.Marshal(cs)
	if err != nil {
		return fmt.Errorf("failed to encode spec %s: %w", cs.ID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := writeFileAtomic(path, data); err != nil {
		return fmt.Errorf("failed to write spec %s: %w", cs.ID, err)
	}
	s.logger.Debug("spec saved", "spec_id", cs.ID, "path", path)
	return nil
}

// Delete removes the spec stored under id.
func (s *Store) Delete(ctx context.Context, id string) error {
	path, err := s.pathFor(id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &cmderrors.NotFoundError{Resource: "spec", ID: id}
		}
		return fmt.Errorf("failed to delete spec %s: %w", id, err)
	}
	s.logger.Debug("spec deleted", "spec_id", id)
	return nil
}

// pathFor maps an ID to its file, rejecting IDs that are not plain file names.
func (s *Store) pathFor(id string) (string, error) {
	if err := checkID(id); err != nil {
		return "", err
	}
	return filepath.Join(s.dir, id+fileExt), nil
}

// idFor maps a directory entry name back to a spec ID. Temporary files and
// IDs excluded by the pattern are rejected.
func (s *Store) idFor(name string) (string, bool) {
	if strings.HasPrefix(name, ".") || !strings.HasSuffix(name, fileExt) {
		return "", false
	}
	id := strings.TrimSuffix(name, fileExt)
	if checkID(id) != nil {
		return "", false
	}
	if s.pattern != "" {
		if ok, _ := doublestar.Match(s.pattern, id); !ok {
			return "", false
		}
	}
	return id, true
}

func checkID(id string) error {
	switch {
	case strings.TrimSpace(id) == "":
		return &cmderrors.ValidationError{Field: "id", Message: "spec ID cannot be empty"}
	case id == "." || id == ".." || strings.HasPrefix(id, "."):
		return &cmderrors.ValidationError{Field: "id", Message: fmt.Sprintf("spec ID %q cannot start with a dot", id)}
	case strings.ContainsAny(id, `/\`+"\x00"):
		return &cmderrors.ValidationError{
			Field:      "id",
			Message:    fmt.Sprintf("spec ID %q cannot contain path separators", id),
			Suggestion: "use letters, digits, dashes and underscores",
		}
	}
	return nil
}

// writeFileAtomic writes data to a temporary file in the target directory
// and renames it over path.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		if tmpName != "" {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}
	tmpName = ""
	return nil
}
