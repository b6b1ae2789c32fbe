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
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/tombee/cmdspec/internal/config"
	internallog "github.com/tombee/cmdspec/internal/log"
	"github.com/tombee/cmdspec/internal/store/filestore"
	"github.com/tombee/cmdspec/internal/store/sqlite"
	"github.com/tombee/cmdspec/pkg/interpreter"
	"github.com/tombee/cmdspec/pkg/spec"
)

// App bundles what commands need once configuration is loaded.
type App struct {
	Config *config.Config
	Logger *slog.Logger
	Store  spec.Store

	// ErrOut receives notifications and diagnostics.
	ErrOut io.Writer

	closeStore func() error
}

// LoadConfig loads the file named by --config, or the default config file
// when the flag is unset.
func LoadConfig() (*config.Config, error) {
	if path := GetConfigPath(); path != "" {
		return config.Load(path)
	}
	return config.LoadDefault()
}

// NewApp loads configuration and opens the configured store. Callers must
// Close the App.
func NewApp(errOut io.Writer) (*App, error) {
	if errOut == nil {
		errOut = os.Stderr
	}

	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}

	logger := NewLogger(cfg, errOut)
	store, closeStore, err := OpenStore(cfg, logger)
	if err != nil {
		return nil, err
	}

	return &App{
		Config:     cfg,
		Logger:     logger,
		Store:      store,
		ErrOut:     errOut,
		closeStore: closeStore,
	}, nil
}

// Close releases the store.
func (a *App) Close() error {
	if a == nil || a.closeStore == nil {
		return nil
	}
	return a.closeStore()
}

// NewLogger builds the command logger. The config file sets the baseline,
// CMDSPEC_DEBUG and CMDSPEC_LOG_LEVEL override it, and --verbose or --quiet
// override both.
func NewLogger(cfg *config.Config, out io.Writer) *slog.Logger {
	logCfg := &internallog.Config{
		Level:     cfg.Log.Level,
		Format:    internallog.Format(cfg.Log.Format),
		AddSource: cfg.Log.AddSource,
		Output:    out,
	}

	if os.Getenv("CMDSPEC_DEBUG") != "" || os.Getenv("CMDSPEC_LOG_LEVEL") != "" {
		env := internallog.FromEnv()
		logCfg.Level = env.Level
		logCfg.AddSource = logCfg.AddSource || env.AddSource
	}

	switch {
	case GetVerbose():
		logCfg.Level = "debug"
	case GetQuiet():
		logCfg.Level = "error"
	}

	return internallog.New(logCfg)
}

// OpenStore opens the store backend selected in cfg. The returned func
// closes it.
func OpenStore(cfg *config.Config, logger *slog.Logger) (spec.Store, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Store.Backend {
	case config.BackendMemory:
		return spec.NewMemoryStore(), noop, nil
	case config.BackendSQLite:
		store, err := sqlite.New(sqlite.Config{Path: cfg.Store.Path, Logger: logger})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		return store, store.Close, nil
	case config.BackendFile, "":
		store, err := filestore.New(filestore.Config{
			Dir:     cfg.Store.Dir,
			Pattern: cfg.Store.Pattern,
			Logger:  logger,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open spec directory: %w", err)
		}
		return store, noop, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

// Interpreter builds an interpreter from the loaded configuration. The
// sandbox root is created if missing.
func (a *App) Interpreter(opts ...interpreter.Option) (*interpreter.Interpreter, error) {
	cfg := a.Config
	if err := os.MkdirAll(cfg.Sandbox.Root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create sandbox directory: %w", err)
	}

	base := []interpreter.Option{
		interpreter.WithSandboxDir(cfg.Sandbox.Root),
		interpreter.WithTempDir(cfg.Sandbox.Temp),
		interpreter.WithHTTPTimeout(cfg.Timeouts.HTTP),
		interpreter.WithShellTimeout(cfg.Timeouts.Shell),
		interpreter.WithBlockPrivateIPs(cfg.HTTP.BlockPrivateIPs),
		interpreter.WithUserAgent(cfg.HTTP.UserAgent),
		interpreter.WithMaxResponseSize(cfg.HTTP.MaxResponseSize),
		interpreter.WithWriteQuota(cfg.Sandbox.WriteQuota),
		interpreter.WithLogger(a.Logger),
		interpreter.WithNotifier(NewNotifier(a.ErrOut)),
	}
	return interpreter.New(append(base, opts...)...)
}

// Watcher is implemented by stores that report changes to their specs.
type Watcher interface {
	Watch(ctx context.Context) (<-chan filestore.Event, error)
}
