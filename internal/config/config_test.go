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
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	cmderrors "github.com/tombee/cmdspec/pkg/errors"
)

var configEnvVars = []string{
	"LOG_LEVEL", "LOG_FORMAT", "LOG_SOURCE",
	"CMDSPEC_SANDBOX_DIR", "CMDSPEC_TEMP_DIR",
	"CMDSPEC_HTTP_TIMEOUT", "CMDSPEC_SHELL_TIMEOUT", "CMDSPEC_BLOCK_PRIVATE_IPS",
	"CMDSPEC_STORE", "CMDSPEC_SPECS_DIR",
}

// clearConfigEnv unsets every variable loadFromEnv reads for the duration
// of the test.
func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range configEnvVars {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestDefault(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/data")
	cfg := Default()

	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "warn")
	}
	if cfg.Log.Format != "text" {
		t.Errorf("Log.Format = %q, want %q", cfg.Log.Format, "text")
	}
	if cfg.Sandbox.Root != filepath.Join("/data", "cmdspec", "sandbox") {
		t.Errorf("Sandbox.Root = %q", cfg.Sandbox.Root)
	}
	if cfg.Timeouts.HTTP != 30*time.Second {
		t.Errorf("Timeouts.HTTP = %v, want 30s", cfg.Timeouts.HTTP)
	}
	if cfg.Timeouts.Shell != 5*time.Second {
		t.Errorf("Timeouts.Shell = %v, want 5s", cfg.Timeouts.Shell)
	}
	if cfg.HTTP.MaxResponseSize != 10*1024*1024 {
		t.Errorf("HTTP.MaxResponseSize = %d, want 10MB", cfg.HTTP.MaxResponseSize)
	}
	if cfg.Store.Backend != BackendFile {
		t.Errorf("Store.Backend = %q, want %q", cfg.Store.Backend, BackendFile)
	}
	if cfg.Store.Dir != filepath.Join("/data", "cmdspec", "specs") {
		t.Errorf("Store.Dir = %q", cfg.Store.Dir)
	}
	if cfg.Store.Path != filepath.Join("/data", "cmdspec", "specs.db") {
		t.Errorf("Store.Path = %q", cfg.Store.Path)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Default() should be valid, got %v", err)
	}
}

func TestLoad_NoFile(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Store.Backend != BackendFile {
		t.Errorf("Store.Backend = %q, want %q", cfg.Store.Backend, BackendFile)
	}
}

func TestLoad_FromFile(t *testing.T) {
	clearConfigEnv(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
log:
  level: debug
  format: json
sandbox:
  root: /srv/sandbox
  write_quota: 1024
timeouts:
  http: 10s
http:
  block_private_ips: true
store:
  backend: sqlite
  path: /srv/specs.db
  pattern: "team-*"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("Log.Format = %q, want json", cfg.Log.Format)
	}
	if cfg.Sandbox.Root != "/srv/sandbox" {
		t.Errorf("Sandbox.Root = %q", cfg.Sandbox.Root)
	}
	if cfg.Sandbox.WriteQuota != 1024 {
		t.Errorf("Sandbox.WriteQuota = %d, want 1024", cfg.Sandbox.WriteQuota)
	}
	if cfg.Timeouts.HTTP != 10*time.Second {
		t.Errorf("Timeouts.HTTP = %v, want 10s", cfg.Timeouts.HTTP)
	}
	// Unset keys fall back to defaults
	if cfg.Timeouts.Shell != 5*time.Second {
		t.Errorf("Timeouts.Shell = %v, want 5s", cfg.Timeouts.Shell)
	}
	if !cfg.HTTP.BlockPrivateIPs {
		t.Error("HTTP.BlockPrivateIPs = false, want true")
	}
	if cfg.Store.Backend != BackendSQLite || cfg.Store.Path != "/srv/specs.db" {
		t.Errorf("Store = %+v", cfg.Store)
	}
	if cfg.Store.Pattern != "team-*" {
		t.Errorf("Store.Pattern = %q", cfg.Store.Pattern)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	clearConfigEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("Load() expected error for missing file")
	}

	var cfgErr *cmderrors.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError, got %T", err)
	}
	if cfgErr.Key != "config_file" {
		t.Errorf("ConfigError.Key = %q, want config_file", cfgErr.Key)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	clearConfigEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("log: [unclosed"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("Load() expected error for invalid YAML")
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	clearConfigEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("store:\n  backend: postgres\n"), 0600); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	if err == nil {
		t.Fatal("Load() expected validation error")
	}
	var cfgErr *cmderrors.ConfigError
	if !errors.As(err, &cfgErr) || cfgErr.Key != "validation" {
		t.Fatalf("expected validation ConfigError, got %v", err)
	}
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig in chain, got %v", err)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearConfigEnv(t)

	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_SOURCE", "1")
	t.Setenv("CMDSPEC_SANDBOX_DIR", "/tmp/box")
	t.Setenv("CMDSPEC_HTTP_TIMEOUT", "2s")
	t.Setenv("CMDSPEC_SHELL_TIMEOUT", "not-a-duration")
	t.Setenv("CMDSPEC_BLOCK_PRIVATE_IPS", "true")
	t.Setenv("CMDSPEC_STORE", "memory")
	t.Setenv("CMDSPEC_SPECS_DIR", "/tmp/specs")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("Log.Format = %q, want json", cfg.Log.Format)
	}
	if !cfg.Log.AddSource {
		t.Error("Log.AddSource = false, want true")
	}
	if cfg.Sandbox.Root != "/tmp/box" {
		t.Errorf("Sandbox.Root = %q, want /tmp/box", cfg.Sandbox.Root)
	}
	if cfg.Timeouts.HTTP != 2*time.Second {
		t.Errorf("Timeouts.HTTP = %v, want 2s", cfg.Timeouts.HTTP)
	}
	// Unparseable durations are ignored
	if cfg.Timeouts.Shell != 5*time.Second {
		t.Errorf("Timeouts.Shell = %v, want 5s", cfg.Timeouts.Shell)
	}
	if !cfg.HTTP.BlockPrivateIPs {
		t.Error("HTTP.BlockPrivateIPs = false, want true")
	}
	if cfg.Store.Backend != BackendMemory {
		t.Errorf("Store.Backend = %q, want memory", cfg.Store.Backend)
	}
	if cfg.Store.Dir != "/tmp/specs" {
		t.Errorf("Store.Dir = %q, want /tmp/specs", cfg.Store.Dir)
	}
}

func TestLoad_ExpandsHome(t *testing.T) {
	clearConfigEnv(t)

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("CMDSPEC_SANDBOX_DIR", "~/box")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Sandbox.Root != filepath.Join(home, "box") {
		t.Errorf("Sandbox.Root = %q, want %q", cfg.Sandbox.Root, filepath.Join(home, "box"))
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
		errText string
	}{
		{
			name:    "defaults are valid",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "invalid log level",
			modify:  func(c *Config) { c.Log.Level = "verbose" },
			wantErr: true,
			errText: "log.level",
		},
		{
			name:    "trace log level",
			modify:  func(c *Config) { c.Log.Level = "trace" },
			wantErr: false,
		},
		{
			name:    "invalid log format",
			modify:  func(c *Config) { c.Log.Format = "xml" },
			wantErr: true,
			errText: "log.format",
		},
		{
			name:    "empty sandbox root",
			modify:  func(c *Config) { c.Sandbox.Root = "" },
			wantErr: true,
			errText: "sandbox.root",
		},
		{
			name:    "negative write quota",
			modify:  func(c *Config) { c.Sandbox.WriteQuota = -1 },
			wantErr: true,
			errText: "sandbox.write_quota",
		},
		{
			name:    "zero http timeout",
			modify:  func(c *Config) { c.Timeouts.HTTP = 0 },
			wantErr: true,
			errText: "timeouts.http",
		},
		{
			name:    "negative shell timeout",
			modify:  func(c *Config) { c.Timeouts.Shell = -time.Second },
			wantErr: true,
			errText: "timeouts.shell",
		},
		{
			name:    "zero max response size",
			modify:  func(c *Config) { c.HTTP.MaxResponseSize = 0 },
			wantErr: true,
			errText: "http.max_response_size",
		},
		{
			name:    "unknown backend",
			modify:  func(c *Config) { c.Store.Backend = "postgres" },
			wantErr: true,
			errText: "store.backend",
		},
		{
			name:    "file backend without dir",
			modify:  func(c *Config) { c.Store.Dir = "" },
			wantErr: true,
			errText: "store.dir",
		},
		{
			name: "sqlite backend without path",
			modify: func(c *Config) {
				c.Store.Backend = BackendSQLite
				c.Store.Path = ""
			},
			wantErr: true,
			errText: "store.path",
		},
		{
			name: "memory backend needs nothing",
			modify: func(c *Config) {
				c.Store.Backend = BackendMemory
				c.Store.Dir = ""
				c.Store.Path = ""
			},
			wantErr: false,
		},
		{
			name:    "invalid pattern",
			modify:  func(c *Config) { c.Store.Pattern = "team-[" },
			wantErr: true,
			errText: "store.pattern",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !strings.Contains(err.Error(), tt.errText) {
				t.Errorf("Validate() error = %q, want it to mention %q", err.Error(), tt.errText)
			}
		})
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.Log.Level = "loud"
	cfg.Timeouts.HTTP = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error")
	}
	for _, want := range []string{"log.level", "timeouts.http"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err.Error(), want)
		}
	}
}

func TestConfigDir(t *testing.T) {
	base := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", base)

	dir, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() error = %v", err)
	}
	if dir != filepath.Join(base, "cmdspec") {
		t.Errorf("ConfigDir() = %q, want %q", dir, filepath.Join(base, "cmdspec"))
	}
	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("config dir not created: %v", err)
	}
	if info.Mode().Perm() != 0700 {
		t.Errorf("config dir mode = %o, want 700", info.Mode().Perm())
	}

	path, err := ConfigPath()
	if err != nil {
		t.Fatalf("ConfigPath() error = %v", err)
	}
	if path != filepath.Join(base, "cmdspec", "config.yaml") {
		t.Errorf("ConfigPath() = %q", path)
	}
}

func TestLoadDefault(t *testing.T) {
	clearConfigEnv(t)
	base := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", base)

	// No file yet: defaults
	cfg, err := LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault() error = %v", err)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want warn", cfg.Log.Level)
	}

	if err := os.WriteFile(filepath.Join(base, "cmdspec", "config.yaml"), []byte("log:\n  level: error\n"), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err = LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault() error = %v", err)
	}
	if cfg.Log.Level != "error" {
		t.Errorf("Log.Level = %q, want error", cfg.Log.Level)
	}
}

func TestSave(t *testing.T) {
	clearConfigEnv(t)

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.Log.Level = "debug"
	cfg.Store.Backend = BackendSQLite
	cfg.Timeouts.Shell = 12 * time.Second

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("saved file missing: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("file mode = %o, want 600", info.Mode().Perm())
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file left behind")
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", loaded.Log.Level)
	}
	if loaded.Store.Backend != BackendSQLite {
		t.Errorf("Store.Backend = %q, want sqlite", loaded.Store.Backend)
	}
	if loaded.Timeouts.Shell != 12*time.Second {
		t.Errorf("Timeouts.Shell = %v, want 12s", loaded.Timeouts.Shell)
	}
}
