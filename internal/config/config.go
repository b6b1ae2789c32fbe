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
// Package config loads cmdspec settings from a YAML file in the XDG config
// directory, applies defaults and environment overrides, and validates the
// result.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	cmderrors "github.com/tombee/cmdspec/pkg/errors"
)

var (
	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("config: invalid configuration")
)

// Store backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Config represents the complete cmdspec configuration.
type Config struct {
	Log      LogConfig      `yaml:"log"`
	Sandbox  SandboxConfig  `yaml:"sandbox"`
	Timeouts TimeoutsConfig `yaml:"timeouts"`
	HTTP     HTTPConfig     `yaml:"http"`
	Store    StoreConfig    `yaml:"store"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level sets the minimum log level (debug, info, warn, error).
	// Environment: LOG_LEVEL
	// Default: warn
	Level string `yaml:"level"`

	// Format sets the output format (json, text).
	// Environment: LOG_FORMAT
	// Default: text
	Format string `yaml:"format"`

	// AddSource adds source file and line information to logs.
	// Environment: LOG_SOURCE
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// SandboxConfig configures where operations may touch the filesystem.
type SandboxConfig struct {
	// Root is the directory file paths and shell working directories must
	// stay under. Exposed to specs as {{sandboxDir}}.
	// Environment: CMDSPEC_SANDBOX_DIR
	// Default: ~/.local/share/cmdspec/sandbox
	Root string `yaml:"root"`

	// Temp is the scratch directory exposed as {{tempDir}}.
	// Default: $TMPDIR/cmdspec
	Temp string `yaml:"temp,omitempty"`

	// WriteQuota bounds the bytes fileWrite may write per root per process.
	// Zero disables the quota.
	WriteQuota int64 `yaml:"write_quota,omitempty"`
}

// TimeoutsConfig holds the default per-operation timeouts. A step's own
// timeout (milliseconds) takes precedence.
type TimeoutsConfig struct {
	// HTTP is the httpRequest default. Default: 30s
	HTTP time.Duration `yaml:"http"`

	// Shell is the shell default. Default: 5s
	Shell time.Duration `yaml:"shell"`
}

// HTTPConfig configures the httpRequest client.
type HTTPConfig struct {
	// UserAgent is sent when a step sets no User-Agent header.
	UserAgent string `yaml:"user_agent,omitempty"`

	// BlockPrivateIPs refuses requests to private, loopback and link-local
	// addresses.
	BlockPrivateIPs bool `yaml:"block_private_ips"`

	// MaxResponseSize caps response bodies in bytes. Default: 10MB
	MaxResponseSize int64 `yaml:"max_response_size"`
}

// StoreConfig selects where specs are persisted.
type StoreConfig struct {
	// Backend is file, sqlite or memory.
	// Environment: CMDSPEC_STORE
	// Default: file
	Backend string `yaml:"backend"`

	// Dir is the file backend directory.
	// Environment: CMDSPEC_SPECS_DIR
	// Default: ~/.local/share/cmdspec/specs
	Dir string `yaml:"dir,omitempty"`

	// Path is the sqlite database file.
	// Default: ~/.local/share/cmdspec/specs.db
	Path string `yaml:"path,omitempty"`

	// Pattern optionally restricts listing to spec IDs matching a glob.
	Pattern string `yaml:"pattern,omitempty"`
}

// Default returns a configuration with default values.
func Default() *Config {
	dataDir := defaultDataDir()

	return &Config{
		Log: LogConfig{
			Level:     "warn",
			Format:    "text",
			AddSource: false,
		},
		Sandbox: SandboxConfig{
			Root: filepath.Join(dataDir, "sandbox"),
		},
		Timeouts: TimeoutsConfig{
			HTTP:  30 * time.Second,
			Shell: 5 * time.Second,
		},
		HTTP: HTTPConfig{
			MaxResponseSize: 10 * 1024 * 1024,
		},
		Store: StoreConfig{
			Backend: BackendFile,
			Dir:     filepath.Join(dataDir, "specs"),
			Path:    filepath.Join(dataDir, "specs.db"),
		},
	}
}

// Load loads configuration from the given path (if non-empty), then applies
// environment overrides and validates the result.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	// Load from file if path provided
	if configPath != "" {
		if err := cfg.loadFromFile(configPath); err != nil {
			return nil, &cmderrors.ConfigError{
				Key:    "config_file",
				Reason: fmt.Sprintf("failed to load from %s", configPath),
				Cause:  err,
			}
		}
	}

	// Apply defaults to any zero values (handles minimal configs)
	cfg.applyDefaults()

	// Override with environment variables
	cfg.loadFromEnv()

	if err := cfg.expandPaths(); err != nil {
		return nil, &cmderrors.ConfigError{Key: "paths", Reason: "failed to expand paths", Cause: err}
	}

	if err := cfg.Validate(); err != nil {
		return nil, &cmderrors.ConfigError{
			Key:    "validation",
			Reason: "configuration validation failed",
			Cause:  err,
		}
	}

	return cfg, nil
}

// LoadDefault loads the config file from the XDG config directory when it
// exists, and defaults otherwise.
func LoadDefault() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Load("")
	}
	if _, err := os.Stat(path); err != nil {
		return Load("")
	}
	return Load(path)
}

func (c *Config) applyDefaults() {
	def := Default()

	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = def.Log.Format
	}
	if c.Sandbox.Root == "" {
		c.Sandbox.Root = def.Sandbox.Root
	}
	if c.Timeouts.HTTP == 0 {
		c.Timeouts.HTTP = def.Timeouts.HTTP
	}
	if c.Timeouts.Shell == 0 {
		c.Timeouts.Shell = def.Timeouts.Shell
	}
	if c.HTTP.MaxResponseSize == 0 {
		c.HTTP.MaxResponseSize = def.HTTP.MaxResponseSize
	}
	if c.Store.Backend == "" {
		c.Store.Backend = def.Store.Backend
	}
	if c.Store.Dir == "" {
		c.Store.Dir = def.Store.Dir
	}
	if c.Store.Path == "" {
		c.Store.Path = def.Store.Path
	}
}

func (c *Config) loadFromFile(path string) error {
	path, err := expandHome(path)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	return nil
}

func (c *Config) loadFromEnv() {
	// Log configuration
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = strings.ToLower(val)
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = strings.ToLower(val)
	}
	if val := os.Getenv("LOG_SOURCE"); val != "" {
		c.Log.AddSource = val == "1" || strings.ToLower(val) == "true"
	}

	// Sandbox configuration
	if val := os.Getenv("CMDSPEC_SANDBOX_DIR"); val != "" {
		c.Sandbox.Root = val
	}
	if val := os.Getenv("CMDSPEC_TEMP_DIR"); val != "" {
		c.Sandbox.Temp = val
	}

	// Timeouts
	if val := os.Getenv("CMDSPEC_HTTP_TIMEOUT"); val != "" {
		if duration, err := time.ParseDuration(val); err == nil {
			c.Timeouts.HTTP = duration
		}
	}
	if val := os.Getenv("CMDSPEC_SHELL_TIMEOUT"); val != "" {
		if duration, err := time.ParseDuration(val); err == nil {
			c.Timeouts.Shell = duration
		}
	}

	// HTTP configuration
	if val := os.Getenv("CMDSPEC_BLOCK_PRIVATE_IPS"); val != "" {
		if block, err := strconv.ParseBool(val); err == nil {
			c.HTTP.BlockPrivateIPs = block
		}
	}

	// Store configuration
	if val := os.Getenv("CMDSPEC_STORE"); val != "" {
		c.Store.Backend = strings.ToLower(val)
	}
	if val := os.Getenv("CMDSPEC_SPECS_DIR"); val != "" {
		c.Store.Dir = val
	}
}

func (c *Config) expandPaths() error {
	for _, p := range []*string{&c.Sandbox.Root, &c.Sandbox.Temp, &c.Store.Dir, &c.Store.Path} {
		expanded, err := expandHome(*p)
		if err != nil {
			return err
		}
		*p = expanded
	}
	return nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []string

	// Validate log configuration
	validLevels := map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "warning": true, "error": true}
	if !validLevels[c.Log.Level] {
		errs = append(errs, fmt.Sprintf("log.level must be one of [trace, debug, info, warn, warning, error], got %q", c.Log.Level))
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Log.Format] {
		errs = append(errs, fmt.Sprintf("log.format must be one of [json, text], got %q", c.Log.Format))
	}

	// Validate sandbox configuration
	if c.Sandbox.Root == "" {
		errs = append(errs, "sandbox.root is required")
	}
	if c.Sandbox.WriteQuota < 0 {
		errs = append(errs, fmt.Sprintf("sandbox.write_quota must be non-negative, got %d", c.Sandbox.WriteQuota))
	}

	// Validate timeouts
	if c.Timeouts.HTTP <= 0 {
		errs = append(errs, fmt.Sprintf("timeouts.http must be positive, got %v", c.Timeouts.HTTP))
	}
	if c.Timeouts.Shell <= 0 {
		errs = append(errs, fmt.Sprintf("timeouts.shell must be positive, got %v", c.Timeouts.Shell))
	}

	// Validate HTTP configuration
	if c.HTTP.MaxResponseSize <= 0 {
		errs = append(errs, fmt.Sprintf("http.max_response_size must be positive, got %d", c.HTTP.MaxResponseSize))
	}

	// Validate store configuration
	switch c.Store.Backend {
	case BackendFile:
		if c.Store.Dir == "" {
			errs = append(errs, "store.dir is required for the file backend")
		}
	case BackendSQLite:
		if c.Store.Path == "" {
			errs = append(errs, "store.path is required for the sqlite backend")
		}
	case BackendMemory:
	default:
		errs = append(errs, fmt.Sprintf("store.backend must be one of [file, sqlite, memory], got %q", c.Store.Backend))
	}
	if c.Store.Pattern != "" && !doublestar.ValidatePattern(c.Store.Pattern) {
		errs = append(errs, fmt.Sprintf("store.pattern %q is not a valid glob", c.Store.Pattern))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(errs, "; "))
	}

	return nil
}

// expandHome replaces a leading ~/ with the user's home directory.
func expandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, path[2:]), nil
}
