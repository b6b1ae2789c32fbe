// Package shell implements the shell operation: one external process spawned
// from an argument vector. Command strings are tokenized, never handed to a
// shell, so metacharacters reach the program as literal text.
package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"time"

	"github.com/kballard/go-shellquote"

	"github.com/tombee/cmdspec/internal/action"
	cmderrors "github.com/tombee/cmdspec/pkg/errors"
)

// DirResolver maps a step's cwd onto a sandboxed absolute directory.
type DirResolver interface {
	Resolve(path string) (string, error)
}

// Config holds configuration for the shell action.
type Config struct {
	// WorkingDir is the working directory when a step sets no cwd
	WorkingDir string

	// Timeout is the default timeout for commands (default: 5s)
	Timeout time.Duration

	// Resolver validates step cwd values. Nil accepts them unchanged.
	Resolver DirResolver

	// Env is the base environment for spawned processes (default: os.Environ()).
	Env []string

	// MaxOutputSize caps captured stdout and stderr each (default: 10MB)
	MaxOutputSize int
}

// ShellAction spawns processes described by step config.
type ShellAction struct {
	config *Config
}

// New creates a new shell action instance.
func New(config *Config) (*ShellAction, error) {
	if config == nil {
		config = &Config{}
	}
	if config.Timeout == 0 {
		config.Timeout = 5 * time.Second
	}
	if config.MaxOutputSize == 0 {
		config.MaxOutputSize = 10 * 1024 * 1024
	}
	if config.Env == nil {
		config.Env = os.Environ()
	}
	return &ShellAction{config: config}, nil
}

// Name returns the operation type handled.
func (c *ShellAction) Name() string {
	return "shell"
}

// Split tokenizes a command string the way the action does before spawning.
func Split(command string) ([]string, error) {
	argv, err := shellquote.Split(command)
	if err != nil {
		return nil, fmt.Errorf("cannot tokenize command: %w", err)
	}
	if len(argv) == 0 {
		return nil, fmt.Errorf("command is empty")
	}
	return argv, nil
}

// Execute runs the command and returns {"stdout", "stderr", "exitCode"}.
func (c *ShellAction) Execute(ctx context.Context, inputs map[string]any) (any, error) {
	command, err := action.RequireString(inputs, "command")
	if err != nil {
		return nil, err
	}
	argv, err := Split(command)
	if err != nil {
		return nil, err
	}

	timeout, err := action.Timeout(inputs, c.config.Timeout)
	if err != nil {
		return nil, err
	}

	dir := c.config.WorkingDir
	if cwd, ok := action.String(inputs, "cwd"); ok && cwd != "" {
		dir = cwd
		if c.config.Resolver != nil {
			dir, err = c.config.Resolver.Resolve(cwd)
			if err != nil {
				return nil, err
			}
		}
	}

	extraEnv, err := action.StringMap(inputs, "env")
	if err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, argv[0], argv[1:]...)
	cmd.Dir = dir
	cmd.Env = buildEnv(c.config.Env, extraEnv)
	cmd.WaitDelay = time.Second

	stdout := &cappedBuffer{limit: c.config.MaxOutputSize}
	stderr := &cappedBuffer{limit: c.config.MaxOutputSize}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	err = cmd.Run()

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if runCtx.Err() == context.DeadlineExceeded {
		return nil, &cmderrors.TimeoutError{
			Operation: "process " + argv[0],
			Duration:  timeout,
			Cause:     err,
		}
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, &cmderrors.ProcessError{
				Program:  argv[0],
				ExitCode: exitErr.ExitCode(),
				Stderr:   stderr.String(),
				Cause:    err,
			}
		}
		return nil, &cmderrors.ProcessError{Program: argv[0], ExitCode: -1, Cause: err}
	}

	return map[string]any{
		"stdout":   stdout.String(),
		"stderr":   stderr.String(),
		"exitCode": 0,
	}, nil
}

// buildEnv appends step variables to the base environment in sorted order.
func buildEnv(base []string, extra map[string]string) []string {
	env := make([]string, 0, len(base)+len(extra))
	env = append(env, base...)

	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		env = append(env, k+"="+extra[k])
	}
	return env
}

// cappedBuffer keeps the first limit bytes written and discards the rest.
type cappedBuffer struct {
	buf   bytes.Buffer
	limit int
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	if room := b.limit - b.buf.Len(); room > 0 {
		if len(p) > room {
			b.buf.Write(p[:room])
		} else {
			b.buf.Write(p)
		}
	}
	return len(p), nil
}

func (b *cappedBuffer) String() string {
	return b.buf.String()
}
