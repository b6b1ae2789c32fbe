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
package log

import (
	"context"
	"log/slog"
	"time"
)

// Invocation describes a CLI command invocation for logging purposes.
type Invocation struct {
	// Command is the full command path (e.g., "cmdspec run").
	Command string

	// SpecID is the spec the command operates on, if any.
	SpecID string

	// Metadata contains additional invocation fields.
	Metadata map[string]any
}

// Outcome describes how a command invocation finished.
type Outcome struct {
	// Success indicates whether the command returned no error.
	Success bool

	// Error is the error message if the command failed.
	Error string

	// DurationMs is the duration of the command in milliseconds.
	DurationMs int64
}

// LogInvocation logs the start of a command.
func LogInvocation(logger *slog.Logger, inv *Invocation) {
	attrs := []any{
		EventKey, "command_start",
		CommandKey, inv.Command,
	}

	if inv.SpecID != "" {
		attrs = append(attrs, SpecIDKey, inv.SpecID)
	}

	for k, v := range inv.Metadata {
		attrs = append(attrs, k, v)
	}

	logger.Debug("command started", attrs...)
}

// LogOutcome logs the end of a command. Failures are logged at info since
// the CLI reports them to the user separately.
func LogOutcome(logger *slog.Logger, inv *Invocation, out *Outcome) {
	attrs := []any{
		EventKey, "command_end",
		CommandKey, inv.Command,
		"success", out.Success,
		DurationKey, out.DurationMs,
	}

	if inv.SpecID != "" {
		attrs = append(attrs, SpecIDKey, inv.SpecID)
	}

	if out.Error != "" {
		attrs = append(attrs, "error", out.Error)
	}

	level := slog.LevelDebug
	message := "command completed"

	if !out.Success {
		level = slog.LevelInfo
		message = "command failed"
	}

	logger.Log(context.Background(), level, message, attrs...)
}

// CommandMiddleware wraps command handlers with start and completion
// logging.
type CommandMiddleware struct {
	logger *slog.Logger
}

// NewCommandMiddleware creates a new command logging middleware.
func NewCommandMiddleware(logger *slog.Logger) *CommandMiddleware {
	return &CommandMiddleware{
		logger: logger,
	}
}

// Handler runs handler, logging the invocation before and the outcome
// after. The handler's error is returned unchanged.
func (m *CommandMiddleware) Handler(inv *Invocation, handler func() error) error {
	start := time.Now()

	LogInvocation(m.logger, inv)

	err := handler()

	out := &Outcome{
		Success:    err == nil,
		DurationMs: time.Since(start).Milliseconds(),
	}
	if err != nil {
		out.Error = err.Error()
	}

	LogOutcome(m.logger, inv, out)

	return err
}
