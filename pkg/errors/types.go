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

package errors

import (
	"fmt"
	"time"
)

// ValidationError represents user input validation failures.
// Use this for invalid user input, malformed data, or constraint violations.
type ValidationError struct {
	// Field identifies which input field failed validation
	Field string

	// Message is the human-readable error description
	Message string

	// Suggestion provides actionable guidance for fixing the error
	Suggestion string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// NotFoundError represents a resource not found error.
// Use this when a requested resource does not exist.
type NotFoundError struct {
	// Resource is the type of resource (e.g., "spec", "action")
	Resource string

	// ID is the identifier that was not found
	ID string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ConfigError represents configuration problems.
// Use this for configuration file errors, missing settings, or invalid config values.
type ConfigError struct {
	// Key is the configuration key that has the problem (e.g., "sandbox.root")
	Key string

	// Reason explains what's wrong with the configuration
	Reason string

	// Cause is the underlying error (e.g., file read error, parse error)
	Cause error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("config error at %s: %s", e.Key, e.Reason)
	}
	return fmt.Sprintf("config error: %s", e.Reason)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// TimeoutError represents a bounded wait that expired.
// Network requests and spawned processes return it when their timeout elapses.
type TimeoutError struct {
	// Operation describes what timed out (e.g., "GET https://example.com", "process sleep")
	Operation string

	// Duration is the timeout that was exceeded
	Duration time.Duration

	// Cause is the underlying error (if any)
	Cause error
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timed out after %v", e.Operation, e.Duration)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *TimeoutError) Unwrap() error {
	return e.Cause
}

// InterpolationError reports a template that could not be expanded, either
// because its syntax is malformed or because it references a value that is
// not bound in the execution context.
type InterpolationError struct {
	// StepIndex is the index of the operation whose config failed to resolve.
	StepIndex int

	// Template is the offending template string.
	Template string

	// Cause is the parser or resolver error.
	Cause error
}

// Error implements the error interface.
func (e *InterpolationError) Error() string {
	return fmt.Sprintf("interpolation failed in step %d for %q: %v", e.StepIndex, truncate(e.Template, 80), e.Cause)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *InterpolationError) Unwrap() error {
	return e.Cause
}

// UnknownOperationError is returned when a step names an operation type
// outside the builtin allowlist.
type UnknownOperationError struct {
	StepIndex int
	Type      string
}

// Error implements the error interface.
func (e *UnknownOperationError) Error() string {
	return fmt.Sprintf("unknown operation type %q at step %d", e.Type, e.StepIndex)
}

// PathEscapeError is returned when a file path resolves outside the sandbox root.
// No I/O is performed when this error is returned.
type PathEscapeError struct {
	// Path is the path as written in the step config.
	Path string

	// Resolved is the absolute path it resolved to.
	Resolved string

	// Root is the sandbox root the path had to stay within.
	Root string
}

// Error implements the error interface.
func (e *PathEscapeError) Error() string {
	return fmt.Sprintf("path %q escapes sandbox root %s", e.Path, e.Root)
}

// HTTPStatusError is returned for responses outside the 2xx range.
type HTTPStatusError struct {
	Method     string
	URL        string
	StatusCode int

	// Body holds the beginning of the response body for diagnostics.
	Body string
}

// Error implements the error interface.
func (e *HTTPStatusError) Error() string {
	msg := fmt.Sprintf("%s %s returned HTTP %d", e.Method, e.URL, e.StatusCode)
	if e.Body != "" {
		msg = fmt.Sprintf("%s: %s", msg, truncate(e.Body, 200))
	}
	return msg
}

// IsRetryable reports whether the status indicates a transient server condition.
func (e *HTTPStatusError) IsRetryable() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}

// ProcessError is returned when a process cannot be spawned or exits non-zero.
type ProcessError struct {
	// Program is argv[0] of the spawned process.
	Program string

	// ExitCode is the process exit status, or -1 when the process never started.
	ExitCode int

	// Stderr holds captured standard error output.
	Stderr string

	// Cause is the underlying exec error.
	Cause error
}

// Error implements the error interface.
func (e *ProcessError) Error() string {
	if e.ExitCode < 0 {
		return fmt.Sprintf("failed to start %s: %v", e.Program, e.Cause)
	}
	if e.Stderr != "" {
		return fmt.Sprintf("%s exited with status %d: %s", e.Program, e.ExitCode, truncate(e.Stderr, 200))
	}
	return fmt.Sprintf("%s exited with status %d", e.Program, e.ExitCode)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *ProcessError) Unwrap() error {
	return e.Cause
}

// InterpreterError wraps the failure that aborted a run with the position of
// the step that failed.
type InterpreterError struct {
	// RunID identifies the run that failed.
	RunID string

	// StepIndex is the index of the failing step.
	StepIndex int

	// StepType is the declared type of the failing step.
	StepType string

	// Cause is the handler, interpolation or dispatch error.
	Cause error
}

// Error implements the error interface.
func (e *InterpreterError) Error() string {
	return fmt.Sprintf("step %d (%s) failed: %v", e.StepIndex, e.StepType, e.Cause)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *InterpreterError) Unwrap() error {
	return e.Cause
}

// IsUserVisible implements UserVisibleError.
func (e *InterpreterError) IsUserVisible() bool {
	return true
}

// UserMessage implements UserVisibleError.
func (e *InterpreterError) UserMessage() string {
	return e.Error()
}

// Suggestion implements UserVisibleError.
func (e *InterpreterError) Suggestion() string {
	switch Classify(e.Cause) {
	case "interpolation":
		return "check that every {{placeholder}} refers to an input, env value or an outputVar of an earlier step"
	case "path_escape":
		return "file paths must stay inside the sandbox directory"
	case "timeout":
		return "raise the step's timeout (milliseconds) or check that the remote side is reachable"
	case "unknown_operation":
		return "use one of the builtin operation types"
	default:
		return ""
	}
}

// ErrorType implements ErrorClassifier.
func (e *InterpreterError) ErrorType() string {
	return Classify(e.Cause)
}

// IsRetryable implements ErrorClassifier. Only transient I/O failures are
// worth a manual re-run of the whole spec.
func (e *InterpreterError) IsRetryable() bool {
	switch Classify(e.Cause) {
	case "timeout":
		return true
	case "http_status":
		var statusErr *HTTPStatusError
		if As(e.Cause, &statusErr) {
			return statusErr.IsRetryable()
		}
	}
	return false
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n-3] + "..."
	}
	return s
}
