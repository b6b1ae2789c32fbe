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
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()

	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("expected valid JSON line %q: %v", line, err)
		}
		entries = append(entries, entry)
	}
	return entries
}

func TestLogInvocation(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&Config{Level: "debug", Format: FormatJSON, Output: &buf})

	LogInvocation(logger, &Invocation{
		Command:  "cmdspec run",
		SpecID:   "github-prs",
		Metadata: map[string]any{"json": true},
	})

	entries := decodeLines(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	entry := entries[0]

	if entry[EventKey] != "command_start" {
		t.Errorf("expected event 'command_start', got: %v", entry[EventKey])
	}
	if entry[CommandKey] != "cmdspec run" {
		t.Errorf("expected command 'cmdspec run', got: %v", entry[CommandKey])
	}
	if entry[SpecIDKey] != "github-prs" {
		t.Errorf("expected spec_id 'github-prs', got: %v", entry[SpecIDKey])
	}
	if entry["json"] != true {
		t.Errorf("expected json metadata, got: %v", entry["json"])
	}
}

func TestLogInvocation_MinimalFields(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&Config{Level: "debug", Format: FormatJSON, Output: &buf})

	LogInvocation(logger, &Invocation{Command: "cmdspec list"})

	entry := decodeLines(t, &buf)[0]
	if _, ok := entry[SpecIDKey]; ok {
		t.Errorf("expected no spec_id field, got: %v", entry[SpecIDKey])
	}
}

func TestLogOutcome_Failure(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&Config{Level: "info", Format: FormatJSON, Output: &buf})

	inv := &Invocation{Command: "cmdspec run", SpecID: "broken"}

	// Successes are debug-only
	LogOutcome(logger, inv, &Outcome{Success: true, DurationMs: 3})
	if buf.Len() != 0 {
		t.Fatalf("expected success to be filtered at info, got: %s", buf.String())
	}

	LogOutcome(logger, inv, &Outcome{Success: false, Error: "step 1 failed", DurationMs: 7})

	entry := decodeLines(t, &buf)[0]
	if entry["msg"] != "command failed" {
		t.Errorf("expected msg 'command failed', got: %v", entry["msg"])
	}
	if entry["level"] != "INFO" {
		t.Errorf("expected INFO level, got: %v", entry["level"])
	}
	if entry["error"] != "step 1 failed" {
		t.Errorf("expected error field, got: %v", entry["error"])
	}
	if entry[DurationKey] != float64(7) {
		t.Errorf("expected duration 7, got: %v", entry[DurationKey])
	}
}

func TestCommandMiddleware_Handler(t *testing.T) {
	var buf bytes.Buffer
	m := NewCommandMiddleware(New(&Config{Level: "debug", Format: FormatJSON, Output: &buf}))

	called := false
	err := m.Handler(&Invocation{Command: "cmdspec validate"}, func() error {
		called = true
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Fatal("expected handler to be called")
	}

	entries := decodeLines(t, &buf)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0][EventKey] != "command_start" || entries[1][EventKey] != "command_end" {
		t.Errorf("unexpected events: %v, %v", entries[0][EventKey], entries[1][EventKey])
	}
	if entries[1]["success"] != true {
		t.Errorf("expected success=true, got: %v", entries[1]["success"])
	}
}

func TestCommandMiddleware_Handler_Error(t *testing.T) {
	var buf bytes.Buffer
	m := NewCommandMiddleware(New(&Config{Level: "debug", Format: FormatJSON, Output: &buf}))

	want := errors.New("spec not found")
	err := m.Handler(&Invocation{Command: "cmdspec show"}, func() error {
		return want
	})
	if !errors.Is(err, want) {
		t.Fatalf("expected handler error to be returned unchanged, got: %v", err)
	}

	entries := decodeLines(t, &buf)
	last := entries[len(entries)-1]
	if last["success"] != false {
		t.Errorf("expected success=false, got: %v", last["success"])
	}
	if last["error"] != "spec not found" {
		t.Errorf("expected error message, got: %v", last["error"])
	}
}
