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
// Package format renders command output for the terminal.
//
// Content produced by specs (HTTP bodies, shell output, templates) is
// untrusted, so every formatter strips terminal escape sequences from its
// input before adding its own styling.
package format

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/glamour"
)

const (
	maxJSONSize     = 10 * 1024 * 1024 // 10MB
	maxMarkdownSize = 5 * 1024 * 1024  // 5MB
	maxCodeSize     = 2 * 1024 * 1024  // 2MB

	// WordWrap is the column glamour wraps markdown at.
	WordWrap = 100
)

// escapeRegex matches CSI and OSC escape sequences.
var escapeRegex = regexp.MustCompile(`\x1b\[[0-9;?]*[ -/]*[@-~]|\x1b\][^\x07\x1b]*(?:\x07|\x1b\\)|\x1b[@-Z\\-_]`)

// Sanitize removes escape sequences and control characters other than
// newline and tab from s.
func Sanitize(s string) string {
	s = escapeRegex.ReplaceAllString(s, "")
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if r < 0x20 || r == 0x7f || (r >= 0x80 && r < 0xa0) {
			return -1
		}
		return r
	}, s)
}

// enforceSize checks if content exceeds the maximum size for its format.
func enforceSize(content string, format string, maxSize int) error {
	if len(content) > maxSize {
		return fmt.Errorf("output size (%d bytes) exceeds maximum for %s format (%d bytes)", len(content), format, maxSize)
	}
	return nil
}

// FormatMarkdown renders markdown with glamour if stdout is a TTY.
// Falls back to the sanitized source if glamour fails or stdout is not a TTY.
func FormatMarkdown(content string, isTTY bool) (string, error) {
	if err := enforceSize(content, "markdown", maxMarkdownSize); err != nil {
		return "", err
	}

	content = Sanitize(content)
	if !isTTY {
		return content, nil
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(WordWrap),
	)
	if err != nil {
		return content, nil
	}

	rendered, err := renderer.Render(content)
	if err != nil {
		return content, nil
	}

	return rendered, nil
}

// FormatJSON pretty-prints JSON with 2-space indentation, highlighting it
// on a TTY.
func FormatJSON(content string, isTTY bool) (string, error) {
	if err := enforceSize(content, "json", maxJSONSize); err != nil {
		return "", err
	}

	var obj any
	if err := json.Unmarshal([]byte(content), &obj); err != nil {
		return "", fmt.Errorf("invalid JSON: %w", err)
	}

	formatted, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to format JSON: %w", err)
	}

	return FormatCode(string(formatted), "json", isTTY)
}

// FormatCode applies syntax highlighting for language if stdout is a TTY.
// Falls back to plain code if the language is unrecognized.
func FormatCode(content string, language string, isTTY bool) (string, error) {
	if err := enforceSize(content, "code", maxCodeSize); err != nil {
		return "", err
	}

	content = Sanitize(content)
	if !isTTY || language == "" {
		return content, nil
	}

	var buf bytes.Buffer
	if err := quick.Highlight(&buf, content, language, "terminal256", "monokai"); err != nil {
		return content, nil
	}

	return buf.String(), nil
}

// Format formats content by format name: "markdown", "json", "code" or
// "code:<language>", and "string".
func Format(content string, format string, isTTY bool) (string, error) {
	formatLower := strings.ToLower(format)

	if language, ok := strings.CutPrefix(formatLower, "code:"); ok {
		return FormatCode(content, language, isTTY)
	}

	switch formatLower {
	case "", "string":
		return Sanitize(content), nil
	case "markdown":
		return FormatMarkdown(content, isTTY)
	case "json":
		return FormatJSON(content, isTTY)
	case "code":
		return FormatCode(content, "", isTTY)
	default:
		return "", fmt.Errorf("unknown format: %s", format)
	}
}
