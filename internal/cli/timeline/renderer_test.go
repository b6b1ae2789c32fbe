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
package timeline

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/cmdspec/pkg/interpreter"
	"github.com/tombee/cmdspec/pkg/spec"
)

func TestNewRenderer(t *testing.T) {
	r := NewRenderer(120)
	assert.Equal(t, 60, r.BarWidth)
	assert.Equal(t, nameWidth+60+15, r.Width)

	narrow := NewRenderer(10)
	assert.Equal(t, DefaultBarWidth, narrow.BarWidth)
}

func TestRender(t *testing.T) {
	r := NewRenderer(100)
	steps := []interpreter.StepRecord{
		{Index: 0, Type: spec.OpHTTPRequest, OutputVar: "response", Status: interpreter.StepStatusSucceeded, Duration: 300 * time.Millisecond},
		{Index: 1, Type: spec.OpTransform, OutputVar: "items", Status: interpreter.StepStatusSucceeded, Duration: 100 * time.Millisecond},
		{Index: 2, Type: spec.OpShowHUD, Status: interpreter.StepStatusFailed, Duration: 500 * time.Microsecond},
	}

	out, err := r.Render("GitHub PRs", steps)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 7)
	assert.Contains(t, lines[1], "GitHub PRs")
	assert.Contains(t, lines[1], "Total: 400ms")
	assert.Contains(t, lines[3], "0 httpRequest → response")
	assert.Contains(t, lines[3], "300ms")
	assert.Contains(t, lines[4], "1 transform → items")
	assert.Contains(t, lines[5], "500µs")
	assert.True(t, strings.HasSuffix(lines[5], StatusIconError+" │"))
	assert.True(t, strings.HasSuffix(lines[3], StatusIconOK+" │"))

	// The second bar starts after the first one
	first := strings.Index(lines[3], "█")
	second := strings.Index(lines[4], "█")
	assert.Greater(t, second, first)

	// Every row is the same width
	width := len([]rune(lines[0]))
	for _, line := range lines {
		assert.Equal(t, width, len([]rune(line)), "line %q", line)
	}
}

func TestRender_Empty(t *testing.T) {
	_, err := NewRenderer(80).Render("empty", nil)
	assert.Error(t, err)
}

func TestRender_ZeroDurations(t *testing.T) {
	out, err := NewRenderer(80).Render("fast", []interpreter.StepRecord{
		{Index: 0, Type: spec.OpTransform, Status: interpreter.StepStatusSucceeded},
	})
	require.NoError(t, err)
	assert.Contains(t, out, "0µs")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "a very...", truncate("a very long name", 9))
	assert.Equal(t, "ab", truncate("abcdef", 2))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "1.5s", formatDuration(1500*time.Millisecond))
	assert.Equal(t, "2.0m", formatDuration(2*time.Minute))
}
