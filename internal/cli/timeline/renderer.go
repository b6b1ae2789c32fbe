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
// Package timeline renders an ASCII timeline of the steps of a run.
package timeline

import (
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/tombee/cmdspec/pkg/interpreter"
)

const (
	// MinTerminalWidth is the narrowest layout the renderer produces
	MinTerminalWidth = 60
	// DefaultBarWidth is the default width for duration bars
	DefaultBarWidth = 30
	// StatusIconOK indicates successful completion
	StatusIconOK = "✓"
	// StatusIconError indicates failure
	StatusIconError = "✗"

	nameWidth = 24
)

// Renderer renders ASCII timelines from step records.
type Renderer struct {
	Width    int
	BarWidth int
}

// NewRenderer creates a renderer for the given terminal width. A width of
// zero detects the width of stdout.
func NewRenderer(width int) *Renderer {
	if width <= 0 {
		w, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil {
			w = 100
		}
		width = w
	}
	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}

	// Format: "│ name ██████░░░░  duration  status │"
	barWidth := width - nameWidth - 15
	if barWidth > 60 {
		barWidth = 60
	}
	if barWidth < DefaultBarWidth {
		barWidth = DefaultBarWidth
	}

	return &Renderer{
		Width:    nameWidth + barWidth + 15,
		BarWidth: barWidth,
	}
}

// Render generates a timeline for a run. Steps execute one after another,
// so each bar starts where the previous one ended.
func (r *Renderer) Render(title string, steps []interpreter.StepRecord) (string, error) {
	if len(steps) == 0 {
		return "", fmt.Errorf("no steps to render")
	}

	var total time.Duration
	for _, step := range steps {
		total += step.Duration
	}

	var sb strings.Builder

	border := strings.Repeat("─", r.Width-2)
	sb.WriteString("┌" + border + "┐\n")
	summary := "Total: " + formatDuration(total)
	titleWidth := r.Width - 5 - len([]rune(summary))
	sb.WriteString(fmt.Sprintf("│ %-*s %s │\n", titleWidth, truncate(title, titleWidth), summary))
	sb.WriteString("├" + border + "┤\n")

	var offset time.Duration
	for _, step := range steps {
		sb.WriteString(r.renderStep(step, offset, total))
		offset += step.Duration
	}

	sb.WriteString("└" + border + "┘\n")

	return sb.String(), nil
}

// renderStep generates a timeline line for a single step.
func (r *Renderer) renderStep(step interpreter.StepRecord, offset, total time.Duration) string {
	startPos, barLength := 0, r.BarWidth
	if total > 0 {
		startPos = int(float64(offset) / float64(total) * float64(r.BarWidth))
		barLength = int(float64(step.Duration) / float64(total) * float64(r.BarWidth))
	}
	if barLength < 1 {
		barLength = 1
	}
	if startPos >= r.BarWidth {
		startPos = r.BarWidth - 1
	}
	if startPos+barLength > r.BarWidth {
		barLength = r.BarWidth - startPos
	}

	bar := strings.Repeat("░", startPos) +
		strings.Repeat("█", barLength) +
		strings.Repeat("░", r.BarWidth-startPos-barLength)

	statusIcon := StatusIconOK
	if step.Status == interpreter.StepStatusFailed {
		statusIcon = StatusIconError
	}

	name := fmt.Sprintf("%d %s", step.Index, step.Type)
	if step.OutputVar != "" {
		name += " → " + step.OutputVar
	}

	return fmt.Sprintf("│ %-*s %s %7s %s │\n",
		nameWidth,
		truncate(name, nameWidth),
		bar,
		formatDuration(step.Duration),
		statusIcon,
	)
}

// truncate shortens a string to maxLen runes with ellipsis if needed.
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return fmt.Sprintf("%.1fm", d.Minutes())
}
