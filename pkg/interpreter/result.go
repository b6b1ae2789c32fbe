package interpreter

import (
	"time"

	"github.com/tombee/cmdspec/pkg/spec"
)

// RunStatus is the state of a run.
type RunStatus string

const (
	// RunStatusPending means the run has not started a step yet.
	RunStatusPending RunStatus = "pending"
	// RunStatusRunning means a step is executing.
	RunStatusRunning RunStatus = "running"
	// RunStatusSucceeded means every step completed.
	RunStatusSucceeded RunStatus = "succeeded"
	// RunStatusFailed means a step failed and the remaining steps were skipped.
	RunStatusFailed RunStatus = "failed"
)

// StepStatus is the outcome of one step.
type StepStatus string

const (
	StepStatusSucceeded StepStatus = "succeeded"
	StepStatusFailed    StepStatus = "failed"
)

// Result is what a run hands to the host for rendering.
type Result struct {
	RunID  string    `json:"runId"`
	SpecID string    `json:"specId"`
	Status RunStatus `json:"status"`

	// Context is the final execution context: env, input, sandboxDir, tempDir
	// and every bound outputVar.
	Context map[string]any `json:"context"`

	UI      spec.UIBinding   `json:"ui"`
	Actions []spec.ActionDef `json:"actions,omitempty"`

	// Steps records every step that started, in order.
	Steps []StepRecord `json:"steps"`

	// FailedStep is the index of the failing step, or -1.
	FailedStep int    `json:"failedStep"`
	Error      string `json:"error,omitempty"`

	StartedAt   time.Time `json:"startedAt"`
	CompletedAt time.Time `json:"completedAt"`
}

// StepRecord describes one executed step.
type StepRecord struct {
	Index     int                `json:"index"`
	Type      spec.OperationType `json:"type"`
	OutputVar string             `json:"outputVar,omitempty"`
	Status    StepStatus         `json:"status"`
	Duration  time.Duration      `json:"-"`

	// DurationMS is Duration in milliseconds.
	DurationMS int64  `json:"durationMs"`
	Error      string `json:"error,omitempty"`
}

// Value returns the context variable name, if bound.
func (r *Result) Value(name string) (any, bool) {
	if r == nil || r.Context == nil {
		return nil, false
	}
	v, ok := r.Context[name]
	return v, ok
}
