package models

import "time"

// StepStatus is the lifecycle state of one step within a run.
type StepStatus string

const (
	StepPending   StepStatus = "pending"
	StepReady     StepStatus = "ready"
	StepRunning   StepStatus = "running"
	StepSucceeded StepStatus = "succeeded"
	StepFailed    StepStatus = "failed"
	StepSkipped   StepStatus = "skipped"
)

// Terminal reports whether the status is final for a step.
func (s StepStatus) Terminal() bool {
	switch s {
	case StepSucceeded, StepFailed, StepSkipped:
		return true
	default:
		return false
	}
}

// ErrorInfo is the recorded cause of a step failure or skip.
type ErrorInfo struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// StepResult is the per-step slot inside the execution context. It is
// written only by the worker driving the step and becomes immutable once
// the status is terminal.
type StepResult struct {
	StepID     string         `json:"step_id"`
	Status     StepStatus     `json:"status"`
	Output     map[string]any `json:"output,omitempty"`
	Error      *ErrorInfo     `json:"error,omitempty"`
	Attempts   int            `json:"attempts"`
	DurationMs int64          `json:"duration_ms"`
	Cached     bool           `json:"cached,omitempty"`
}

// RunStatus is the terminal state of a whole run.
type RunStatus string

const (
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
	RunCancelled RunStatus = "cancelled"
	RunTimedOut  RunStatus = "timed_out"
)

// LogEntry is one record in the append-only run log.
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"`
	StepID    string    `json:"step_id,omitempty"`
	Message   string    `json:"message"`
}

// RunReport is the externally consumable result of a run: final status,
// per-step results in definition order, and the ordered log. It is derived
// purely from the final execution context.
type RunReport struct {
	RunID      string        `json:"run_id"`
	WorkflowID string        `json:"workflow_id"`
	Status     RunStatus     `json:"status"`
	Steps      []*StepResult `json:"steps"`
	Logs       []LogEntry    `json:"logs"`
	DurationMs int64         `json:"duration_ms"`
}
