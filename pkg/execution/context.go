// Package execution holds the mutable per-run state: step result slots,
// the append-only run log, and timing.
package execution

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vandyand/agentic-workflow-engine/pkg/models"
)

// Context is owned by exactly one run and discarded when it completes; only
// the cache store outlives a run. Each step's result slot is written only
// by the worker driving that step, so the lock mainly serializes slot
// writers against log appends and report snapshots.
type Context struct {
	RunID      string
	WorkflowID string

	mu        sync.RWMutex
	order     []string
	results   map[string]*models.StepResult
	logs      []models.LogEntry
	startedAt time.Time
}

// NewContext creates the run state with every step Pending, preserving
// definition order for the final report.
func NewContext(workflowID string, stepIDs []string) *Context {
	results := make(map[string]*models.StepResult, len(stepIDs))
	order := make([]string, 0, len(stepIDs))

	for _, id := range stepIDs {
		results[id] = &models.StepResult{StepID: id, Status: models.StepPending}
		order = append(order, id)
	}

	return &Context{
		RunID:      "run-" + uuid.New().String()[:8],
		WorkflowID: workflowID,
		order:      order,
		results:    results,
		startedAt:  time.Now(),
	}
}

// SetStatus moves a step to a new lifecycle state.
func (c *Context) SetStatus(stepID string, status models.StepStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if result, ok := c.results[stepID]; ok {
		result.Status = status
	}
}

// Status returns the current state of a step.
func (c *Context) Status(stepID string) models.StepStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if result, ok := c.results[stepID]; ok {
		return result.Status
	}

	return models.StepPending
}

// RecordSuccess stores a step's output and marks it Succeeded. The output
// becomes visible to dependents only once this returns.
func (c *Context) RecordSuccess(stepID string, output map[string]any, attempts int, cached bool, duration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	result, ok := c.results[stepID]
	if !ok {
		return
	}

	result.Status = models.StepSucceeded
	result.Output = output
	result.Attempts = attempts
	result.Cached = cached
	result.DurationMs = duration.Milliseconds()
}

// RecordFailure marks a step Failed with its attributed error.
func (c *Context) RecordFailure(stepID, kind string, err error, attempts int, duration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	result, ok := c.results[stepID]
	if !ok {
		return
	}

	result.Status = models.StepFailed
	result.Error = &models.ErrorInfo{Kind: kind, Message: err.Error()}
	result.Attempts = attempts
	result.DurationMs = duration.Milliseconds()
}

// RecordSkip marks a step Skipped because an upstream dependency failed.
func (c *Context) RecordSkip(stepID, upstreamID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	result, ok := c.results[stepID]
	if !ok {
		return
	}

	result.Status = models.StepSkipped
	result.Error = &models.ErrorInfo{
		Kind:    "upstream_failed",
		Message: fmt.Sprintf("upstream step %q failed", upstreamID),
	}
}

// Output returns a step's output, visible only once the step Succeeded.
func (c *Context) Output(stepID string) (map[string]any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result, ok := c.results[stepID]
	if !ok || result.Status != models.StepSucceeded {
		return nil, false
	}

	return result.Output, true
}

// Unfinished reports whether any step is still in a non-terminal state.
func (c *Context) Unfinished() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, result := range c.results {
		if !result.Status.Terminal() {
			return true
		}
	}

	return false
}

// Log appends an entry to the run log.
func (c *Context) Log(level, stepID, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.logs = append(c.logs, models.LogEntry{
		Timestamp: time.Now(),
		Level:     level,
		StepID:    stepID,
		Message:   message,
	})
}

// Report snapshots the run state in definition order. It is the only
// interface a presentation layer consumes.
func (c *Context) Report(status models.RunStatus) *models.RunReport {
	c.mu.RLock()
	defer c.mu.RUnlock()

	steps := make([]*models.StepResult, 0, len(c.order))
	for _, id := range c.order {
		copied := *c.results[id]
		steps = append(steps, &copied)
	}

	logs := make([]models.LogEntry, len(c.logs))
	copy(logs, c.logs)

	return &models.RunReport{
		RunID:      c.RunID,
		WorkflowID: c.WorkflowID,
		Status:     status,
		Steps:      steps,
		Logs:       logs,
		DurationMs: time.Since(c.startedAt).Milliseconds(),
	}
}
