// Package models defines the core domain models for declarative workflow execution.
package models

import "sort"

// WorkflowDefinition is an ordered set of step definitions. It is immutable
// once loaded; step identifiers are unique and the dependency graph induced
// by reference bindings must be acyclic.
type WorkflowDefinition struct {
	ID          string            `json:"id"                    yaml:"id"                    validate:"required"`
	Name        string            `json:"name,omitempty"        yaml:"name,omitempty"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	Steps       []*StepDefinition `json:"steps"                 yaml:"steps"                 validate:"required,min=1,dive,required"`
}

// StepDefinition binds one action invocation into the workflow graph.
type StepDefinition struct {
	ID     string                  `json:"id"              yaml:"id"              validate:"required"`
	Action string                  `json:"action"          yaml:"action"          validate:"required"`
	Inputs map[string]InputBinding `json:"inputs,omitempty" yaml:"inputs,omitempty"`
	Retry  *RetryPolicy            `json:"retry,omitempty"  yaml:"retry,omitempty"`
}

// Dependencies returns the ids of upstream steps referenced by any input
// binding, deduplicated and sorted for stable graph construction.
func (s *StepDefinition) Dependencies() []string {
	seen := make(map[string]bool, len(s.Inputs))
	for _, binding := range s.Inputs {
		if binding.IsReference() {
			seen[binding.Ref.Step] = true
		}
	}

	deps := make([]string, 0, len(seen))
	for id := range seen {
		deps = append(deps, id)
	}

	sort.Strings(deps)

	return deps
}

// RetryPolicy overrides the engine defaults for one step. Zero values fall
// back to the defaults.
type RetryPolicy struct {
	MaxAttempts      int     `json:"max_attempts,omitempty"       yaml:"max_attempts,omitempty"       validate:"omitempty,min=1"`
	BaseDelayMs      int     `json:"base_delay_ms,omitempty"      yaml:"base_delay_ms,omitempty"      validate:"omitempty,min=0"`
	Jitter           float64 `json:"jitter,omitempty"             yaml:"jitter,omitempty"             validate:"omitempty,min=0,max=1"`
	AttemptTimeoutMs int     `json:"attempt_timeout_ms,omitempty" yaml:"attempt_timeout_ms,omitempty" validate:"omitempty,min=0"`
}
