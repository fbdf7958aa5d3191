package workflow

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownStep indicates a Reference points at a step id that is not
	// part of the definition.
	ErrUnknownStep = errors.New("reference to unknown step")

	// ErrMissingOutputPath indicates a Reference path did not resolve
	// inside the upstream step's output.
	ErrMissingOutputPath = errors.New("output path not found")

	// ErrRunTimedOut marks a run stopped by the whole-run timeout.
	ErrRunTimedOut = errors.New("run timed out")
)

// Step failure kinds recorded in ErrorInfo.Kind.
const (
	KindInputValidation  = "input_validation"
	KindOutputValidation = "output_validation"
	KindMissingOutput    = "missing_output_path"
	KindHandler          = "handler"
	KindUnknownAction    = "unknown_action"
)

// CyclicWorkflowError reports a dependency cycle, naming the steps on it.
type CyclicWorkflowError struct {
	Cycle []string
}

func (e *CyclicWorkflowError) Error() string {
	return fmt.Sprintf("workflow contains a dependency cycle: %s", strings.Join(e.Cycle, " -> "))
}

// StepError attributes a failure to exactly one step.
type StepError struct {
	StepID string
	Kind   string
	Err    error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %s failed (%s): %v", e.StepID, e.Kind, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }
