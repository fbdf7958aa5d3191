// Package protocol defines the contracts between the engine and action handlers.
package protocol

import "context"

// Handler is the unit of work an action performs. It receives an input
// object that already passed the action's input schema and returns a raw
// output object, or a classified error. The engine never inspects handler
// internals beyond this contract.
type Handler func(ctx context.Context, input map[string]any) (map[string]any, error)

// ActionSpec describes a registered action: a stable identifier, the JSON
// Schema contracts for its input and output, and the handler invoked with
// validated input. Specs are registered once at process start and are
// immutable thereafter.
type ActionSpec struct {
	ID           string
	Name         string
	Description  string
	InputSchema  map[string]any
	OutputSchema map[string]any
	Handler      Handler
}
