// Package echo provides a trivial action that returns its input message,
// useful for wiring checks and tests.
package echo

import (
	"context"

	"github.com/vandyand/agentic-workflow-engine/pkg/protocol"
)

func Spec() protocol.ActionSpec {
	return protocol.ActionSpec{
		ID:          "core.echo",
		Name:        "Echo",
		Description: "Returns the provided message unchanged.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"message": map[string]any{
					"description": "Any value to echo back.",
				},
			},
			"required": []string{"message"},
		},
		OutputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"message": map[string]any{
					"description": "The input message, unchanged.",
				},
			},
			"required": []string{"message"},
		},
		Handler: execute,
	}
}

func execute(_ context.Context, input map[string]any) (map[string]any, error) {
	return map[string]any{"message": input["message"]}, nil
}
