// Package logmsg provides an action that emits a message to the engine log.
package logmsg

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vandyand/agentic-workflow-engine/pkg/protocol"
)

func Spec() protocol.ActionSpec {
	return protocol.ActionSpec{
		ID:          "core.log",
		Name:        "Log Message",
		Description: "Writes a message to the engine log at the requested level.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"message": map[string]any{
					"type":        "string",
					"description": "The message to log.",
				},
				"level": map[string]any{
					"type":        "string",
					"description": "Log level to use.",
					"default":     "info",
					"enum":        []string{"debug", "info", "warn", "error"},
				},
			},
			"required": []string{"message"},
		},
		OutputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"logged": map[string]any{
					"type": "boolean",
				},
			},
			"required": []string{"logged"},
		},
		Handler: execute,
	}
}

func execute(ctx context.Context, input map[string]any) (map[string]any, error) {
	message, ok := input["message"].(string)
	if !ok {
		return nil, protocol.Permanentf("'message' must be a string, got %T", input["message"])
	}

	level := slog.LevelInfo

	if raw, exists := input["level"]; exists {
		name, ok := raw.(string)
		if !ok {
			return nil, protocol.Permanentf("'level' must be a string, got %T", raw)
		}

		switch name {
		case "debug":
			level = slog.LevelDebug
		case "info":
			level = slog.LevelInfo
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		default:
			return nil, protocol.Permanent(fmt.Errorf("unknown log level %q", name))
		}
	}

	slog.Default().Log(ctx, level, message, "module", "log_action")

	return map[string]any{"logged": true}, nil
}
