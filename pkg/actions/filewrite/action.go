// Package filewrite provides an action that writes string content to a file
// on the local filesystem.
package filewrite

import (
	"context"
	"os"
	"path/filepath"

	"github.com/vandyand/agentic-workflow-engine/pkg/protocol"
)

func Spec() protocol.ActionSpec {
	return protocol.ActionSpec{
		ID:          "files.write",
		Name:        "File Write",
		Description: "Writes content to a file, creating parent directories as needed.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"path": map[string]any{
					"type":        "string",
					"description": "Destination file path.",
				},
				"content": map[string]any{
					"type":        "string",
					"description": "Content to write, UTF-8 encoded.",
				},
				"overwrite": map[string]any{
					"type":        "boolean",
					"description": "Whether an existing file may be replaced.",
					"default":     true,
				},
			},
			"required": []string{"path", "content"},
		},
		OutputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"bytesWritten": map[string]any{
					"type":    "integer",
					"minimum": 0,
				},
			},
			"required": []string{"bytesWritten"},
		},
		Handler: execute,
	}
}

func execute(_ context.Context, input map[string]any) (map[string]any, error) {
	path, ok := input["path"].(string)
	if !ok {
		return nil, protocol.Permanentf("'path' must be a string, got %T", input["path"])
	}

	content, ok := input["content"].(string)
	if !ok {
		return nil, protocol.Permanentf("'content' must be a string, got %T", input["content"])
	}

	overwrite := true
	if raw, exists := input["overwrite"]; exists {
		value, ok := raw.(bool)
		if !ok {
			return nil, protocol.Permanentf("'overwrite' must be a boolean, got %T", raw)
		}

		overwrite = value
	}

	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return nil, protocol.Permanentf("file %q already exists and overwrite is false", path)
		}
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, protocol.Permanentf("failed to create directory %q: %v", dir, err)
		}
	}

	data := []byte(content)
	if err := os.WriteFile(path, data, 0600); err != nil {
		return nil, protocol.Permanentf("failed to write file %q: %v", path, err)
	}

	return map[string]any{"bytesWritten": len(data)}, nil
}
