package logmsg

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vandyand/agentic-workflow-engine/pkg/protocol"
)

func TestSpec(t *testing.T) {
	spec := Spec()
	assert.Equal(t, "core.log", spec.ID)
	assert.NotNil(t, spec.Handler)
}

func TestExecute(t *testing.T) {
	tests := []struct {
		name  string
		input map[string]any
	}{
		{"message only", map[string]any{"message": "hello"}},
		{"debug level", map[string]any{"message": "hello", "level": "debug"}},
		{"info level", map[string]any{"message": "hello", "level": "info"}},
		{"warn level", map[string]any{"message": "hello", "level": "warn"}},
		{"error level", map[string]any{"message": "hello", "level": "error"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := execute(context.Background(), tt.input)
			require.NoError(t, err)
			assert.Equal(t, true, output["logged"])
		})
	}
}

func TestExecuteRejectsBadInputs(t *testing.T) {
	tests := []struct {
		name  string
		input map[string]any
	}{
		{"message not a string", map[string]any{"message": 7}},
		{"level not a string", map[string]any{"message": "hi", "level": 3}},
		{"unknown level", map[string]any{"message": "hi", "level": "loud"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(context.Background(), tt.input)
			require.Error(t, err)
			assert.False(t, protocol.IsTransient(err))
		})
	}
}
