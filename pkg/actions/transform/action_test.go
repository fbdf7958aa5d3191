package transform

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vandyand/agentic-workflow-engine/pkg/protocol"
)

func TestSpec(t *testing.T) {
	spec := Spec()
	assert.Equal(t, "transform.jq", spec.ID)
	assert.NotNil(t, spec.Handler)
}

func TestExecute(t *testing.T) {
	data := map[string]any{
		"status": 200,
		"body": map[string]any{
			"items": []any{
				map[string]any{"name": "first"},
				map[string]any{"name": "second"},
			},
		},
	}

	tests := []struct {
		name       string
		expression string
		expected   any
	}{
		{"identity", ".", data},
		{"top-level field", ".status", 200},
		{"nested field", ".body.items", data["body"].(map[string]any)["items"]},
		{"indexed element field", ".body.items[1].name", "second"},
		{"pipeline keeps first segment", ".status | tostring", 200},
		{"out of range index yields null", ".body.items[9]", nil},
		{"index on non-array yields null", ".status[0]", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := execute(context.Background(), map[string]any{
				"data":       data,
				"expression": tt.expression,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, output["result"])
		})
	}
}

func TestExecuteDoubledBrackets(t *testing.T) {
	output, err := execute(context.Background(), map[string]any{
		"data":       map[string]any{"rows": []any{[]any{"a", "b"}}},
		"expression": ".rows[[0]",
	})
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "b"}, output["result"])
}

func TestExecuteErrors(t *testing.T) {
	tests := []struct {
		name       string
		input      map[string]any
		wantErrMsg string
	}{
		{
			name:       "expression not a string",
			input:      map[string]any{"data": map[string]any{}, "expression": 7},
			wantErrMsg: "'expression' must be a string",
		},
		{
			name:       "empty expression",
			input:      map[string]any{"data": map[string]any{}, "expression": ""},
			wantErrMsg: "must not be empty",
		},
		{
			name:       "missing leading dot",
			input:      map[string]any{"data": map[string]any{}, "expression": "status"},
			wantErrMsg: "must start with '.'",
		},
		{
			name:       "missing field",
			input:      map[string]any{"data": map[string]any{"a": 1}, "expression": ".b"},
			wantErrMsg: "field not found",
		},
		{
			name:       "field on non-object",
			input:      map[string]any{"data": map[string]any{"a": 1}, "expression": ".a.b"},
			wantErrMsg: "field not found",
		},
		{
			name:       "unterminated index",
			input:      map[string]any{"data": map[string]any{"a": []any{1}}, "expression": ".a[0"},
			wantErrMsg: "missing ']'",
		},
		{
			name:       "non-numeric index",
			input:      map[string]any{"data": map[string]any{"a": []any{1}}, "expression": ".a[x]"},
			wantErrMsg: "invalid array index",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(context.Background(), tt.input)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErrMsg)
			assert.False(t, protocol.IsTransient(err), "expression errors are permanent")
		})
	}
}
