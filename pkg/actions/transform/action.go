// Package transform provides a jq-style path extraction action for
// reshaping step outputs.
package transform

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/vandyand/agentic-workflow-engine/pkg/protocol"
)

func Spec() protocol.ActionSpec {
	return protocol.ActionSpec{
		ID:          "transform.jq",
		Name:        "JQ Transform",
		Description: "Extracts a value from the input data using a jq-style path expression.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"data": map[string]any{
					"description": "The value to extract from.",
				},
				"expression": map[string]any{
					"type":        "string",
					"description": "Path expression such as '.items[0].name'.",
					"examples": []string{
						".",
						".body.items[2]",
					},
				},
			},
			"required": []string{"data", "expression"},
		},
		OutputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"result": map[string]any{
					"description": "The extracted value, or null when an array index was out of range.",
				},
			},
			"required": []string{"result"},
		},
		Handler: execute,
	}
}

func execute(_ context.Context, input map[string]any) (map[string]any, error) {
	expression, ok := input["expression"].(string)
	if !ok {
		return nil, protocol.Permanentf("'expression' must be a string, got %T", input["expression"])
	}

	result, err := evalExpression(input["data"], expression)
	if err != nil {
		if errors.Is(err, errIndexMiss) {
			// An out-of-range index yields null rather than failing.
			return map[string]any{"result": nil}, nil
		}

		return nil, protocol.Permanent(err)
	}

	return map[string]any{"result": result}, nil
}

// errIndexMiss aborts evaluation when an array index does not resolve; the
// expression as a whole then produces null.
var errIndexMiss = errors.New("array index out of range")

// evalExpression walks a dotted path like .a.b[0].c through the value. Only
// the first segment of a pipeline is evaluated.
func evalExpression(data any, expr string) (any, error) {
	if expr == "" {
		return nil, errors.New("expression must not be empty")
	}

	if pipe := strings.Index(expr, "|"); pipe >= 0 {
		expr = strings.TrimSpace(expr[:pipe])
	}

	if !strings.HasPrefix(expr, ".") {
		return nil, errors.New("expression must start with '.'")
	}

	if expr == "." {
		return data, nil
	}

	current := data

	for _, token := range strings.Split(expr[1:], ".") {
		value, err := applyToken(current, token)
		if err != nil {
			return nil, err
		}

		current = value
	}

	return current, nil
}

// applyToken consumes one dot-separated token, which may combine a field
// name with index suffixes, e.g. "items[0][1]".
func applyToken(current any, token string) (any, error) {
	for token != "" {
		// Doubled opening brackets collapse by one level.
		if strings.HasPrefix(token, "[[") {
			token = token[1:]

			continue
		}

		if token[0] == '[' {
			end := strings.Index(token, "]")
			if end < 0 {
				return nil, errors.New("invalid index token: missing ']'")
			}

			index, err := strconv.Atoi(strings.TrimSpace(token[1:end]))
			if err != nil {
				return nil, errors.New("invalid array index")
			}

			list, ok := current.([]any)
			if !ok || index < 0 || index >= len(list) {
				return nil, errIndexMiss
			}

			current = list[index]
			token = token[end+1:]

			continue
		}

		head := token
		if bracket := strings.Index(token, "["); bracket >= 0 {
			head = token[:bracket]
		}

		object, ok := current.(map[string]any)
		if !ok {
			return nil, errors.New("field not found")
		}

		value, exists := object[head]
		if !exists {
			return nil, errors.New("field not found")
		}

		current = value
		token = token[len(head):]
	}

	return current, nil
}
