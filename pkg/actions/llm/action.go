// Package llm provides a text completion action backed by a local Ollama
// server.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/vandyand/agentic-workflow-engine/pkg/protocol"
)

const (
	defaultBaseURL        = "http://127.0.0.1:11434"
	defaultTimeoutSeconds = 120
)

var client = &http.Client{Timeout: defaultTimeoutSeconds * time.Second}

type generateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
}

func Spec() protocol.ActionSpec {
	return protocol.ActionSpec{
		ID:          "llm.complete",
		Name:        "LLM Complete",
		Description: "Generates a text completion using a local Ollama model.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"model": map[string]any{
					"type":        "string",
					"description": "Ollama model name, e.g. 'llama3.2:latest'.",
				},
				"prompt": map[string]any{
					"type":        "string",
					"description": "Prompt text to complete.",
				},
				"max_tokens": map[string]any{
					"type":        "integer",
					"description": "Maximum number of tokens to generate.",
				},
				"temperature": map[string]any{
					"type":        "number",
					"description": "Sampling temperature.",
				},
				"context": map[string]any{
					"description": "Optional value appended to the prompt as context.",
				},
			},
			"required": []string{"model", "prompt"},
		},
		OutputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"text": map[string]any{
					"type": "string",
				},
			},
			"required": []string{"text"},
		},
		Handler: execute,
	}
}

func execute(ctx context.Context, input map[string]any) (map[string]any, error) {
	model, ok := input["model"].(string)
	if !ok || strings.TrimSpace(model) == "" {
		return nil, protocol.Permanentf("'model' must be a non-empty string")
	}

	prompt, ok := input["prompt"].(string)
	if !ok || strings.TrimSpace(prompt) == "" {
		return nil, protocol.Permanentf("'prompt' must be a non-empty string")
	}

	// Remote provider paths are not supported; only local Ollama models.
	if strings.Contains(model, "/") {
		return nil, protocol.Permanentf("model %q looks like a remote provider path; only local Ollama models are supported", model)
	}

	if contextValue, exists := input["context"]; exists && contextValue != nil {
		prompt = appendContext(prompt, contextValue)
	}

	options := make(map[string]any)

	if raw, exists := input["max_tokens"]; exists && raw != nil {
		tokens, ok := toInt(raw)
		if !ok {
			return nil, protocol.Permanentf("'max_tokens' must be an integer, got %T", raw)
		}

		// Ollama names this parameter num_predict.
		options["num_predict"] = tokens
	}

	if raw, exists := input["temperature"]; exists && raw != nil {
		temperature, ok := toFloat(raw)
		if !ok {
			return nil, protocol.Permanentf("'temperature' must be a number, got %T", raw)
		}

		options["temperature"] = temperature
	}

	payload := generateRequest{
		Model:  model,
		Prompt: prompt,
		Stream: false,
	}
	if len(options) > 0 {
		payload.Options = options
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, protocol.Permanentf("failed to encode request: %v", err)
	}

	baseURL := os.Getenv("OLLAMA_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	url := strings.TrimRight(baseURL, "/") + "/api/generate"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, protocol.Permanentf("failed to build request: %v", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, protocol.Transientf("ollama request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, protocol.Transientf("failed to read ollama response: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		message := fmt.Sprintf("ollama HTTP %d: %s", resp.StatusCode, truncate(string(raw), 500))
		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, protocol.Transientf("%s", message)
		}

		return nil, protocol.Permanentf("%s", message)
	}

	var decoded generateResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, protocol.Permanentf("invalid JSON from ollama: %s", truncate(string(raw), 200))
	}

	if decoded.Response == "" {
		return nil, protocol.Permanentf("ollama response missing 'response' text")
	}

	return map[string]any{"text": decoded.Response}, nil
}

func appendContext(prompt string, value any) string {
	var rendered string

	switch typed := value.(type) {
	case string:
		rendered = typed
	default:
		encoded, err := json.MarshalIndent(typed, "", "  ")
		if err != nil {
			rendered = fmt.Sprintf("%v", typed)
		} else {
			rendered = string(encoded)
		}
	}

	return strings.TrimRight(prompt, " \t\n") + "\n\n--- CONTEXT ---\n" + rendered
}

func toInt(value any) (int, bool) {
	switch typed := value.(type) {
	case int:
		return typed, true
	case int64:
		return int(typed), true
	case float64:
		if typed != float64(int(typed)) {
			return 0, false
		}

		return int(typed), true
	default:
		return 0, false
	}
}

func toFloat(value any) (float64, bool) {
	switch typed := value.(type) {
	case float64:
		return typed, true
	case int:
		return float64(typed), true
	case int64:
		return float64(typed), true
	default:
		return 0, false
	}
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}

	return s[:limit]
}
