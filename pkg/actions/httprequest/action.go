// Package httprequest provides an HTTP GET action for workflow steps.
package httprequest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/vandyand/agentic-workflow-engine/pkg/protocol"
)

const defaultTimeoutSeconds = 30

// client is shared by every invocation; the per-attempt context bounds each
// request on top of the transport timeout.
var client = &http.Client{Timeout: defaultTimeoutSeconds * time.Second}

func Spec() protocol.ActionSpec {
	return protocol.ActionSpec{
		ID:          "http.get",
		Name:        "HTTP GET",
		Description: "Performs an HTTP GET request and returns the response status and body.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"url": map[string]any{
					"type":        "string",
					"description": "The URL to request.",
					"examples": []string{
						"https://api.example.com/users",
					},
				},
				"params": map[string]any{
					"type":        "object",
					"description": "Query parameters appended to the URL.",
				},
				"headers": map[string]any{
					"type":        "object",
					"description": "HTTP headers to include in the request.",
				},
			},
			"required": []string{"url"},
		},
		OutputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"status": map[string]any{
					"type":        "integer",
					"description": "HTTP status code of the response.",
				},
				"body": map[string]any{
					"description": "Response body, JSON-decoded when possible.",
				},
			},
			"required": []string{"status", "body"},
		},
		Handler: execute,
	}
}

func execute(ctx context.Context, input map[string]any) (map[string]any, error) {
	rawURL, ok := input["url"].(string)
	if !ok {
		return nil, protocol.Permanentf("'url' must be a string, got %T", input["url"])
	}

	target, err := url.Parse(rawURL)
	if err != nil {
		return nil, protocol.Permanentf("invalid url %q: %v", rawURL, err)
	}

	if params, ok := input["params"].(map[string]any); ok {
		query := target.Query()
		for key, value := range params {
			str, ok := value.(string)
			if !ok {
				return nil, protocol.Permanentf("query parameter %q must be a string, got %T", key, value)
			}

			query.Set(key, str)
		}

		target.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, protocol.Permanentf("failed to build request: %v", err)
	}

	if headers, ok := input["headers"].(map[string]any); ok {
		for key, value := range headers {
			str, ok := value.(string)
			if !ok {
				return nil, protocol.Permanentf("header %q must be a string, got %T", key, value)
			}

			req.Header.Set(key, str)
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, protocol.Transientf("request to %q failed: %v", target, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, protocol.Transientf("failed to read response body: %v", err)
	}

	// A completed response is always a successful invocation; callers read
	// the status from the output.
	var body any
	if err := json.Unmarshal(raw, &body); err != nil {
		body = string(raw)
	}

	return map[string]any{
		"status": resp.StatusCode,
		"body":   body,
	}, nil
}
