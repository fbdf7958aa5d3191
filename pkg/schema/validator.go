// Package schema validates values against JSON Schema contracts.
package schema

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Violation is one schema violation: the path into the value that failed
// plus a human-readable message.
type Violation struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// Result holds the violations found by Validate. An empty result is valid.
type Result struct {
	Violations []Violation
}

// Valid reports whether the value satisfied the schema.
func (r Result) Valid() bool { return len(r.Violations) == 0 }

// Summary joins all violations into a single diagnostic string.
func (r Result) Summary() string {
	parts := make([]string, 0, len(r.Violations))
	for _, violation := range r.Violations {
		parts = append(parts, violation.String())
	}

	return strings.Join(parts, "; ")
}

// Validate checks value against schema. Validation is pure: value is never
// mutated. Unknown schema keywords are ignored for forward compatibility.
// The error return is reserved for a schema document that cannot itself be
// loaded; violations of the value are reported through the Result.
func Validate(value any, schema map[string]any) (Result, error) {
	if len(schema) == 0 {
		return Result{}, nil
	}

	schemaLoader := gojsonschema.NewGoLoader(schema)
	valueLoader := gojsonschema.NewGoLoader(value)

	result, err := gojsonschema.Validate(schemaLoader, valueLoader)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load schema: %w", err)
	}

	if result.Valid() {
		return Result{}, nil
	}

	violations := make([]Violation, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		violations = append(violations, Violation{
			Path:    desc.Field(),
			Message: desc.Description(),
		})
	}

	return Result{Violations: violations}, nil
}
