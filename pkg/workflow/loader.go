package workflow

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/vandyand/agentic-workflow-engine/pkg/models"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads a workflow definition from a YAML or JSON file and validates
// its structure. The induced dependency graph is validated separately,
// before any step executes.
func Load(path string) (*models.WorkflowDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read workflow file: %w", err)
	}

	return Parse(data)
}

// Parse decodes a workflow definition from YAML (or JSON, a YAML subset).
func Parse(data []byte) (*models.WorkflowDefinition, error) {
	var def models.WorkflowDefinition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("failed to decode workflow definition: %w", err)
	}

	if err := validate.Struct(&def); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return nil, fmt.Errorf("invalid workflow definition: %w", validationErrors)
		}

		return nil, fmt.Errorf("invalid workflow definition: %w", err)
	}

	seen := make(map[string]bool, len(def.Steps))
	for _, step := range def.Steps {
		if seen[step.ID] {
			return nil, fmt.Errorf("duplicate step id %q", step.ID)
		}

		seen[step.ID] = true
	}

	return &def, nil
}

// Validate builds the dependency graph without executing anything,
// surfacing unknown step references and cycles.
func Validate(def *models.WorkflowDefinition) error {
	_, err := buildGraph(def)

	return err
}
