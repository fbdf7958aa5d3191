package models

import (
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// Reference points at a value inside the output of an upstream step and
// induces a dependency edge from that step. An empty Path selects the whole
// output object.
type Reference struct {
	Step string `json:"step"           yaml:"step"`
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

// InputBinding is a tagged variant: either a literal value, or a reference
// to an upstream step's output. A mapping whose keys are exactly {step} or
// {step, path} with string values decodes as a Reference; any other value
// is a literal.
type InputBinding struct {
	Literal any
	Ref     *Reference
}

// IsReference reports whether the binding resolves from an upstream step.
func (b InputBinding) IsReference() bool { return b.Ref != nil }

func (b *InputBinding) UnmarshalYAML(node *yaml.Node) error {
	var raw any
	if err := node.Decode(&raw); err != nil {
		return err
	}

	b.set(raw)

	return nil
}

func (b *InputBinding) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	b.set(raw)

	return nil
}

func (b InputBinding) MarshalJSON() ([]byte, error) {
	if b.Ref != nil {
		return json.Marshal(b.Ref)
	}

	return json.Marshal(b.Literal)
}

func (b *InputBinding) set(raw any) {
	if mapping, ok := raw.(map[string]any); ok {
		if ref, ok := referenceFrom(mapping); ok {
			b.Ref = ref
			b.Literal = nil

			return
		}
	}

	b.Literal = raw
	b.Ref = nil
}

func referenceFrom(mapping map[string]any) (*Reference, bool) {
	step, ok := mapping["step"].(string)
	if !ok || step == "" {
		return nil, false
	}

	switch len(mapping) {
	case 1:
		return &Reference{Step: step}, true
	case 2:
		path, ok := mapping["path"].(string)
		if !ok {
			return nil, false
		}

		return &Reference{Step: step, Path: path}, true
	default:
		return nil, false
	}
}
