package decision

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/assessly/docgrader/constants"
)

// BuildDecisionJSONSchema returns a JSON-Schema (draft 2020-12 subset) for a
// grade decision as a generic map. It doubles as a structured-output
// constraint for the grader collaborator and as the local boundary check.
func BuildDecisionJSONSchema() map[string]any {
	evidence := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"page":               map[string]any{"type": "integer", "minimum": 1},
			"quote":              map[string]any{"type": "string"},
			"visual_description": map[string]any{"type": "string"},
		},
		"required": []string{"page"},
	}
	check := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"code":       map[string]any{"type": "string", "pattern": `^[PMD]\d{1,2}$`},
			"decision":   map[string]any{"type": "string", "enum": []string{"ACHIEVED", "NOT_ACHIEVED", "UNCLEAR"}},
			"rationale":  map[string]any{"type": "string"},
			"confidence": map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0},
			"evidence":   map[string]any{"type": "array", "items": evidence},
		},
		"required": []string{"code", "decision", "confidence"},
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"overall_grade":         map[string]any{"type": "string", "enum": constants.GradeWords()},
			"resubmission_required": map[string]any{"type": "boolean"},
			"confidence":            map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0},
			"criterion_checks":      map[string]any{"type": "array", "items": check},
		},
		"required": []string{"overall_grade", "resubmission_required", "confidence", "criterion_checks"},
	}
}

// ValidateJSONAgainstSchema validates data against schemaMap.
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
