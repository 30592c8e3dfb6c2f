package llm

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// BuildCourseJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a
// generic map. It is the local contract the model's response must satisfy;
// every scalar field is nullable, sections is the only required key.
func BuildCourseJSONSchema() map[string]any {
	nullableString := map[string]any{"type": []string{"string", "null"}}

	lecture := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"dayOfWeek": map[string]any{"type": "string"},
			"startTime": map[string]any{"type": "string"},
			"endTime":   map[string]any{"type": "string"},
			"location":  map[string]any{"type": "string"},
		},
	}
	section := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"sectionCode": map[string]any{"type": "string"},
			"instructor":  map[string]any{"type": "string"},
			"lectures":    map[string]any{"type": "array", "items": lecture},
		},
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"name":        nullableString,
			"term":        nullableString,
			"description": nullableString,
			"materials":   nullableString,
			"assessment":  nullableString,
			"policies":    nullableString,
			"examDates":   nullableString,
			"sections":    map[string]any{"type": "array", "items": section},
		},
		"required": []string{"sections"},
	}
}

// ValidateJSONAgainstSchema validates doc against the given schema map.
func ValidateJSONAgainstSchema(schema map[string]any, doc []byte) error {
	sb, err := json.Marshal(schema)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource("schema.json", bytes.NewReader(sb)); err != nil {
		return fmt.Errorf("add schema resource: %w", err)
	}
	compiled, err := c.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}

	var v any
	if err := json.Unmarshal(doc, &v); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	return compiled.Validate(v)
}
