package nic

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// anchorOverlaySchema constrains the anchor overlay file: a single "anchors"
// array of {name, pattern} objects, nothing else.
var anchorOverlaySchema = map[string]any{
	"type":                 "object",
	"required":             []any{"anchors"},
	"additionalProperties": false,
	"properties": map[string]any{
		"anchors": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":                 "object",
				"required":             []any{"name", "pattern"},
				"additionalProperties": false,
				"properties": map[string]any{
					"name":    map[string]any{"type": "string", "minLength": 1},
					"pattern": map[string]any{"type": "string", "minLength": 1},
				},
			},
		},
	},
}

// LoadAnchorRules reads an anchor overlay file (JSON), validates it against
// the schema, and returns the rules for NewLibrary. Pattern compilation and
// the two-capture-group requirement are checked by NewLibrary itself.
func LoadAnchorRules(path string) ([]AnchorRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read anchor overlay: %w", err)
	}
	if err := validateJSONAgainstSchema(anchorOverlaySchema, data); err != nil {
		return nil, fmt.Errorf("anchor overlay %s: %w", path, err)
	}
	var doc struct {
		Anchors []AnchorRule `json:"anchors"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode anchor overlay: %w", err)
	}
	return doc.Anchors, nil
}

// validateJSONAgainstSchema validates "data" against "schemaMap".
func validateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
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
