package extract

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// BuildInvoiceJSONSchema returns the draft shape as a JSON-Schema (draft
// 2020-12 subset) generic map. It is embedded in the system prompt to pin the
// model's output shape and used locally as an advisory check on the payload.
func BuildInvoiceJSONSchema() map[string]any {
	partyProp := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name":    map[string]any{"type": "string"},
			"email":   map[string]any{"type": "string"},
			"address": map[string]any{"type": "string"},
		},
		"required": []string{"name"},
	}
	numberish := map[string]any{"type": []string{"number", "string"}}
	dateProp := map[string]any{"type": "string", "pattern": `^\d{4}-\d{2}-\d{2}$`}

	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"invoiceNumber": map[string]any{"type": "string"},
			"vendor":        partyProp,
			"client":        partyProp,
			"issueDate":     dateProp,
			"dueDate":       dateProp,
			"currency":      map[string]any{"type": "string", "minLength": 3, "maxLength": 3},
			"items": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"description": map[string]any{"type": "string"},
						"quantity":    numberish,
						"unitPrice":   numberish,
						"taxRate":     numberish,
					},
				},
			},
			"shipping": numberish,
			"discounts": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"description": map[string]any{"type": "string"},
						"amount":      numberish,
						"type":        map[string]any{"enum": []string{"fixed", "percent"}},
					},
				},
			},
			"notes": map[string]any{"type": "string"},
			"terms": map[string]any{"type": "string"},
		},
		"required": []string{"vendor", "client", "items"},
	}
}

// ValidateAgainstSchema validates data against a schema map. The result is
// advisory for extraction payloads: the normalizer tolerates shape drift, so
// a failure here is logged, not fatal.
func ValidateAgainstSchema(schemaMap map[string]any, data []byte) error {
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
