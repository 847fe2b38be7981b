package decision

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const decisionSchemaJSON = `{
  "type": "object",
  "required": ["action", "confidence", "leverage", "size", "reason"],
  "properties": {
    "action":     {"type": "string", "enum": ["BUY", "SELL", "CLOSE", "HOLD"]},
    "confidence": {"type": "number", "minimum": 0, "maximum": 1},
    "leverage":   {"type": "integer", "minimum": 1, "maximum": 20},
    "size":       {"type": "number", "minimum": 0},
    "reason":     {"type": "string", "minLength": 10},
    "price":      {"type": "number", "minimum": 0}
  },
  "if":   {"properties": {"action": {"enum": ["BUY", "SELL", "CLOSE"]}}},
  "then": {"properties": {"size": {"exclusiveMinimum": 0}}}
}`

var decisionSchema = mustCompileSchema("decision.json", decisionSchemaJSON)

func mustCompileSchema(name, raw string) *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, strings.NewReader(raw)); err != nil {
		panic(fmt.Sprintf("decision schema: %v", err))
	}
	return compiler.MustCompile(name)
}

// validateDecisionJSON checks coerced JSON against the decision schema.
func validateDecisionJSON(raw []byte) error {
	var doc any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("decision json invalid: %w", err)
	}
	if err := decisionSchema.Validate(doc); err != nil {
		return fmt.Errorf("decision schema violation: %w", err)
	}
	return nil
}
