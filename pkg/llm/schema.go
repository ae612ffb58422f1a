package llm

import (
	"encoding/json"

	"github.com/xeipuuv/gojsonschema"
)

// ValidateAgainstSchema checks raw JSON against a JSON Schema document
// (also given as raw JSON) before an agent trusts it enough to unmarshal
// into a strict struct. A schema violation is treated identically to
// "nothing found" by ExtractJSON: the caller falls back to its rule-based
// path.
func ValidateAgainstSchema(raw, schema string) bool {
	schemaLoader := gojsonschema.NewStringLoader(schema)
	docLoader := gojsonschema.NewStringLoader(raw)

	result, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		return false
	}
	return result.Valid()
}

// ParseAndValidate extracts the first balanced JSON object from text,
// validates it against schema, and unmarshals it into out. It returns false
// if extraction, validation, or unmarshaling fails at any step.
func ParseAndValidate(text, schema string, out interface{}) bool {
	raw, ok := ExtractJSON(text)
	if !ok {
		return false
	}
	if !ValidateAgainstSchema(raw, schema) {
		return false
	}
	return json.Unmarshal([]byte(raw), out) == nil
}
