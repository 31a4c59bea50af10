package config

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// configSchema is the structural contract for configuration files
// (draft 2020-12 subset). Semantic rules (valid modes, non-empty chains,
// duplicate names) are enforced separately during normalization.
const configSchema = `{
  "type": "object",
  "properties": {
    "settings": {
      "type": "object",
      "properties": {
        "max_extraction_length": {"type": "integer", "minimum": 1},
        "trim_whitespace": {"type": "boolean"},
        "remove_special_chars": {"type": "boolean"},
        "default_value_if_not_found": {"type": "string"}
      }
    },
    "configurations": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "description": {"type": "string"},
          "expected_type": {"type": "string"},
          "max_length": {"type": "integer", "minimum": 1},
          "trim_whitespace": {"type": "boolean"},
          "remove_special_chars": {"type": "boolean"},
          "default_if_not_found": {"type": "string"},
          "before_text": {"type": "string"},
          "search_terms": {"type": "array", "items": {"type": "string", "minLength": 1}},
          "after_text": {"type": "string"},
          "end_text": {"type": "string"},
          "extraction_mode": {"type": "string"},
          "case_sensitive": {"type": "boolean"},
          "patterns": {
            "type": "array",
            "minItems": 1,
            "items": {
              "type": "object",
              "properties": {
                "before_text": {"type": "string", "minLength": 1},
                "after_text": {"type": "string"},
                "end_text": {"type": "string"},
                "case_sensitive": {"type": "boolean"},
                "mode": {"type": "string"},
                "max_length": {"type": "integer", "minimum": 1}
              },
              "required": ["before_text"]
            }
          }
        },
        "required": ["name"]
      }
    }
  },
  "required": ["configurations"]
}`

var compiledSchema = jsonschema.MustCompileString("config.schema.json", configSchema)

// ValidateDocument checks raw configuration JSON against the embedded schema.
func ValidateDocument(data []byte) error {
	var v any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := compiledSchema.Validate(v); err != nil {
		return fmt.Errorf("configuration does not match schema: %w", err)
	}
	return nil
}
