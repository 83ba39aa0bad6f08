package event

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const envelopeSchemaURL = "scribe://schema/envelope.json"

// envelopeSchema constrains the shared envelope fields. Variant payloads are
// checked by their typed decoders instead.
const envelopeSchema = `{
  "type": "object",
  "required": ["id", "type", "entity"],
  "properties": {
    "id": {"type": "string", "minLength": 1},
    "type": {"type": "string", "minLength": 1},
    "timestamp": {"type": "string"},
    "attempt_number": {"type": "integer", "minimum": 0},
    "entity": {
      "type": "object",
      "required": ["id", "type"],
      "properties": {
        "id": {"type": "string", "minLength": 1},
        "type": {"type": "string"}
      }
    },
    "authors": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "required": ["id", "type"],
        "properties": {
          "id": {"type": "string"},
          "type": {"type": "string"}
        }
      }
    },
    "data": {"type": ["object", "null"]}
  }
}`

var compileEnvelopeSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	var doc any
	if err := json.Unmarshal([]byte(envelopeSchema), &doc); err != nil {
		return nil, fmt.Errorf("unmarshal schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource(envelopeSchemaURL, doc); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}

	compiled, err := c.Compile(envelopeSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return compiled, nil
})

// validateEnvelope checks a generic JSON document against the envelope schema.
func validateEnvelope(doc any) error {
	schema, err := compileEnvelopeSchema()
	if err != nil {
		return fmt.Errorf("schema compilation error: %w", err)
	}
	return schema.Validate(doc)
}
