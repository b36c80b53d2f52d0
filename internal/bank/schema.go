package bank

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// examSchema is the JSON Schema every exam package must satisfy before the
// format invariants are even looked at.
const examSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["test_id", "title", "questions"],
  "properties": {
    "test_id": {"type": "string", "minLength": 1},
    "title": {"type": "string", "minLength": 1},
    "questions": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["module", "number", "section", "correct_answer"],
        "properties": {
          "module": {"type": "integer", "minimum": 1, "maximum": 4},
          "number": {"type": "integer", "minimum": 1},
          "section": {"enum": ["reading", "math"]},
          "correct_answer": {"type": "string", "minLength": 1},
          "options": {"type": "array", "items": {"type": "string"}},
          "content": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["type"],
              "properties": {"type": {"type": "string"}}
            }
          }
        }
      }
    }
  }
}`

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		var def any
		if err := json.Unmarshal([]byte(examSchema), &def); err != nil {
			compileErr = fmt.Errorf("parse exam schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		const url = "schema://exam-package.json"
		if err := c.AddResource(url, def); err != nil {
			compileErr = fmt.Errorf("add schema resource: %w", err)
			return
		}
		compiled, compileErr = c.Compile(url)
	})
	return compiled, compileErr
}

func validateSchema(raw []byte) error {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	sch, err := compiledSchema()
	if err != nil {
		return err
	}
	if err := sch.Validate(parsed); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}
