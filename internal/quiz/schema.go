package quiz

import (
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Micro-schemas for every fragment shape the completion service returns.
var schemaDefs = map[string]string{
	"choice": `{
		"type": "object",
		"required": ["question", "options", "correct_answer"],
		"properties": {
			"question": {"type": "string", "minLength": 1},
			"options": {"type": "array", "minItems": 2, "items": {"type": "string"}},
			"correct_answer": {"type": "string", "minLength": 1}
		}
	}`,
	"fact": `{
		"type": "object",
		"anyOf": [{"required": ["fact"]}, {"required": ["question"]}],
		"properties": {
			"fact": {"type": "string", "minLength": 1},
			"question": {"type": "string", "minLength": 1}
		}
	}`,
	"open": `{
		"type": "object",
		"required": ["question"],
		"properties": {
			"question": {"type": "string", "minLength": 1}
		}
	}`,
	"refinement": `{
		"type": "object",
		"required": ["options", "correct_answer"],
		"properties": {
			"options": {"type": "array", "minItems": 4, "maxItems": 4, "items": {"type": "string", "minLength": 1}},
			"correct_answer": {"type": "string", "minLength": 1}
		}
	}`,
	"verdict": `{
		"type": "object",
		"required": ["question_id"],
		"properties": {
			"question_id": {"anyOf": [
				{"type": "integer"},
				{"type": "string", "pattern": "^\\s*[0-9]+\\s*$"}
			]},
			"is_correct": {"type": ["boolean", "string"]},
			"correct_answer": {"type": ["string", "null"]},
			"feedback": {"type": ["string", "null"]}
		}
	}`,
}

// schemaCache caches compiled schemas by name.
var schemaCache sync.Map // map[string]*jsonschema.Schema

// validateFragment checks one raw JSON object against the named schema.
func validateFragment(name, fragment string) error {
	compiled, err := compiledSchema(name)
	if err != nil {
		return err
	}
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(fragment))
	if err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := compiled.Validate(doc); err != nil {
		return fmt.Errorf("schema %s: %w", name, err)
	}
	return nil
}

func compiledSchema(name string) (*jsonschema.Schema, error) {
	if cached, ok := schemaCache.Load(name); ok {
		return cached.(*jsonschema.Schema), nil
	}

	def, ok := schemaDefs[name]
	if !ok {
		return nil, fmt.Errorf("unknown schema %q", name)
	}
	parsed, err := jsonschema.UnmarshalJSON(strings.NewReader(def))
	if err != nil {
		return nil, fmt.Errorf("parse schema %q: %w", name, err)
	}

	c := jsonschema.NewCompiler()
	url := fmt.Sprintf("schema://%s.json", name)
	if err := c.AddResource(url, parsed); err != nil {
		return nil, fmt.Errorf("add schema %q: %w", name, err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema %q: %w", name, err)
	}

	schemaCache.Store(name, compiled)
	return compiled, nil
}
