package pipeline

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"docscribe/internal/model"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaURL = "template_schema.json"

// ValidateResult checks data against a JSON Schema. An empty schema accepts
// anything.
func ValidateResult(schema map[string]any, data map[string]any) error {
	if len(schema) == 0 {
		return nil
	}
	raw, err := json.Marshal(schema)
	if err != nil {
		return fmt.Errorf("%w: template_schema: %v", model.ErrInvalidConfiguration, err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, bytes.NewReader(raw)); err != nil {
		return fmt.Errorf("%w: template_schema: %v", model.ErrInvalidConfiguration, err)
	}
	compiled, err := compiler.Compile(schemaURL)
	if err != nil {
		return fmt.Errorf("%w: template_schema: %v", model.ErrInvalidConfiguration, err)
	}

	if err := compiled.Validate(data); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			return fmt.Errorf("%w: script result does not match template_schema: %s", model.ErrValidation, verr.Error())
		}
		return fmt.Errorf("%w: %v", model.ErrValidation, err)
	}
	return nil
}
