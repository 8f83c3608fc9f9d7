// Package jsonschema validates JSON documents against JSON Schema
// definitions.
package jsonschema

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ValidationErrors collects individual schema violations
type ValidationErrors []error

// Error implements the error interface for ValidationErrors
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return ""
	}

	var sb strings.Builder
	for i, err := range ve {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(err.Error())
	}
	return sb.String()
}

// Validate checks a JSON document against a schema. It returns false with
// a nil ValidationErrors only when compilation or parsing failed; see the
// returned error in that case.
func Validate(document, schema string) (bool, ValidationErrors, error) {
	compiled, err := compile(schema)
	if err != nil {
		return false, nil, err
	}

	var data any
	if err := json.Unmarshal([]byte(document), &data); err != nil {
		return false, nil, fmt.Errorf("invalid JSON: %w", err)
	}

	if err := compiled.Validate(data); err != nil {
		if validationErr, ok := err.(*jsonschema.ValidationError); ok {
			return false, flatten(validationErr), nil
		}
		return false, ValidationErrors{err}, nil
	}

	return true, nil, nil
}

// compile parses and compiles a schema document
func compile(schema string) (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", strings.NewReader(schema)); err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}
	compiled, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}
	return compiled, nil
}

// flatten walks the validation error tree into a flat list
func flatten(err *jsonschema.ValidationError) ValidationErrors {
	var errs ValidationErrors
	if err.Message != "" {
		errs = append(errs, fmt.Errorf("validation error at %s: %s", err.InstanceLocation, err.Message))
	}
	for _, cause := range err.Causes {
		errs = append(errs, flatten(cause)...)
	}
	return errs
}
