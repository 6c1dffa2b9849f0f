// Package schema checks the structural shape of a raw form document before
// it is decoded. A document that fails here is malformed input, not a form
// that failed validation: no notification is produced for it.
package schema

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const resourceName = "form.schema.json"

//go:embed form.schema.json
var source []byte

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

// Source returns the embedded JSON Schema document.
func Source() []byte {
	out := make([]byte, len(source))
	copy(out, source)
	return out
}

func compile() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(resourceName, bytes.NewReader(source)); err != nil {
			compileErr = fmt.Errorf("add schema: %w", err)
			return
		}
		compiled, compileErr = compiler.Compile(resourceName)
		if compileErr != nil {
			compileErr = fmt.Errorf("compile schema: %w", compileErr)
		}
	})
	return compiled, compileErr
}

// Validate checks a generic document (a decoded JSON, YAML or spreadsheet
// tree) against the form schema. Leaves must be JSON values: nil, bool,
// string, numbers or json.Number; containers map[string]any and []any.
func Validate(doc any) error {
	s, err := compile()
	if err != nil {
		return err
	}
	if err := s.Validate(doc); err != nil {
		return fmt.Errorf("form does not match schema: %w", err)
	}
	return nil
}

// ValidateBytes checks a JSON document against the form schema.
func ValidateBytes(data []byte) error {
	s, err := compile()
	if err != nil {
		return err
	}
	return ValidateJSON(s, data)
}

// ValidateJSON checks JSON data against s.
func ValidateJSON(s *jsonschema.Schema, data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal document: %w", err)
	}
	if err := s.Validate(v); err != nil {
		return fmt.Errorf("form does not match schema: %w", err)
	}
	return nil
}
