package gbs

import (
	"mgv-hq/ganymede/pkg/gbs/ast"
	"mgv-hq/ganymede/pkg/gbs/parser"
	"mgv-hq/ganymede/pkg/gbs/resolver"
	"mgv-hq/ganymede/pkg/gbs/validator"
)

// ParseAndValidate is a convenience function that parses and validates a
// spec file. It returns the parsed document if successful, or an error
// if parsing or validation fails.
func ParseAndValidate(path string) (*ast.Document, error) {
	p := parser.NewParser()
	doc, err := p.Parse(path)
	if err != nil {
		return nil, err
	}

	v := validator.NewValidator().WithRegistry(resolver.NewRegistry())
	if err := v.Validate(doc); err != nil {
		return nil, err
	}

	return doc, nil
}

// ParseAndValidateBytes is a convenience function that parses and
// validates spec YAML from bytes.
func ParseAndValidateBytes(data []byte, sourcePath string) (*ast.Document, error) {
	p := parser.NewParser()
	doc, err := p.ParseBytes(data, sourcePath)
	if err != nil {
		return nil, err
	}

	v := validator.NewValidator().WithRegistry(resolver.NewRegistry())
	if err := v.Validate(doc); err != nil {
		return nil, err
	}

	return doc, nil
}

// Parse parses a spec file without validation.
// Use this to inspect the document tree before validation.
func Parse(path string) (*ast.Document, error) {
	p := parser.NewParser()
	return p.Parse(path)
}

// Validate validates a parsed document.
func Validate(doc *ast.Document) error {
	v := validator.NewValidator().WithRegistry(resolver.NewRegistry())
	return v.Validate(doc)
}
