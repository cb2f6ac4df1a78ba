package validator

import (
	"mgv-hq/ganymede/pkg/gbs/ast"
	gbserrors "mgv-hq/ganymede/pkg/gbs/errors"
	"mgv-hq/ganymede/pkg/gbs/resolver"
)

// Validator orchestrates the validation passes. It runs structural and
// semantic validation in sequence and accumulates their findings.
type Validator struct {
	structural *StructuralValidator
	semantic   *SemanticValidator
}

// NewValidator creates a validator with all passes.
func NewValidator() *Validator {
	return &Validator{
		structural: NewStructuralValidator(),
		semantic:   NewSemanticValidator(),
	}
}

// WithRegistry enables dynamic reference checking in the semantic pass.
func (v *Validator) WithRegistry(reg *resolver.Registry) *Validator {
	v.semantic.WithRegistry(reg)
	return v
}

// Validate runs all validation passes on a document.
// It accumulates errors from all passes and returns them together.
func (v *Validator) Validate(doc *ast.Document) error {
	errors := gbserrors.NewErrorList()

	if err := v.structural.Validate(doc); err != nil {
		if errList, ok := err.(*gbserrors.ErrorList); ok {
			errors.Merge(errList)
		}
	}

	if err := v.semantic.Validate(doc); err != nil {
		if errList, ok := err.(*gbserrors.ErrorList); ok {
			errors.Merge(errList)
		}
	}

	return errors.ToError()
}

// ValidateStructural runs only structural validation.
func (v *Validator) ValidateStructural(doc *ast.Document) error {
	return v.structural.Validate(doc)
}

// ValidateSemantic runs only semantic validation.
func (v *Validator) ValidateSemantic(doc *ast.Document) error {
	return v.semantic.Validate(doc)
}
