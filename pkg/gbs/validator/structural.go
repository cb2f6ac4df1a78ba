package validator

import (
	"fmt"
	"regexp"

	"mgv-hq/ganymede/pkg/gbs/ast"
	gbserrors "mgv-hq/ganymede/pkg/gbs/errors"
	"mgv-hq/ganymede/pkg/gbs/resolver"
)

// StructuralValidator checks the shape of entry fields beyond what the
// parser enforces: scalar fields that must be strings, patterns that
// must compile, and section fields that must be mappings or references.
type StructuralValidator struct {
	errors *gbserrors.ErrorList
}

// NewStructuralValidator creates a new structural validator.
func NewStructuralValidator() *StructuralValidator {
	return &StructuralValidator{
		errors: gbserrors.NewErrorList(),
	}
}

// Validate performs structural validation on a document.
func (v *StructuralValidator) Validate(doc *ast.Document) error {
	v.errors = gbserrors.NewErrorList()

	for _, entry := range doc.Entries {
		v.validateEntry(entry)
	}

	return v.errors.ToError()
}

func (v *StructuralValidator) validateEntry(entry *ast.Entry) {
	v.checkStringField(entry, ast.FieldLabel)
	v.checkStringField(entry, ast.FieldBuild)
	v.checkStringField(entry, ast.FieldChrSort)

	if taxon, ok := entry.Field(ast.FieldTaxonID); ok {
		if s, isString, isRef := literalString(taxon); isString && !isRef {
			if !taxonIDPattern.MatchString(s) {
				v.errors.AddErrorWithSuggestion(gbserrors.ErrorTypeValidation,
					fmt.Sprintf("Entry %q: taxonid %q is not a numeric identifier", entry.Name, s),
					taxon.Location,
					"Use the NCBI taxonomy id as a quoted string, e.g. \"10090\"")
			}
		} else if !taxon.IsString() {
			v.errors.AddErrorWithSuggestion(gbserrors.ErrorTypeValidation,
				fmt.Sprintf("Entry %q: taxonid must be a quoted string", entry.Name),
				taxon.Location,
				"Quote the value so it survives as text, e.g. \"10090\"")
		}
	}

	if pattern, ok := entry.Field(ast.FieldChrRe); ok {
		if s, isString, isRef := literalString(pattern); isString && !isRef {
			if _, err := regexp.Compile(s); err != nil {
				v.errors.AddError(gbserrors.ErrorTypeValidation,
					fmt.Sprintf("Entry %q: chr_re does not compile: %v", entry.Name, err),
					pattern.Location)
			}
		}
	}

	for field := range ast.SectionFields {
		if section, ok := entry.Field(field); ok {
			v.checkSection(entry, field, section)
		}
	}
}

// checkStringField reports non-string scalars in fields that hold text.
// References are left for the semantic pass and the resolver.
func (v *StructuralValidator) checkStringField(entry *ast.Entry, field string) {
	val, ok := entry.Field(field)
	if !ok {
		return
	}
	if val.IsScalar() && !val.IsString() {
		v.errors.AddError(gbserrors.ErrorTypeValidation,
			fmt.Sprintf("Entry %q: %s must be a string, got %s", entry.Name, field, val.Kind),
			val.Location)
	}
}

// checkSection verifies a section field is a mapping, a reference, or an
// alias. Anything else can never resolve to the mapping the pipeline
// needs.
func (v *StructuralValidator) checkSection(entry *ast.Entry, field string, section *ast.Value) {
	tok := resolver.Classify(section)
	switch tok.Kind {
	case resolver.TokenVarRef, resolver.TokenDynamicRef, resolver.TokenEntryAlias, resolver.TokenMergeTemplate:
		return
	}
	if section.IsMapping() {
		return
	}
	v.errors.AddErrorWithSuggestion(gbserrors.ErrorTypeValidation,
		fmt.Sprintf("Entry %q: %s must be a mapping or a reference, got %s", entry.Name, field, section.Kind),
		section.Location,
		"Use an inline mapping, \"@variable\", \"=entry\", or a merge template")
}

var taxonIDPattern = regexp.MustCompile(`^[0-9]+$`)

// literalString reports whether v is a string, and whether that string
// is a reference rather than a literal.
func literalString(v *ast.Value) (s string, isString, isRef bool) {
	s, isString = v.AsString()
	if !isString {
		return "", false, false
	}
	tok := resolver.Classify(v)
	return s, true, tok.Kind != resolver.TokenPlain
}
