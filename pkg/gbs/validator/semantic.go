package validator

import (
	"fmt"
	"strings"

	"mgv-hq/ganymede/pkg/gbs/ast"
	gbserrors "mgv-hq/ganymede/pkg/gbs/errors"
	"mgv-hq/ganymede/pkg/gbs/resolver"
)

// SemanticValidator checks that every reference in the document can be
// satisfied without performing resolution: variable references name
// defined variables, aliases name existing entries, dynamic references
// name registered providers, and the variable graph is acyclic.
type SemanticValidator struct {
	doc      *ast.Document
	registry *resolver.Registry
	errors   *gbserrors.ErrorList
}

// NewSemanticValidator creates a new semantic validator.
func NewSemanticValidator() *SemanticValidator {
	return &SemanticValidator{
		errors: gbserrors.NewErrorList(),
	}
}

// WithRegistry enables dynamic reference checking against the given
// registry. Without one, "@@name" references are not checked.
func (v *SemanticValidator) WithRegistry(reg *resolver.Registry) *SemanticValidator {
	v.registry = reg
	return v
}

// Validate performs semantic validation on a document.
func (v *SemanticValidator) Validate(doc *ast.Document) error {
	v.doc = doc
	v.errors = gbserrors.NewErrorList()

	v.checkVariableCycles()

	for _, name := range doc.Vars.Names() {
		raw, _ := doc.Vars.Lookup(name)
		_ = ast.WalkValue(raw, func(val *ast.Value) error {
			v.checkValue(val, "")
			return nil
		})
	}
	for _, entry := range doc.Entries {
		entryName := entry.Name
		entry.Fields.Range(func(_ string, val *ast.Value) bool {
			_ = ast.WalkValue(val, func(child *ast.Value) error {
				v.checkValue(child, entryName)
				return nil
			})
			return true
		})
	}

	return v.errors.ToError()
}

// checkValue checks a single reference against the table it will be
// resolved from. References are scalars, so the walk never descends
// into them.
func (v *SemanticValidator) checkValue(val *ast.Value, entryName string) {
	tok := resolver.Classify(val)
	switch tok.Kind {
	case resolver.TokenVarRef:
		if !v.doc.Vars.Has(tok.Name) {
			v.errors.Add(&gbserrors.Error{
				Type:       gbserrors.ErrorTypeUnresolvedReference,
				Message:    fmt.Sprintf("Undefined variable %q", tok.Name),
				Location:   val.Location,
				Entry:      entryName,
				Suggestion: gbserrors.SuggestName(tok.Name, v.doc.Vars.Names()),
			})
		}

	case resolver.TokenDynamicRef:
		if v.registry != nil {
			if _, ok := v.registry.Lookup(tok.Name); !ok {
				v.errors.Add(&gbserrors.Error{
					Type:       gbserrors.ErrorTypeUnknownDynamicValue,
					Message:    fmt.Sprintf("Unknown dynamic value %q", tok.Name),
					Location:   val.Location,
					Entry:      entryName,
					Suggestion: gbserrors.SuggestName(tok.Name, v.registry.Names()),
				})
			}
		}

	case resolver.TokenEntryAlias:
		if !v.doc.HasEntry(tok.Name) {
			v.errors.Add(&gbserrors.Error{
				Type:       gbserrors.ErrorTypeUnresolvedAlias,
				Message:    fmt.Sprintf("Alias target entry %q does not exist", tok.Name),
				Location:   val.Location,
				Entry:      entryName,
				Suggestion: gbserrors.SuggestName(tok.Name, v.doc.EntryNames()),
			})
		}
	}
}

// checkVariableCycles runs a depth-first search over variable-to-variable
// edges. Cycles involving aliases surface at resolve time instead, since
// alias targets depend on the field being resolved.
func (v *SemanticValidator) checkVariableCycles() {
	visited := make(map[string]bool)
	inProgress := make(map[string]bool)

	for _, name := range v.doc.Vars.Names() {
		if !visited[name] {
			v.checkVariableCycle(name, visited, inProgress, nil)
		}
	}
}

func (v *SemanticValidator) checkVariableCycle(name string, visited, inProgress map[string]bool, path []string) {
	visited[name] = true
	inProgress[name] = true
	path = append(path, resolver.VarRefPrefix+name)

	raw, ok := v.doc.Vars.Lookup(name)
	if ok {
		for _, ref := range variableRefs(raw) {
			if inProgress[ref] {
				chain := append(append([]string{}, path...), resolver.VarRefPrefix+ref)
				v.errors.Add(&gbserrors.Error{
					Type:     gbserrors.ErrorTypeCircularReference,
					Message:  fmt.Sprintf("Circular variable definition: %s", strings.Join(chain, " -> ")),
					Location: raw.Location,
					Chain:    chain,
				})
				continue
			}
			if !visited[ref] {
				v.checkVariableCycle(ref, visited, inProgress, path)
			}
		}
	}

	inProgress[name] = false
}

// variableRefs collects the names of variables referenced anywhere in a
// value tree.
func variableRefs(val *ast.Value) []string {
	var refs []string
	_ = ast.WalkValue(val, func(v *ast.Value) error {
		if tok := resolver.Classify(v); tok.Kind == resolver.TokenVarRef {
			refs = append(refs, tok.Name)
		}
		return nil
	})
	return refs
}
