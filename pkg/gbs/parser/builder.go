package parser

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"mgv-hq/ganymede/pkg/gbs/ast"
	gbserrors "mgv-hq/ganymede/pkg/gbs/errors"
)

// Top-level section names of a GBS document.
const (
	sectionVars = "vars"
	sectionData = "data"
)

// builder transforms a YAML node tree into the GBS AST, accumulating
// structural errors instead of failing on the first problem.
type builder struct {
	sourcePath string
	maxDepth   int
	errors     *gbserrors.ErrorList
}

func newBuilder(sourcePath string, maxDepth int) *builder {
	return &builder{
		sourcePath: sourcePath,
		maxDepth:   maxDepth,
		errors:     gbserrors.NewErrorList(),
	}
}

// location extracts the source location from a YAML node.
func (b *builder) location(node *yaml.Node) ast.Location {
	if node == nil {
		return ast.Location{File: b.sourcePath}
	}
	return ast.Location{File: b.sourcePath, Line: node.Line, Column: node.Column}
}

// buildDocument assembles the Document from the root node. It returns the
// accumulated ErrorList as the error when any structural problem was found.
func (b *builder) buildDocument(root *yaml.Node) (*ast.Document, error) {
	doc := &ast.Document{
		SourceFile: b.sourcePath,
		Location:   b.location(root),
	}

	if root == nil {
		b.errors.AddError(gbserrors.ErrorTypeStructural,
			"Spec document is empty", ast.Location{File: b.sourcePath, Line: 1})
		return nil, b.errors
	}

	if root.Kind != yaml.MappingNode {
		b.errors.AddErrorWithSuggestion(gbserrors.ErrorTypeStructural,
			"Spec document must be a mapping with 'vars' and 'data' sections",
			b.location(root),
			"Top level should look like: vars: {...} and data: [...]")
		return nil, b.errors
	}

	var varsNode, dataNode *yaml.Node
	for i := 0; i+1 < len(root.Content); i += 2 {
		keyNode := root.Content[i]
		valNode := root.Content[i+1]
		switch keyNode.Value {
		case sectionVars:
			varsNode = valNode
		case sectionData:
			dataNode = valNode
		}
		// Unknown sections are tolerated here; the validator reports them.
	}

	doc.Vars = b.buildVars(varsNode)

	if dataNode == nil {
		b.errors.AddErrorWithSuggestion(gbserrors.ErrorTypeStructural,
			"Spec document has no 'data' section",
			b.location(root),
			"Add a 'data' section with one entry per target genome")
	} else {
		doc.Entries = b.buildEntries(dataNode)
	}

	if b.errors.HasErrors() {
		return nil, b.errors
	}

	return doc, nil
}

// buildVars builds the variable table. A missing vars section yields an
// empty table; a non-mapping vars section is a structural error.
func (b *builder) buildVars(node *yaml.Node) *ast.VarTable {
	if node == nil {
		return ast.NewVarTable(nil)
	}

	if node.Kind != yaml.MappingNode {
		b.errors.AddError(gbserrors.ErrorTypeStructural,
			"'vars' section must be a mapping of variable names to values",
			b.location(node))
		return ast.NewVarTable(nil)
	}

	vars := ast.NewMapping()
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode := node.Content[i]
		valNode := node.Content[i+1]
		if vars.Has(keyNode.Value) {
			b.errors.AddError(gbserrors.ErrorTypeStructural,
				fmt.Sprintf("Duplicate variable %q", keyNode.Value),
				b.location(keyNode))
			continue
		}
		v := b.buildValue(valNode, 0)
		if v != nil {
			vars.Set(keyNode.Value, v)
		}
	}
	return ast.NewVarTable(vars)
}

// buildEntries builds the ordered entry list from the data section.
func (b *builder) buildEntries(node *yaml.Node) []*ast.Entry {
	if node.Kind != yaml.SequenceNode {
		b.errors.AddError(gbserrors.ErrorTypeStructural,
			"'data' section must be a list of entry mappings",
			b.location(node))
		return nil
	}

	entries := make([]*ast.Entry, 0, len(node.Content))
	seen := make(map[string]ast.Location)

	for idx, entryNode := range node.Content {
		entry := b.buildEntry(entryNode, idx)
		if entry == nil {
			continue
		}
		if prev, dup := seen[entry.Name]; dup {
			b.errors.AddErrorWithSuggestion(gbserrors.ErrorTypeStructural,
				fmt.Sprintf("Duplicate entry name %q (first defined at %s)", entry.Name, prev),
				entry.Location,
				"Entry names are alias targets and must be unique")
			continue
		}
		seen[entry.Name] = entry.Location
		entries = append(entries, entry)
	}
	return entries
}

// buildEntry builds a single data entry. It returns nil when the entry is
// structurally unusable (not a mapping, or without a usable name).
func (b *builder) buildEntry(node *yaml.Node, index int) *ast.Entry {
	node = resolveYAMLAlias(node)
	if node == nil || node.Kind != yaml.MappingNode {
		b.errors.AddError(gbserrors.ErrorTypeStructural,
			fmt.Sprintf("Entry %d is not a mapping", index),
			b.location(node))
		return nil
	}

	fields := ast.NewMapping()
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode := node.Content[i]
		valNode := node.Content[i+1]
		if fields.Has(keyNode.Value) {
			b.errors.AddError(gbserrors.ErrorTypeStructural,
				fmt.Sprintf("Entry %d has duplicate field %q", index, keyNode.Value),
				b.location(keyNode))
			continue
		}
		v := b.buildValue(valNode, 0)
		if v != nil {
			fields.Set(keyNode.Value, v)
		}
	}

	entry := &ast.Entry{
		Fields:   fields,
		Location: b.location(node),
	}

	nameVal, ok := fields.Get(ast.FieldName)
	if !ok {
		b.errors.AddErrorWithSuggestion(gbserrors.ErrorTypeStructural,
			fmt.Sprintf("Entry %d has no 'name' field", index),
			entry.Location,
			"Every data entry needs a unique 'name'")
		return nil
	}
	name, isString := nameVal.AsString()
	if !isString || name == "" {
		b.errors.AddError(gbserrors.ErrorTypeStructural,
			fmt.Sprintf("Entry %d has a non-string or empty 'name'", index),
			nameVal.Location)
		return nil
	}
	entry.Name = name

	if disabledVal, ok := fields.Get(ast.FieldDisabled); ok {
		disabled, isBool := disabledVal.AsBool()
		if !isBool {
			b.errors.AddErrorWithSuggestion(gbserrors.ErrorTypeStructural,
				fmt.Sprintf("Entry %q has a non-boolean 'disabled' field", name),
				disabledVal.Location,
				"Use 'disabled: true' or omit the field")
		} else {
			entry.Disabled = disabled
		}
	}

	return entry
}

// buildValue converts a YAML node into an AST value. Indirection syntax in
// string scalars is carried through untouched; only the resolver
// interprets it.
func (b *builder) buildValue(node *yaml.Node, depth int) *ast.Value {
	if depth > b.maxDepth {
		b.errors.AddError(gbserrors.ErrorTypeStructural,
			fmt.Sprintf("Value nesting exceeds maximum depth %d", b.maxDepth),
			b.location(node))
		return nil
	}

	node = resolveYAMLAlias(node)
	if node == nil {
		return nil
	}
	loc := b.location(node)

	switch node.Kind {
	case yaml.ScalarNode:
		return b.buildScalar(node, loc)

	case yaml.SequenceNode:
		items := make([]*ast.Value, 0, len(node.Content))
		for _, item := range node.Content {
			v := b.buildValue(item, depth+1)
			if v != nil {
				items = append(items, v)
			}
		}
		return ast.NewSequence(items, loc)

	case yaml.MappingNode:
		m := ast.NewMapping()
		for i := 0; i+1 < len(node.Content); i += 2 {
			keyNode := node.Content[i]
			valNode := node.Content[i+1]
			if m.Has(keyNode.Value) {
				b.errors.AddError(gbserrors.ErrorTypeStructural,
					fmt.Sprintf("Duplicate mapping key %q", keyNode.Value),
					b.location(keyNode))
				continue
			}
			v := b.buildValue(valNode, depth+1)
			if v != nil {
				m.Set(keyNode.Value, v)
			}
		}
		return ast.NewMappingValue(m, loc)
	}

	b.errors.AddError(gbserrors.ErrorTypeStructural,
		fmt.Sprintf("Unsupported YAML node kind %d", node.Kind), loc)
	return nil
}

// buildScalar decodes a YAML scalar by its resolved tag.
func (b *builder) buildScalar(node *yaml.Node, loc ast.Location) *ast.Value {
	switch node.Tag {
	case "!!str":
		return ast.NewString(node.Value, loc)
	case "!!int":
		var i int64
		if err := node.Decode(&i); err != nil {
			b.errors.AddError(gbserrors.ErrorTypeSyntax,
				fmt.Sprintf("Invalid integer %q: %v", node.Value, err), loc)
			return nil
		}
		return ast.NewInt(i, loc)
	case "!!float":
		var f float64
		if err := node.Decode(&f); err != nil {
			b.errors.AddError(gbserrors.ErrorTypeSyntax,
				fmt.Sprintf("Invalid float %q: %v", node.Value, err), loc)
			return nil
		}
		return ast.NewFloat(f, loc)
	case "!!bool":
		var v bool
		if err := node.Decode(&v); err != nil {
			b.errors.AddError(gbserrors.ErrorTypeSyntax,
				fmt.Sprintf("Invalid boolean %q: %v", node.Value, err), loc)
			return nil
		}
		return ast.NewBool(v, loc)
	case "!!null":
		return ast.NewNull(loc)
	default:
		// Timestamps and other exotic tags pass through as strings; the
		// document treats URLs, dates, and identifiers uniformly as text.
		return ast.NewString(node.Value, loc)
	}
}

// resolveYAMLAlias follows YAML anchor aliases (&x/*x). These are a YAML
// serialization feature, unrelated to GBS entry aliases (=name).
func resolveYAMLAlias(node *yaml.Node) *yaml.Node {
	for node != nil && node.Kind == yaml.AliasNode {
		node = node.Alias
	}
	return node
}
