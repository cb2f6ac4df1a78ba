package resolver

import (
	"strings"

	"mgv-hq/ganymede/pkg/gbs/ast"
)

// Reference syntax markers embedded in string scalars, plus the reserved
// mapping key that marks a merge template.
const (
	VarRefPrefix     = "@"
	DynamicRefPrefix = "@@"
	EntryAliasPrefix = "="
	MergeBaseKey     = "base"
)

// TokenKind classifies a raw value for resolution.
type TokenKind string

const (
	// TokenPlain is a literal value with no indirection at its root.
	TokenPlain TokenKind = "plain"

	// TokenVarRef is a string of the form "@name" referencing the
	// variable table.
	TokenVarRef TokenKind = "var_ref"

	// TokenDynamicRef is a string of the form "@@name" referencing the
	// dynamic value registry.
	TokenDynamicRef TokenKind = "dynamic_ref"

	// TokenEntryAlias is a string of the form "=name" referencing the
	// same-named field on another entry.
	TokenEntryAlias TokenKind = "entry_alias"

	// TokenMergeTemplate is a mapping carrying the reserved merge-base
	// key; its siblings override the resolved base.
	TokenMergeTemplate TokenKind = "merge_template"
)

// Token is the classified form of a raw value. Name is set for the three
// reference kinds; Value always points at the original raw value.
type Token struct {
	Kind  TokenKind
	Name  string
	Value *ast.Value
}

// Classify inspects a raw value and determines how the resolver must
// treat it. Classification is purely syntactic: whether a referenced
// name actually exists is checked during resolution, so that the error
// can carry the right type and suggestion.
func Classify(v *ast.Value) Token {
	if v == nil {
		return Token{Kind: TokenPlain}
	}

	if v.IsString() {
		s := v.Str
		switch {
		case strings.HasPrefix(s, DynamicRefPrefix):
			return Token{Kind: TokenDynamicRef, Name: s[len(DynamicRefPrefix):], Value: v}
		case strings.HasPrefix(s, VarRefPrefix):
			return Token{Kind: TokenVarRef, Name: s[len(VarRefPrefix):], Value: v}
		case strings.HasPrefix(s, EntryAliasPrefix):
			return Token{Kind: TokenEntryAlias, Name: s[len(EntryAliasPrefix):], Value: v}
		}
		return Token{Kind: TokenPlain, Value: v}
	}

	if v.IsMapping() && v.Map.Has(MergeBaseKey) {
		return Token{Kind: TokenMergeTemplate, Value: v}
	}

	return Token{Kind: TokenPlain, Value: v}
}
