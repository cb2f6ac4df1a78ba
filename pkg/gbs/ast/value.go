package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// ValueKind discriminates the members of the Value union.
// GBS values are plain data; indirection syntax lives in string scalars
// and is only interpreted by the resolver, never by this package.
type ValueKind string

const (
	KindString   ValueKind = "string"
	KindInt      ValueKind = "int"
	KindFloat    ValueKind = "float"
	KindBool     ValueKind = "bool"
	KindNull     ValueKind = "null"
	KindSequence ValueKind = "sequence"
	KindMapping  ValueKind = "mapping"
)

// Value is the tagged union for every node of a GBS document: a scalar
// (string, int, float, bool, null), an ordered sequence, or an
// insertion-ordered mapping. Values are immutable after construction;
// resolution builds new Values and never mutates existing ones.
type Value struct {
	Kind ValueKind

	// Scalar payload. Exactly one of these is meaningful, selected by Kind.
	Str   string
	Int   int64
	Float float64
	Bool  bool

	// Items holds sequence elements in document order (KindSequence).
	Items []*Value

	// Map holds mapping entries in document order (KindMapping).
	Map *Mapping

	// Location is the source position of this value.
	Location Location
}

// NewString returns a string scalar.
func NewString(s string, loc Location) *Value {
	return &Value{Kind: KindString, Str: s, Location: loc}
}

// NewInt returns an integer scalar.
func NewInt(i int64, loc Location) *Value {
	return &Value{Kind: KindInt, Int: i, Location: loc}
}

// NewFloat returns a float scalar.
func NewFloat(f float64, loc Location) *Value {
	return &Value{Kind: KindFloat, Float: f, Location: loc}
}

// NewBool returns a boolean scalar.
func NewBool(b bool, loc Location) *Value {
	return &Value{Kind: KindBool, Bool: b, Location: loc}
}

// NewNull returns a null scalar.
func NewNull(loc Location) *Value {
	return &Value{Kind: KindNull, Location: loc}
}

// NewSequence returns a sequence value holding items in the given order.
func NewSequence(items []*Value, loc Location) *Value {
	return &Value{Kind: KindSequence, Items: items, Location: loc}
}

// NewMappingValue wraps an ordered Mapping as a Value.
func NewMappingValue(m *Mapping, loc Location) *Value {
	return &Value{Kind: KindMapping, Map: m, Location: loc}
}

// IsScalar returns true for string, int, float, bool, and null values.
func (v *Value) IsScalar() bool {
	switch v.Kind {
	case KindString, KindInt, KindFloat, KindBool, KindNull:
		return true
	}
	return false
}

// IsString returns true if the value is a string scalar.
func (v *Value) IsString() bool { return v.Kind == KindString }

// IsSequence returns true if the value is a sequence.
func (v *Value) IsSequence() bool { return v.Kind == KindSequence }

// IsMapping returns true if the value is a mapping.
func (v *Value) IsMapping() bool { return v.Kind == KindMapping }

// AsString returns the string payload and true if the value is a string.
func (v *Value) AsString() (string, bool) {
	if v.Kind != KindString {
		return "", false
	}
	return v.Str, true
}

// AsInt returns the integer payload and true if the value is an int.
func (v *Value) AsInt() (int64, bool) {
	if v.Kind != KindInt {
		return 0, false
	}
	return v.Int, true
}

// AsBool returns the boolean payload and true if the value is a bool.
func (v *Value) AsBool() (bool, bool) {
	if v.Kind != KindBool {
		return false, false
	}
	return v.Bool, true
}

// StringList decodes a sequence of string scalars. It returns false if the
// value is not a sequence or any element is not a string.
func (v *Value) StringList() ([]string, bool) {
	if v.Kind != KindSequence {
		return nil, false
	}
	out := make([]string, 0, len(v.Items))
	for _, item := range v.Items {
		s, ok := item.AsString()
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

// String renders the value for diagnostics. Mappings and sequences render
// in a compact single-line form; this is not a serialization format.
func (v *Value) String() string {
	if v == nil {
		return "<nil>"
	}
	switch v.Kind {
	case KindString:
		return strconv.Quote(v.Str)
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindNull:
		return "null"
	case KindSequence:
		parts := make([]string, 0, len(v.Items))
		for _, item := range v.Items {
			parts = append(parts, item.String())
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindMapping:
		var sb strings.Builder
		sb.WriteString("{")
		for i, key := range v.Map.Keys() {
			if i > 0 {
				sb.WriteString(", ")
			}
			val, _ := v.Map.Get(key)
			fmt.Fprintf(&sb, "%s: %s", key, val.String())
		}
		sb.WriteString("}")
		return sb.String()
	}
	return fmt.Sprintf("<%s>", v.Kind)
}

// Equal reports whether two values are deeply equal. Mapping comparison is
// order-sensitive: two mappings with the same pairs in different order are
// not equal, because emitted plans must be byte-stable.
func Equal(a, b *Value) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindString:
		return a.Str == b.Str
	case KindInt:
		return a.Int == b.Int
	case KindFloat:
		return a.Float == b.Float
	case KindBool:
		return a.Bool == b.Bool
	case KindNull:
		return true
	case KindSequence:
		if len(a.Items) != len(b.Items) {
			return false
		}
		for i := range a.Items {
			if !Equal(a.Items[i], b.Items[i]) {
				return false
			}
		}
		return true
	case KindMapping:
		aKeys, bKeys := a.Map.Keys(), b.Map.Keys()
		if len(aKeys) != len(bKeys) {
			return false
		}
		for i, key := range aKeys {
			if key != bKeys[i] {
				return false
			}
			av, _ := a.Map.Get(key)
			bv, _ := b.Map.Get(key)
			if !Equal(av, bv) {
				return false
			}
		}
		return true
	}
	return false
}
