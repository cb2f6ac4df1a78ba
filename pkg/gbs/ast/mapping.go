package ast

// Mapping is a string-keyed collection of Values that preserves insertion
// order. YAML mappings keep document order through the parser, and merge
// semantics depend on that order: the merged result keeps the base's key
// order, overridden keys stay in place, and new keys are appended.
type Mapping struct {
	keys   []string
	values map[string]*Value
}

// NewMapping returns an empty ordered mapping.
func NewMapping() *Mapping {
	return &Mapping{
		values: make(map[string]*Value),
	}
}

// Set stores a value under key. A new key is appended to the key order;
// an existing key keeps its position and gets the new value.
func (m *Mapping) Set(key string, v *Value) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = v
}

// Get returns the value stored under key.
func (m *Mapping) Get(key string) (*Value, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Has returns true if key is present.
func (m *Mapping) Has(key string) bool {
	_, ok := m.values[key]
	return ok
}

// Keys returns the keys in insertion order. The returned slice is a copy.
func (m *Mapping) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Len returns the number of entries.
func (m *Mapping) Len() int {
	return len(m.keys)
}

// Range calls fn for each key/value pair in insertion order. Iteration
// stops if fn returns false.
func (m *Mapping) Range(fn func(key string, v *Value) bool) {
	for _, key := range m.keys {
		if !fn(key, m.values[key]) {
			return
		}
	}
}
