// Package ast defines the value tree for GBS (genome build spec) documents.
//
// A GBS document has two sections: vars, a table of named raw values, and
// data, an ordered list of per-genome entries. Every node of both sections
// is a Value: a tagged union of scalar, ordered sequence, and
// insertion-ordered mapping. The parser builds this tree with source
// locations attached; the resolver interprets the indirection syntax
// (@var, @@dynamic, =alias, merge templates) embedded in it.
//
// # Core Types
//
// Value: tagged union of scalar / sequence / mapping, with a Location
//
// Mapping: string-keyed, insertion-ordered value collection
//
// Document: root node holding the VarTable and the ordered Entry list
//
// Entry: one per-genome record; Name and Disabled extracted, raw fields kept
//
// VarTable: read-only named variable definitions
//
// Location: source position (file, line, column)
//
// # Immutability
//
// Values are immutable after construction. Resolution never mutates a
// loaded document; it builds new Values, so a failed entry cannot corrupt
// the variable table or other entries' results.
//
// # Ordering
//
// Mapping preserves document key order, and Equal compares mappings
// order-sensitively. Merge semantics and plan output stability both depend
// on this: a merged mapping keeps the base's key order, and identical
// plans must serialize byte-identically.
package ast
