package ast

// Visitor provides an interface for traversing a spec document.
// Implement this interface to perform operations on document nodes
// (validation, analysis, reporting).
type Visitor interface {
	VisitVariable(name string, value *Value) error
	VisitEntry(entry *Entry) error
	VisitValue(value *Value) error
}

// Walk traverses the document and calls the visitor for each node:
// every variable, every entry, and every value reachable from them,
// depth-first in document order. It returns the first error
// encountered, or nil if traversal completes.
func Walk(doc *Document, visitor Visitor) error {
	for _, name := range doc.Vars.Names() {
		value, _ := doc.Vars.Lookup(name)
		if err := visitor.VisitVariable(name, value); err != nil {
			return err
		}
		if err := WalkValue(value, visitor.VisitValue); err != nil {
			return err
		}
	}

	for _, entry := range doc.Entries {
		if err := visitor.VisitEntry(entry); err != nil {
			return err
		}
		var werr error
		entry.Fields.Range(func(_ string, value *Value) bool {
			werr = WalkValue(value, visitor.VisitValue)
			return werr == nil
		})
		if werr != nil {
			return werr
		}
	}

	return nil
}

// WalkValue traverses one value tree depth-first, visiting parents
// before children.
func WalkValue(v *Value, fn func(*Value) error) error {
	if v == nil {
		return nil
	}
	if err := fn(v); err != nil {
		return err
	}

	switch v.Kind {
	case KindSequence:
		for _, item := range v.Items {
			if err := WalkValue(item, fn); err != nil {
				return err
			}
		}
	case KindMapping:
		var werr error
		v.Map.Range(func(_ string, child *Value) bool {
			werr = WalkValue(child, fn)
			return werr == nil
		})
		return werr
	}

	return nil
}
