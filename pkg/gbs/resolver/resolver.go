package resolver

import (
	"fmt"
	"strings"

	"mgv-hq/ganymede/pkg/gbs/ast"
	gbserrors "mgv-hq/ganymede/pkg/gbs/errors"
)

// DefaultMaxDepth bounds the length of any reference chain. Cycles are
// detected exactly; the depth limit is a backstop against pathological
// documents.
const DefaultMaxDepth = 100

// Resolver expands the indirection in a spec document. It is configured
// once and can serve any number of runs.
type Resolver struct {
	doc      *ast.Document
	registry *Registry
	maxDepth int
}

// New creates a resolver for the given document with default settings.
func New(doc *ast.Document) *Resolver {
	return &Resolver{
		doc:      doc,
		registry: NewRegistry(),
		maxDepth: DefaultMaxDepth,
	}
}

// WithRegistry replaces the dynamic value registry.
func (r *Resolver) WithRegistry(reg *Registry) *Resolver {
	r.registry = reg
	return r
}

// WithMaxDepth sets the maximum reference chain length.
func (r *Resolver) WithMaxDepth(depth int) *Resolver {
	r.maxDepth = depth
	return r
}

// Document returns the document under resolution.
func (r *Resolver) Document() *ast.Document {
	return r.doc
}

// NewRun starts a resolution run. A run owns the memo caches that keep
// dynamic values and resolved entry fields stable for its lifetime; two
// separate runs may observe different dynamic values.
func (r *Resolver) NewRun() *Run {
	return &Run{
		resolver: r,
		dynamic:  make(map[string]*ast.Value),
		fields:   make(map[fieldKey]fieldResult),
	}
}

// Run is a single resolution pass over the document. It is not safe for
// concurrent use; callers wanting parallelism run one Run per goroutine.
type Run struct {
	resolver *Resolver

	// dynamic memoizes provider results so every reference to the same
	// dynamic name yields the identical value within this run.
	dynamic map[string]*ast.Value

	// fields memoizes per (entry, field) resolutions, including
	// failures, so aliases reuse work done while emitting their target.
	fields map[fieldKey]fieldResult
}

type fieldKey struct {
	entry string
	field string
}

type fieldResult struct {
	val *ast.Value
	err error
}

// refContext carries the state of one field resolution: the entry and
// field being resolved, and the stack of in-flight references used for
// cycle detection. Child values inherit the context unchanged, so an
// alias reached through a variable still resolves against the root
// field name.
type refContext struct {
	entry string
	field string
	stack *refStack
}

// ResolveEntry resolves every field of the named entry in declared
// order and returns the fully concrete field mapping. The first failing
// field aborts the entry.
func (run *Run) ResolveEntry(name string) (*ast.Mapping, error) {
	entry := run.resolver.doc.GetEntry(name)
	if entry == nil {
		return nil, &gbserrors.Error{
			Type:       gbserrors.ErrorTypeUnresolvedAlias,
			Message:    fmt.Sprintf("Entry %q does not exist", name),
			Suggestion: gbserrors.SuggestName(name, run.resolver.doc.EntryNames()),
		}
	}

	out := ast.NewMapping()
	var firstErr error
	entry.Fields.Range(func(field string, _ *ast.Value) bool {
		v, err := run.ResolveField(name, field)
		if err != nil {
			firstErr = err
			return false
		}
		out.Set(field, v)
		return true
	})
	if firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}

// ResolveField resolves one field of one entry. Results, including
// failures, are memoized for the run.
func (run *Run) ResolveField(entryName, fieldName string) (*ast.Value, error) {
	return run.resolveEntryField(entryName, fieldName, newRefStack())
}

// ResolveVar resolves a variable by name, outside any entry context.
// Entry aliases are not reachable from here: a variable whose expansion
// contains an alias resolves only through an entry field, where the
// field name gives the alias its target.
func (run *Run) ResolveVar(name string) (*ast.Value, error) {
	ctx := &refContext{stack: newRefStack()}
	return run.resolveVarNamed(name, ast.Location{}, ctx)
}

// resolveEntryField is the memoized entry point shared by the emitter
// path (fresh stack) and the alias path (caller's stack, so cross-entry
// cycles are detected).
func (run *Run) resolveEntryField(entryName, fieldName string, stack *refStack) (*ast.Value, error) {
	key := fieldKey{entry: entryName, field: fieldName}
	if res, ok := run.fields[key]; ok {
		return res.val, res.err
	}

	entry := run.resolver.doc.GetEntry(entryName)
	if entry == nil {
		return nil, &gbserrors.Error{
			Type:       gbserrors.ErrorTypeUnresolvedAlias,
			Message:    fmt.Sprintf("Entry %q does not exist", entryName),
			Suggestion: gbserrors.SuggestName(entryName, run.resolver.doc.EntryNames()),
		}
	}
	raw, ok := entry.Field(fieldName)
	if !ok {
		err := &gbserrors.Error{
			Type:     gbserrors.ErrorTypeUnresolvedAlias,
			Message:  fmt.Sprintf("Entry %q has no field %q", entryName, fieldName),
			Location: entry.Location,
			Entry:    entryName,
		}
		run.fields[key] = fieldResult{err: err}
		return nil, err
	}

	ctx := &refContext{entry: entryName, field: fieldName, stack: stack}
	v, err := run.resolve(raw, ctx)
	run.fields[key] = fieldResult{val: v, err: err}
	return v, err
}

// resolve is the core recursive walk: classify the value once, then
// dispatch on the token kind.
func (run *Run) resolve(v *ast.Value, ctx *refContext) (*ast.Value, error) {
	tok := Classify(v)
	switch tok.Kind {
	case TokenVarRef:
		return run.resolveVarNamed(tok.Name, v.Location, ctx)
	case TokenDynamicRef:
		return run.resolveDynamic(tok.Name, v.Location, ctx)
	case TokenEntryAlias:
		return run.resolveAlias(tok.Name, v.Location, ctx)
	case TokenMergeTemplate:
		return run.resolveMerge(v, ctx)
	}
	return run.resolvePlain(v, ctx)
}

// resolvePlain recurses into sequences and mappings; scalars are
// returned as-is, shared with the source document. Values are never
// mutated after load, so sharing is safe.
func (run *Run) resolvePlain(v *ast.Value, ctx *refContext) (*ast.Value, error) {
	switch v.Kind {
	case ast.KindSequence:
		items := make([]*ast.Value, 0, len(v.Items))
		for _, item := range v.Items {
			rv, err := run.resolve(item, ctx)
			if err != nil {
				return nil, err
			}
			items = append(items, rv)
		}
		return ast.NewSequence(items, v.Location), nil

	case ast.KindMapping:
		out := ast.NewMapping()
		var rerr error
		v.Map.Range(func(k string, val *ast.Value) bool {
			rv, err := run.resolve(val, ctx)
			if err != nil {
				rerr = err
				return false
			}
			out.Set(k, rv)
			return true
		})
		if rerr != nil {
			return nil, rerr
		}
		return ast.NewMappingValue(out, v.Location), nil

	default:
		return v, nil
	}
}

// resolveVarNamed resolves a variable table entry, cycle-checked.
func (run *Run) resolveVarNamed(name string, loc ast.Location, ctx *refContext) (*ast.Value, error) {
	vars := run.resolver.doc.Vars
	raw, ok := vars.Lookup(name)
	if !ok {
		return nil, &gbserrors.Error{
			Type:       gbserrors.ErrorTypeUnresolvedReference,
			Message:    fmt.Sprintf("Undefined variable %q", name),
			Location:   loc,
			Entry:      ctx.entry,
			Suggestion: gbserrors.SuggestName(name, vars.Names()),
		}
	}

	id := VarRefPrefix + name
	if ctx.stack.contains(id) {
		return nil, run.cycleError(id, loc, ctx)
	}
	if err := run.checkDepth(ctx, loc); err != nil {
		return nil, err
	}

	ctx.stack.push(id)
	v, err := run.resolve(raw, ctx)
	ctx.stack.pop()
	return v, err
}

// resolveDynamic resolves a dynamic reference through the registry,
// memoizing the produced value for the rest of the run.
func (run *Run) resolveDynamic(name string, loc ast.Location, ctx *refContext) (*ast.Value, error) {
	if v, ok := run.dynamic[name]; ok {
		return v, nil
	}

	fn, ok := run.resolver.registry.Lookup(name)
	if !ok {
		return nil, &gbserrors.Error{
			Type:       gbserrors.ErrorTypeUnknownDynamicValue,
			Message:    fmt.Sprintf("Unknown dynamic value %q", name),
			Location:   loc,
			Entry:      ctx.entry,
			Suggestion: gbserrors.SuggestName(name, run.resolver.registry.Names()),
		}
	}

	v := fn()
	run.dynamic[name] = v
	return v, nil
}

// resolveAlias resolves an entry alias to the same-named field on the
// target entry, cycle-checked against the caller's stack.
func (run *Run) resolveAlias(target string, loc ast.Location, ctx *refContext) (*ast.Value, error) {
	if ctx.entry == "" || ctx.field == "" {
		return nil, &gbserrors.Error{
			Type:     gbserrors.ErrorTypeValidation,
			Message:  fmt.Sprintf("Alias %q is only valid as an entry field value", EntryAliasPrefix+target),
			Location: loc,
		}
	}

	doc := run.resolver.doc
	if !doc.HasEntry(target) {
		return nil, &gbserrors.Error{
			Type:       gbserrors.ErrorTypeUnresolvedAlias,
			Message:    fmt.Sprintf("Alias target entry %q does not exist", target),
			Location:   loc,
			Entry:      ctx.entry,
			Suggestion: gbserrors.SuggestName(target, doc.EntryNames()),
		}
	}

	id := aliasID(target, ctx.field)
	if ctx.stack.contains(id) {
		return nil, run.cycleError(id, loc, ctx)
	}
	if err := run.checkDepth(ctx, loc); err != nil {
		return nil, err
	}

	ctx.stack.push(id)
	v, err := run.resolveEntryField(target, ctx.field, ctx.stack)
	ctx.stack.pop()
	return v, err
}

// resolveMerge resolves a merge template: the base reference must
// resolve to a mapping; sibling keys override it one level deep.
// Overridden keys keep the base's position, new keys are appended, and
// an overriding sequence fully replaces the base's sequence.
func (run *Run) resolveMerge(v *ast.Value, ctx *refContext) (*ast.Value, error) {
	baseRaw, _ := v.Map.Get(MergeBaseKey)
	base, err := run.resolve(baseRaw, ctx)
	if err != nil {
		return nil, err
	}
	if !base.IsMapping() {
		return nil, &gbserrors.Error{
			Type:     gbserrors.ErrorTypeInvalidMergeBase,
			Message:  fmt.Sprintf("Merge base must resolve to a mapping, got %s", base.Kind),
			Location: baseRaw.Location,
			Entry:    ctx.entry,
		}
	}

	out := ast.NewMapping()
	base.Map.Range(func(k string, bv *ast.Value) bool {
		out.Set(k, bv)
		return true
	})

	var rerr error
	v.Map.Range(func(k string, ov *ast.Value) bool {
		if k == MergeBaseKey {
			return true
		}
		rv, err := run.resolve(ov, ctx)
		if err != nil {
			rerr = err
			return false
		}
		out.Set(k, rv)
		return true
	})
	if rerr != nil {
		return nil, rerr
	}
	return ast.NewMappingValue(out, v.Location), nil
}

func (run *Run) cycleError(id string, loc ast.Location, ctx *refContext) error {
	chain := ctx.stack.chain(id)
	return &gbserrors.Error{
		Type:     gbserrors.ErrorTypeCircularReference,
		Message:  fmt.Sprintf("Circular reference: %s", strings.Join(chain, " -> ")),
		Location: loc,
		Entry:    ctx.entry,
		Chain:    chain,
	}
}

func (run *Run) checkDepth(ctx *refContext, loc ast.Location) error {
	if ctx.stack.depth() >= run.resolver.maxDepth {
		return &gbserrors.Error{
			Type:     gbserrors.ErrorTypeValidation,
			Message:  fmt.Sprintf("Reference chain exceeds maximum depth %d", run.resolver.maxDepth),
			Location: loc,
			Entry:    ctx.entry,
		}
	}
	return nil
}

func aliasID(entry, field string) string {
	return entry + "." + field
}

// refStack tracks in-flight reference identities. Variable references
// are identified as "@name", alias targets as "entry.field".
type refStack struct {
	ids []string
	on  map[string]int
}

func newRefStack() *refStack {
	return &refStack{on: make(map[string]int)}
}

func (s *refStack) contains(id string) bool {
	_, ok := s.on[id]
	return ok
}

func (s *refStack) push(id string) {
	s.on[id] = len(s.ids)
	s.ids = append(s.ids, id)
}

func (s *refStack) pop() {
	if len(s.ids) == 0 {
		return
	}
	last := s.ids[len(s.ids)-1]
	delete(s.on, last)
	s.ids = s.ids[:len(s.ids)-1]
}

func (s *refStack) depth() int {
	return len(s.ids)
}

// chain returns the reference path from the first occurrence of id
// through the top of the stack, with id appended to close the loop.
func (s *refStack) chain(id string) []string {
	start, ok := s.on[id]
	if !ok {
		return []string{id}
	}
	chain := make([]string, 0, len(s.ids)-start+1)
	chain = append(chain, s.ids[start:]...)
	chain = append(chain, id)
	return chain
}
