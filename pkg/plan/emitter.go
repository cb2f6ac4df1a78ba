package plan

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"mgv-hq/ganymede/pkg/gbs/ast"
	gbserrors "mgv-hq/ganymede/pkg/gbs/errors"
	"mgv-hq/ganymede/pkg/gbs/resolver"
)

// Emitter drives the resolver across a document's entry list and produces
// a Plan. Entries are resolved in document order; disabled entries are
// resolved too, so they stay valid alias targets, but land on the plan's
// disabled list instead of the active one.
//
// Errors are collected across the whole entry list before the run fails,
// so one emission surfaces every misconfigured entry. By default any
// entry error fails the run; WithContinueOnError changes the policy to
// emit a partial plan alongside the error list.
type Emitter struct {
	registry        *resolver.Registry
	maxDepth        int
	continueOnError bool
	clock           func() time.Time
	logger          *slog.Logger
}

// NewEmitter creates an emitter with default settings: the built-in
// dynamic value registry, the default depth limit, and abort-on-error.
func NewEmitter() *Emitter {
	return &Emitter{
		registry: resolver.NewRegistry(),
		maxDepth: resolver.DefaultMaxDepth,
		clock:    time.Now,
		logger:   slog.Default().With("component", "emitter"),
	}
}

// WithRegistry replaces the dynamic value registry used for resolution.
func (e *Emitter) WithRegistry(reg *resolver.Registry) *Emitter {
	e.registry = reg
	return e
}

// WithMaxDepth sets the resolver's maximum reference chain length.
func (e *Emitter) WithMaxDepth(depth int) *Emitter {
	e.maxDepth = depth
	return e
}

// WithContinueOnError makes entry failures non-fatal: failed entries are
// excluded from the plan and Emit returns the partial plan together with
// the accumulated error list.
func (e *Emitter) WithContinueOnError(v bool) *Emitter {
	e.continueOnError = v
	return e
}

// WithClock replaces the time source used for the plan's GeneratedAt.
func (e *Emitter) WithClock(clock func() time.Time) *Emitter {
	e.clock = clock
	return e
}

// WithLogger replaces the emitter's logger.
func (e *Emitter) WithLogger(logger *slog.Logger) *Emitter {
	e.logger = logger
	return e
}

// Emit resolves every entry of the document and returns the plan.
//
// Under the default policy a non-nil error means no plan: the returned
// plan is nil whenever any entry failed. Under WithContinueOnError the
// partial plan is returned alongside the error list, mirroring how a
// partially loaded directory returns both results and errors.
func (e *Emitter) Emit(doc *ast.Document) (*Plan, error) {
	start := e.clock()
	run := resolver.New(doc).
		WithRegistry(e.registry).
		WithMaxDepth(e.maxDepth).
		NewRun()

	p := &Plan{
		SpecPath:    doc.SourceFile,
		RunID:       uuid.New().String(),
		GeneratedAt: start,
	}
	errs := gbserrors.NewErrorList()

	for _, entry := range doc.Entries {
		fields, err := run.ResolveEntry(entry.Name)
		if err != nil {
			errs.Add(entryError(entry.Name, err))
			continue
		}
		re := &ResolvedEntry{
			Name:     entry.Name,
			Disabled: entry.Disabled,
			Fields:   fields,
			Location: entry.Location,
		}
		if entry.Disabled {
			p.Disabled = append(p.Disabled, re)
		} else {
			p.Active = append(p.Active, re)
		}
	}

	e.logger.Info("Build plan emitted",
		"entries", len(doc.Entries),
		"active", len(p.Active),
		"disabled", len(p.Disabled),
		"errors", errs.Count(),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if errs.HasErrors() {
		if !e.continueOnError {
			return nil, errs
		}
		return p, errs
	}
	return p, nil
}

// entryError stamps a resolution error with the identity of the top-level
// entry being emitted. The same underlying failure can surface under
// several entries when aliases share it; each report names its own entry.
func entryError(name string, err error) *gbserrors.Error {
	if ge, ok := err.(*gbserrors.Error); ok {
		stamped := *ge
		stamped.Entry = name
		return &stamped
	}
	return &gbserrors.Error{
		Type:    gbserrors.ErrorTypeValidation,
		Message: err.Error(),
		Entry:   name,
	}
}
