package plan

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"mgv-hq/ganymede/pkg/gbs/parser"
	"mgv-hq/ganymede/pkg/gbs/validator"
)

// Planner ties the pieces of a plan build together: fetch the spec from
// its source, parse it, lint it, emit the plan, and install it in the
// registry. The daemon calls Rebuild on startup, on watcher events, and
// on schedule; one-shot commands call it once.
type Planner struct {
	source    Source
	parser    *parser.Parser
	validator *validator.Validator
	emitter   *Emitter
	registry  *Registry
	logger    *slog.Logger

	mu       sync.Mutex
	lastErr  error
	lastGood *Plan
}

// NewPlanner creates a planner for the given source with default parser,
// validator, emitter, and a fresh registry.
func NewPlanner(source Source) *Planner {
	return &Planner{
		source:    source,
		parser:    parser.NewParser(),
		validator: validator.NewValidator(),
		emitter:   NewEmitter(),
		registry:  NewRegistry(),
		logger:    slog.Default().With("component", "planner"),
	}
}

// WithParser replaces the spec parser.
func (p *Planner) WithParser(ps *parser.Parser) *Planner {
	p.parser = ps
	return p
}

// WithValidator replaces the lint pass. A nil validator skips linting;
// resolution errors still surface from the emitter.
func (p *Planner) WithValidator(v *validator.Validator) *Planner {
	p.validator = v
	return p
}

// WithEmitter replaces the plan emitter.
func (p *Planner) WithEmitter(e *Emitter) *Planner {
	p.emitter = e
	return p
}

// WithRegistry replaces the registry that Rebuild installs plans into.
func (p *Planner) WithRegistry(r *Registry) *Planner {
	p.registry = r
	return p
}

// WithLogger replaces the planner's logger.
func (p *Planner) WithLogger(logger *slog.Logger) *Planner {
	p.logger = logger
	return p
}

// Registry returns the registry this planner installs plans into.
func (p *Planner) Registry() *Registry {
	return p.registry
}

// Rebuild runs one full spec-to-plan cycle and installs the result. On
// failure the registry keeps the last good plan, so a broken edit never
// takes a running daemon's plan away.
//
// When the emitter runs with WithContinueOnError, Rebuild installs the
// partial plan and returns it together with the error list.
func (p *Planner) Rebuild(ctx context.Context) (*Plan, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	start := time.Now()
	p.logger.Info("Rebuilding build plan", "source", p.source.Describe())

	data, revision, err := p.source.Fetch(ctx)
	if err != nil {
		return nil, p.fail(fmt.Errorf("failed to fetch spec: %w", err))
	}

	doc, err := p.parser.ParseBytes(data, p.source.Describe())
	if err != nil {
		return nil, p.fail(err)
	}

	if p.validator != nil {
		if err := p.validator.Validate(doc); err != nil {
			return nil, p.fail(err)
		}
	}

	built, emitErr := p.emitter.Emit(doc)
	if built == nil {
		return nil, p.fail(emitErr)
	}

	built.SpecHash = fmt.Sprintf("%x", sha256.Sum256(data))
	built.Revision = revision

	if err := p.registry.Update(built); err != nil {
		return nil, p.fail(err)
	}

	p.lastErr = nil
	p.lastGood = built
	p.logger.Info("Build plan installed",
		"version", p.registry.GetVersion(),
		"revision", revision,
		"active", len(built.Active),
		"disabled", len(built.Disabled),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	// Non-nil only under the emitter's continue-on-error policy.
	return built, emitErr
}

// LastError returns the error from the most recent failed rebuild, or nil
// if the last rebuild succeeded.
func (p *Planner) LastError() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

// LastGood returns the most recent successfully installed plan.
func (p *Planner) LastGood() *Plan {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastGood
}

func (p *Planner) fail(err error) error {
	p.lastErr = err
	p.logger.Error("Plan rebuild failed", "error", err)
	return err
}
