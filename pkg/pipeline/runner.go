package pipeline

import (
	"context"
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"mgv-hq/ganymede/pkg/config"
	"mgv-hq/ganymede/pkg/ledger"
	"mgv-hq/ganymede/pkg/ledger/recorder"
	"mgv-hq/ganymede/pkg/plan"
	"mgv-hq/ganymede/pkg/telemetry/logging"
	"mgv-hq/ganymede/pkg/telemetry/metrics"
	"mgv-hq/ganymede/pkg/telemetry/tracing"
)

// Runner turns a resolved plan into pipeline work: it builds the task
// list (genome selection, phase and type filters), runs it through a
// bounded worker pool, applies the per-host politeness limiter to
// downloads, records every task in the build ledger, and tracks
// completion in the state store so re-runs skip finished work.
//
// Concurrency is between (genome, datatype) groups; within a group the
// phases run strictly in order, and a phase failure skips the group's
// remaining phases.
type Runner struct {
	registry *Registry
	pipeline *config.PipelineConfig
	paths    config.PathsConfig

	recorder   *recorder.Recorder
	metrics    *metrics.Collector
	state      *StateStore
	limiter    *HostLimiter
	tracer     *tracing.Tracer
	logger     *logging.Logger
	logAdapter *LogAdapter
}

// NewRunner creates a runner over the given adapter registry, configured
// from cfg's pipeline and paths sections. Ledger recording, metrics,
// tracing, and completion state are attached with the With methods; the
// runner works without them.
func NewRunner(cfg *config.Config, registry *Registry) *Runner {
	if registry == nil {
		registry = NewRegistry()
	}

	logger, _ := logging.New(logging.Config{})

	return &Runner{
		registry:   registry,
		pipeline:   &cfg.Pipeline,
		paths:      cfg.Paths,
		limiter:    NewHostLimiter(&cfg.Pipeline.Rate),
		logger:     logger,
		logAdapter: NewLogAdapter(),
	}
}

// WithRecorder attaches the build ledger recorder.
func (r *Runner) WithRecorder(rec *recorder.Recorder) *Runner {
	r.recorder = rec
	return r
}

// WithMetrics attaches the metrics collector.
func (r *Runner) WithMetrics(collector *metrics.Collector) *Runner {
	r.metrics = collector
	return r
}

// WithState attaches the completion state store.
func (r *Runner) WithState(state *StateStore) *Runner {
	r.state = state
	return r
}

// WithTracer attaches the tracer.
func (r *Runner) WithTracer(tracer *tracing.Tracer) *Runner {
	r.tracer = tracer
	return r
}

// WithLogger replaces the runner's logger.
func (r *Runner) WithLogger(logger *logging.Logger) *Runner {
	r.logger = logger
	return r
}

// Result summarizes one pipeline run. Counts cover the tasks that
// actually reached a terminal state; on cancellation Total can exceed
// their sum.
type Result struct {
	RunID       string
	PlanVersion string
	Started     time.Time
	Duration    time.Duration
	DryRun      bool

	// Total is the number of tasks planned after selection.
	Total int

	Succeeded int
	Failed    int
	Skipped   int

	// GenomesSkipped counts active entries excluded by the genome
	// selection pattern.
	GenomesSkipped int

	// Errors holds one TaskError per failed task, in completion order.
	Errors []error

	mu sync.Mutex
}

// Err returns nil when every task succeeded or was skipped, and a
// summary error otherwise. Per-task detail stays in Errors.
func (res *Result) Err() error {
	if res.Failed == 0 {
		return nil
	}
	return fmt.Errorf("%d of %d pipeline tasks failed", res.Failed, res.Total)
}

func (res *Result) success() {
	res.mu.Lock()
	res.Succeeded++
	res.mu.Unlock()
}

func (res *Result) fail(err error) {
	res.mu.Lock()
	res.Failed++
	res.Errors = append(res.Errors, err)
	res.mu.Unlock()
}

func (res *Result) skip() {
	res.mu.Lock()
	res.Skipped++
	res.mu.Unlock()
}

// taskGroup is the phases of one (genome, datatype) unit, in run order.
// Groups are the unit of parallelism.
type taskGroup struct {
	genome   string
	datatype string
	tasks    []*Task
}

// runInfo carries per-run plan provenance stamped onto every ledger
// record.
type runInfo struct {
	specPath string
	specHash string
	version  string
}

// Run executes the plan's active entries through the pipeline. The
// returned error covers run-level problems: invalid selection filters or
// a cancelled context. Individual task failures are reported through the
// Result; callers check Result.Err.
func (r *Runner) Run(ctx context.Context, p *plan.Plan) (*Result, error) {
	if p == nil {
		return nil, fmt.Errorf("no plan to run")
	}

	runID := p.RunID
	if runID == "" {
		runID = uuid.New().String()
	}
	ctx = logging.WithRunID(ctx, runID)

	if r.tracer != nil {
		var span trace.Span
		ctx, span = r.tracer.Start(ctx, "pipeline.run")
		defer span.End()
		tracing.SetRunAttributes(span, runID, p.SpecPath, p.Revision)
	}

	groups, genomesSkipped, err := r.buildGroups(p)
	if err != nil {
		return nil, err
	}

	result := &Result{
		RunID:          runID,
		PlanVersion:    p.Fingerprint(),
		Started:        time.Now(),
		DryRun:         r.pipeline.DryRun,
		GenomesSkipped: genomesSkipped,
	}
	for _, g := range groups {
		result.Total += len(g.tasks)
	}

	ri := &runInfo{
		specPath: p.SpecPath,
		specHash: p.SpecHash,
		version:  result.PlanVersion,
	}

	r.logger.InfoContext(ctx, "pipeline run started",
		"plan_version", result.PlanVersion,
		"tasks", result.Total,
		"groups", len(groups),
		"workers", r.workerCount(),
		"dry_run", result.DryRun,
	)

	groupCh := make(chan *taskGroup)
	var wg sync.WaitGroup
	for i := 0; i < r.workerCount(); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for group := range groupCh {
				r.runGroup(ctx, ri, group, result)
			}
		}()
	}

feed:
	for _, group := range groups {
		select {
		case <-ctx.Done():
			break feed
		case groupCh <- group:
		}
	}
	close(groupCh)
	wg.Wait()

	result.Duration = time.Since(result.Started)

	r.logger.InfoContext(ctx, "pipeline run finished",
		"succeeded", result.Succeeded,
		"failed", result.Failed,
		"skipped", result.Skipped,
		"genomes_skipped", result.GenomesSkipped,
		"duration_ms", result.Duration.Milliseconds(),
	)

	return result, ctx.Err()
}

func (r *Runner) workerCount() int {
	if r.pipeline.Workers < 1 {
		return 1
	}
	return r.pipeline.Workers
}

// buildGroups turns the plan's active entries into task groups, applying
// the genome pattern and the phase and type filters. Entries keep plan
// order; within an entry the types and phases follow their canonical
// order.
func (r *Runner) buildGroups(p *plan.Plan) ([]*taskGroup, int, error) {
	pattern := r.pipeline.Genome
	if pattern == "" {
		pattern = ".*"
	}
	// Anchor at both ends so "mus" selects mus, not mus_musculus.
	genomeRe, err := regexp.Compile("^(?:" + pattern + ")$")
	if err != nil {
		return nil, 0, NewSelectionError("genome", pattern, err)
	}

	phaseSet, err := filterSet("phase", r.pipeline.Phases, ValidPhase)
	if err != nil {
		return nil, 0, err
	}
	typeSet, err := filterSet("datatype", r.pipeline.Types, ValidDatatype)
	if err != nil {
		return nil, 0, err
	}

	var groups []*taskGroup
	genomesSkipped := 0

	for _, entry := range p.Active {
		if !genomeRe.MatchString(entry.Name) {
			r.logger.Info("skipped genome", "genome", entry.Name)
			genomesSkipped++
			continue
		}

		fingerprint := entry.Fingerprint()

		for _, datatype := range Datatypes {
			if typeSet != nil && !typeSet[datatype] {
				continue
			}
			section, ok := entry.Section(datatype)
			if !ok {
				continue
			}

			adapterName := section.Source
			if adapterName == "" {
				adapterName = DefaultAdapterName
			}

			group := &taskGroup{genome: entry.Name, datatype: datatype}
			for _, phase := range Phases {
				if phaseSet != nil && !phaseSet[phase] {
					continue
				}
				group.tasks = append(group.tasks, &Task{
					RunID:       p.RunID,
					Genome:      entry.Name,
					Label:       entry.Label(),
					Datatype:    datatype,
					Phase:       phase,
					Adapter:     adapterName,
					Section:     section,
					Entry:       entry,
					Fingerprint: fingerprint,
					Paths:       r.paths,
					DryRun:      r.pipeline.DryRun,
				})
			}
			if len(group.tasks) > 0 {
				groups = append(groups, group)
			}
		}
	}

	return groups, genomesSkipped, nil
}

// filterSet validates filter values and builds a membership set. An
// empty filter means no restriction and returns nil.
func filterSet(field string, values []string, valid func(string) bool) (map[string]bool, error) {
	if len(values) == 0 {
		return nil, nil
	}
	set := make(map[string]bool, len(values))
	for _, v := range values {
		if !valid(v) {
			return nil, NewSelectionError(field, v, nil)
		}
		set[v] = true
	}
	return set, nil
}

// runGroup runs one group's phases in order. A failed phase aborts the
// rest of the group; the skipped phases still get ledger records so the
// audit trail explains why deploy never ran.
func (r *Runner) runGroup(ctx context.Context, ri *runInfo, group *taskGroup, result *Result) {
	var failedPhase string

	for _, task := range group.tasks {
		if failedPhase != "" {
			r.recordUnrun(ctx, ri, task, result,
				fmt.Errorf("%s phase failed", failedPhase))
			continue
		}
		if ctx.Err() != nil {
			r.recordUnrun(ctx, ri, task, result,
				fmt.Errorf("run cancelled: %w", ctx.Err()))
			continue
		}

		if err := r.runTask(ctx, ri, task, result); err != nil {
			failedPhase = task.Phase
		}
	}
}

// runTask executes one task end to end: completion check, adapter
// lookup, politeness wait, dispatch, then ledger, metrics, and state
// bookkeeping.
func (r *Runner) runTask(ctx context.Context, ri *runInfo, task *Task, result *Result) error {
	ctx = logging.WithGenome(ctx, task.Genome)
	ctx = logging.WithDatatype(ctx, task.Datatype)
	ctx = logging.WithPhase(ctx, task.Phase)
	ctx = logging.WithAdapter(ctx, task.Adapter)

	if r.state != nil && !r.pipeline.Force && !task.DryRun {
		done, err := r.state.IsComplete(ctx, task)
		if err != nil {
			// A broken state store must not block the build; run the
			// task and let MarkComplete surface the problem again.
			r.logger.WarnContext(ctx, "completion check failed", "error", err)
		} else if done {
			r.logger.InfoContext(ctx, "task already complete, skipping")
			rec := r.newRecord(ri, task)
			rec.Finish(ledger.StatusSkipped, nil)
			r.record(ctx, rec)
			if r.metrics != nil {
				r.metrics.RecordTask(task.Phase, task.Datatype, "skipped", 0)
			}
			result.skip()
			return nil
		}
	}

	adapter, lookupErr := r.adapterFor(task)
	if lookupErr != nil {
		return r.failTask(ctx, ri, task, result, 0, lookupErr)
	}

	if task.Phase == PhaseDownload && !task.DryRun && r.limiter != nil {
		if err := r.limiter.Wait(ctx, task.SourceHost()); err != nil {
			return r.failTask(ctx, ri, task, result, 0,
				fmt.Errorf("rate limit wait: %w", err))
		}
	}

	var span trace.Span
	if r.tracer != nil {
		ctx, span = r.tracer.Start(ctx, "pipeline.task")
		defer span.End()
		tracing.SetTaskAttributes(span, task.Genome, task.Datatype, task.Phase, task.Adapter)
		tracing.SetDryRun(span, task.DryRun)
	}

	if r.metrics != nil {
		r.metrics.TaskStarted(task.Phase)
		defer r.metrics.TaskDone(task.Phase)
	}

	r.logger.InfoContext(ctx, "task started")

	start := time.Now()
	err := dispatch(ctx, adapter, task)
	duration := time.Since(start)

	if span != nil && task.BytesFetched > 0 {
		tracing.SetFetchAttributes(span, task.SourceHost(), task.BytesFetched)
	}

	if err != nil {
		if span != nil {
			tracing.SetError(span, err)
		}
		return r.failTask(ctx, ri, task, result, duration, err)
	}

	rec := r.newRecord(ri, task)
	rec.BytesFetched = task.BytesFetched
	rec.Finish(ledger.StatusOK, nil)
	r.record(ctx, rec)

	if r.metrics != nil {
		r.metrics.RecordTask(task.Phase, task.Datatype, "success", duration)
		if task.BytesFetched > 0 {
			r.metrics.RecordTaskBytes(task.Genome, task.BytesFetched)
		}
	}

	if r.state != nil && !task.DryRun {
		if serr := r.state.MarkComplete(ctx, task); serr != nil {
			r.logger.WarnContext(ctx, "failed to record completion", "error", serr)
		}
	}

	result.success()
	r.logger.InfoContext(ctx, "task finished",
		"duration_ms", duration.Milliseconds(),
		"bytes_fetched", task.BytesFetched,
	)
	return nil
}

// failTask books a task failure into the ledger, metrics, and the run
// result, and returns the wrapped task error.
func (r *Runner) failTask(ctx context.Context, ri *runInfo, task *Task, result *Result, duration time.Duration, cause error) error {
	rec := r.newRecord(ri, task)
	rec.BytesFetched = task.BytesFetched
	rec.Finish(ledger.StatusFailed, cause)
	r.record(ctx, rec)

	if r.metrics != nil {
		r.metrics.RecordTask(task.Phase, task.Datatype, "failed", duration)
	}

	taskErr := NewTaskError(task, cause)
	result.fail(taskErr)
	r.logger.ErrorContext(ctx, "task failed",
		"error", cause,
		"duration_ms", duration.Milliseconds(),
	)
	return taskErr
}

// recordUnrun books a ledger record for a task that never ran, either
// because an earlier phase of its group failed or because the run was
// cancelled.
func (r *Runner) recordUnrun(ctx context.Context, ri *runInfo, task *Task, result *Result, cause error) {
	ctx = logging.WithGenome(ctx, task.Genome)
	ctx = logging.WithDatatype(ctx, task.Datatype)
	ctx = logging.WithPhase(ctx, task.Phase)

	rec := r.newRecord(ri, task)
	rec.Finish(ledger.StatusSkipped, cause)
	r.record(ctx, rec)

	if r.metrics != nil {
		r.metrics.RecordTask(task.Phase, task.Datatype, "skipped", 0)
	}
	result.skip()
	r.logger.InfoContext(ctx, "task not run", "reason", cause)
}

// newRecord creates the pending ledger record for a task with plan
// provenance stamped on.
func (r *Runner) newRecord(ri *runInfo, task *Task) *ledger.BuildRecord {
	rec := ledger.NewRecord(task.RunID, task.Genome, task.Datatype, task.Phase)
	rec.SpecPath = ri.specPath
	rec.SpecHash = ri.specHash
	rec.PlanVersion = ri.version
	rec.Adapter = task.Adapter
	rec.SourceHost = task.SourceHost()
	rec.DryRun = task.DryRun
	return rec
}

// record hands a finished record to the ledger recorder, if one is
// attached.
func (r *Runner) record(ctx context.Context, rec *ledger.BuildRecord) {
	if r.recorder == nil {
		return
	}
	if err := r.recorder.Record(rec); err != nil {
		r.logger.WarnContext(ctx, "failed to record build record",
			"record_id", rec.ID,
			"error", err,
		)
	}
}

// adapterFor resolves the adapter that runs the task: the logging
// adapter on dry runs, the registered adapter otherwise.
func (r *Runner) adapterFor(task *Task) (Adapter, error) {
	if task.DryRun {
		return r.logAdapter, nil
	}
	adapter, ok := r.registry.Lookup(task.Adapter)
	if !ok {
		return nil, NewAdapterNotFoundError(task.Adapter)
	}
	return adapter, nil
}

// dispatch routes a task to the adapter method for its phase.
func dispatch(ctx context.Context, adapter Adapter, task *Task) error {
	switch task.Phase {
	case PhaseDownload:
		return adapter.Fetch(ctx, task)
	case PhaseImport:
		return adapter.Import(ctx, task)
	case PhaseDeploy:
		return adapter.Deploy(ctx, task)
	default:
		return fmt.Errorf("unknown phase %q", task.Phase)
	}
}
