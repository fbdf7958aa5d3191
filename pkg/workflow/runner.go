// Package workflow parses workflow definitions into dependency graphs and
// drives their execution to completion or terminal failure.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/vandyand/agentic-workflow-engine/pkg/cache"
	"github.com/vandyand/agentic-workflow-engine/pkg/execution"
	"github.com/vandyand/agentic-workflow-engine/pkg/models"
	"github.com/vandyand/agentic-workflow-engine/pkg/otelhelper"
	"github.com/vandyand/agentic-workflow-engine/pkg/registry"
	"github.com/vandyand/agentic-workflow-engine/pkg/retry"
	"github.com/vandyand/agentic-workflow-engine/pkg/schema"
)

// Runner executes one workflow definition at a time: it builds the
// dependency graph, schedules ready steps onto workers, and assembles the
// run report. Readiness transitions are serialized by the single scheduling
// loop in Run; handler execution itself is unsynchronized.
type Runner struct {
	registry      *registry.Registry
	cache         cache.Store
	logger        *slog.Logger
	tracer        trace.Tracer
	maxConcurrent int
	runTimeout    time.Duration
}

type Option func(*Runner)

// WithCache sets the result store consulted before each handler invocation.
func WithCache(store cache.Store) Option {
	return func(r *Runner) { r.cache = store }
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) { r.logger = logger }
}

func WithTracer(tracer trace.Tracer) Option {
	return func(r *Runner) { r.tracer = tracer }
}

// WithMaxConcurrent bounds how many steps execute at once; 0 means
// unbounded within the run.
func WithMaxConcurrent(n int) Option {
	return func(r *Runner) { r.maxConcurrent = n }
}

// WithRunTimeout sets the whole-run timeout; 0 disables it. The per-attempt
// timeout of the retry policy is enforced independently.
func WithRunTimeout(d time.Duration) Option {
	return func(r *Runner) { r.runTimeout = d }
}

func NewRunner(reg *registry.Registry, opts ...Option) *Runner {
	r := &Runner{
		registry: reg,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.cache == nil {
		r.cache = cache.NewFallback(nil, r.logger)
	}

	if r.tracer == nil {
		r.tracer = otel.Tracer("workflow-runner")
	}

	return r
}

// stepOutcome is delivered by a worker when its step stops occupying a
// worker slot. ran is false when cancellation prevented the step from
// starting at all.
type stepOutcome struct {
	stepID    string
	succeeded bool
	ran       bool
}

// Run executes the definition until every step is terminal or the run is
// cancelled. Structural problems (cycles, unknown steps or actions) abort
// before any handler is invoked; per-step failures are localized and
// reported through the run report, not the error return.
func (r *Runner) Run(ctx context.Context, def *models.WorkflowDefinition) (*models.RunReport, error) {
	g, err := buildGraph(def)
	if err != nil {
		return nil, err
	}

	for _, id := range g.order {
		if _, err := r.registry.Lookup(g.steps[id].Action); err != nil {
			return nil, fmt.Errorf("step %q: %w", id, err)
		}
	}

	if r.runTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeoutCause(ctx, r.runTimeout, ErrRunTimedOut)
		defer cancel()
	}

	execCtx := execution.NewContext(def.ID, g.order)
	logger := r.logger.With("workflow_id", def.ID, "run_id", execCtx.RunID)

	ctx, span := otelhelper.StartSpan(ctx, r.tracer, "workflow.run",
		attribute.String(otelhelper.WorkflowIDKey, def.ID),
		attribute.String(otelhelper.RunIDKey, execCtx.RunID),
	)
	defer span.End()

	logger.Info("Starting workflow run", "steps", len(g.order))
	execCtx.Log("info", "", fmt.Sprintf("run started with %d steps", len(g.order)))

	var (
		wg      sync.WaitGroup
		sem     chan struct{}
		running int
		failed  bool
		stopped bool
	)

	if r.maxConcurrent > 0 {
		sem = make(chan struct{}, r.maxConcurrent)
	}

	outcomes := make(chan stepOutcome)

	launch := func(stepID string) {
		running++
		execCtx.SetStatus(stepID, models.StepReady)
		wg.Add(1)

		go func() {
			defer wg.Done()

			if sem != nil {
				sem <- struct{}{}
				defer func() { <-sem }()
			}

			succeeded, ran := r.runStep(ctx, logger, execCtx, g.steps[stepID])
			outcomes <- stepOutcome{stepID: stepID, succeeded: succeeded, ran: ran}
		}()
	}

	unmet := make(map[string]int, len(g.order))
	for _, id := range g.order {
		unmet[id] = len(g.deps[id])
	}

	for _, id := range g.order {
		if unmet[id] == 0 {
			launch(id)
		}
	}

	for running > 0 {
		outcome := <-outcomes
		running--

		switch {
		case !outcome.ran:
			// Cancelled before starting; the step stays non-terminal.
		case outcome.succeeded:
			for _, dependent := range g.dependents[outcome.stepID] {
				unmet[dependent]--
				if unmet[dependent] > 0 || stopped {
					continue
				}

				if ctx.Err() != nil {
					stopped = true

					continue
				}

				launch(dependent)
			}
		default:
			failed = true
			r.propagateSkip(execCtx, g, outcome.stepID)
		}
	}

	wg.Wait()

	var status models.RunStatus

	// A cancelled or timed-out run reports as such unless every step
	// still completed successfully before the signal took effect.
	switch {
	case ctx.Err() != nil && (execCtx.Unfinished() || failed):
		if errors.Is(context.Cause(ctx), ErrRunTimedOut) {
			status = models.RunTimedOut
		} else {
			status = models.RunCancelled
		}
	case failed:
		status = models.RunFailed
	default:
		status = models.RunSucceeded
	}

	if status != models.RunSucceeded {
		otelhelper.SetError(span, fmt.Errorf("run finished with status %s", status))
	}

	execCtx.Log("info", "", fmt.Sprintf("run finished with status %s", status))
	logger.Info("Workflow run finished", "status", status)

	return execCtx.Report(status), nil
}

// propagateSkip transitively marks every non-terminal dependent of a failed
// step as Skipped. Dependents of a failed step can never have been
// launched, so only Pending slots are touched.
func (r *Runner) propagateSkip(execCtx *execution.Context, g *graph, failedID string) {
	queue := append([]string{}, g.dependents[failedID]...)

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		if execCtx.Status(id).Terminal() {
			continue
		}

		execCtx.RecordSkip(id, failedID)
		execCtx.Log("warn", id, fmt.Sprintf("skipped: upstream step %q failed", failedID))
		queue = append(queue, g.dependents[id]...)
	}
}

// runStep drives one step through resolve -> validate -> cache -> handler
// -> validate -> record. It returns whether the step succeeded and whether
// it started at all.
func (r *Runner) runStep(ctx context.Context, logger *slog.Logger, execCtx *execution.Context, step *models.StepDefinition) (bool, bool) {
	if ctx.Err() != nil {
		return false, false
	}

	started := time.Now()
	execCtx.SetStatus(step.ID, models.StepRunning)

	stepLogger := logger.With("step_id", step.ID, "action_id", step.Action)

	stepCtx, span := otelhelper.StartSpan(ctx, r.tracer, "workflow.step",
		attribute.String(otelhelper.StepIDKey, step.ID),
		attribute.String(otelhelper.ActionIDKey, step.Action),
	)
	defer span.End()

	spec, err := r.registry.Lookup(step.Action)
	if err != nil {
		return r.failStep(execCtx, span, stepLogger, step.ID, KindUnknownAction, err, 0, started), true
	}

	input, err := r.resolveInputs(execCtx, step)
	if err != nil {
		return r.failStep(execCtx, span, stepLogger, step.ID, KindMissingOutput, err, 0, started), true
	}

	if result, verr := schema.Validate(input, spec.InputSchema); verr != nil || !result.Valid() {
		if verr == nil {
			verr = fmt.Errorf("input validation failed: %s", result.Summary())
		}

		return r.failStep(execCtx, span, stepLogger, step.ID, KindInputValidation, verr, 0, started), true
	}

	fingerprint, payload, err := cache.Fingerprint(step.Action, input)
	if err != nil {
		return r.failStep(execCtx, span, stepLogger, step.ID, KindInputValidation, err, 0, started), true
	}

	entry, hit, cerr := r.cache.Get(stepCtx, fingerprint)
	if cerr != nil {
		stepLogger.Warn("Failed to read cache entry", "error", cerr)
	}

	if hit {
		// A hit is equivalent to re-executing the action, with zero
		// handler invocations.
		execCtx.RecordSuccess(step.ID, entry.Output, 0, true, time.Since(started))
		execCtx.Log("info", step.ID, "step satisfied from cache")
		stepLogger.Info("Step satisfied from cache", "fingerprint", fingerprint)

		return true, true
	}

	policy := retry.FromModel(step.Retry)

	output, attempts, err := retry.Do(stepCtx, policy, func(attemptCtx context.Context) (map[string]any, error) {
		return spec.Handler(attemptCtx, input)
	})
	if err != nil {
		return r.failStep(execCtx, span, stepLogger, step.ID, KindHandler, err, attempts, started), true
	}

	if result, verr := schema.Validate(output, spec.OutputSchema); verr != nil || !result.Valid() {
		// The handler violated its output contract; never retried.
		if verr == nil {
			verr = fmt.Errorf("output validation failed: %s", result.Summary())
		}

		return r.failStep(execCtx, span, stepLogger, step.ID, KindOutputValidation, verr, attempts, started), true
	}

	if cerr := r.cache.Put(stepCtx, fingerprint, &cache.Entry{
		ActionID:  step.Action,
		Input:     payload,
		Output:    output,
		CreatedAt: time.Now(),
	}); cerr != nil {
		stepLogger.Warn("Failed to write cache entry", "error", cerr)
	}

	execCtx.RecordSuccess(step.ID, output, attempts, false, time.Since(started))
	execCtx.Log("info", step.ID, fmt.Sprintf("step succeeded after %d attempt(s)", attempts))
	stepLogger.Info("Step succeeded", "attempts", attempts, "duration_ms", time.Since(started).Milliseconds())

	return true, true
}

func (r *Runner) failStep(execCtx *execution.Context, span trace.Span, logger *slog.Logger, stepID, kind string, err error, attempts int, started time.Time) bool {
	stepErr := &StepError{StepID: stepID, Kind: kind, Err: err}

	execCtx.RecordFailure(stepID, kind, err, attempts, time.Since(started))
	execCtx.Log("error", stepID, stepErr.Error())
	logger.Error("Step failed", "kind", kind, "attempts", attempts, "error", err)
	otelhelper.SetError(span, stepErr)

	return false
}

// resolveInputs materializes a step's input object: literals verbatim,
// references looked up in the producing step's recorded output.
func (r *Runner) resolveInputs(execCtx *execution.Context, step *models.StepDefinition) (map[string]any, error) {
	input := make(map[string]any, len(step.Inputs))

	for name, binding := range step.Inputs {
		if !binding.IsReference() {
			input[name] = binding.Literal

			continue
		}

		output, ok := execCtx.Output(binding.Ref.Step)
		if !ok {
			return nil, fmt.Errorf("%w: no recorded output for step %q", ErrMissingOutputPath, binding.Ref.Step)
		}

		value, err := lookupPath(output, binding.Ref.Path)
		if err != nil {
			return nil, err
		}

		input[name] = value
	}

	return input, nil
}
