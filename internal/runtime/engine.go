// Package runtime replays a path forest against the handlers of a model.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aretw0/turning/internal/assembler"
	"github.com/aretw0/turning/internal/logging"
	"github.com/aretw0/turning/pkg/domain"
	"github.com/aretw0/turning/pkg/dsl"
	"github.com/aretw0/turning/pkg/harness"
	"github.com/aretw0/turning/pkg/ports"
)

// Options controls one run.
type Options struct {
	// Bail stops the run at the first failed test case.
	Bail bool
	// Filter restricts the run to the listed test case ids, their ancestors and descendants.
	Filter []string
	// Verbose prints the states reached after every step.
	Verbose bool
	// ListOnly walks the forest without invoking any handler or environment hook.
	ListOnly bool
	// MaxAttempts is how many times a test case runs before it is reported failed.
	MaxAttempts int
	// StateTestConcurrency caps the state invariants checked at once; 0 means no cap.
	StateTestConcurrency int
}

// Engine executes path forests.
type Engine[C any] struct {
	handlers dsl.Handlers[C]
	env      ports.Environment[C]
	harness  harness.Harness
	reporter ports.Reporter
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
}

// EngineOption configures the Engine.
type EngineOption[C any] func(*Engine[C])

// WithEnvironment sets the system under test.
func WithEnvironment[C any](env ports.Environment[C]) EngineOption[C] {
	return func(e *Engine[C]) {
		e.env = env
	}
}

// WithHarness sets the test runner every test case registers with.
func WithHarness[C any](h harness.Harness) EngineOption[C] {
	return func(e *Engine[C]) {
		e.harness = h
	}
}

// WithReporter sets the console reporter.
func WithReporter[C any](r ports.Reporter) EngineOption[C] {
	return func(e *Engine[C]) {
		e.reporter = r
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks[C any](hooks domain.LifecycleHooks) EngineOption[C] {
	return func(e *Engine[C]) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger.
func WithLogger[C any](logger *slog.Logger) EngineOption[C] {
	return func(e *Engine[C]) {
		e.logger = logger
	}
}

// NewEngine creates an engine over frozen handlers.
func NewEngine[C any](handlers dsl.Handlers[C], opts ...EngineOption[C]) *Engine[C] {
	e := &Engine[C]{
		handlers: handlers,
		env:      ports.NopEnvironment[C]{},
		harness:  harness.Inline{},
		reporter: ports.NopReporter{},
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes the forest and returns the report.
// Test case failures are recorded in the report; the error is reserved for
// environment setup and teardown failures and for cancellation.
func (e *Engine[C]) Run(ctx context.Context, forest []*domain.PathStart, opts Options) (report *domain.Report, err error) {
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	report = &domain.Report{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
		ListOnly:  opts.ListOnly,
	}
	r := &run[C]{Engine: e, opts: opts, report: report}

	if !opts.ListOnly {
		if err := e.env.Setup(ctx); err != nil {
			return nil, fmt.Errorf("failed to set up environment: %w", err)
		}
		defer func() {
			if tErr := e.env.Teardown(context.WithoutCancel(ctx)); tErr != nil {
				err = errors.Join(err, fmt.Errorf("failed to tear down environment: %w", tErr))
			}
		}()
	}

	var root C
	report.FailedIDs = r.level(ctx, e.harness, 0, "", forest, root)
	report.FinishedAt = time.Now()
	report.Completed = ctx.Err() == nil
	e.reporter.Summary(report)

	e.logger.Info("run finished",
		"run_id", report.RunID,
		"cases", len(report.Cases),
		"failed", len(report.FailedIDs),
		"completed", report.Completed)

	if ctx.Err() != nil {
		return report, fmt.Errorf("run interrupted: %w", ctx.Err())
	}
	return report, nil
}

// run holds the state of one Run call.
type run[C any] struct {
	*Engine[C]
	opts    Options
	report  *domain.Report
	stopped bool
}

// level runs sibling test cases in order and returns the failed ids.
func (r *run[C]) level(ctx context.Context, h harness.Harness, depth int, parentID string, starts []*domain.PathStart, parent C) []string {
	var failed []string
	for i, start := range starts {
		if r.stopped || ctx.Err() != nil {
			break
		}
		id := assembler.CaseID(parentID, i)
		if !r.selected(id) {
			continue
		}

		var caseFailed []string
		h.Run("Test Case "+id, func(child harness.Harness) bool {
			caseFailed = r.testCase(ctx, child, depth, id, start, parent)
			return len(caseFailed) == 0
		})
		if len(caseFailed) > 0 {
			failed = append(failed, caseFailed...)
			if r.opts.Bail {
				r.stopped = true
				r.report.Bailed = true
			}
		}
	}
	return failed
}

func (r *run[C]) selected(id string) bool {
	if len(r.opts.Filter) == 0 {
		return true
	}
	for _, f := range r.opts.Filter {
		if id == f || strings.HasPrefix(f, id+".") || strings.HasPrefix(id, f+".") {
			return true
		}
	}
	return false
}

// testCase runs one test case with its retries and nested cases.
// It returns the failed ids: its own, or those of the nested cases that failed.
func (r *run[C]) testCase(ctx context.Context, h harness.Harness, depth int, id string, start *domain.PathStart, parent C) []string {
	began := time.Now()
	slot := len(r.report.Cases)
	r.report.Cases = append(r.report.Cases, domain.CaseRecord{})
	rec := domain.CaseRecord{ID: id, Name: start.Node.Name(), Depth: depth, Status: domain.StatusPending}

	r.reporter.TestCase(id, depth)
	r.caseEvent(ctx, r.hooks.OnCaseStart, &rec, 1, nil, 0)

	if r.opts.ListOnly {
		for _, via := range start.Vias() {
			r.reporter.Step(via, depth)
			if r.opts.Verbose {
				r.reporter.States(via.States, depth)
			}
		}
		r.level(ctx, h, depth+1, id, start.Spawns, parent)
		rec.Status = domain.StatusListed
		r.report.Cases[slot] = rec
		r.caseEvent(ctx, r.hooks.OnCaseEnd, &rec, 0, nil, time.Since(began))
		return nil
	}

	var (
		passed     bool
		failedSubs []string
		lastErr    error
	)

	if depth == 0 {
		if err := r.env.Before(ctx); err != nil {
			r.reporter.Failure("Before hook failed", err, depth)
			lastErr = fmt.Errorf("before hook failed: %w", err)
			rec.Errors = []string{lastErr.Error()}
			rec.Attempts = 1
			var zero C
			if err := r.env.AfterEach(ctx, zero, domain.AfterEachData{ID: id, Attempt: 1}); err != nil {
				r.reporter.Failure("AfterEach hook failed", err, depth)
				rec.Errors = append(rec.Errors, fmt.Sprintf("after each hook failed: %v", err))
			}
		}
	}

	if lastErr == nil {
		passed, failedSubs, lastErr = r.attempts(ctx, h, depth, id, start, parent, &rec, began)
	}

	if depth == 0 {
		if err := r.env.After(ctx); err != nil {
			r.reporter.Failure("After hook failed", err, depth)
			rec.Errors = append(rec.Errors, fmt.Sprintf("after hook failed: %v", err))
			passed = false
		}
	}

	rec.Status = domain.StatusFailed
	if passed {
		rec.Status = domain.StatusPassed
	}
	rec.Duration = time.Since(began)
	r.report.Cases[slot] = rec
	r.caseEvent(ctx, r.hooks.OnCaseEnd, &rec, rec.Attempts, lastErr, rec.Duration)
	r.logger.Debug("test case finished", "id", id, "status", rec.Status, "attempts", rec.Attempts)

	switch {
	case passed:
		return nil
	case len(failedSubs) > 0:
		return failedSubs
	default:
		return []string{id}
	}
}

// attempts runs the segment of a test case up to MaxAttempts times. A failure
// inside a nested test case is final: the passed siblings are not run again.
func (r *run[C]) attempts(ctx context.Context, h harness.Harness, depth int, id string, start *domain.PathStart, parent C, rec *domain.CaseRecord, began time.Time) (passed bool, failedSubs []string, lastErr error) {
	for attempt := 1; ; attempt++ {
		rec.Attempts = attempt
		c, errs := r.segment(ctx, depth, id, start, parent)
		passed = len(errs) == 0

		afterSpawn := false
		if passed && len(start.Spawns) > 0 {
			failedSubs = r.level(ctx, h, depth+1, id, start.Spawns, c)
			afterSpawn = len(failedSubs) > 0
			passed = !afterSpawn
		}

		data := domain.AfterEachData{ID: id, Attempt: attempt, Passed: passed, FailedAfterSpawn: afterSpawn}
		if err := r.env.AfterEach(ctx, c, data); err != nil {
			r.reporter.Failure("AfterEach hook failed", err, depth)
			errs = append(errs, fmt.Errorf("after each hook failed: %w", err))
			passed = false
		}

		rec.Errors = errorStrings(errs)
		lastErr = errors.Join(errs...)

		if passed || afterSpawn || attempt >= r.opts.MaxAttempts || ctx.Err() != nil {
			return passed, failedSubs, lastErr
		}
		r.reporter.Retry(id, attempt+1, r.opts.MaxAttempts, depth)
		r.caseEvent(ctx, r.hooks.OnRetry, rec, attempt+1, lastErr, time.Since(began))
		r.logger.Debug("retrying test case", "id", id, "attempt", attempt+1, "err", lastErr)
	}
}

func (r *run[C]) caseEvent(ctx context.Context, fn func(context.Context, *domain.CaseEvent), rec *domain.CaseRecord, attempt int, err error, d time.Duration) {
	if fn == nil {
		return
	}
	fn(ctx, &domain.CaseEvent{
		Timestamp: time.Now(),
		ID:        rec.ID,
		Name:      rec.Name,
		Depth:     rec.Depth,
		Attempt:   attempt,
		Status:    rec.Status,
		Err:       err,
		Duration:  d,
	})
}

func errorStrings(errs []error) []string {
	if len(errs) == 0 {
		return nil
	}
	out := make([]string, len(errs))
	for i, err := range errs {
		out[i] = err.Error()
	}
	return out
}
