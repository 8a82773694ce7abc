package turning

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/turning/internal/assembler"
	"github.com/aretw0/turning/internal/logging"
	"github.com/aretw0/turning/internal/runtime"
	"github.com/aretw0/turning/internal/search"
	"github.com/aretw0/turning/internal/validator"
	"github.com/aretw0/turning/pkg/domain"
	"github.com/aretw0/turning/pkg/dsl"
	"github.com/aretw0/turning/pkg/harness"
	"github.com/aretw0/turning/pkg/pattern"
	"github.com/aretw0/turning/pkg/ports"
)

// DefaultLockTTL bounds a lock left behind by a crashed run.
const DefaultLockTTL = 10 * time.Minute

// Turning declares a model and generates and runs test cases from it.
// The builder methods (Define, Initialize, Turn, Spawn, Pattern, Case) are promoted.
type Turning[C any] struct {
	*dsl.Builder[C]

	env      ports.Environment[C]
	harness  harness.Harness
	reporter ports.Reporter
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	matcher  *pattern.Matcher
	store    ports.ReportStore
	suite    string
	locker   ports.Locker
	lockKey  string
	lockTTL  time.Duration
}

// New creates an empty model.
func New[C any](opts ...Option[C]) *Turning[C] {
	t := &Turning[C]{
		Builder:  dsl.New[C](),
		env:      ports.NopEnvironment[C]{},
		harness:  harness.Inline{},
		reporter: ports.NopReporter{},
		logger:   logging.NewNop(),
		matcher:  pattern.Default,
		lockTTL:  DefaultLockTTL,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Plan is the outcome of a search: the paths, their forest and the explored graph.
type Plan struct {
	Model  *domain.Model
	Seed   string
	Paths  []domain.Path
	Forest []*domain.PathStart
	Graph  *domain.CombinationGraph
	// Warning lists what could not be reached when AllowUnreachable is set.
	Warning *domain.UnreachableError
}

// Cases counts the test cases of the plan, nested ones included.
func (p *Plan) Cases() int {
	return domain.CountCases(p.Forest)
}

// Describe outlines the forest, one test case header and node per line.
func (p *Plan) Describe() string {
	return assembler.Describe(p.Forest)
}

// Steps returns the steps leading to the end of test case id, ancestors included.
func (p *Plan) Steps(id string) ([]domain.Step, bool) {
	return assembler.Steps(p.Forest, id)
}

func collect(opts []RunOption) RunOptions {
	var o RunOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Search validates the model and generates the test cases without running them.
func (t *Turning[C]) Search(opts ...RunOption) (*Plan, error) {
	plan, _, err := t.plan(collect(opts))
	return plan, err
}

func (t *Turning[C]) plan(o RunOptions) (*Plan, dsl.Handlers[C], error) {
	def, err := t.Build()
	if err != nil {
		return nil, dsl.Handlers[C]{}, err
	}
	m := def.Model

	if err := validator.ValidateModel(m, t.matcher); err != nil {
		return nil, dsl.Handlers[C]{}, err
	}
	cases, err := validator.ResolveCases(m)
	if err != nil {
		return nil, dsl.Handlers[C]{}, err
	}

	seed := o.RandomSeed
	if seed == "" {
		seed = search.DefaultSeed(time.Now())
	}
	var random search.Random = search.NewRandom(seed)
	if o.Random != nil {
		random = o.Random
	}

	res, err := search.Search(m, cases, search.Options{
		MinTransitionSearchCount: o.MinTransitionSearchCount,
		Depth:                    o.Depth,
		Random:                   random,
		Matcher:                  t.matcher,
		Logger:                   t.logger,
	})
	if err != nil {
		return nil, dsl.Handlers[C]{}, err
	}

	warning, err := validator.CheckReachability(m, res.ReachedStates, res.ReachedNodes, o.AllowUnreachable)
	if err != nil {
		return nil, dsl.Handlers[C]{}, err
	}
	if warning != nil {
		t.logger.Warn("model is not fully reachable", "err", warning)
		t.reporter.Warning(warning.Error())
	}

	return &Plan{
		Model:   m,
		Seed:    seed,
		Paths:   res.Paths,
		Forest:  assembler.Assemble(res.Paths, cases),
		Graph:   res.Graph,
		Warning: warning,
	}, def.Handlers, nil
}

// Test generates the test cases and runs them against the environment.
// Failed test cases are recorded in the report, see Report.Passed; the error
// covers declaration problems, environment setup and teardown, locking,
// persistence and cancellation.
func (t *Turning[C]) Test(ctx context.Context, opts ...RunOption) (report *domain.Report, err error) {
	o := collect(opts)

	if o.RerunFailed {
		if err := t.rerun(ctx, &o); err != nil {
			return nil, err
		}
	}

	plan, handlers, err := t.plan(o)
	if err != nil {
		return nil, err
	}

	if t.locker != nil && !o.ListOnly {
		unlock, lErr := t.locker.Lock(ctx, t.lockKey, t.lockTTL)
		if lErr != nil {
			return nil, fmt.Errorf("failed to acquire lock %q: %w", t.lockKey, lErr)
		}
		defer func() {
			if uErr := unlock(context.WithoutCancel(ctx)); uErr != nil {
				err = errors.Join(err, fmt.Errorf("failed to release lock %q: %w", t.lockKey, uErr))
			}
		}()
	}

	engine := runtime.NewEngine(handlers,
		runtime.WithEnvironment[C](t.env),
		runtime.WithHarness[C](t.harness),
		runtime.WithReporter[C](t.reporter),
		runtime.WithLifecycleHooks[C](t.hooks),
		runtime.WithLogger[C](t.logger),
	)
	report, err = engine.Run(ctx, plan.Forest, runtime.Options{
		Bail:                 o.Bail,
		Filter:               o.Filter,
		Verbose:              o.Verbose,
		ListOnly:             o.ListOnly,
		MaxAttempts:          o.MaxAttempts,
		StateTestConcurrency: o.StateTestConcurrency,
	})
	if report == nil {
		return nil, err
	}
	report.Suite = t.suite
	report.Seed = plan.Seed

	if t.store != nil && !o.ListOnly {
		if sErr := t.store.Save(context.WithoutCancel(ctx), t.suite, report); sErr != nil {
			err = errors.Join(err, fmt.Errorf("failed to save report: %w", sErr))
		}
	}
	return report, err
}

// rerun narrows o to the failures of the stored report.
func (t *Turning[C]) rerun(ctx context.Context, o *RunOptions) error {
	if t.store == nil {
		return errors.New("rerunning failed test cases requires a report store")
	}
	prev, err := t.store.Load(ctx, t.suite)
	switch {
	case errors.Is(err, domain.ErrReportNotFound):
		t.logger.Info("no previous report, running every test case", "suite", t.suite)
		return nil
	case err != nil:
		return fmt.Errorf("failed to load previous report: %w", err)
	}

	if len(prev.FailedIDs) == 0 {
		t.logger.Info("previous run has no failures, running every test case", "suite", t.suite, "run_id", prev.RunID)
		return nil
	}
	o.Filter = append(o.Filter, prev.FailedIDs...)
	if prev.Seed != "" {
		o.RandomSeed = prev.Seed
	}
	t.logger.Info("rerunning failed test cases", "suite", t.suite, "run_id", prev.RunID, "ids", prev.FailedIDs, "seed", o.RandomSeed)
	return nil
}
