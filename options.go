package turning

import (
	"log/slog"
	"time"

	"github.com/aretw0/turning/pkg/domain"
	"github.com/aretw0/turning/pkg/harness"
	"github.com/aretw0/turning/pkg/pattern"
	"github.com/aretw0/turning/pkg/ports"
)

// Environment is the system under test. See ports.Environment.
type Environment[C any] = ports.Environment[C]

// NopEnvironment implements every Environment hook as a no-op. Embed it to override a subset.
type NopEnvironment[C any] = ports.NopEnvironment[C]

// Option configures a Turning instance.
// Go cannot infer C from the arguments, so options take it explicitly:
//
//	turning.New(turning.WithEnvironment[*Session](env))
type Option[C any] func(*Turning[C])

// WithEnvironment sets the system under test.
func WithEnvironment[C any](env Environment[C]) Option[C] {
	return func(t *Turning[C]) {
		t.env = env
	}
}

// WithHarness sets the test runner every test case registers with, e.g. harness.Testing(t).
func WithHarness[C any](h harness.Harness) Option[C] {
	return func(t *Turning[C]) {
		t.harness = h
	}
}

// WithLogger sets a custom structured logger.
func WithLogger[C any](logger *slog.Logger) Option[C] {
	return func(t *Turning[C]) {
		t.logger = logger
	}
}

// WithReporter sets the console reporter.
func WithReporter[C any](r ports.Reporter) Option[C] {
	return func(t *Turning[C]) {
		t.reporter = r
	}
}

// WithLifecycleHooks registers observability hooks.
// Calling it several times composes the hooks.
func WithLifecycleHooks[C any](hooks domain.LifecycleHooks) Option[C] {
	return func(t *Turning[C]) {
		t.hooks = domain.ComposeHooks(t.hooks, hooks)
	}
}

// WithReportStore persists the report of every run under suite.
// It enables RerunFailed.
func WithReportStore[C any](store ports.ReportStore, suite string) Option[C] {
	return func(t *Turning[C]) {
		t.store = store
		t.suite = suite
	}
}

// WithLocker holds the lock key for the duration of every run.
func WithLocker[C any](locker ports.Locker, key string) Option[C] {
	return func(t *Turning[C]) {
		t.locker = locker
		t.lockKey = key
	}
}

// WithLockTTL bounds how long a lock survives a crashed run. Default: 10 minutes.
func WithLockTTL[C any](ttl time.Duration) Option[C] {
	return func(t *Turning[C]) {
		t.lockTTL = ttl
	}
}

// WithMatcher sets the pattern matcher and its cache.
func WithMatcher[C any](m *pattern.Matcher) Option[C] {
	return func(t *Turning[C]) {
		t.matcher = m
	}
}

// Random is the source of tie-breaking noise during search.
// It must be deterministic for a given seed.
type Random interface {
	Float64() float64
}

// RunOptions controls Search and Test.
type RunOptions struct {
	Bail             bool
	Filter           []string
	Verbose          bool
	ListOnly         bool
	MaxAttempts      int
	AllowUnreachable bool
	// MinTransitionSearchCount defaults to 10.
	MinTransitionSearchCount int
	// RandomSeed defaults to the current date, e.g. "Fri Jan 02 2026".
	RandomSeed           string
	Random               Random
	Depth                int
	StateTestConcurrency int
	RerunFailed          bool
}

// RunOption configures a single Search or Test call.
type RunOption func(*RunOptions)

// Bail stops at the first failed test case.
func Bail() RunOption {
	return func(o *RunOptions) { o.Bail = true }
}

// Filter runs only the given test case ids ("2", "1.3"), with their ancestors and descendants.
func Filter(ids ...string) RunOption {
	return func(o *RunOptions) { o.Filter = append(o.Filter, ids...) }
}

// Verbose prints the current states after every step.
func Verbose() RunOption {
	return func(o *RunOptions) { o.Verbose = true }
}

// ListOnly prints the test cases without running any handler.
func ListOnly() RunOption {
	return func(o *RunOptions) { o.ListOnly = true }
}

// MaxAttempts retries a failed test case up to n attempts in total.
func MaxAttempts(n int) RunOption {
	return func(o *RunOptions) { o.MaxAttempts = n }
}

// AllowUnreachable downgrades unreachable states and transitions to warnings.
// Necessary states are still enforced.
func AllowUnreachable() RunOption {
	return func(o *RunOptions) { o.AllowUnreachable = true }
}

// MinTransitionSearchCount sets how many times every transition must be traversed.
func MinTransitionSearchCount(n int) RunOption {
	return func(o *RunOptions) { o.MinTransitionSearchCount = n }
}

// RandomSeed pins the seed of the generated suite.
func RandomSeed(seed string) RunOption {
	return func(o *RunOptions) { o.RandomSeed = seed }
}

// WithRandom replaces the seeded generator. RandomSeed is then only recorded.
func WithRandom(r Random) RunOption {
	return func(o *RunOptions) { o.Random = r }
}

// Depth bounds how many transitions are explored from each root.
func Depth(n int) RunOption {
	return func(o *RunOptions) { o.Depth = n }
}

// StateTestConcurrency caps the state invariants checked at once.
func StateTestConcurrency(n int) RunOption {
	return func(o *RunOptions) { o.StateTestConcurrency = n }
}

// RerunFailed runs only the test cases that failed in the stored report, with its seed.
// Without a stored report or failures, everything runs.
func RerunFailed() RunOption {
	return func(o *RunOptions) { o.RerunFailed = true }
}
