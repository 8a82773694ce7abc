package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"

	"github.com/aretw0/turning"
	"github.com/aretw0/turning/internal/compiler"
	"github.com/aretw0/turning/internal/presentation/tui"
	"github.com/aretw0/turning/pkg/domain"
	"github.com/aretw0/turning/pkg/observability"
)

// TracerName names the tracer run spans are recorded with.
const TracerName = "github.com/aretw0/turning"

// RunConfig holds the per-invocation settings of a run.
type RunConfig struct {
	ModelPath string
	// Suite names the stored report. Default: the model name.
	Suite    string
	LockKey  string
	Debug    bool
	Out      io.Writer
	ErrOut   io.Writer
	Registry *prometheus.Registry
	Options  []turning.RunOption
}

// Run executes the model at rc.ModelPath and stores its report.
// Test case failures are reported, not returned: check Report.Passed.
func Run(ctx context.Context, cfg Config, rc RunConfig) (report *domain.Report, err error) {
	logger, err := cfg.Logger(rc.Debug)
	if err != nil {
		return nil, err
	}

	backends, err := OpenBackends(cfg)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cErr := backends.Close(); cErr != nil {
			err = errors.Join(err, fmt.Errorf("failed to close store: %w", cErr))
		}
	}()

	registry := rc.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	metrics := observability.NewMetrics(registry)
	tracing := observability.NewTracing(otel.Tracer(TracerName))

	model, err := ReadModel(rc.ModelPath)
	if err != nil {
		return nil, err
	}
	suite := rc.Suite
	if suite == "" {
		suite = model.Name
	}
	lockKey := rc.LockKey
	if lockKey == "" {
		lockKey = suite
	}

	t := model.Compile(
		turning.WithLogger[compiler.Context](logger),
		turning.WithReporter[compiler.Context](tui.NewReporter(rc.Out, rc.ErrOut, tui.WithProfile(tui.DetectProfile(rc.Out)))),
		turning.WithLifecycleHooks[compiler.Context](observability.LoggingHooks(logger)),
		turning.WithLifecycleHooks[compiler.Context](metrics.Hooks()),
		turning.WithLifecycleHooks[compiler.Context](tracing.Hooks()),
		turning.WithReportStore[compiler.Context](backends.Store, suite),
		turning.WithLocker[compiler.Context](backends.Locker, lockKey),
	)

	report, err = t.Test(ctx, rc.Options...)
	if err != nil {
		return report, err
	}

	if cfg.Pushgateway != "" && !report.ListOnly {
		if pErr := observability.Push(context.WithoutCancel(ctx), cfg.Pushgateway, suite, registry); pErr != nil {
			logger.Warn("failed to push metrics", "url", cfg.Pushgateway, "err", pErr)
		}
	}
	logger.Debug("run stored", "suite", suite, "store", cfg.Store, "run_id", report.RunID)
	return report, nil
}
