package observability

import (
	"context"

	"github.com/aretw0/turning/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Metrics collects Prometheus metrics about test runs.
//
// Metrics exposed (all namespaced with "turning_"):
//
//   - cases_total (counter): finished test cases. Labels: status.
//   - retries_total (counter): retry attempts.
//   - steps_total (counter): step status changes. Labels: kind, status.
//   - case_duration_seconds (histogram): test case duration including retries.
//   - cases_inflight (gauge): test cases started and not yet finished.
type Metrics struct {
	cases    *prometheus.CounterVec
	retries  prometheus.Counter
	steps    *prometheus.CounterVec
	duration prometheus.Histogram
	inflight prometheus.Gauge
}

// NewMetrics creates and registers the metrics with registry.
// A nil registry falls back to prometheus.DefaultRegisterer.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registry)

	return &Metrics{
		cases: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "turning",
			Name:      "cases_total",
			Help:      "Finished test cases by status",
		}, []string{"status"}),
		retries: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "turning",
			Name:      "retries_total",
			Help:      "Test case retry attempts",
		}),
		steps: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "turning",
			Name:      "steps_total",
			Help:      "Step status changes by node kind",
		}, []string{"kind", "status"}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "turning",
			Name:      "case_duration_seconds",
			Help:      "Test case duration including retries and nested cases",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
		inflight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "turning",
			Name:      "cases_inflight",
			Help:      "Test cases started and not yet finished",
		}),
	}
}

// Retries exposes the retry counter.
func (m *Metrics) Retries() prometheus.Counter {
	return m.retries
}

// Hooks returns the lifecycle hooks feeding the metrics.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnCaseStart: func(_ context.Context, _ *domain.CaseEvent) {
			m.inflight.Inc()
		},
		OnCaseEnd: func(_ context.Context, e *domain.CaseEvent) {
			m.inflight.Dec()
			m.cases.WithLabelValues(string(e.Status)).Inc()
			m.duration.Observe(e.Duration.Seconds())
		},
		OnRetry: func(_ context.Context, _ *domain.CaseEvent) {
			m.retries.Inc()
		},
		OnStep: func(_ context.Context, e *domain.StepEvent) {
			m.steps.WithLabelValues(e.Node.Kind.String(), string(e.Status)).Inc()
		},
	}
}

// Push sends everything gathered by g to a Pushgateway under job.
// Test runs are short lived, so they push instead of being scraped.
func Push(ctx context.Context, url, job string, g prometheus.Gatherer) error {
	return push.New(url, job).Gatherer(g).PushContext(ctx)
}
