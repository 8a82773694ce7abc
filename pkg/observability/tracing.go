package observability

import (
	"context"
	"strings"
	"sync"

	"github.com/aretw0/turning/pkg/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracing opens one span per test case. Nested test cases become child spans
// of the case that spawned them; steps and retries are recorded as span events.
type Tracing struct {
	tracer trace.Tracer

	mu    sync.Mutex
	spans map[string]context.Context
}

// NewTracing creates span hooks on tracer, e.g. otel.Tracer("turning").
func NewTracing(tracer trace.Tracer) *Tracing {
	return &Tracing{
		tracer: tracer,
		spans:  make(map[string]context.Context),
	}
}

func parentID(id string) string {
	if i := strings.LastIndexByte(id, '.'); i >= 0 {
		return id[:i]
	}
	return ""
}

func (t *Tracing) span(id string) trace.Span {
	t.mu.Lock()
	defer t.mu.Unlock()
	ctx, ok := t.spans[id]
	if !ok {
		return nil
	}
	return trace.SpanFromContext(ctx)
}

// Hooks returns the lifecycle hooks driving the spans.
func (t *Tracing) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnCaseStart: func(ctx context.Context, e *domain.CaseEvent) {
			t.mu.Lock()
			defer t.mu.Unlock()
			if parent, ok := t.spans[parentID(e.ID)]; ok {
				ctx = parent
			}
			spanCtx, _ := t.tracer.Start(ctx, "Test Case "+e.ID,
				trace.WithTimestamp(e.Timestamp),
				trace.WithAttributes(
					attribute.String("turning.case_id", e.ID),
					attribute.String("turning.case_name", e.Name),
					attribute.Int("turning.depth", e.Depth),
				))
			t.spans[e.ID] = spanCtx
		},
		OnRetry: func(_ context.Context, e *domain.CaseEvent) {
			span := t.span(e.ID)
			if span == nil {
				return
			}
			attrs := []attribute.KeyValue{attribute.Int("turning.attempt", e.Attempt)}
			if e.Err != nil {
				attrs = append(attrs, attribute.String("error", e.Err.Error()))
			}
			span.AddEvent("retry", trace.WithAttributes(attrs...))
		},
		OnStep: func(_ context.Context, e *domain.StepEvent) {
			span := t.span(e.CaseID)
			if span == nil {
				return
			}
			span.AddEvent(string(e.Status), trace.WithTimestamp(e.Timestamp), trace.WithAttributes(
				attribute.String("turning.node", e.Node.Name()),
				attribute.StringSlice("turning.states", e.States),
			))
		},
		OnCaseEnd: func(_ context.Context, e *domain.CaseEvent) {
			t.mu.Lock()
			spanCtx, ok := t.spans[e.ID]
			delete(t.spans, e.ID)
			t.mu.Unlock()
			if !ok {
				return
			}

			span := trace.SpanFromContext(spanCtx)
			span.SetAttributes(
				attribute.String("turning.status", string(e.Status)),
				attribute.Int("turning.attempts", e.Attempt),
			)
			if e.Status == domain.StatusFailed {
				msg := "test case failed"
				if e.Err != nil {
					span.RecordError(e.Err)
					msg = e.Err.Error()
				}
				span.SetStatus(codes.Error, msg)
			} else {
				span.SetStatus(codes.Ok, "")
			}
			span.End()
		},
	}
}
