package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/turning/pkg/domain"
)

// LoggingHooks logs every lifecycle event as a structured record.
// Step events are logged at debug level.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnCaseStart: func(ctx context.Context, e *domain.CaseEvent) {
			logger.InfoContext(ctx, "case_start", "id", e.ID, "name", e.Name, "depth", e.Depth)
		},
		OnCaseEnd: func(ctx context.Context, e *domain.CaseEvent) {
			attrs := []any{"id", e.ID, "status", e.Status, "attempts", e.Attempt, "duration", e.Duration}
			if e.Err != nil {
				logger.WarnContext(ctx, "case_end", append(attrs, "error", e.Err)...)
				return
			}
			logger.InfoContext(ctx, "case_end", attrs...)
		},
		OnRetry: func(ctx context.Context, e *domain.CaseEvent) {
			logger.WarnContext(ctx, "case_retry", "id", e.ID, "attempt", e.Attempt, "error", e.Err)
		},
		OnStep: func(ctx context.Context, e *domain.StepEvent) {
			logger.DebugContext(ctx, "step", "id", e.CaseID, "node", e.Node.Name(), "status", e.Status, "states", e.States)
		},
	}
}
