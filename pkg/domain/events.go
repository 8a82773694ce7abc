package domain

import (
	"context"
	"time"
)

// CaseEvent describes a test case entering, leaving or retrying.
type CaseEvent struct {
	Timestamp time.Time
	ID        string
	Name      string
	Depth     int
	Attempt   int
	Status    CaseStatus
	Err       error
	Duration  time.Duration
}

// StepEvent describes a status change inside a test case.
type StepEvent struct {
	Timestamp time.Time
	CaseID    string
	Node      *Node
	States    []string
	Status    CaseStatus
	Err       error
}

// LifecycleHooks defines callbacks for runtime observability.
type LifecycleHooks struct {
	OnCaseStart func(context.Context, *CaseEvent)
	OnCaseEnd   func(context.Context, *CaseEvent)
	OnRetry     func(context.Context, *CaseEvent)
	OnStep      func(context.Context, *StepEvent)
}

// ComposeHooks fans every callback out to each non-nil hook, in order.
func ComposeHooks(hooks ...LifecycleHooks) LifecycleHooks {
	caseFan := func(pick func(LifecycleHooks) func(context.Context, *CaseEvent)) func(context.Context, *CaseEvent) {
		var fns []func(context.Context, *CaseEvent)
		for _, h := range hooks {
			if fn := pick(h); fn != nil {
				fns = append(fns, fn)
			}
		}
		if len(fns) == 0 {
			return nil
		}
		return func(ctx context.Context, e *CaseEvent) {
			for _, fn := range fns {
				fn(ctx, e)
			}
		}
	}

	var steps []func(context.Context, *StepEvent)
	for _, h := range hooks {
		if h.OnStep != nil {
			steps = append(steps, h.OnStep)
		}
	}
	var onStep func(context.Context, *StepEvent)
	if len(steps) > 0 {
		onStep = func(ctx context.Context, e *StepEvent) {
			for _, fn := range steps {
				fn(ctx, e)
			}
		}
	}

	return LifecycleHooks{
		OnCaseStart: caseFan(func(h LifecycleHooks) func(context.Context, *CaseEvent) { return h.OnCaseStart }),
		OnCaseEnd:   caseFan(func(h LifecycleHooks) func(context.Context, *CaseEvent) { return h.OnCaseEnd }),
		OnRetry:     caseFan(func(h LifecycleHooks) func(context.Context, *CaseEvent) { return h.OnRetry }),
		OnStep:      onStep,
	}
}
