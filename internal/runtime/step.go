package runtime

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/aretw0/turning/pkg/domain"
)

// segment runs the start via and every turn of a test case and returns the
// resulting context. It stops at the first failing via.
func (r *run[C]) segment(ctx context.Context, depth int, id string, start *domain.PathStart, parent C) (C, []error) {
	c := parent
	for _, via := range start.Vias() {
		if err := ctx.Err(); err != nil {
			return c, []error{err}
		}
		r.reporter.Step(via, depth)
		if r.opts.Verbose {
			r.reporter.States(via.States, depth)
		}

		next, errs := r.step(ctx, depth, id, via, c)
		c = next
		if len(errs) > 0 {
			return c, errs
		}
	}
	return c, nil
}

// step resolves the context of one via, then checks the active state
// invariants and the node test.
func (r *run[C]) step(ctx context.Context, depth int, id string, via *domain.Via, input C) (C, []error) {
	r.stepEvent(ctx, id, via, domain.StatusTransitioning, nil)

	next, err := r.transit(ctx, via.Node, input)
	if err != nil {
		stepErr := &domain.StepError{CaseID: id, Node: via.Node, Kind: domain.ErrTransitionFailed, Err: err}
		r.fail(ctx, id, via, stepErr, depth)
		return next, []error{stepErr}
	}

	if errs := r.verifyStates(ctx, depth, id, via, next); len(errs) > 0 {
		return next, errs
	}
	r.stepEvent(ctx, id, via, domain.StatusStatesVerified, nil)

	if test := r.handlers.Test[via.Node]; test != nil {
		if err := call(func() error { return test(ctx, next) }); err != nil {
			stepErr := &domain.StepError{CaseID: id, Node: via.Node, Kind: domain.ErrTransitionTestFailed, Err: err}
			r.fail(ctx, id, via, stepErr, depth)
			return next, []error{stepErr}
		}
	}
	r.stepEvent(ctx, id, via, domain.StatusTransitionVerified, nil)
	return next, nil
}

func (r *run[C]) transit(ctx context.Context, n *domain.Node, input C) (C, error) {
	switch n.Kind {
	case domain.KindInitialize:
		fn := r.handlers.Initialize[n]
		if fn == nil {
			return input, fmt.Errorf("no handler for %s", n.Description())
		}
		return invoke(func() (C, error) { return fn(ctx) })
	case domain.KindTurn, domain.KindSpawn:
		fn := r.handlers.Transit[n]
		if fn == nil {
			return input, fmt.Errorf("no handler for %s", n.Description())
		}
		next, err := invoke(func() (C, error) { return fn(ctx, input) })
		if err != nil {
			return input, err
		}
		if n.Kind == domain.KindSpawn && sameReference(next, input) {
			return next, domain.ErrSpawnIdentity
		}
		return next, nil
	default:
		return input, fmt.Errorf("unexpected node kind %s", n.Kind)
	}
}

// verifyStates runs every invariant of the states active after via. All of
// them run, concurrently, and every failure is reported.
func (r *run[C]) verifyStates(ctx context.Context, depth int, id string, via *domain.Via, c C) []error {
	results := make([]error, len(via.States))

	var g errgroup.Group
	if r.opts.StateTestConcurrency > 0 {
		g.SetLimit(r.opts.StateTestConcurrency)
	}
	for i, state := range via.States {
		test := r.handlers.States[state]
		if test == nil {
			continue
		}
		g.Go(func() error {
			results[i] = call(func() error { return test(ctx, c) })
			return nil
		})
	}
	_ = g.Wait()

	var errs []error
	for i, err := range results {
		if err == nil {
			continue
		}
		stepErr := &domain.StepError{CaseID: id, Node: via.Node, State: via.States[i], Kind: domain.ErrStateTestFailed, Err: err}
		r.fail(ctx, id, via, stepErr, depth)
		errs = append(errs, stepErr)
	}
	return errs
}

func (r *run[C]) fail(ctx context.Context, id string, via *domain.Via, err *domain.StepError, depth int) {
	r.reporter.Failure(err.Title(), err.Err, depth)
	r.stepEvent(ctx, id, via, domain.StatusFailed, err)
	r.logger.Debug("step failed", "id", id, "node", via.Node.Name(), "err", err)
}

func (r *run[C]) stepEvent(ctx context.Context, id string, via *domain.Via, status domain.CaseStatus, err error) {
	if r.hooks.OnStep == nil {
		return
	}
	r.hooks.OnStep(ctx, &domain.StepEvent{
		Timestamp: time.Now(),
		CaseID:    id,
		Node:      via.Node,
		States:    via.States,
		Status:    status,
		Err:       err,
	})
}

// invoke calls fn, turning a panic into an error.
func invoke[T any](fn func() (T, error)) (v T, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return fn()
}

func call(fn func() error) error {
	_, err := invoke(func() (struct{}, error) { return struct{}{}, fn() })
	return err
}

// sameReference reports whether a and b share identity. Only pointers, maps,
// slices, channels and funcs have one; plain values never do.
func sameReference(a, b any) bool {
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if !va.IsValid() || !vb.IsValid() || va.Type() != vb.Type() {
		return false
	}
	switch va.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return !va.IsNil() && va.Pointer() == vb.Pointer()
	case reflect.Slice:
		return !va.IsNil() && va.Pointer() == vb.Pointer() && va.Len() == vb.Len()
	default:
		return false
	}
}
