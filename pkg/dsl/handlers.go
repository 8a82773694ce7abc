package dsl

import (
	"context"

	"github.com/aretw0/turning/pkg/domain"
)

// InitializeFunc creates the context of a new test case.
type InitializeFunc[C any] func(ctx context.Context) (C, error)

// TransitFunc moves a context to new states. Turns may return the same context;
// spawns must return a different one.
type TransitFunc[C any] func(ctx context.Context, c C) (C, error)

// TestFunc verifies a context: a state invariant or a node test.
type TestFunc[C any] func(ctx context.Context, c C) error

// Handlers are the runtime callbacks of a frozen model, keyed by node.
type Handlers[C any] struct {
	States     map[string]TestFunc[C]
	Initialize map[*domain.Node]InitializeFunc[C]
	Transit    map[*domain.Node]TransitFunc[C]
	Test       map[*domain.Node]TestFunc[C]
}

// Definition is the output of Builder.Build.
type Definition[C any] struct {
	Model    *domain.Model
	Handlers Handlers[C]
}
