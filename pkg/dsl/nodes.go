package dsl

import (
	"github.com/aretw0/turning/pkg/domain"
)

// DefineBuilder configures a state declaration.
type DefineBuilder[C any] struct {
	define domain.Define
	test   TestFunc[C]
}

// Test sets the invariant checked whenever the state is active.
func (d *DefineBuilder[C]) Test(fn TestFunc[C]) *DefineBuilder[C] {
	d.test = fn
	return d
}

// Only focuses generated paths on the ones reaching this state.
func (d *DefineBuilder[C]) Only() *DefineBuilder[C] {
	d.define.Only = true
	return d
}

// Necessary requires the state to be reachable even when unreachable states are allowed.
func (d *DefineBuilder[C]) Necessary() *DefineBuilder[C] {
	d.define.Necessary = true
	return d
}

// InitializeBuilder configures a graph root.
type InitializeBuilder[C any] struct {
	node    domain.Node
	handler InitializeFunc[C]
	test    TestFunc[C]
}

// By sets the description and the handler creating the context.
func (i *InitializeBuilder[C]) By(label string, fn InitializeFunc[C]) *InitializeBuilder[C] {
	i.node.Label = label
	i.handler = fn
	return i
}

// Test sets a check run right after the node and its state invariants.
func (i *InitializeBuilder[C]) Test(fn TestFunc[C]) *InitializeBuilder[C] {
	i.test = fn
	return i
}

// Alias names the node for manual cases and blocks.
func (i *InitializeBuilder[C]) Alias(alias string) *InitializeBuilder[C] {
	i.node.Alias = alias
	return i
}

// Depth bounds how many transitions are explored from this root.
func (i *InitializeBuilder[C]) Depth(depth int) *InitializeBuilder[C] {
	i.node.Depth = depth
	return i
}

// Manual excludes the node from generated paths; only manual cases use it.
func (i *InitializeBuilder[C]) Manual() *InitializeBuilder[C] {
	i.node.Manual = true
	return i
}

// Block forbids the aliased transitions on every path from this root.
func (i *InitializeBuilder[C]) Block(aliases ...string) *InitializeBuilder[C] {
	i.node.Blocked = append(i.node.Blocked, aliases...)
	return i
}

// Only focuses generated paths on the ones using this node.
func (i *InitializeBuilder[C]) Only() *InitializeBuilder[C] {
	i.node.Only = true
	return i
}

// TransitionBuilder configures a turn or a spawn.
type TransitionBuilder[C any] struct {
	node    domain.Node
	handler TransitFunc[C]
	test    TestFunc[C]
}

// To sets the states added by the transition.
func (t *TransitionBuilder[C]) To(states ...string) *TransitionBuilder[C] {
	t.node.States = append(t.node.States, states...)
	return t
}

// By sets the description and the handler.
func (t *TransitionBuilder[C]) By(label string, fn TransitFunc[C]) *TransitionBuilder[C] {
	t.node.Label = label
	t.handler = fn
	return t
}

// Test sets a check run after the transition and the state invariants.
func (t *TransitionBuilder[C]) Test(fn TestFunc[C]) *TransitionBuilder[C] {
	t.test = fn
	return t
}

// Alias names the node for manual cases and blocks.
func (t *TransitionBuilder[C]) Alias(alias string) *TransitionBuilder[C] {
	t.node.Alias = alias
	return t
}

// Depth resets the remaining exploration depth after the transition.
func (t *TransitionBuilder[C]) Depth(depth int) *TransitionBuilder[C] {
	t.node.Depth = depth
	return t
}

// Manual excludes the transition from generated paths.
func (t *TransitionBuilder[C]) Manual() *TransitionBuilder[C] {
	t.node.Manual = true
	return t
}

// Block forbids the aliased transitions once this one is taken.
func (t *TransitionBuilder[C]) Block(aliases ...string) *TransitionBuilder[C] {
	t.node.Blocked = append(t.node.Blocked, aliases...)
	return t
}

// Only focuses generated paths on the ones using this node.
func (t *TransitionBuilder[C]) Only() *TransitionBuilder[C] {
	t.node.Only = true
	return t
}

// With applies options after declaration.
func (t *TransitionBuilder[C]) With(opts ...Option) *TransitionBuilder[C] {
	for _, opt := range opts {
		opt(&t.node)
	}
	return t
}
