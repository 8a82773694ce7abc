package dsl

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/aretw0/turning/pkg/domain"
)

// Builder collects declarations in order.
type Builder[C any] struct {
	defines     []*DefineBuilder[C]
	defineIndex map[string]*DefineBuilder[C]
	initializes []*InitializeBuilder[C]
	transitions []*TransitionBuilder[C]
	patterns    map[string]domain.MatchOptions
	cases       []domain.CaseSpec
}

// New creates an empty builder.
func New[C any]() *Builder[C] {
	return &Builder[C]{
		defineIndex: make(map[string]*DefineBuilder[C]),
		patterns:    make(map[string]domain.MatchOptions),
	}
}

// Define declares a state.
// If the state is already declared, it returns the existing builder.
func (b *Builder[C]) Define(state string) *DefineBuilder[C] {
	if db, ok := b.defineIndex[state]; ok {
		return db
	}
	db := &DefineBuilder[C]{define: domain.Define{State: state}}
	b.defines = append(b.defines, db)
	b.defineIndex[state] = db
	return db
}

// Initialize declares a graph root entering the given states.
func (b *Builder[C]) Initialize(states ...string) *InitializeBuilder[C] {
	ib := &InitializeBuilder[C]{node: domain.Node{Kind: domain.KindInitialize, States: slices.Clone(states)}}
	b.initializes = append(b.initializes, ib)
	return ib
}

// Turn declares an in-place transition from the states matching patterns.
func (b *Builder[C]) Turn(patterns []string, opts ...Option) *TransitionBuilder[C] {
	return b.transition(domain.KindTurn, patterns, opts)
}

// Spawn declares a transition deriving a child context from the states matching patterns.
func (b *Builder[C]) Spawn(patterns []string, opts ...Option) *TransitionBuilder[C] {
	return b.transition(domain.KindSpawn, patterns, opts)
}

func (b *Builder[C]) transition(kind domain.NodeKind, patterns []string, opts []Option) *TransitionBuilder[C] {
	tb := &TransitionBuilder[C]{node: domain.Node{Kind: kind, ObsoletePatterns: slices.Clone(patterns)}}
	for _, opt := range opts {
		opt(&tb.node)
	}
	b.transitions = append(b.transitions, tb)
	return tb
}

// Pattern registers a named match preset; the empty name is the default preset
// applied to every transition that does not opt out.
// Patterns prefixed with '!' (see Not) must not match.
func (b *Builder[C]) Pattern(name string, patterns ...string) *Builder[C] {
	b.patterns[name] = splitPatterns(patterns)
	return b
}

// Case declares a manual test case as a sequence of node aliases.
func (b *Builder[C]) Case(name string, aliases ...string) *Builder[C] {
	b.cases = append(b.cases, domain.CaseSpec{Name: name, Aliases: slices.Clone(aliases)})
	return b
}

// Build freezes the declarations.
func (b *Builder[C]) Build() (*Definition[C], error) {
	var errs []error

	model := &domain.Model{Patterns: make(map[string]domain.MatchOptions, len(b.patterns))}
	handlers := Handlers[C]{
		States:     make(map[string]TestFunc[C]),
		Initialize: make(map[*domain.Node]InitializeFunc[C]),
		Transit:    make(map[*domain.Node]TransitFunc[C]),
		Test:       make(map[*domain.Node]TestFunc[C]),
	}

	for _, db := range b.defines {
		model.Defines = append(model.Defines, db.define)
		if db.test != nil {
			handlers.States[db.define.State] = db.test
		}
	}
	for name, opts := range b.patterns {
		model.Patterns[name] = opts
	}

	aliases := make(map[string]bool)
	checkAlias := func(n *domain.Node) {
		if n.Alias == "" {
			return
		}
		if aliases[n.Alias] {
			errs = append(errs, domain.Declarationf("Alias %q has already been taken", n.Alias))
		}
		aliases[n.Alias] = true
	}

	index := 0
	for _, ib := range b.initializes {
		n := freeze(ib.node, index)
		index++
		checkAlias(n)
		if ib.handler == nil {
			errs = append(errs, domain.Declarationf("%s has no handler", n.Description()))
		} else {
			handlers.Initialize[n] = ib.handler
		}
		if ib.test != nil {
			handlers.Test[n] = ib.test
		}
		model.Initializes = append(model.Initializes, n)
	}
	for _, tb := range b.transitions {
		n := freeze(tb.node, index)
		index++
		checkAlias(n)
		if tb.handler == nil {
			errs = append(errs, domain.Declarationf("%s has no handler", n.Description()))
		} else {
			handlers.Transit[n] = tb.handler
		}
		if tb.test != nil {
			handlers.Test[n] = tb.test
		}
		model.Transitions = append(model.Transitions, n)
	}

	for _, n := range model.Nodes() {
		if n.Depth < 0 {
			errs = append(errs, domain.Declarationf("%s has a negative depth", n.Description()))
		}
	}

	names := make(map[string]bool)
	for _, c := range b.cases {
		if names[c.Name] {
			errs = append(errs, domain.Declarationf("Case name %q has already been taken", c.Name))
			continue
		}
		names[c.Name] = true
		model.Cases = append(model.Cases, c)
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("failed to build model: %w", errors.Join(errs...))
	}
	return &Definition[C]{Model: model, Handlers: handlers}, nil
}

func freeze(n domain.Node, index int) *domain.Node {
	frozen := n
	frozen.Index = index
	frozen.States = slices.Clone(n.States)
	frozen.ObsoletePatterns = slices.Clone(n.ObsoletePatterns)
	frozen.Blocked = slices.Clone(n.Blocked)
	frozen.Matches = slices.Clone(n.Matches)
	return &frozen
}

func splitPatterns(patterns []string) domain.MatchOptions {
	var opts domain.MatchOptions
	for _, p := range patterns {
		if neg, ok := strings.CutPrefix(p, "!"); ok {
			opts.NegativePatterns = append(opts.NegativePatterns, neg)
		} else {
			opts.Patterns = append(opts.Patterns, p)
		}
	}
	return opts
}
