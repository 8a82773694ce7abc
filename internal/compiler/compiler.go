// Package compiler turns YAML models into builder declarations.
//
// Compiled handlers do nothing: turns keep their context and spawns copy it.
// Such models can be searched, listed, exported and dry-run, not tested
// against a real system.
package compiler

import (
	"context"
	"maps"

	"github.com/aretw0/turning/internal/dto"
	"github.com/aretw0/turning/pkg/dsl"
)

// Context is the context type of compiled models.
type Context = map[string]any

func initialize(context.Context) (Context, error) {
	return Context{}, nil
}

func turn(_ context.Context, c Context) (Context, error) {
	return c, nil
}

func spawn(_ context.Context, c Context) (Context, error) {
	return maps.Clone(c), nil
}

// Compile declares the model on b.
// Declaration errors surface from b.Build or later validation.
func Compile(m *dto.Model, b *dsl.Builder[Context]) {
	for _, s := range m.States {
		d := b.Define(s.Name)
		if s.Necessary {
			d.Necessary()
		}
		if s.Only {
			d.Only()
		}
	}

	for name, patterns := range m.Patterns {
		b.Pattern(name, patterns...)
	}

	for _, in := range m.Initialize {
		ib := b.Initialize(in.States...).By(label(in.By, in.Alias, "initialize"), initialize)
		if in.Alias != "" {
			ib.Alias(in.Alias)
		}
		if in.Depth != 0 {
			ib.Depth(in.Depth)
		}
		if in.Manual {
			ib.Manual()
		}
		if len(in.Block) > 0 {
			ib.Block(in.Block...)
		}
		if in.Only {
			ib.Only()
		}
	}

	for _, t := range m.Turns {
		transition(b.Turn(t.From, options(t)...), t, turn)
	}
	for _, t := range m.Spawns {
		transition(b.Spawn(t.From, options(t)...), t, spawn)
	}

	for _, c := range m.Cases {
		b.Case(c.Name, c.Steps...)
	}
}

func options(t dto.Transition) []dsl.Option {
	var opts []dsl.Option
	for _, set := range t.Match {
		opts = append(opts, dsl.Match(set...))
	}
	if t.Pattern != "" {
		opts = append(opts, dsl.UsePattern(t.Pattern))
	}
	if t.NoPattern {
		opts = append(opts, dsl.NoPattern())
	}
	return opts
}

func transition(tb *dsl.TransitionBuilder[Context], t dto.Transition, fn dsl.TransitFunc[Context]) {
	tb.To(t.To...).By(label(t.By, t.Alias, "transition"), fn)
	if t.Alias != "" {
		tb.Alias(t.Alias)
	}
	if t.Depth != 0 {
		tb.Depth(t.Depth)
	}
	if t.Manual {
		tb.Manual()
	}
	if len(t.Block) > 0 {
		tb.Block(t.Block...)
	}
	if t.Only {
		tb.Only()
	}
}

func label(by, alias, fallback string) string {
	switch {
	case by != "":
		return by
	case alias != "":
		return alias
	default:
		return fallback
	}
}
