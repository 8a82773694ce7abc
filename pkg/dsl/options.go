package dsl

import "github.com/aretw0/turning/pkg/domain"

// Option configures a transition at declaration.
type Option func(*domain.Node)

// Match adds an option set of auxiliary patterns. All positive patterns must
// match a current state and no negative one (see Not) may. A transition with
// several Match options applies when any of them passes.
func Match(patterns ...string) Option {
	return func(n *domain.Node) {
		n.Matches = append(n.Matches, splitPatterns(patterns))
	}
}

// Not marks a pattern as negative inside Match or Builder.Pattern.
func Not(pattern string) string {
	return "!" + pattern
}

// UsePattern selects a named preset instead of the default one.
func UsePattern(name string) Option {
	return func(n *domain.Node) {
		n.PatternName = name
		n.PatternDisabled = false
	}
}

// NoPattern opts the transition out of presets.
func NoPattern() Option {
	return func(n *domain.Node) {
		n.PatternDisabled = true
	}
}
