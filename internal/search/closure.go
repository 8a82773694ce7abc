package search

import (
	"slices"
	"strings"

	"github.com/aretw0/turning/pkg/domain"
	"github.com/aretw0/turning/pkg/pattern"
)

const unlimited = -1

// combination is a vertex of the explored state space.
type combination struct {
	key      string
	states   []string
	blocked  []string
	budget   int
	expanded bool
	arcs     []arc
}

type arc struct {
	node *domain.Node
	to   string
}

type root struct {
	node *domain.Node
	key  string
}

// space is the transition closure of a model.
type space struct {
	model   *domain.Model
	matcher *pattern.Matcher

	combinations map[string]*combination
	order        []string
	roots        []root
	queue        []string
}

func newSpace(m *domain.Model, matcher *pattern.Matcher) *space {
	return &space{
		model:        m,
		matcher:      matcher,
		combinations: make(map[string]*combination),
	}
}

// explore runs a breadth-first closure from every automatic initialize node.
// depth bounds how many transitions deep exploration goes, 0 meaning unlimited.
func (s *space) explore(depth int) error {
	for _, n := range s.model.Initializes {
		if n.Manual {
			continue
		}
		budget := unlimited
		if depth > 0 {
			budget = depth
		}
		if n.Depth > 0 {
			budget = n.Depth
		}
		key := s.visit(n.States, n.Blocked, budget)
		s.roots = append(s.roots, root{node: n, key: key})
	}

	for len(s.queue) > 0 {
		key := s.queue[0]
		s.queue = s.queue[1:]
		if err := s.expand(s.combinations[key]); err != nil {
			return err
		}
	}
	return nil
}

func (s *space) expand(c *combination) error {
	if c.budget == 0 {
		return nil
	}
	if c.expanded {
		for _, a := range c.arcs {
			s.relax(s.combinations[a.to], nextBudget(c.budget, a.node))
		}
		return nil
	}

	c.expanded = true
	for _, n := range s.model.Transitions {
		next, ok, err := s.applies(n, c.states, c.blocked, false)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		to := s.visit(next, domain.Union(c.blocked, n.Blocked), nextBudget(c.budget, n))
		c.arcs = append(c.arcs, arc{node: n, to: to})
	}
	return nil
}

// visit registers a combination or relaxes its budget, queueing it for expansion.
func (s *space) visit(states, blocked []string, budget int) string {
	key := domain.VertexKey(states, blocked)
	if c, ok := s.combinations[key]; ok {
		s.relax(c, budget)
		return key
	}
	s.combinations[key] = &combination{
		key:     key,
		states:  slices.Clone(states),
		blocked: slices.Clone(blocked),
		budget:  budget,
	}
	s.order = append(s.order, key)
	s.queue = append(s.queue, key)
	return key
}

func (s *space) relax(c *combination, budget int) {
	if c.budget == unlimited || (budget != unlimited && budget <= c.budget) {
		return
	}
	c.budget = budget
	s.queue = append(s.queue, c.key)
}

func nextBudget(current int, n *domain.Node) int {
	if n.Depth > 0 {
		return n.Depth
	}
	if current == unlimited {
		return unlimited
	}
	return current - 1
}

// applies reports whether transition n can be taken on states and returns the
// resulting states.
func (s *space) applies(n *domain.Node, states, blocked []string, allowManual bool) ([]string, bool, error) {
	if n.Manual && !allowManual {
		return nil, false, nil
	}
	if n.Alias != "" && slices.Contains(blocked, n.Alias) {
		return nil, false, nil
	}
	for _, p := range n.ObsoletePatterns {
		ok, err := s.matcher.MatchAny(states, p)
		if err != nil || !ok {
			return nil, false, err
		}
	}
	if !n.PatternDisabled {
		if preset, ok := s.model.Patterns[n.PatternName]; ok && !preset.Empty() {
			pass, err := s.passes(states, preset)
			if err != nil || !pass {
				return nil, false, err
			}
		}
	}
	if len(n.Matches) > 0 {
		matched := false
		for _, opts := range n.Matches {
			pass, err := s.passes(states, opts)
			if err != nil {
				return nil, false, err
			}
			if pass {
				matched = true
				break
			}
		}
		if !matched {
			return nil, false, nil
		}
	}

	kept, err := s.matcher.Exclude(states, n.ObsoletePatterns)
	if err != nil {
		return nil, false, err
	}
	return domain.Union(kept, n.States), true, nil
}

func (s *space) passes(states []string, opts domain.MatchOptions) (bool, error) {
	for _, p := range opts.Patterns {
		ok, err := s.matcher.MatchAny(states, p)
		if err != nil || !ok {
			return false, err
		}
	}
	for _, p := range opts.NegativePatterns {
		ok, err := s.matcher.MatchAny(states, p)
		if err != nil || ok {
			return false, err
		}
	}
	return true, nil
}

// graph exports the closure for rendering.
func (s *space) graph() *domain.CombinationGraph {
	g := &domain.CombinationGraph{Roots: make(map[*domain.Node]string, len(s.roots))}
	isRoot := make(map[string]bool)
	for _, r := range s.roots {
		g.Roots[r.node] = r.key
		isRoot[r.key] = true
	}
	for _, key := range s.order {
		c := s.combinations[key]
		g.Combinations = append(g.Combinations, domain.Combination{
			Key:     key,
			States:  slices.Clone(c.states),
			Blocked: slices.Clone(c.blocked),
			Root:    isRoot[key],
		})
		for _, a := range c.arcs {
			g.Edges = append(g.Edges, domain.CombinationEdge{From: key, To: a.to, Node: a.node})
		}
	}
	return g
}

func describeStates(states []string) string {
	return "[" + strings.Join(states, ",") + "]"
}
