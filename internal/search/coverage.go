package search

import (
	"math"

	"github.com/aretw0/turning/pkg/domain"
)

const (
	vertexStart = "start"
	vertexEnd   = "end"
)

func head(key string) string { return key + "@head" }
func tail(key string) string { return key + "@tail" }

// entry is one way of traversing an aux edge. A nil node means the edge is
// crossed without taking a transition.
type entry struct {
	node  *domain.Node
	count int
}

type auxEdge struct {
	from, to string
	// dest is the combination the entries lead to.
	dest    string
	entries []*entry
	tracked bool
	blocked bool
}

func (e *auxEdge) min() *entry {
	best := e.entries[0]
	for _, en := range e.entries[1:] {
		if en.count < best.count {
			best = en
		}
	}
	return best
}

func (e *auxEdge) find(n *domain.Node) *entry {
	for _, en := range e.entries {
		if en.node == n {
			return en
		}
	}
	return nil
}

type edgeKey struct{ from, to string }

// coverage drives the minimal-count loop over the aux graph. Every combination
// X is split into X@head and X@tail so self loops and "stay" traversals are
// edges of their own.
type coverage struct {
	space   *space
	graph   *weightedGraph
	edges   map[edgeKey]*auxEdge
	ordered []*auxEdge
	rng     Random
}

func newCoverage(s *space, rng Random) *coverage {
	c := &coverage{
		space: s,
		graph: newWeightedGraph(),
		edges: make(map[edgeKey]*auxEdge),
		rng:   rng,
	}
	c.graph.vertex(vertexStart)
	c.graph.vertex(vertexEnd)

	for _, r := range s.roots {
		c.addEntry(vertexStart, head(r.key), r.key, r.node)
	}
	for _, key := range s.order {
		comb := s.combinations[key]
		c.addEntry(head(key), tail(key), key, nil)
		hasLoop := false
		for _, a := range comb.arcs {
			if a.to == key {
				c.addEntry(head(key), tail(key), key, a.node)
				hasLoop = true
			}
		}
		if hasLoop {
			c.addEntry(tail(key), head(key), key, nil)
		}
		for _, a := range comb.arcs {
			if a.to != key {
				c.addEntry(tail(key), head(a.to), a.to, a.node)
			}
		}
		c.addEntry(tail(key), vertexEnd, "", nil)
	}

	for _, e := range c.ordered {
		e.tracked = len(e.entries) > 1 || e.entries[0].node != nil
	}
	return c
}

func (c *coverage) addEntry(from, to, dest string, n *domain.Node) {
	k := edgeKey{from, to}
	e, ok := c.edges[k]
	if !ok {
		e = &auxEdge{from: from, to: to, dest: dest}
		c.edges[k] = e
		c.ordered = append(c.ordered, e)
		c.graph.setEdge(from, to, math.SmallestNonzeroFloat64)
	}
	e.entries = append(e.entries, &entry{node: n})
}

// next returns the tracked edge with the smallest minimal entry count.
func (c *coverage) next() *auxEdge {
	var best *auxEdge
	bestCount := 0
	for _, e := range c.ordered {
		if !e.tracked || e.blocked {
			continue
		}
		if m := e.min().count; best == nil || m < bestCount {
			best, bestCount = e, m
		}
	}
	return best
}

func (c *coverage) block(e *auxEdge) {
	e.blocked = true
	c.graph.removeEdge(e.from, e.to)
}

// bump counts one traversal of en and makes the edge costlier.
func (c *coverage) bump(e *auxEdge, en *entry) {
	en.count++
	c.graph.addWeight(e.from, e.to, math.Pow(2, float64(e.min().count))*c.rng.Float64())
}

// walk follows a vertex sequence, counting every tracked edge and collecting
// the transitions taken.
func (c *coverage) walk(vertices []string) []domain.Step {
	var steps []domain.Step
	for i := 0; i+1 < len(vertices); i++ {
		e := c.edges[edgeKey{vertices[i], vertices[i+1]}]
		if e == nil || !e.tracked {
			continue
		}
		en := e.min()
		if en.node != nil {
			steps = append(steps, domain.Step{Node: en.node, States: c.space.combinations[e.dest].states})
		}
		c.bump(e, en)
	}
	return steps
}

// run generates paths until every tracked edge reached minCount or was blocked.
func (c *coverage) run(minCount int) (paths []domain.Path, blocked []*auxEdge) {
	for {
		e := c.next()
		if e == nil || e.min().count >= minCount {
			return paths, blocked
		}

		toSource := []string{vertexStart}
		if e.from != vertexStart {
			toSource = c.graph.shortestPath(vertexStart, e.from)
		}
		toEnd := c.graph.shortestPath(e.to, vertexEnd)
		if toSource == nil || toEnd == nil {
			c.block(e)
			blocked = append(blocked, e)
			continue
		}

		steps := c.walk(append(toSource, e.to))
		steps = append(steps, c.walk(toEnd)...)
		paths = append(paths, domain.Path{Steps: steps})
	}
}

// precount registers a manual path so the loop does not need to cover its edges again.
func (c *coverage) precount(traversals []traversal) {
	for _, t := range traversals {
		e := c.edges[edgeKey{t.from, t.to}]
		if e == nil || !e.tracked || e.blocked {
			continue
		}
		if en := e.find(t.node); en != nil {
			c.bump(e, en)
		}
	}
}

type traversal struct {
	from, to string
	node     *domain.Node
}
