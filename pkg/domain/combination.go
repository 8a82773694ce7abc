package domain

import (
	"slices"
	"strings"
)

// CombinationKey is the canonical identity of a set of states: sorted and comma-joined.
func CombinationKey(states []string) string {
	sorted := slices.Clone(states)
	slices.Sort(sorted)
	return strings.Join(sorted, ",")
}

// VertexKey identifies a combination vertex: its states plus the aliases blocked on the way.
func VertexKey(states, blocked []string) string {
	key := CombinationKey(states)
	if len(blocked) > 0 {
		key += "|!" + CombinationKey(blocked)
	}
	return key
}

// Union appends the items of add missing from base, preserving first-seen order.
func Union(base, add []string) []string {
	out := make([]string, 0, len(base)+len(add))
	seen := make(map[string]bool, len(base)+len(add))
	for _, list := range [][]string{base, add} {
		for _, s := range list {
			if !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
	}
	return out
}

// Combination is a vertex of the combination graph.
type Combination struct {
	Key     string   `json:"key"`
	States  []string `json:"states"`
	Blocked []string `json:"blocked,omitempty"`
	Root    bool     `json:"root,omitempty"`
}

// CombinationEdge is a transition between two combination vertices.
type CombinationEdge struct {
	From string `json:"from"`
	To   string `json:"to"`
	Node *Node  `json:"-"`
}

// CombinationGraph is the explored state space.
type CombinationGraph struct {
	Combinations []Combination
	Edges        []CombinationEdge
	// Roots maps an initialize node to the vertex it opens.
	Roots map[*Node]string
}
