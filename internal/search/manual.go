package search

import (
	"github.com/aretw0/turning/pkg/domain"
)

// realize replays a manual case against the model and returns its path plus
// the aux edges it crosses.
func (s *space) realize(mc domain.ManualCase) (domain.Path, []traversal, error) {
	path := domain.Path{Case: mc.Name}
	if len(mc.Nodes) == 0 {
		return path, nil, domain.Declarationf("Case %q has no steps", mc.Name)
	}

	first := mc.Nodes[0]
	if first.Kind != domain.KindInitialize {
		return path, nil, domain.Declarationf("Case %q must start with an initialize node, got %q", mc.Name, first.Name())
	}

	states, blocked := first.States, first.Blocked
	key := domain.VertexKey(states, blocked)
	path.Steps = append(path.Steps, domain.Step{Node: first, States: states})
	traversals := []traversal{{from: vertexStart, to: head(key), node: first}}

	for _, n := range mc.Nodes[1:] {
		if !n.IsTransition() {
			return path, nil, domain.Declarationf("Case %q uses initialize node %q after its first step", mc.Name, n.Name())
		}
		next, ok, err := s.applies(n, states, blocked, true)
		if err != nil {
			return path, nil, err
		}
		if !ok {
			return path, nil, domain.Declarationf("transition %q is not available on states combination %s", n.Name(), describeStates(states))
		}

		blocked = domain.Union(blocked, n.Blocked)
		nextKey := domain.VertexKey(next, blocked)
		if nextKey == key {
			traversals = append(traversals, traversal{from: head(key), to: tail(key), node: n})
		} else {
			traversals = append(traversals, traversal{from: tail(key), to: head(nextKey), node: n})
		}
		path.Steps = append(path.Steps, domain.Step{Node: n, States: next})
		states, key = next, nextKey
	}
	return path, traversals, nil
}
