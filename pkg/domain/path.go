package domain

import "slices"

// Step is one node of a flat path and the states right after it.
type Step struct {
	Node   *Node
	States []string
}

// Path is a flat sequence of steps starting with an initialize node.
type Path struct {
	Steps []Step
	// Case is the manual case name when the path comes from one.
	Case string
}

// Indexes returns the node indexes of the path.
func (p Path) Indexes() []int {
	idx := make([]int, len(p.Steps))
	for i, s := range p.Steps {
		idx[i] = s.Node.Index
	}
	return idx
}

// ComparePaths orders paths lexicographically by node index; a proper prefix sorts first.
func ComparePaths(a, b Path) int {
	return slices.Compare(a.Indexes(), b.Indexes())
}

// HasPrefix reports whether prefix is a prefix of p (or equal to it).
func (p Path) HasPrefix(prefix Path) bool {
	if len(prefix.Steps) > len(p.Steps) {
		return false
	}
	for i, s := range prefix.Steps {
		if p.Steps[i].Node != s.Node {
			return false
		}
	}
	return true
}

// Via is a node of the path forest together with the states it leads to.
type Via struct {
	Node   *Node
	States []string
	// CaseName is set on the via where a manual case ends.
	CaseName string
}

// PathTurn links a turn into the chain owned by a PathStart.
type PathTurn struct {
	Via
	Next *PathTurn
}

// PathStart opens a test case: an initialize node at the roots, a spawn below.
type PathStart struct {
	Via
	Turn   *PathTurn
	Spawns []*PathStart
}

// Turns flattens the turn chain.
func (s *PathStart) Turns() []*PathTurn {
	var turns []*PathTurn
	for t := s.Turn; t != nil; t = t.Next {
		turns = append(turns, t)
	}
	return turns
}

// Vias returns the start via followed by every turn via.
func (s *PathStart) Vias() []*Via {
	vias := []*Via{&s.Via}
	for t := s.Turn; t != nil; t = t.Next {
		vias = append(vias, &t.Via)
	}
	return vias
}

// Last returns the final via of the segment.
func (s *PathStart) Last() *Via {
	vias := s.Vias()
	return vias[len(vias)-1]
}

// Segment returns the nodes of the segment in order.
func (s *PathStart) Segment() []*Node {
	vias := s.Vias()
	nodes := make([]*Node, len(vias))
	for i, v := range vias {
		nodes[i] = v.Node
	}
	return nodes
}

// CountCases counts the test cases of a forest, nested ones included.
func CountCases(forest []*PathStart) int {
	n := 0
	for _, s := range forest {
		n += 1 + CountCases(s.Spawns)
	}
	return n
}
