package domain

import (
	"fmt"
	"strings"
)

// NodeKind distinguishes the three kinds of executable nodes.
type NodeKind int

const (
	// KindInitialize creates a fresh context in a known combination of states.
	KindInitialize NodeKind = iota
	// KindTurn mutates the current context in place.
	KindTurn
	// KindSpawn derives a child context and opens a nested test case.
	KindSpawn
)

func (k NodeKind) String() string {
	switch k {
	case KindInitialize:
		return "initialize"
	case KindTurn:
		return "turn"
	case KindSpawn:
		return "spawn"
	default:
		return fmt.Sprintf("NodeKind(%d)", int(k))
	}
}

// MatchOptions is one option set of auxiliary patterns.
// It passes when every positive pattern matches some current state
// and no negative pattern does.
type MatchOptions struct {
	Patterns         []string `json:"patterns,omitempty" yaml:"patterns,omitempty"`
	NegativePatterns []string `json:"negative_patterns,omitempty" yaml:"negative_patterns,omitempty"`
}

// Empty reports whether the option set has no pattern at all.
func (o MatchOptions) Empty() bool {
	return len(o.Patterns) == 0 && len(o.NegativePatterns) == 0
}

// Define declares a state and its markers.
type Define struct {
	State     string
	Only      bool
	Necessary bool
}

// Node is a frozen initialize, turn or spawn declaration.
type Node struct {
	// Index is the declaration order identity: initialize nodes first, then transitions.
	Index int
	Kind  NodeKind
	Alias string
	// Label is the human description given with the handler.
	Label string

	// States are the target states of an initialize node, or the states a transition adds.
	States []string
	// ObsoletePatterns must each match a current state; matching states are removed.
	ObsoletePatterns []string
	// Matches gates the transition; it applies when any option set passes.
	Matches []MatchOptions
	// PatternName selects a named preset; "" is the default preset.
	PatternName     string
	PatternDisabled bool

	// Depth overrides the remaining search depth after this node; 0 inherits.
	Depth   int
	Manual  bool
	Blocked []string
	Only    bool
}

// IsTransition reports whether the node is a turn or a spawn.
func (n *Node) IsTransition() bool {
	return n.Kind == KindTurn || n.Kind == KindSpawn
}

// Description renders the node the way reports print it.
func (n *Node) Description() string {
	switch n.Kind {
	case KindInitialize:
		return fmt.Sprintf("Initialize [%s] by %s", strings.Join(n.States, ","), n.Label)
	case KindSpawn:
		return fmt.Sprintf("Spawn [%s] to [%s] by %s",
			strings.Join(n.ObsoletePatterns, ","), strings.Join(n.States, ","), n.Label)
	default:
		return fmt.Sprintf("Turn [%s] to [%s] by %s",
			strings.Join(n.ObsoletePatterns, ","), strings.Join(n.States, ","), n.Label)
	}
}

// Name returns the alias when set, the description otherwise.
func (n *Node) Name() string {
	if n.Alias != "" {
		return n.Alias
	}
	return n.Description()
}

// RelatedPatterns lists every pattern the node refers to.
func (n *Node) RelatedPatterns() []string {
	patterns := append([]string(nil), n.ObsoletePatterns...)
	for _, m := range n.Matches {
		patterns = append(patterns, m.Patterns...)
		patterns = append(patterns, m.NegativePatterns...)
	}
	return patterns
}

// CaseSpec is a manual case as declared: a name and a sequence of aliases.
type CaseSpec struct {
	Name    string
	Aliases []string
}

// ManualCase is a CaseSpec resolved to nodes.
type ManualCase struct {
	Name  string
	Nodes []*Node
}

// Model is the frozen declaration set of a suite.
type Model struct {
	Defines     []Define
	Initializes []*Node
	Transitions []*Node
	// Patterns holds named match presets; the "" key is the default preset.
	Patterns map[string]MatchOptions
	Cases    []CaseSpec
}

// Nodes returns initialize nodes followed by transitions, in index order.
func (m *Model) Nodes() []*Node {
	nodes := make([]*Node, 0, len(m.Initializes)+len(m.Transitions))
	nodes = append(nodes, m.Initializes...)
	return append(nodes, m.Transitions...)
}

// DefinedStates returns every declared state in declaration order.
func (m *Model) DefinedStates() []string {
	states := make([]string, len(m.Defines))
	for i, d := range m.Defines {
		states[i] = d.State
	}
	return states
}

// Define looks a state declaration up.
func (m *Model) Define(state string) (Define, bool) {
	for _, d := range m.Defines {
		if d.State == state {
			return d, true
		}
	}
	return Define{}, false
}

// NodeByAlias finds a node by alias.
func (m *Model) NodeByAlias(alias string) (*Node, bool) {
	for _, n := range m.Nodes() {
		if n.Alias != "" && n.Alias == alias {
			return n, true
		}
	}
	return nil, false
}
