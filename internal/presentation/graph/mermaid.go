package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/turning/pkg/domain"
)

// GraphOverlay highlights part of the graph, typically the path of one test case.
type GraphOverlay struct {
	// Visited holds combination keys.
	Visited []string
	Current string
}

// OverlayFor highlights the combinations a path goes through, ending on its last one.
// Blocked aliases accumulate along the path the same way the search does.
func OverlayFor(steps []domain.Step) *GraphOverlay {
	overlay := &GraphOverlay{}
	var blocked []string
	for _, s := range steps {
		blocked = domain.Union(blocked, s.Node.Blocked)
		key := domain.VertexKey(s.States, blocked)
		overlay.Visited = append(overlay.Visited, key)
		overlay.Current = key
	}
	return overlay
}

// GenerateMermaid produces a Mermaid flowchart of the combination graph.
// Shapes:
// - Entry point: ((Circle))
// - Root combination: ([Stadium])
// - Other combinations: [Rectangle]
// Turns are solid arrows and spawns dotted ones, labeled with the transition name.
func GenerateMermaid(g *domain.CombinationGraph, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	ids := make(map[string]string, len(g.Combinations))
	for i, c := range g.Combinations {
		id := fmt.Sprintf("c%d", i)
		ids[c.Key] = id

		opener, closer := "[", "]"
		if c.Root {
			opener, closer = "([", "])"
		}
		label := "[" + strings.Join(c.States, ",") + "]"
		if len(c.Blocked) > 0 {
			label += " <br/> blocked: " + strings.Join(c.Blocked, ",")
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", id, opener, escape(label), closer)
	}

	// Initialize nodes enter the graph from a single entry point.
	roots := make([]*domain.Node, 0, len(g.Roots))
	for n := range g.Roots {
		roots = append(roots, n)
	}
	sort.Slice(roots, func(i, j int) bool { return roots[i].Index < roots[j].Index })
	if len(roots) > 0 {
		sb.WriteString("    start((\"start\"))\n")
	}
	for _, n := range roots {
		fmt.Fprintf(&sb, "    start -- \"%s\" --> %s\n", escape(n.Name()), ids[g.Roots[n]])
	}

	for _, e := range g.Edges {
		label := escape(e.Node.Name())
		arrow := fmt.Sprintf("-- \"%s\" -->", label)
		if e.Node.Kind == domain.KindSpawn {
			arrow = fmt.Sprintf("-. \"%s\" .->", label)
		}
		fmt.Fprintf(&sb, "    %s %s %s\n", ids[e.From], arrow, ids[e.To])
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Black text keeps contrast on both themes.
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		styled := make(map[string]bool)
		for _, key := range overlay.Visited {
			id, ok := ids[key]
			if !ok || styled[id] || key == overlay.Current {
				continue
			}
			styled[id] = true
			fmt.Fprintf(&sb, "    class %s visited;\n", id)
		}
		if id, ok := ids[overlay.Current]; ok {
			fmt.Fprintf(&sb, "    class %s current;\n", id)
		}
	}

	return sb.String()
}

func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}
