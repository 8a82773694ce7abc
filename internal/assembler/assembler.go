// Package assembler turns flat search paths into the nested forest the runtime replays.
package assembler

import (
	"slices"
	"strconv"
	"strings"

	"github.com/aretw0/turning/pkg/domain"
)

// Assemble splits every path at its spawn nodes and merges identical segments
// into shared test cases. Manual case names are attached where each case ends.
func Assemble(paths []domain.Path, cases []domain.ManualCase) []*domain.PathStart {
	var roots []*domain.PathStart
	for _, p := range paths {
		list := &roots
		segments := split(p.Steps)
		for i, seg := range segments {
			start := find(*list, seg)
			if start == nil {
				start = newStart(seg)
				*list = append(*list, start)
			}
			if i < len(segments)-1 {
				list = &start.Spawns
			}
		}
	}

	for _, mc := range cases {
		if via := locate(roots, mc.Nodes); via != nil {
			if via.CaseName == "" {
				via.CaseName = mc.Name
			} else {
				via.CaseName += ", " + mc.Name
			}
		}
	}
	return roots
}

// split cuts steps before every spawn node.
func split(steps []domain.Step) [][]domain.Step {
	var segments [][]domain.Step
	for i, s := range steps {
		if i == 0 || s.Node.Kind == domain.KindSpawn {
			segments = append(segments, nil)
		}
		segments[len(segments)-1] = append(segments[len(segments)-1], s)
	}
	return segments
}

func find(list []*domain.PathStart, seg []domain.Step) *domain.PathStart {
	for _, start := range list {
		nodes := start.Segment()
		if len(nodes) != len(seg) {
			continue
		}
		same := true
		for i, n := range nodes {
			if n != seg[i].Node {
				same = false
				break
			}
		}
		if same {
			return start
		}
	}
	return nil
}

func newStart(seg []domain.Step) *domain.PathStart {
	start := &domain.PathStart{Via: domain.Via{Node: seg[0].Node, States: slices.Clone(seg[0].States)}}
	link := &start.Turn
	for _, s := range seg[1:] {
		turn := &domain.PathTurn{Via: domain.Via{Node: s.Node, States: slices.Clone(s.States)}}
		*link = turn
		link = &turn.Next
	}
	return start
}

// locate walks the forest along nodes and returns the via where they end.
func locate(list []*domain.PathStart, nodes []*domain.Node) *domain.Via {
	if len(nodes) == 0 {
		return nil
	}
	for _, start := range list {
		if start.Node != nodes[0] {
			continue
		}
		vias := start.Vias()
		i := 0
		for i < len(vias) && i < len(nodes) && vias[i].Node == nodes[i] {
			i++
		}
		switch {
		case i == len(nodes):
			return vias[i-1]
		case i == len(vias):
			if via := locate(start.Spawns, nodes[i:]); via != nil {
				return via
			}
		}
	}
	return nil
}

// Describe renders a forest as an indented outline, one test case per line.
func Describe(forest []*domain.PathStart) string {
	var b strings.Builder
	var walk func(list []*domain.PathStart, prefix string, depth int)
	walk = func(list []*domain.PathStart, prefix string, depth int) {
		for i, start := range list {
			id := CaseID(prefix, i)
			b.WriteString(strings.Repeat("  ", depth))
			b.WriteString("Test Case " + id + "\n")
			for _, via := range start.Vias() {
				b.WriteString(strings.Repeat("  ", depth+1))
				b.WriteString(via.Node.Name())
				if via.CaseName != "" {
					b.WriteString(" (" + via.CaseName + ")")
				}
				b.WriteString("\n")
			}
			walk(start.Spawns, id, depth+1)
		}
	}
	walk(forest, "", 0)
	return b.String()
}

// CaseID numbers the i-th child of parent: "1", "2" at the roots, "1.1" below.
func CaseID(parent string, i int) string {
	id := strconv.Itoa(i + 1)
	if parent == "" {
		return id
	}
	return parent + "." + id
}

// Steps returns the steps leading to the end of test case id, ancestors included.
func Steps(forest []*domain.PathStart, id string) ([]domain.Step, bool) {
	var steps []domain.Step
	list := forest
	prefix := ""
	for {
		var found *domain.PathStart
		for i, start := range list {
			cid := CaseID(prefix, i)
			if cid == id || strings.HasPrefix(id, cid+".") {
				found = start
				prefix = cid
				break
			}
		}
		if found == nil {
			return nil, false
		}
		for _, via := range found.Vias() {
			steps = append(steps, domain.Step{Node: via.Node, States: via.States})
		}
		if prefix == id {
			return steps, true
		}
		list = found.Spawns
	}
}
