package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/turning/internal/presentation/graph"
	"github.com/aretw0/turning/pkg/domain"
	"github.com/stretchr/testify/assert"
)

var (
	open  = &domain.Node{Index: 0, Kind: domain.KindInitialize, Alias: "open", States: []string{"page:home"}}
	login = &domain.Node{Index: 1, Kind: domain.KindTurn, Alias: "login", States: []string{"page:dashboard"}}
	fork  = &domain.Node{Index: 2, Kind: domain.KindSpawn, Label: `new "tab"`, States: []string{"tab:new"}, Blocked: []string{"login"}}
)

func fixture() *domain.CombinationGraph {
	return &domain.CombinationGraph{
		Combinations: []domain.Combination{
			{Key: "page:home", States: []string{"page:home"}, Root: true},
			{Key: "page:dashboard", States: []string{"page:dashboard"}},
			{Key: "tab:new|!login", States: []string{"tab:new"}, Blocked: []string{"login"}},
		},
		Edges: []domain.CombinationEdge{
			{From: "page:home", To: "page:dashboard", Node: login},
			{From: "page:dashboard", To: "tab:new|!login", Node: fork},
		},
		Roots: map[*domain.Node]string{open: "page:home"},
	}
}

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name     string
		contains []string
	}{
		{
			name: "Shapes",
			contains: []string{
				`start(("start"))`,
				`c0(["[page:home]"])`,
				`c1["[page:dashboard]"]`,
			},
		},
		{
			name: "Blocked Aliases",
			contains: []string{
				`c2["[tab:new] <br/> blocked: login"]`,
			},
		},
		{
			name: "Edges",
			contains: []string{
				`start -- "open" --> c0`,
				`c0 -- "login" --> c1`,
			},
		},
		{
			name: "Spawn Edges Are Dotted And Escaped",
			contains: []string{
				`c1 -. "Spawn [] to [tab:new] by new 'tab'" .-> c2`,
			},
		},
	}

	got := graph.GenerateMermaid(fixture(), nil)
	assert.True(t, strings.HasPrefix(got, "graph TD\n"))
	assert.NotContains(t, got, "classDef")

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, want := range tt.contains {
				assert.Contains(t, got, want)
			}
		})
	}
}

func TestGenerateMermaid_Overlay(t *testing.T) {
	g := fixture()
	overlay := graph.OverlayFor([]domain.Step{
		{Node: open, States: []string{"page:home"}},
		{Node: login, States: []string{"page:dashboard"}},
		{Node: fork, States: []string{"tab:new"}},
	})

	assert.Equal(t, []string{"page:home", "page:dashboard", "tab:new|!login"}, overlay.Visited)
	assert.Equal(t, "tab:new|!login", overlay.Current)

	got := graph.GenerateMermaid(g, overlay)
	assert.Contains(t, got, "class c0 visited;")
	assert.Contains(t, got, "class c1 visited;")
	assert.Contains(t, got, "class c2 current;")
	assert.NotContains(t, got, "class c2 visited;")
}

func TestGenerateMermaid_OverlaySameStatesDifferentBlocked(t *testing.T) {
	plain := &domain.Node{Index: 3, Kind: domain.KindTurn, Alias: "back", States: []string{"page:home"}}
	g := fixture()
	g.Combinations = append(g.Combinations,
		domain.Combination{Key: "page:home|!login", States: []string{"page:home"}, Blocked: []string{"login"}})
	g.Edges = append(g.Edges, domain.CombinationEdge{From: "tab:new|!login", To: "page:home|!login", Node: plain})

	overlay := graph.OverlayFor([]domain.Step{
		{Node: open, States: []string{"page:home"}},
		{Node: login, States: []string{"page:dashboard"}},
		{Node: fork, States: []string{"tab:new"}},
		{Node: plain, States: []string{"page:home"}},
	})
	assert.Equal(t, "page:home|!login", overlay.Current)

	got := graph.GenerateMermaid(g, overlay)
	assert.Contains(t, got, "class c0 visited;")
	assert.Contains(t, got, "class c3 current;")
	assert.NotContains(t, got, "class c0 current;")
}

func TestGenerateMermaid_Empty(t *testing.T) {
	got := graph.GenerateMermaid(&domain.CombinationGraph{}, nil)
	assert.Equal(t, "graph TD\n", got)
}
