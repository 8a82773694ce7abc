package search

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/turning/internal/validator"
	"github.com/aretw0/turning/pkg/domain"
	"github.com/aretw0/turning/pkg/dsl"
	"github.com/aretw0/turning/pkg/pattern"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noopInit(context.Context) (int, error) {
	return 0, nil
}

func noopTransit(_ context.Context, c int) (int, error) {
	return c, nil
}

func build(t *testing.T, b *dsl.Builder[int]) (*domain.Model, []domain.ManualCase) {
	t.Helper()
	def, err := b.Build()
	require.NoError(t, err)
	require.NoError(t, validator.ValidateModel(def.Model, pattern.NewMatcher()))
	cases, err := validator.ResolveCases(def.Model)
	require.NoError(t, err)
	return def.Model, cases
}

func run(t *testing.T, m *domain.Model, cases []domain.ManualCase, opts Options) *Result {
	t.Helper()
	if opts.Random == nil {
		opts.Random = NewRandom("test seed")
	}
	res, err := Search(m, cases, opts)
	require.NoError(t, err)
	return res
}

func labels(p domain.Path) []string {
	out := make([]string, len(p.Steps))
	for i, s := range p.Steps {
		out[i] = s.Node.Label
	}
	return out
}

func usedNodes(paths []domain.Path) map[*domain.Node]int {
	used := make(map[*domain.Node]int)
	for _, p := range paths {
		for _, s := range p.Steps {
			used[s.Node]++
		}
	}
	return used
}

func fiveTransitions() *dsl.Builder[int] {
	b := dsl.New[int]()
	for _, s := range []string{"a", "b", "c", "d"} {
		b.Define(s)
	}
	b.Initialize("a").By("init a", noopInit)
	b.Initialize("b", "c").By("init b c", noopInit)
	b.Turn([]string{"a"}).To("a").By("a to a", noopTransit)
	b.Turn([]string{"a"}).To("b").By("a to b", noopTransit)
	b.Turn([]string{"a"}).To("c").By("a to c", noopTransit)
	b.Turn([]string{"a"}).To("b", "c").By("a to b c", noopTransit)
	b.Turn([]string{"b", "c"}).To("d").By("b c to d", noopTransit)
	return b
}

func TestSearch_EveryTransitionExercised(t *testing.T) {
	m, cases := build(t, fiveTransitions())
	res := run(t, m, cases, Options{MinTransitionSearchCount: 1})

	used := usedNodes(res.Paths)
	for _, n := range m.Transitions {
		assert.Greater(t, used[n], 0, "transition %q never exercised", n.Label)
		assert.True(t, res.ReachedNodes[n])
	}
	assert.True(t, res.ReachedStates["d"])

	for _, p := range res.Paths {
		require.NotEmpty(t, p.Steps)
		assert.Equal(t, domain.KindInitialize, p.Steps[0].Node.Kind, "paths start with an initialize node")
	}
}

func TestSearch_EveryGraphEdgeCovered(t *testing.T) {
	m, cases := build(t, fiveTransitions())
	res := run(t, m, cases, Options{MinTransitionSearchCount: 3})

	used := usedNodes(res.Paths)
	require.NotEmpty(t, res.Graph.Edges)
	for _, e := range res.Graph.Edges {
		assert.Greater(t, used[e.Node], 0, "edge %s -> %s by %q not covered", e.From, e.To, e.Node.Label)
	}
}

func promise() *dsl.Builder[int] {
	b := dsl.New[int]()
	b.Define("pending")
	b.Define("fulfilled")
	b.Define("rejected")
	b.Define("settled")
	b.Initialize("pending").By("creating", noopInit)
	b.Turn([]string{"pending"}).To("fulfilled").Alias("fulfill").By("resolving", noopTransit)
	b.Turn([]string{"pending"}).To("rejected").Alias("reject").By("rejecting", noopTransit)
	b.Turn([]string{"{fulfilled,rejected}"}).To("settled").By("settling", noopTransit)
	return b
}

func TestSearch_DepthOne(t *testing.T) {
	m, cases := build(t, promise())
	res := run(t, m, cases, Options{Depth: 1})

	require.Len(t, res.Paths, 2)
	assert.Equal(t, []string{"creating", "resolving"}, labels(res.Paths[0]))
	assert.Equal(t, []string{"pending"}, res.Paths[0].Steps[0].States)
	assert.Equal(t, []string{"fulfilled"}, res.Paths[0].Steps[1].States)
	assert.Equal(t, []string{"creating", "rejecting"}, labels(res.Paths[1]))
	assert.Equal(t, []string{"rejected"}, res.Paths[1].Steps[1].States)
	assert.False(t, res.ReachedStates["settled"])
}

func TestSearch_TransitionDepthResetsBudget(t *testing.T) {
	b := promise()
	def, err := b.Build()
	require.NoError(t, err)
	def.Model.Transitions[0].Depth = 1

	res := run(t, def.Model, nil, Options{Depth: 1})
	assert.True(t, res.ReachedStates["settled"], "fulfill resets the budget so settling is explored")
	assert.True(t, res.ReachedNodes[def.Model.Transitions[2]])
}

func TestSearch_Deterministic(t *testing.T) {
	m, cases := build(t, fiveTransitions())

	first := run(t, m, cases, Options{Random: NewRandom("Mon Jan 02 2006")})
	second := run(t, m, cases, Options{Random: NewRandom("Mon Jan 02 2006")})

	require.Equal(t, len(first.Paths), len(second.Paths))
	for i := range first.Paths {
		assert.Equal(t, first.Paths[i].Indexes(), second.Paths[i].Indexes())
	}
}

func loginModel() *dsl.Builder[int] {
	b := dsl.New[int]()
	b.Define("page:home")
	b.Define("page:login")
	b.Define("session:on")
	b.Initialize("page:home").Alias("open-home").By("opening home", noopInit)
	b.Turn([]string{"page:home"}).To("page:login").Alias("goto-login").By("opening login", noopTransit)
	b.Turn([]string{"page:login"}).To("page:home", "session:on").Alias("click-login").By("logging in", noopTransit)
	return b
}

func TestSearch_ManualCaseUnavailable(t *testing.T) {
	b := loginModel()
	b.Case("broken", "open-home", "click-login")
	m, cases := build(t, b)

	_, err := Search(m, cases, Options{Random: NewRandom("x")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDeclaration))
	assert.Contains(t, err.Error(), "is not available on states combination")
	assert.Contains(t, err.Error(), `"click-login"`)
}

func TestSearch_ManualCaseMustStartWithInitialize(t *testing.T) {
	b := loginModel()
	b.Case("headless", "goto-login")
	m, cases := build(t, b)

	_, err := Search(m, cases, Options{Random: NewRandom("x")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must start with an initialize node")
}

func TestSearch_ManualCaseFidelity(t *testing.T) {
	b := loginModel()
	b.Turn([]string{"session:on"}).To("page:login").Alias("secret").Manual().By("sneaking back", noopTransit)
	b.Case("full login", "open-home", "goto-login", "click-login", "secret")
	m, cases := build(t, b)

	res := run(t, m, cases, Options{})

	want := domain.Path{}
	for _, n := range cases[0].Nodes {
		want.Steps = append(want.Steps, domain.Step{Node: n})
	}
	found := false
	for _, p := range res.Paths {
		if p.HasPrefix(want) {
			found = true
		}
	}
	assert.True(t, found, "manual case must appear as a path or a path prefix")

	manualTransition := m.Transitions[2]
	used := usedNodes(res.Paths)
	assert.Equal(t, 1, used[manualTransition], "manual transitions are never generated automatically")
}

func TestSearch_BlockedAliases(t *testing.T) {
	b := loginModel()
	def, err := b.Build()
	require.NoError(t, err)
	def.Model.Initializes[0].Blocked = []string{"click-login"}

	res := run(t, def.Model, nil, Options{})
	assert.False(t, res.ReachedNodes[def.Model.Transitions[1]])
	assert.False(t, res.ReachedStates["session:on"])
	for _, c := range res.Graph.Combinations {
		assert.Equal(t, []string{"click-login"}, c.Blocked)
	}
}

func TestSearch_MatchOptionsAndPresets(t *testing.T) {
	b := dsl.New[int]()
	b.Define("page:home")
	b.Define("page:admin")
	b.Define("role:admin")
	b.Define("role:guest")
	b.Initialize("page:home", "role:guest").By("as guest", noopInit)
	b.Initialize("page:home", "role:admin").By("as admin", noopInit)
	b.Turn([]string{"page:home"}, dsl.Match("role:admin")).To("page:admin").By("opening admin", noopTransit)
	b.Turn([]string{"page:admin"}, dsl.NoPattern()).To("page:home").By("leaving admin", noopTransit)
	b.Pattern("", dsl.Not("role:guest"))
	m, cases := build(t, b)

	res := run(t, m, cases, Options{})
	for _, p := range res.Paths {
		if p.Steps[0].Node.Label == "as guest" {
			assert.Len(t, p.Steps, 1, "guests cannot leave home")
		}
	}
	assert.True(t, res.ReachedNodes[m.Transitions[0]])
	assert.True(t, res.ReachedNodes[m.Transitions[1]])
}

func TestSearch_Focus(t *testing.T) {
	b := promise()
	b.Define("rejected").Only()
	m, cases := build(t, b)

	res := run(t, m, cases, Options{})
	require.NotEmpty(t, res.Paths)
	for _, p := range res.Paths {
		assert.Contains(t, labels(p), "rejecting")
	}
	assert.True(t, res.ReachedStates["fulfilled"], "reached sets ignore the focus filter")
}

func TestSearch_PathsAreSortedAndPrefixFree(t *testing.T) {
	m, cases := build(t, fiveTransitions())
	res := run(t, m, cases, Options{})

	for i := 1; i < len(res.Paths); i++ {
		assert.Equal(t, -1, domain.ComparePaths(res.Paths[i-1], res.Paths[i]))
		assert.False(t, res.Paths[i].HasPrefix(res.Paths[i-1]))
	}
}
