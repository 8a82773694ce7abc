// Package search explores the combination graph of a model and generates a
// covering set of paths.
package search

import (
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/aretw0/turning/internal/logging"
	"github.com/aretw0/turning/pkg/domain"
	"github.com/aretw0/turning/pkg/pattern"
)

// DefaultMinTransitionSearchCount is the coverage target per aux edge.
const DefaultMinTransitionSearchCount = 10

// Options configures a search.
type Options struct {
	// MinTransitionSearchCount is how many times every transition entry must be
	// traversed by generated paths before the loop stops.
	MinTransitionSearchCount int
	// Depth bounds exploration from each root; 0 means unlimited.
	Depth   int
	Random  Random
	Matcher *pattern.Matcher
	Logger  *slog.Logger
}

// BlockedEdge is an aux edge the loop gave up on.
type BlockedEdge struct {
	From string
	To   string
}

// Result is the output of Search.
type Result struct {
	Paths         []domain.Path
	Graph         *domain.CombinationGraph
	ReachedStates map[string]bool
	ReachedNodes  map[*domain.Node]bool
	Blocked       []BlockedEdge
}

// Search explores m and generates paths covering every transition at least
// opts.MinTransitionSearchCount times, manual cases included.
func Search(m *domain.Model, cases []domain.ManualCase, opts Options) (*Result, error) {
	if opts.MinTransitionSearchCount <= 0 {
		opts.MinTransitionSearchCount = DefaultMinTransitionSearchCount
	}
	if opts.Random == nil {
		opts.Random = NewRandom(DefaultSeed(time.Now()))
	}
	if opts.Matcher == nil {
		opts.Matcher = pattern.Default
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}

	s := newSpace(m, opts.Matcher)
	if err := s.explore(opts.Depth); err != nil {
		return nil, fmt.Errorf("failed to explore combinations: %w", err)
	}

	manual := make([]domain.Path, 0, len(cases))
	var traversals [][]traversal
	for _, mc := range cases {
		p, ts, err := s.realize(mc)
		if err != nil {
			return nil, err
		}
		manual = append(manual, p)
		traversals = append(traversals, ts)
	}

	cov := newCoverage(s, opts.Random)
	for _, ts := range traversals {
		cov.precount(ts)
	}
	generated, blocked := cov.run(opts.MinTransitionSearchCount)

	paths := SortAndDedupe(append(manual, generated...))

	res := &Result{
		Graph:         s.graph(),
		ReachedStates: make(map[string]bool),
		ReachedNodes:  make(map[*domain.Node]bool),
	}
	for _, p := range paths {
		for _, step := range p.Steps {
			res.ReachedNodes[step.Node] = true
			for _, st := range step.States {
				res.ReachedStates[st] = true
			}
		}
	}
	for _, e := range blocked {
		res.Blocked = append(res.Blocked, BlockedEdge{From: e.from, To: e.to})
		opts.Logger.Debug("aux edge blocked", "from", e.from, "to", e.to)
	}
	res.Paths = Focus(m, paths)

	opts.Logger.Debug("search finished",
		"combinations", len(s.order),
		"generated", len(generated),
		"manual", len(manual),
		"paths", len(res.Paths))
	return res, nil
}

// SortAndDedupe orders paths by node index and drops every path that is a
// prefix of (or equal to) the next kept one.
func SortAndDedupe(paths []domain.Path) []domain.Path {
	sorted := slices.Clone(paths)
	slices.SortStableFunc(sorted, domain.ComparePaths)

	kept := make([]domain.Path, 0, len(sorted))
	for i := len(sorted) - 1; i >= 0; i-- {
		p := sorted[i]
		if len(kept) > 0 && kept[len(kept)-1].HasPrefix(p) {
			continue
		}
		kept = append(kept, p)
	}
	slices.Reverse(kept)
	return kept
}

// Focus keeps the paths touching an Only node or an Only state, when any is declared.
func Focus(m *domain.Model, paths []domain.Path) []domain.Path {
	onlyStates := make(map[string]bool)
	for _, d := range m.Defines {
		if d.Only {
			onlyStates[d.State] = true
		}
	}
	focused := len(onlyStates) > 0
	for _, n := range m.Nodes() {
		focused = focused || n.Only
	}
	if !focused {
		return paths
	}

	var kept []domain.Path
	for _, p := range paths {
		if touchesOnly(p, onlyStates) {
			kept = append(kept, p)
		}
	}
	return kept
}

func touchesOnly(p domain.Path, onlyStates map[string]bool) bool {
	for _, step := range p.Steps {
		if step.Node.Only {
			return true
		}
		for _, s := range step.States {
			if onlyStates[s] {
				return true
			}
		}
	}
	return false
}
