package validator

import (
	"fmt"
	"strings"

	"github.com/aretw0/turning/pkg/domain"
	"github.com/aretw0/turning/pkg/pattern"
)

// ValidateModel checks every declaration against the defined states.
// All problems are reported at once, joined.
func ValidateModel(m *domain.Model, matcher *pattern.Matcher) error {
	var errs []error
	defined := m.DefinedStates()
	isDefined := make(map[string]bool, len(defined))
	for _, s := range defined {
		isDefined[s] = true
	}

	checkStates := func(states []string) {
		for _, s := range states {
			if !isDefined[s] {
				errs = append(errs, domain.Declarationf("State %q is not defined", s))
			}
		}
	}
	checked := make(map[string]bool)
	checkPattern := func(p string) {
		if checked[p] {
			return
		}
		checked[p] = true
		ok, err := matcher.MatchAny(defined, p)
		switch {
		case err != nil:
			errs = append(errs, domain.Declarationf("%v", err))
		case !ok:
			errs = append(errs, domain.Declarationf("State pattern %q does not match any of the states defined", p))
		}
	}

	for _, n := range m.Initializes {
		checkStates(n.States)
	}
	for _, n := range m.Transitions {
		checkStates(n.States)
		for _, p := range n.RelatedPatterns() {
			checkPattern(p)
		}
		if !n.PatternDisabled && n.PatternName != "" {
			if _, ok := m.Patterns[n.PatternName]; !ok {
				errs = append(errs, domain.Declarationf("Pattern %q is not defined", n.PatternName))
			}
		}
	}
	for _, opts := range m.Patterns {
		for _, p := range opts.Patterns {
			checkPattern(p)
		}
		for _, p := range opts.NegativePatterns {
			checkPattern(p)
		}
	}

	for _, n := range m.Nodes() {
		for _, alias := range n.Blocked {
			if _, ok := m.NodeByAlias(alias); !ok {
				errs = append(errs, domain.Declarationf("Unknown node alias %q in block list of %s", alias, n.Name()))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("found %d errors:\n- %w", len(errs), joinLines(errs))
	}
	return nil
}

// ResolveCases maps the aliases of every manual case to nodes.
func ResolveCases(m *domain.Model) ([]domain.ManualCase, error) {
	var errs []error
	cases := make([]domain.ManualCase, 0, len(m.Cases))
	for _, spec := range m.Cases {
		mc := domain.ManualCase{Name: spec.Name}
		if len(spec.Aliases) == 0 {
			errs = append(errs, domain.Declarationf("Case %q has no steps", spec.Name))
			continue
		}
		for _, alias := range spec.Aliases {
			n, ok := m.NodeByAlias(alias)
			if !ok {
				errs = append(errs, domain.Declarationf("Unknown node alias %q in case", alias))
				continue
			}
			mc.Nodes = append(mc.Nodes, n)
		}
		cases = append(cases, mc)
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("found %d errors:\n- %w", len(errs), joinLines(errs))
	}
	return cases, nil
}

// CheckReachability compares the declarations with what the search reached.
// With allowUnreachable the full report is returned as a warning and only
// necessary states still produce an error.
func CheckReachability(m *domain.Model, reachedStates map[string]bool, reachedNodes map[*domain.Node]bool, allowUnreachable bool) (warning *domain.UnreachableError, err error) {
	report := &domain.UnreachableError{}
	necessary := &domain.UnreachableError{}
	for _, d := range m.Defines {
		if reachedStates[d.State] {
			continue
		}
		report.States = append(report.States, d.State)
		if d.Necessary {
			necessary.States = append(necessary.States, d.State)
		}
	}
	for _, n := range m.Transitions {
		if !reachedNodes[n] {
			report.Transitions = append(report.Transitions, n.Description())
		}
	}

	if len(report.States) == 0 && len(report.Transitions) == 0 {
		return nil, nil
	}
	if !allowUnreachable {
		return nil, report
	}
	if len(necessary.States) > 0 {
		return report, necessary
	}
	return report, nil
}

// lineErrors renders joined errors as a dashed list.
type lineErrors []error

func joinLines(errs []error) error { return lineErrors(errs) }

func (l lineErrors) Error() string {
	lines := make([]string, len(l))
	for i, err := range l {
		lines[i] = err.Error()
	}
	return strings.Join(lines, "\n- ")
}

func (l lineErrors) Unwrap() []error { return l }
