/*
Package turning generates test cases from a model of states and transitions and runs them.

A model declares states, the initialize nodes that enter them and the transitions
moving between combinations of states. Turning explores the reachable combinations,
picks a small set of paths covering every transition, arranges them as a forest of
test cases and replays each one against the system under test, checking the state
invariants after every step.

# Concept

Turns mutate the context of a test case in place. Spawns derive a child context,
which opens nested test cases that run only when their parent passed. Paths are
generated with a seeded random tie-breaker: the same model and seed always yield the
same test cases, so a failing case can be rerun by id.

# Usage

	type Page struct{ Title string }

	t := turning.New[*Page]()
	t.Define("page:home").Test(func(ctx context.Context, p *Page) error {
		if p.Title != "home" {
			return fmt.Errorf("unexpected title %q", p.Title)
		}
		return nil
	})
	t.Define("page:about")
	t.Initialize("page:home").By("opening home", func(ctx context.Context) (*Page, error) {
		return &Page{Title: "home"}, nil
	}).Alias("open-home")
	t.Turn([]string{"page:home"}).To("page:about").By("clicking about", func(ctx context.Context, p *Page) (*Page, error) {
		p.Title = "about"
		return p, nil
	})

	report, err := t.Test(ctx, turning.MaxAttempts(2))
	if err != nil {
		log.Fatal(err)
	}
	if !report.Passed() {
		os.Exit(1)
	}

# Patterns

Transition sources are patterns: "*" matches within a segment delimited by ':' or
'/', "**" matches anything and "{a,b}" matches either alternative. Named presets
(Pattern) add auxiliary constraints to every transition; prefix a pattern with "!"
(see dsl.Not) to require that no state matches it.

# Persistence

WithReportStore saves the report of every run. RerunFailed then replays only the
test cases that failed, with the seed of the stored run. Stores for memory, files,
Redis and SQLite live under pkg/adapters.
*/
package turning
