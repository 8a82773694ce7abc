// Package harness adapts test runners to the nested test case structure of a run.
package harness

import "testing"

// Harness registers one named test case and runs fn inside it.
// fn receives the harness to register nested cases with and reports whether the case passed.
// Run returns whether the case passed.
type Harness interface {
	Run(name string, fn func(h Harness) bool) bool
}

// Inline runs every case directly, with no test runner around it.
type Inline struct{}

func (Inline) Run(_ string, fn func(h Harness) bool) bool {
	return fn(Inline{})
}

// Testing returns a harness registering every case as a subtest of t.
func Testing(t *testing.T) Harness {
	return testingHarness{t: t}
}

type testingHarness struct {
	t *testing.T
}

func (h testingHarness) Run(name string, fn func(Harness) bool) bool {
	passed := true
	h.t.Run(name, func(t *testing.T) {
		passed = fn(testingHarness{t: t})
		if !passed {
			t.Fail()
		}
	})
	return passed
}
