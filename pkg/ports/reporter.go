package ports

import "github.com/aretw0/turning/pkg/domain"

// Reporter renders the progress of a run. Depth is the nesting level of the test case.
type Reporter interface {
	TestCase(id string, depth int)
	Step(via *domain.Via, depth int)
	// States is only called in verbose runs.
	States(states []string, depth int)
	Failure(title string, err error, depth int)
	Retry(id string, attempt, maxAttempts int, depth int)
	Warning(message string)
	Summary(report *domain.Report)
}

// NopReporter discards everything.
type NopReporter struct{}

func (NopReporter) TestCase(string, int)        {}
func (NopReporter) Step(*domain.Via, int)       {}
func (NopReporter) States([]string, int)        {}
func (NopReporter) Failure(string, error, int)  {}
func (NopReporter) Retry(string, int, int, int) {}
func (NopReporter) Warning(string)              {}
func (NopReporter) Summary(*domain.Report)      {}
