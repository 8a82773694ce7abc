package domain

import "time"

// CaseStatus is the lifecycle position of a test case.
type CaseStatus string

const (
	StatusPending            CaseStatus = "pending"
	StatusTransitioning      CaseStatus = "transitioning"
	StatusStatesVerified     CaseStatus = "states-verified"
	StatusTransitionVerified CaseStatus = "transition-verified"
	StatusPassed             CaseStatus = "passed"
	StatusFailed             CaseStatus = "failed"
	StatusListed             CaseStatus = "listed"
)

// CaseRecord is the outcome of one test case.
type CaseRecord struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Depth    int           `json:"depth"`
	Attempts int           `json:"attempts"`
	Status   CaseStatus    `json:"status"`
	Errors   []string      `json:"errors,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Report is the outcome of one Test run.
type Report struct {
	RunID      string       `json:"run_id"`
	Suite      string       `json:"suite"`
	Seed       string       `json:"seed"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Cases      []CaseRecord `json:"cases"`
	FailedIDs  []string     `json:"failed_ids,omitempty"`
	ListOnly   bool         `json:"list_only,omitempty"`
	Bailed     bool         `json:"bailed,omitempty"`
	// Completed is false when the run was interrupted by context cancellation.
	Completed bool `json:"completed"`
	// Sealed carries the encrypted report when stored through an encrypting store.
	Sealed string `json:"sealed,omitempty"`
}

// Passed reports whether the run completed without failures.
func (r *Report) Passed() bool {
	return r.Completed && len(r.FailedIDs) == 0
}

// Counts returns the number of passed and failed test cases.
func (r *Report) Counts() (passed, failed int) {
	for _, c := range r.Cases {
		switch c.Status {
		case StatusPassed:
			passed++
		case StatusFailed:
			failed++
		}
	}
	return passed, failed
}

// Case finds a record by test case id.
func (r *Report) Case(id string) (CaseRecord, bool) {
	for _, c := range r.Cases {
		if c.ID == id {
			return c, true
		}
	}
	return CaseRecord{}, false
}

// Clone returns a deep copy of the report.
func (r *Report) Clone() *Report {
	out := *r
	out.Cases = make([]CaseRecord, len(r.Cases))
	for i, c := range r.Cases {
		c.Errors = append([]string(nil), c.Errors...)
		out.Cases[i] = c
	}
	out.FailedIDs = append([]string(nil), r.FailedIDs...)
	return &out
}

// AfterEachData is handed to the environment after every attempt of a test case.
type AfterEachData struct {
	ID      string
	Attempt int
	Passed  bool
	// FailedAfterSpawn is true when the case itself passed but a nested case failed.
	FailedAfterSpawn bool
}
