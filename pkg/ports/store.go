package ports

import (
	"context"

	"github.com/aretw0/turning/pkg/domain"
)

// ReportStore persists the latest report of each suite.
// This enables re-running only the test cases that failed last time, with the same seed.
type ReportStore interface {
	// Save persists the report as the latest one of suite.
	Save(ctx context.Context, suite string, report *domain.Report) error

	// Load retrieves the latest report of suite.
	// Returns domain.ErrReportNotFound if there is none.
	Load(ctx context.Context, suite string) (*domain.Report, error)

	// Delete removes the report of suite.
	Delete(ctx context.Context, suite string) error

	// List returns the suites with a stored report.
	List(ctx context.Context) ([]string, error)
}
