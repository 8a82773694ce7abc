package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/turning/pkg/domain"
)

// Store implements ports.ReportStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.Report
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.Report),
	}
}

// Save keeps a copy of the report as the latest one of suite.
func (s *Store) Save(ctx context.Context, suite string, report *domain.Report) error {
	copied := report.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[suite] = copied
	return nil
}

// Load retrieves a copy of the latest report of suite.
func (s *Store) Load(ctx context.Context, suite string) (*domain.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	report, ok := s.data[suite]
	if !ok {
		return nil, domain.ErrReportNotFound
	}
	return report.Clone(), nil
}

// Delete removes the report.
func (s *Store) Delete(ctx context.Context, suite string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, suite)
	return nil
}

// List returns the stored suites in lexical order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	suites := make([]string, 0, len(s.data))
	for suite := range s.data {
		suites = append(suites, suite)
	}
	sort.Strings(suites)
	return suites, nil
}
