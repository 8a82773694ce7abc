package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/turning/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunReportStoreContract runs a suite of tests to verify that a ReportStore implementation
// adheres to the defined interface contract.
func RunReportStoreContract(t *testing.T, store ReportStore) {
	ctx := context.Background()
	suite := "contract-suite-" + time.Now().Format("20060102150405")

	newReport := func(runID string, failed ...string) *domain.Report {
		started := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		r := &domain.Report{
			RunID:      runID,
			Suite:      suite,
			Seed:       "Fri Jan 02 2026",
			StartedAt:  started,
			FinishedAt: started.Add(time.Second),
			Completed:  true,
			FailedIDs:  failed,
		}
		r.Cases = append(r.Cases, domain.CaseRecord{ID: "1", Name: "Test Case 1", Attempts: 1, Status: domain.StatusPassed})
		for _, id := range failed {
			r.Cases = append(r.Cases, domain.CaseRecord{ID: id, Name: "Test Case " + id, Attempts: 2, Status: domain.StatusFailed, Errors: []string{"boom"}})
		}
		return r
	}

	t.Run("Save and Load", func(t *testing.T) {
		report := newReport("run-1", "2", "3.1")

		err := store.Save(ctx, suite, report)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, suite)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, report.RunID, loaded.RunID)
		assert.Equal(t, report.Seed, loaded.Seed)
		assert.Equal(t, []string{"2", "3.1"}, loaded.FailedIDs)
		assert.True(t, report.StartedAt.Equal(loaded.StartedAt))
		require.Len(t, loaded.Cases, 3)
		assert.Equal(t, []string{"boom"}, loaded.Cases[1].Errors)
	})

	t.Run("Save Replaces Latest", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, suite, newReport("run-2")))

		loaded, err := store.Load(ctx, suite)
		require.NoError(t, err)
		assert.Equal(t, "run-2", loaded.RunID)
		assert.Empty(t, loaded.FailedIDs)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+suite)
		assert.ErrorIs(t, err, domain.ErrReportNotFound)
	})

	t.Run("Loaded Report Is A Copy", func(t *testing.T) {
		loaded, err := store.Load(ctx, suite)
		require.NoError(t, err)
		loaded.FailedIDs = append(loaded.FailedIDs, "9")

		again, err := store.Load(ctx, suite)
		require.NoError(t, err)
		assert.NotContains(t, again.FailedIDs, "9")
	})

	t.Run("List", func(t *testing.T) {
		other := suite + "-other"
		require.NoError(t, store.Save(ctx, other, newReport("run-3")))
		defer func() { _ = store.Delete(ctx, other) }()

		suites, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, suites, suite)
		assert.Contains(t, suites, other)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Delete(ctx, suite)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, suite)
		assert.ErrorIs(t, err, domain.ErrReportNotFound, "Load after Delete should return ErrReportNotFound")
	})
}
