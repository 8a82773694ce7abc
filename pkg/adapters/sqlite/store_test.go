package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/aretw0/turning/pkg/adapters/sqlite"
	"github.com/aretw0/turning/pkg/domain"
	"github.com/aretw0/turning/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func open(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "reports.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_Contract(t *testing.T) {
	ports.RunReportStoreContract(t, open(t))
}

func TestSQLiteStore_Failing(t *testing.T) {
	store := open(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "green", &domain.Report{RunID: "a", Completed: true}))
	require.NoError(t, store.Save(ctx, "red", &domain.Report{RunID: "b", Completed: true, FailedIDs: []string{"1"}}))
	require.NoError(t, store.Save(ctx, "cut", &domain.Report{RunID: "c", Completed: false}))

	failing, err := store.Failing(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"cut", "red"}, failing)

	// Fixing a suite removes it from the failing list
	require.NoError(t, store.Save(ctx, "red", &domain.Report{RunID: "d", Completed: true}))
	failing, err = store.Failing(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"cut"}, failing)
}

func TestSQLiteStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports.db")
	ctx := context.Background()

	store, err := sqlite.New(path)
	require.NoError(t, err)
	assert.Equal(t, path, store.Path())
	require.NoError(t, store.Save(ctx, "suite", &domain.Report{RunID: "persisted", Seed: "seed"}))
	require.NoError(t, store.Close())

	store, err = sqlite.New(path)
	require.NoError(t, err)
	defer store.Close()

	loaded, err := store.Load(ctx, "suite")
	require.NoError(t, err)
	assert.Equal(t, "persisted", loaded.RunID)
	assert.Equal(t, "seed", loaded.Seed)
}
