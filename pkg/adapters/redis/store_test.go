package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/turning/pkg/adapters/redis"
	"github.com/aretw0/turning/pkg/domain"
	"github.com/aretw0/turning/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := newClient(t)
	store := redis.NewFromClient(client)
	ports.RunReportStoreContract(t, store)
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	mr, client := newClient(t)

	store := redis.NewFromClient(client, redis.WithTTL(1*time.Second))
	ctx := context.Background()
	suite := "suite-ttl"

	err := store.Save(ctx, suite, &domain.Report{RunID: "r1", FailedIDs: []string{"2"}})
	require.NoError(t, err)

	suites, err := store.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, suites, suite)

	// Key expiration in miniredis follows its own clock.
	mr.FastForward(2 * time.Second)

	_, err = store.Load(ctx, suite)
	assert.ErrorIs(t, err, domain.ErrReportNotFound)

	// The index is pruned against time.Now, so wall time must pass too.
	time.Sleep(1200 * time.Millisecond)

	suites, err = store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, suites)
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, client := newClient(t)

	store := redis.NewFromClient(client, redis.WithPrefix("custom:app:"))
	ctx := context.Background()

	err := store.Save(ctx, "index", &domain.Report{RunID: "r1"})
	require.NoError(t, err)

	assert.True(t, mr.Exists("custom:app:suite:index"), "Expected key with custom prefix to exist")
	assert.True(t, mr.Exists("custom:app:index"), "Expected index with custom prefix to exist")

	list, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"index"}, list)

	loaded, err := store.Load(ctx, "index")
	require.NoError(t, err)
	assert.Equal(t, "r1", loaded.RunID)
}

func TestRedisStore_Unavailable(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client)
	mr.Close()

	_, err := store.Load(context.Background(), "suite")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrReportNotFound)
}
