package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/turning/pkg/adapters/memory"
	"github.com/aretw0/turning/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunReportStoreContract(t, store)
}

func TestMemoryLocker(t *testing.T) {
	locker := memory.NewLocker()
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "env", time.Second)
	require.NoError(t, err)

	// Same key is held
	short, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(short, "env", time.Second)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// Other keys are independent
	other, err := locker.Lock(ctx, "other", time.Second)
	require.NoError(t, err)
	require.NoError(t, other(ctx))

	require.NoError(t, unlock(ctx))
	// Releasing twice is harmless
	require.NoError(t, unlock(ctx))

	again, err := locker.Lock(ctx, "env", time.Second)
	require.NoError(t, err)
	require.NoError(t, again(ctx))
}

func TestMemoryLocker_Waits(t *testing.T) {
	locker := memory.NewLocker()
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "env", 0)
	require.NoError(t, err)

	acquired := make(chan struct{})
	go func() {
		second, err := locker.Lock(ctx, "env", 0)
		if err == nil {
			_ = second(ctx)
		}
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("lock acquired while held")
	case <-time.After(30 * time.Millisecond):
	}

	require.NoError(t, unlock(ctx))
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("lock not acquired after release")
	}
}
