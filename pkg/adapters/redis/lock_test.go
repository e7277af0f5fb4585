package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/rewind/pkg/adapters/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisLocker_LockUnlock(t *testing.T) {
	mr, client := newClient(t)
	locker := redis.NewLocker(client, "test:")
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "resource1", 5*time.Second)
	require.NoError(t, err)
	require.NotNil(t, unlock)

	assert.True(t, mr.Exists("test:lock:resource1"), "Lock key should be set in Redis")

	require.NoError(t, unlock(ctx))
	assert.False(t, mr.Exists("test:lock:resource1"), "Lock key should be removed after unlock")
}

func TestRedisLocker_Contention(t *testing.T) {
	_, client := newClient(t)
	locker := redis.NewLocker(client, "test:")
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "shared", 5*time.Second)
	require.NoError(t, err)

	waitCtx, cancel := context.WithTimeout(ctx, 200*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(waitCtx, "shared", 5*time.Second)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, unlock(ctx))

	unlock2, err := locker.Lock(ctx, "shared", 5*time.Second)
	require.NoError(t, err)
	assert.NoError(t, unlock2(ctx))
}

func TestRedisLocker_UnlockDoesNotStealForeignLock(t *testing.T) {
	mr, client := newClient(t)
	locker := redis.NewLocker(client, "test:")
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "k", 5*time.Second)
	require.NoError(t, err)

	// Simulate expiry followed by another holder.
	require.NoError(t, mr.Set("test:lock:k", "someone-else"))

	require.NoError(t, unlock(ctx))
	assert.True(t, mr.Exists("test:lock:k"))
}
