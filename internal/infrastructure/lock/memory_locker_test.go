package lock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sequenceIDs struct {
	next int
}

func (s *sequenceIDs) NewID() (string, error) {
	s.next++
	return "token-" + string(rune('a'+s.next-1)), nil
}

func TestMemoryLocker_AcquireRelease(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2024, 1, 15, 18, 0, 0, 0, time.UTC)
	locker := NewMemoryLocker(&sequenceIDs{})
	locker.now = func() time.Time { return now }

	token, ok, err := locker.Acquire(ctx, "pbp:NBA", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "token-a", token)

	_, ok, err = locker.Acquire(ctx, "pbp:NBA", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "second acquire must fail while held")

	_, ok, err = locker.Acquire(ctx, "pbp:NHL", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "locks are per key")

	require.NoError(t, locker.Release(ctx, "pbp:NBA", "not-mine"))
	_, ok, err = locker.Acquire(ctx, "pbp:NBA", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "release with a foreign token is ignored")

	require.NoError(t, locker.Release(ctx, "pbp:NBA", token))
	_, ok, err = locker.Acquire(ctx, "pbp:NBA", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryLocker_ExpiresAfterTTL(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2024, 1, 15, 18, 0, 0, 0, time.UTC)
	locker := NewMemoryLocker(nil)
	locker.now = func() time.Time { return now }

	_, ok, err := locker.Acquire(ctx, "pbp:NBA", 2*time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok, err = locker.Acquire(ctx, "pbp:NBA", 2*time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "an expired lock can be taken over")
}
