package redisclient

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupLocker(t *testing.T) (*miniredis.Miniredis, *SlotLocker) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewRedisSlotLocker(client, 5*time.Second)
}

var slot = SlotKey{ProviderID: 7, Date: "2024-06-01", Time: "10:00:00"}

func TestSlotKey_String(t *testing.T) {
	assert.Equal(t, "lock:slot:7:2024-06-01:10:00:00", slot.String())
}

func TestWithSlotLock_RunsAndReleases(t *testing.T) {
	mr, locker := setupLocker(t)

	called := false
	err := locker.WithSlotLock(context.Background(), slot, func(ctx context.Context) error {
		called = true
		assert.True(t, mr.Exists(slot.String()), "key held while fn runs")
		return nil
	})

	require.NoError(t, err)
	assert.True(t, called)
	assert.False(t, mr.Exists(slot.String()), "key released after fn")
}

func TestWithSlotLock_Contended(t *testing.T) {
	mr, locker := setupLocker(t)
	require.NoError(t, mr.Set(slot.String(), "someone-else"))

	err := locker.WithSlotLock(context.Background(), slot, func(ctx context.Context) error {
		t.Fatal("fn must not run without the lock")
		return nil
	})

	assert.ErrorIs(t, err, ErrLockNotAcquired)
	got, _ := mr.Get(slot.String())
	assert.Equal(t, "someone-else", got, "foreign lock left untouched")
}

func TestWithSlotLock_PropagatesErrorAndReleases(t *testing.T) {
	mr, locker := setupLocker(t)
	boom := errors.New("boom")

	err := locker.WithSlotLock(context.Background(), slot, func(ctx context.Context) error {
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists(slot.String()))
}

func TestWithSlotLock_DistinctSlotsDoNotContend(t *testing.T) {
	_, locker := setupLocker(t)
	other := SlotKey{ProviderID: 7, Date: "2024-06-01", Time: "10:30:00"}

	err := locker.WithSlotLock(context.Background(), slot, func(ctx context.Context) error {
		return locker.WithSlotLock(ctx, other, func(context.Context) error { return nil })
	})
	require.NoError(t, err)
}

func TestWithSlotLock_WaitsForRelease(t *testing.T) {
	mr, locker := setupLocker(t)
	locker.WithWait(time.Second)
	require.NoError(t, mr.Set(slot.String(), "someone-else"))

	go func() {
		time.Sleep(60 * time.Millisecond)
		mr.Del(slot.String())
	}()

	called := false
	err := locker.WithSlotLock(context.Background(), slot, func(ctx context.Context) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, called)
}

func TestWithSlotLock_WaitGivesUp(t *testing.T) {
	mr, locker := setupLocker(t)
	locker.WithWait(80 * time.Millisecond)
	require.NoError(t, mr.Set(slot.String(), "someone-else"))

	start := time.Now()
	err := locker.WithSlotLock(context.Background(), slot, func(ctx context.Context) error {
		t.Fatal("fn must not run without the lock")
		return nil
	})
	assert.ErrorIs(t, err, ErrLockNotAcquired)
	assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
}

func TestWithSlotLock_WaitHonoursContext(t *testing.T) {
	mr, locker := setupLocker(t)
	locker.WithWait(time.Minute)
	require.NoError(t, mr.Set(slot.String(), "someone-else"))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := locker.WithSlotLock(ctx, slot, func(ctx context.Context) error { return nil })
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestConnect_PingFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := Connect(context.Background(), Options{Addr: addr})
	assert.Error(t, err)
}

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)

	rdb, err := Connect(context.Background(), Options{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })
	assert.Equal(t, 10, rdb.Options().PoolSize)
}
