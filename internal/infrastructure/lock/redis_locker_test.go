package lock_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jhoicas/fuel-tracker/internal/domain"
	"github.com/jhoicas/fuel-tracker/internal/infrastructure/lock"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisLocker(t *testing.T, ttl, wait time.Duration) (*lock.RedisLocker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return lock.NewRedisLocker(rdb, ttl, wait, nil), mr
}

func TestRedisLocker_OcupadoDevuelveConflicto(t *testing.T) {
	l, mr := newRedisLocker(t, 30*time.Second, 200*time.Millisecond)

	unlock, err := l.Lock(context.Background(), "ledger:P1/D1")
	require.NoError(t, err)
	assert.True(t, mr.Exists("lock:ledger:P1/D1"))

	_, err = l.Lock(context.Background(), "ledger:P1/D1")
	assert.ErrorIs(t, err, domain.ErrConflict)

	unlock()
	unlock() // idempotente
	assert.False(t, mr.Exists("lock:ledger:P1/D1"))

	u, err := l.Lock(context.Background(), "ledger:P1/D1")
	require.NoError(t, err)
	u()
}

func TestRedisLocker_ClavesDistintasNoSeBloquean(t *testing.T) {
	l, _ := newRedisLocker(t, 30*time.Second, 200*time.Millisecond)

	u1, err := l.Lock(context.Background(), "a")
	require.NoError(t, err)
	defer u1()

	u2, err := l.Lock(context.Background(), "b")
	require.NoError(t, err)
	u2()
}

func TestRedisLocker_LockHuerfanoExpiraConTTL(t *testing.T) {
	l, mr := newRedisLocker(t, time.Second, 200*time.Millisecond)

	_, err := l.Lock(context.Background(), "a") // nunca se libera
	require.NoError(t, err)

	mr.FastForward(2 * time.Second)
	u, err := l.Lock(context.Background(), "a")
	require.NoError(t, err)
	u()
}

func TestRedisLocker_ServidorCaidoNoEsConflicto(t *testing.T) {
	l, mr := newRedisLocker(t, time.Second, 200*time.Millisecond)
	mr.Close()

	_, err := l.Lock(context.Background(), "a")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrConflict)
}
