package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/jhoicas/fuel-tracker/internal/domain"
	"github.com/jhoicas/fuel-tracker/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// RedisLocker lock distribuido sobre Redis para varias réplicas del API.
// TTL acota cuánto vive un lock huérfano; Wait cuánto se reintenta antes de rendirse.
type RedisLocker struct {
	client *redislock.Client
	ttl    time.Duration
	wait   time.Duration
	log    *logger.Logger
}

// NewRedisLocker crea el locker distribuido.
func NewRedisLocker(rdb redis.UniversalClient, ttl, wait time.Duration, log *logger.Logger) *RedisLocker {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if wait <= 0 {
		wait = 10 * time.Second
	}
	if log == nil {
		log = logger.Nop()
	}
	return &RedisLocker{client: redislock.New(rdb), ttl: ttl, wait: wait, log: log.Component("redis_lock")}
}

// Lock obtiene el lock "lock:<key>" reintentando hasta Wait.
func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	lockKey := fmt.Sprintf("lock:%s", key)
	obtainCtx, cancel := context.WithTimeout(ctx, l.wait)
	defer cancel()

	lk, err := l.client.Obtain(obtainCtx, lockKey, l.ttl, &redislock.Options{
		RetryStrategy: redislock.LinearBackoff(50 * time.Millisecond),
	})
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, fmt.Errorf("lock %s ocupado: %w", lockKey, domain.ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("obtener lock %s: %w", lockKey, err)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// Liberar con un contexto propio: el del request puede estar cancelado.
			rctx, rcancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer rcancel()
			if err := lk.Release(rctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
				l.log.Warn().Err(err).Str("key", lockKey).Msg("no se pudo liberar el lock")
			}
		})
	}, nil
}
