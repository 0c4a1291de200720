package cache

import (
	"context"
	"errors"
	"time"

	"github.com/jhoicas/fuel-tracker/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// RedisCache caché compartida entre réplicas del API. Las claves llevan el prefijo "fuel:".
type RedisCache struct {
	rdb redis.UniversalClient
	log *logger.Logger
}

// NewRedisCache envuelve un cliente existente.
func NewRedisCache(rdb redis.UniversalClient, log *logger.Logger) *RedisCache {
	if log == nil {
		log = logger.Nop()
	}
	return &RedisCache{rdb: rdb, log: log.Component("redis_cache")}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	raw, err := c.rdb.Get(ctx, "fuel:"+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("lectura de caché fallida, se trata como miss")
		return nil, false
	}
	return raw, true
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if ttl < 0 {
		ttl = 0
	}
	if err := c.rdb.Set(ctx, "fuel:"+key, value, ttl).Err(); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("escritura de caché fallida")
	}
}
