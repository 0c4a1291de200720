package ports

import (
	"context"
	"time"
)

// Cache interfaz explícita de caché con TTL, independiente de la tecnología (memoria, Badger, Redis).
// Un fallo del backend se trata como miss: Get devuelve false y Set se descarta.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
}
