package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/jhoicas/fuel-tracker/internal/application/ports"
	"github.com/jhoicas/fuel-tracker/internal/infrastructure/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseCache(t *testing.T, c ports.Cache) {
	t.Helper()
	ctx := context.Background()

	_, ok := c.Get(ctx, "correction/v1/nada")
	assert.False(t, ok)

	c.Set(ctx, "correction/v1/a", []byte(`{"identifier":"ORD001","confidence":0.9}`), time.Hour)
	got, ok := c.Get(ctx, "correction/v1/a")
	require.True(t, ok)
	assert.JSONEq(t, `{"identifier":"ORD001","confidence":0.9}`, string(got))

	c.Set(ctx, "correction/v1/a", []byte("v2"), time.Hour)
	got, ok = c.Get(ctx, "correction/v1/a")
	require.True(t, ok)
	assert.Equal(t, "v2", string(got))
}

func TestBadgerCache_EnMemoria(t *testing.T) {
	c, err := cache.OpenBadgerCache("", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	exerciseCache(t, c)
}

func TestBadgerCache_PersisteEnDirectorio(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	c, err := cache.OpenBadgerCache(dir, nil)
	require.NoError(t, err)
	c.Set(ctx, "k", []byte("v"), time.Hour)
	require.NoError(t, c.Close())

	c, err = cache.OpenBadgerCache(dir, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	got, ok := c.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, "v", string(got))
}

func TestBadgerCache_Expira(t *testing.T) {
	c, err := cache.OpenBadgerCache("", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	ctx := context.Background()

	// badger guarda el vencimiento con resolución de segundos.
	c.Set(ctx, "k", []byte("v"), time.Second)
	_, ok := c.Get(ctx, "k")
	require.True(t, ok)
	time.Sleep(2100 * time.Millisecond)
	_, ok = c.Get(ctx, "k")
	assert.False(t, ok)
}

func TestBadgerCache_CopiaDefensiva(t *testing.T) {
	c, err := cache.OpenBadgerCache("", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	ctx := context.Background()

	v := []byte("abc")
	c.Set(ctx, "k", v, 0)
	v[0] = 'z'
	got, ok := c.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, "abc", string(got))
}
