package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/fuel-tracker/pkg/config"
)

func TestLoad_ValoresPorDefecto(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 0.7, cfg.Resolver.LocalThreshold)
	assert.Equal(t, 0.8, cfg.Resolver.AIThreshold)
	assert.Equal(t, 50, cfg.Resolver.MaxCandidates)
	assert.Equal(t, "none", cfg.Correction.Provider)
	assert.Equal(t, 12*time.Second, cfg.Correction.Timeout)
	assert.Equal(t, time.Hour, cfg.Correction.CacheTTL)
	assert.Equal(t, "memory", cfg.Cache.Backend)
	assert.Equal(t, "local", cfg.Lock.Backend)
}

func TestLoad_LeeVariablesDeEntorno(t *testing.T) {
	t.Setenv("RESOLVER_LOCAL_THRESHOLD", "0.65")
	t.Setenv("RESOLVER_ID_PREFIX", "lo")
	t.Setenv("CORRECTION_TIMEOUT", "15")
	t.Setenv("CORRECTION_CACHE_TTL", "30m")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 0.65, cfg.Resolver.LocalThreshold)
	assert.Equal(t, "LO", cfg.Resolver.IDPrefix)
	assert.Equal(t, 15*time.Second, cfg.Correction.Timeout)
	assert.Equal(t, 30*time.Minute, cfg.Correction.CacheTTL)
}

func TestLoad_RechazaTimeoutFueraDeRango(t *testing.T) {
	t.Setenv("CORRECTION_TIMEOUT", "45s")
	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoad_ProviderHTTPRequiereURL(t *testing.T) {
	t.Setenv("CORRECTION_PROVIDER", "http")
	_, err := config.Load()
	assert.Error(t, err)
}

func TestDBConfig_DSNEscapaPassword(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss:word", DBName: "fuel", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%3Aword@db:5432/fuel?sslmode=disable", c.ConnectionString())
}
