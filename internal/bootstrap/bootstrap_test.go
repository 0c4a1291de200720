package bootstrap_test

import (
	"context"
	"testing"
	"time"

	"github.com/jhoicas/fuel-tracker/internal/bootstrap"
	"github.com/jhoicas/fuel-tracker/pkg/config"
	"github.com/jhoicas/fuel-tracker/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryConfig() *config.Config {
	return &config.Config{
		DB:       config.DBConfig{Backend: "memory"},
		Resolver: config.ResolverConfig{LocalThreshold: 0.7, AIThreshold: 0.8, MaxCandidates: 50, IDPrefix: "ORD"},
		Correction: config.CorrectionConfig{
			Provider: "none",
			Timeout:  12 * time.Second,
			CacheTTL: time.Hour,
		},
		Cache: config.CacheConfig{Backend: "badger"},
		Lock:  config.LockConfig{Backend: "local"},
	}
}

func TestBuild_MemoriaConDemo(t *testing.T) {
	ctx := context.Background()
	svc, err := bootstrap.Build(ctx, memoryConfig(), logger.Nop(), true)
	require.NoError(t, err)
	defer svc.Close()

	active, err := svc.Orders.ListActive(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, active)

	order, meta, err := svc.Orchestrator.Resolve(ctx, active[0].OrderNumber)
	require.NoError(t, err)
	assert.Equal(t, active[0].ID, order.ID)
	assert.Equal(t, "exact", meta.Method)
}

func TestBuild_MemoriaVacia(t *testing.T) {
	ctx := context.Background()
	cfg := memoryConfig()
	cfg.Cache.Backend = "memory"
	svc, err := bootstrap.Build(ctx, cfg, logger.Nop(), false)
	require.NoError(t, err)
	defer svc.Close()

	active, err := svc.Orders.ListActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)
}
