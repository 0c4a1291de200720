package seed_test

import (
	"context"
	"strings"
	"testing"

	"github.com/jhoicas/fuel-tracker/internal/domain/matching"
	"github.com/jhoicas/fuel-tracker/internal/infrastructure/memory"
	"github.com/jhoicas/fuel-tracker/internal/infrastructure/seed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_DeterministaPorSemilla(t *testing.T) {
	opts := seed.DefaultOptions()
	opts.Seed = 42
	a := seed.Generate(opts)
	b := seed.Generate(opts)

	require.Len(t, a.Orders, opts.Orders)
	require.Len(t, a.Batches, opts.Batches)
	for i := range a.Orders {
		assert.Equal(t, a.Orders[i].OrderNumber, b.Orders[i].OrderNumber)
	}
}

func TestGenerate_IdentificadoresNormalizados(t *testing.T) {
	opts := seed.DefaultOptions()
	opts.Seed = 7
	ds := seed.Generate(opts)

	seen := map[string]bool{}
	for _, o := range ds.Orders {
		assert.Equal(t, o.OrderNumber, matching.Normalize(o.OrderNumber), "el número ya está en forma canónica")
		assert.False(t, seen[o.OrderNumber], "número repetido %s", o.OrderNumber)
		seen[o.OrderNumber] = true
		assert.True(t, o.RequestedQuantity.IsPositive())
	}
	for i := 1; i < len(ds.Batches); i++ {
		assert.False(t, ds.Batches[i].ReceivedAt.Before(ds.Batches[i-1].ReceivedAt))
	}
}

func TestLoad_EnStoreEnMemoria(t *testing.T) {
	opts := seed.DefaultOptions()
	opts.Seed = 1
	ds := seed.Generate(opts)
	store := memory.NewStore()

	require.NoError(t, seed.Load(context.Background(), store.Orders(), store.Batches(), ds))
	got, err := store.Orders().GetByOrderNumber(context.Background(), ds.Orders[0].OrderNumber)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, ds.Orders[0].ID, got.ID)

	assert.Error(t, seed.Load(context.Background(), store.Orders(), store.Batches(), ds), "recargar choca con los IDs existentes")
}

func TestWriteSQL_UnInsertPorFila(t *testing.T) {
	opts := seed.DefaultOptions()
	opts.Orders = 3
	opts.Batches = 2
	opts.Seed = 9
	ds := seed.Generate(opts)

	var buf strings.Builder
	require.NoError(t, seed.WriteSQL(&buf, ds))
	out := buf.String()

	assert.Equal(t, 2, strings.Count(out, "INSERT INTO stock_batches"))
	assert.Equal(t, 3, strings.Count(out, "INSERT INTO loading_orders"))
	assert.Contains(t, out, "'"+ds.Orders[0].OrderNumber+"'")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out), "COMMIT;"))
}
