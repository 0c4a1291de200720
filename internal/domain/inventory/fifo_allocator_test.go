package inventory_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/fuel-tracker/internal/domain"
	"github.com/jhoicas/fuel-tracker/internal/domain/entity"
	"github.com/jhoicas/fuel-tracker/internal/domain/inventory"
)

var (
	diesel = entity.Scope{ProductID: "diesel", DestinationID: "terminal-norte"}
	day0   = time.Date(2026, 3, 1, 6, 0, 0, 0, time.UTC)
)

func lts(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func batch(id string, day int, remaining int64) *entity.StockBatch {
	return &entity.StockBatch{
		ID:                id,
		ProductID:         diesel.ProductID,
		DestinationID:     diesel.DestinationID,
		TotalQuantity:     lts(1000),
		QuantityRemaining: lts(remaining),
		ReceivedAt:        day0.AddDate(0, 0, day-1),
	}
}

// B1 (día 1, 300 L) y B2 (día 5, 500 L); pedir 200 L solo toca B1.
func TestAllocateFIFO_SoloLoteMasAntiguo(t *testing.T) {
	batches := []*entity.StockBatch{batch("B2", 5, 500), batch("B1", 1, 300)}

	plan, err := inventory.AllocateFIFO(diesel, batches, lts(200))
	require.NoError(t, err)
	require.Len(t, plan.Allocations, 1)
	assert.Equal(t, "B1", plan.Allocations[0].BatchID)
	assert.True(t, plan.Allocations[0].Quantity.Equal(lts(200)))
	assert.True(t, plan.Total().Equal(lts(200)))
}

// Pedir 700 L consume B1 completo (300 L) y 400 L de B2.
func TestAllocateFIFO_CruzaLotes(t *testing.T) {
	batches := []*entity.StockBatch{batch("B1", 1, 300), batch("B2", 5, 500)}

	plan, err := inventory.AllocateFIFO(diesel, batches, lts(700))
	require.NoError(t, err)
	require.Len(t, plan.Allocations, 2)
	assert.Equal(t, "B1", plan.Allocations[0].BatchID)
	assert.True(t, plan.Allocations[0].Quantity.Equal(lts(300)))
	assert.Equal(t, "B2", plan.Allocations[1].BatchID)
	assert.True(t, plan.Allocations[1].Quantity.Equal(lts(400)))
	assert.True(t, plan.Total().Equal(lts(700)), "la suma del plan debe igualar lo pedido")
}

func TestAllocateFIFO_StockInsuficienteSinPlan(t *testing.T) {
	batches := []*entity.StockBatch{batch("B1", 1, 60), batch("B2", 2, 40)}

	plan, err := inventory.AllocateFIFO(diesel, batches, lts(150))
	assert.Nil(t, plan, "nunca se devuelven planes parciales")
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	var insufficient *domain.InsufficientStockError
	require.True(t, errors.As(err, &insufficient))
	assert.True(t, insufficient.Available.Equal(lts(100)))
	assert.True(t, insufficient.Requested.Equal(lts(150)))
}

func TestAllocateFIFO_IgnoraAgotadosYOtroAlcance(t *testing.T) {
	other := batch("X1", 0, 900)
	other.DestinationID = "terminal-sur"
	batches := []*entity.StockBatch{other, batch("B0", 0, 0), batch("B3", 3, 250)}

	plan, err := inventory.AllocateFIFO(diesel, batches, lts(250))
	require.NoError(t, err)
	require.Len(t, plan.Allocations, 1)
	assert.Equal(t, "B3", plan.Allocations[0].BatchID)
}

func TestAllocateFIFO_EmpateDeFechaPorID(t *testing.T) {
	batches := []*entity.StockBatch{batch("B9", 2, 100), batch("B4", 2, 100)}

	plan, err := inventory.AllocateFIFO(diesel, batches, lts(50))
	require.NoError(t, err)
	assert.Equal(t, "B4", plan.Allocations[0].BatchID)
}

func TestAllocateFIFO_CantidadNoPositiva(t *testing.T) {
	_, err := inventory.AllocateFIFO(diesel, []*entity.StockBatch{batch("B1", 1, 300)}, decimal.Zero)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = inventory.AllocateFIFO(diesel, nil, lts(-5))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAllocateFIFO_Fraccionario(t *testing.T) {
	b := batch("B1", 1, 0)
	b.QuantityRemaining = decimal.RequireFromString("10.25")
	plan, err := inventory.AllocateFIFO(diesel, []*entity.StockBatch{b}, decimal.RequireFromString("10.25"))
	require.NoError(t, err)
	assert.Equal(t, "10.25", plan.Total().String())
}
