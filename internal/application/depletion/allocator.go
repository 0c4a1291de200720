package depletion

import (
	"context"
	"fmt"

	"github.com/jhoicas/fuel-tracker/internal/domain/entity"
	"github.com/jhoicas/fuel-tracker/internal/domain/inventory"
	"github.com/jhoicas/fuel-tracker/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// BatchAllocator calcula planes FIFO contra el estado actual de los lotes.
// Solo lee: no toma locks. La validez del plan se vuelve a comprobar al hacer commit.
type BatchAllocator struct {
	batches repository.StockBatchRepository
}

// NewBatchAllocator construye el asignador.
func NewBatchAllocator(batches repository.StockBatchRepository) *BatchAllocator {
	return &BatchAllocator{batches: batches}
}

// Plan devuelve el plan FIFO para quantity en el alcance, o *domain.InsufficientStockError.
func (a *BatchAllocator) Plan(ctx context.Context, scope entity.Scope, quantity decimal.Decimal) (*inventory.Plan, error) {
	batches, err := a.batches.ListAvailable(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("listar lotes disponibles: %w", err)
	}
	return inventory.AllocateFIFO(scope, batches, quantity)
}

// Available suma el remanente de los lotes del alcance.
func (a *BatchAllocator) Available(ctx context.Context, scope entity.Scope) (decimal.Decimal, error) {
	batches, err := a.batches.ListAvailable(ctx, scope)
	if err != nil {
		return decimal.Zero, fmt.Errorf("listar lotes disponibles: %w", err)
	}
	total := decimal.Zero
	for _, b := range batches {
		total = total.Add(b.QuantityRemaining)
	}
	return total, nil
}
